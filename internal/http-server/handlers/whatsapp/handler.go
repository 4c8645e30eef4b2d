package whatsapp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	wa "AtendeBot/bot/whatsapp"
	"AtendeBot/internal/lib/api/response"
)

// Webhook is the inbound surface of the Cloud API transport.
type Webhook interface {
	HandleWebhookVerification(w http.ResponseWriter, r *http.Request)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// Connection is the lifecycle surface exposed to the dashboard.
type Connection interface {
	Start(ctx context.Context)
	Logout() error
	StatusInfo() wa.StatusInfo
}

// Verify handles the Meta webhook verification handshake.
func Verify(_ *slog.Logger, handler Webhook) http.HandlerFunc {
	return handler.HandleWebhookVerification
}

// Receive handles inbound webhook deliveries.
func Receive(_ *slog.Logger, handler Webhook) http.HandlerFunc {
	return handler.HandleWebhook
}

// Status reports the connection state for the dashboard.
func Status(_ *slog.Logger, conn Connection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, conn.StatusInfo())
	}
}

// Connect starts (or restarts) transport supervision.
func Connect(log *slog.Logger, conn Connection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Supervision outlives the request.
		conn.Start(context.Background())
		log.Info("whatsapp connection requested")
		render.JSON(w, r, conn.StatusInfo())
	}
}

// Logout tears the pairing down.
func Logout(log *slog.Logger, conn Connection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Logout(); err != nil {
			log.Error("whatsapp logout failed", slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to logout"))
			return
		}
		render.JSON(w, r, conn.StatusInfo())
	}
}
