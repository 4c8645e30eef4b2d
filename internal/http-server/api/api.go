package api

import (
	"AtendeBot/internal/config"
	"AtendeBot/internal/http-server/handlers/admin"
	authhandler "AtendeBot/internal/http-server/handlers/auth"
	"AtendeBot/internal/http-server/handlers/chat"
	"AtendeBot/internal/http-server/handlers/errors"
	wahandler "AtendeBot/internal/http-server/handlers/whatsapp"
	"AtendeBot/internal/http-server/middleware/authenticate"
	"AtendeBot/internal/http-server/middleware/timeout"
	"AtendeBot/internal/lib/sl"
	"AtendeBot/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Handler is the combined backend surface the router needs.
type Handler interface {
	authenticate.Authenticate
	authhandler.Core
	chat.Core
	admin.Core
	admin.Control
	admin.Ingest
}

// WsAuth validates websocket tokens.
type WsAuth interface {
	ValidateToken(token string) (string, error)
}

// New builds the router and serves it. Blocks until the listener fails.
// whatsapp wires the channel surface and may be nil when the channel is
// disabled; hub may be nil when no dashboard feed is wanted.
func New(conf *config.Config, log *slog.Logger, handler Handler, webhook wahandler.Webhook, conn wahandler.Connection, hub *ws.Hub, wsAuth WsAuth) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(30))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api", func(api chi.Router) {
		api.Use(render.SetContentType(render.ContentTypeJSON))

		api.Post("/auth/login", authhandler.Login(log, handler))

		api.Route("/chat", func(r chi.Router) {
			r.Post("/session", chat.NewSession(log))
			r.Post("/message", chat.SendMessage(log, handler))
			r.Get("/history/{sessionID}", chat.History(log, handler))
		})

		api.Route("/admin", func(r chi.Router) {
			r.Use(authenticate.New(log, handler))

			r.Get("/sessions", admin.ListSessions(log, handler))
			r.Get("/sessions/{sessionID}/messages", admin.SessionMessages(log, handler))
			r.Post("/sessions/{sessionID}/read", admin.MarkRead(log, handler))
			r.Post("/sessions/{sessionID}/takeover", admin.Takeover(log, handler))
			r.Post("/sessions/{sessionID}/release", admin.Release(log, handler))
			r.Post("/sessions/{sessionID}/send", admin.SendAsAgent(log, handler))

			r.Get("/departments", admin.ListDepartments(log, handler))
			r.Post("/departments", admin.CreateDepartment(log, handler))
			r.Put("/departments/{id}", admin.UpdateDepartment(log, handler))
			r.Delete("/departments/{id}", admin.DeleteDepartment(log, handler))

			r.Get("/settings", admin.ListSettings(log, handler))
			r.Post("/settings", admin.UpdateSettings(log, handler))

			r.Get("/stats", admin.Stats(log, handler))
			r.Post("/rag/upload", admin.UploadDocument(log, handler))

			if conn != nil {
				r.Get("/whatsapp/status", wahandler.Status(log, conn))
				r.Post("/whatsapp/connect", wahandler.Connect(log, conn))
				r.Post("/whatsapp/logout", wahandler.Logout(log, conn))
			}
		})
	})

	if webhook != nil {
		router.Get("/webhook/whatsapp", wahandler.Verify(log, webhook))
		router.Post("/webhook/whatsapp", wahandler.Receive(log, webhook))
	}

	if hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, wsAuth, log, w, r)
		})
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
