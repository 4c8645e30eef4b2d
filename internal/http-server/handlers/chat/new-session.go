package chat

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// NewSession issues a widget session identifier. The session document itself
// is created lazily on the first message.
func NewSession(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var response struct {
			SessionID string `json:"session_id"`
		}
		response.SessionID = uuid.NewString()

		render.JSON(w, r, response)
	}
}
