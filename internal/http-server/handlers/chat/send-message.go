package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
)

type SendRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SendMessage runs one conversation turn for the web widget.
func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.chat"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		req.SessionID = strings.TrimSpace(req.SessionID)
		req.Message = strings.TrimSpace(req.Message)
		if req.SessionID == "" || req.Message == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("session_id and message are required"))
			return
		}

		result := handler.ProcessMessage(r.Context(), req.SessionID, req.Message, entity.PlatformWeb, nil)
		render.JSON(w, r, result)
	}
}
