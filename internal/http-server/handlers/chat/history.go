package chat

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
)

// History replays a session's conversation log for the widget.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.chat"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionID := chi.URLParam(r, "sessionID")
		if sessionID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("session id is required"))
			return
		}

		messages, err := handler.GetMessages(r.Context(), sessionID)
		if err != nil {
			logger.Error("failed to load history", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load history"))
			return
		}
		if messages == nil {
			messages = []entity.Message{}
		}

		render.JSON(w, r, messages)
	}
}
