package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
)

// Stats reports dashboard counters.
func Stats(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessions, err := handler.CountSessions(r.Context())
		if err != nil {
			logger.Error("failed to count sessions", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load stats"))
			return
		}
		messages, err := handler.CountMessages(r.Context())
		if err != nil {
			logger.Error("failed to count messages", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load stats"))
			return
		}
		chunks, err := handler.CountChunks(r.Context())
		if err != nil {
			logger.Error("failed to count chunks", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load stats"))
			return
		}

		var resp struct {
			Sessions int64 `json:"sessions"`
			Messages int64 `json:"messages"`
			Chunks   int64 `json:"chunks"`
		}
		resp.Sessions = sessions
		resp.Messages = messages
		resp.Chunks = chunks

		render.JSON(w, r, resp)
	}
}
