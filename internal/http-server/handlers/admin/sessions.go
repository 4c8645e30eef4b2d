package admin

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

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.admin"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// ListSessions returns the inbox, newest activity first.
func ListSessions(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessions, err := handler.ListSessions(r.Context())
		if err != nil {
			logger.Error("failed to list sessions", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list sessions"))
			return
		}
		if sessions == nil {
			sessions = []entity.Session{}
		}

		render.JSON(w, r, sessions)
	}
}

// SessionMessages replays a session's log for the dashboard.
func SessionMessages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessionID := chi.URLParam(r, "sessionID")
		messages, err := handler.GetMessages(r.Context(), sessionID)
		if err != nil {
			logger.Error("failed to load messages", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load messages"))
			return
		}
		if messages == nil {
			messages = []entity.Message{}
		}

		render.JSON(w, r, messages)
	}
}

// MarkRead clears a session's unread flag.
func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessionID := chi.URLParam(r, "sessionID")
		if err := handler.SetSessionRead(r.Context(), sessionID, true); err != nil {
			logger.Error("failed to mark session read", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to mark session read"))
			return
		}

		render.JSON(w, r, response.OK())
	}
}
