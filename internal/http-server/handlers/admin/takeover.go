package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
	"AtendeBot/internal/service/control"
)

// Takeover puts a session under agent control.
func Takeover(log *slog.Logger, handler Control) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessionID := chi.URLParam(r, "sessionID")
		if err := handler.Assume(r.Context(), sessionID); err != nil {
			controlError(w, r, logger, err, "Failed to assume session")
			return
		}

		render.JSON(w, r, response.OK())
	}
}

// Release returns a session to the automated pipeline.
func Release(log *slog.Logger, handler Control) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessionID := chi.URLParam(r, "sessionID")
		if err := handler.Release(r.Context(), sessionID); err != nil {
			controlError(w, r, logger, err, "Failed to release session")
			return
		}

		render.JSON(w, r, response.OK())
	}
}

type AgentMessageRequest struct {
	Message string `json:"message"`
}

// SendAsAgent delivers an agent reply into a session.
func SendAsAgent(log *slog.Logger, handler Control) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		sessionID := chi.URLParam(r, "sessionID")

		var req AgentMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("message is required"))
			return
		}

		if err := handler.SendAsAgent(r.Context(), sessionID, req.Message); err != nil {
			controlError(w, r, logger, err, "Failed to send message")
			return
		}

		render.JSON(w, r, response.OK())
	}
}

func controlError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, message string) {
	if errors.Is(err, control.ErrSessionNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Session not found"))
		return
	}
	logger.Error(message, sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error(message))
}
