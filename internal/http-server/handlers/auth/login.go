package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
	authservice "AtendeBot/internal/service/auth"
)

type Core interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges dashboard credentials for a bearer token.
func Login(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.auth"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		token, err := handler.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, authservice.ErrInvalidCredentials) {
				logger.Warn("login rejected", slog.String("username", req.Username))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Invalid username or password"))
				return
			}
			logger.Error("login failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Login failed"))
			return
		}

		var resp struct {
			Token string `json:"token"`
		}
		resp.Token = token

		render.JSON(w, r, resp)
	}
}
