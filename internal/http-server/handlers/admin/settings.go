package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
)

var secretSettings = map[string]bool{
	entity.SettingGeminiAPIKey: true,
	entity.SettingGroqAPIKey:   true,
}

const maskPrefix = "********"

// maskSecret hides all but the last four characters of a secret value.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return maskPrefix
	}
	return maskPrefix + value[len(value)-4:]
}

// ListSettings returns runtime settings with secret values masked.
func ListSettings(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		settings, err := handler.ListSettings(r.Context())
		if err != nil {
			logger.Error("failed to list settings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list settings"))
			return
		}

		out := make([]entity.AppSetting, 0, len(settings))
		for _, s := range settings {
			if secretSettings[s.Key] {
				s.Value = maskSecret(s.Value)
			}
			out = append(out, s)
		}

		render.JSON(w, r, out)
	}
}

type SettingsRequest map[string]string

// UpdateSettings upserts runtime settings. Masked placeholder values are
// skipped so a dashboard round-trip cannot overwrite a stored secret with
// its own mask.
func UpdateSettings(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		for key, value := range req {
			if secretSettings[key] && strings.HasPrefix(value, maskPrefix) {
				continue
			}
			if err := handler.SetSetting(r.Context(), key, value); err != nil {
				logger.Error("failed to store setting", sl.Err(err), slog.String("key", key))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to store settings"))
				return
			}
			logger.Info("setting updated", slog.String("key", key))
		}

		render.JSON(w, r, response.OK())
	}
}
