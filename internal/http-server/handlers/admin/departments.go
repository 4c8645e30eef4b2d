package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
)

var validate = validator.New()

type DepartmentRequest struct {
	Name         string `json:"name" validate:"required"`
	Icon         string `json:"icon"`
	Type         string `json:"type" validate:"required,oneof=ai human hybrid"`
	Phone        string `json:"phone"`
	Prompt       string `json:"prompt"`
	DisplayOrder int    `json:"display_order"`
}

func (req *DepartmentRequest) toEntity() *entity.Department {
	return &entity.Department{
		Name:         req.Name,
		Icon:         req.Icon,
		Type:         req.Type,
		Phone:        req.Phone,
		Prompt:       req.Prompt,
		DisplayOrder: req.DisplayOrder,
	}
}

func decodeDepartment(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*DepartmentRequest, bool) {
	var req DepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid request body"))
		return nil, false
	}
	if err := validate.Struct(&req); err != nil {
		logger.Warn("invalid department payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid department payload"))
		return nil, false
	}
	return &req, true
}

// ListDepartments returns all routing destinations.
func ListDepartments(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		depts, err := handler.ListDepartments(r.Context())
		if err != nil {
			logger.Error("failed to list departments", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list departments"))
			return
		}
		if depts == nil {
			depts = []entity.Department{}
		}

		render.JSON(w, r, depts)
	}
}

// CreateDepartment adds a routing destination.
func CreateDepartment(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		req, ok := decodeDepartment(w, r, logger)
		if !ok {
			return
		}

		dept := req.toEntity()
		if err := handler.CreateDepartment(r.Context(), dept); err != nil {
			logger.Error("failed to create department", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create department"))
			return
		}

		logger.Info("department created", slog.String("name", dept.Name))
		render.JSON(w, r, dept)
	}
}

// UpdateDepartment replaces a routing destination by id.
func UpdateDepartment(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		id := chi.URLParam(r, "id")
		req, ok := decodeDepartment(w, r, logger)
		if !ok {
			return
		}

		if err := handler.UpdateDepartment(r.Context(), id, req.toEntity()); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Department not found"))
				return
			}
			logger.Error("failed to update department", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to update department"))
			return
		}

		render.JSON(w, r, response.OK())
	}
}

// DeleteDepartment removes a routing destination by id.
func DeleteDepartment(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		id := chi.URLParam(r, "id")
		if err := handler.DeleteDepartment(r.Context(), id); err != nil {
			logger.Error("failed to delete department", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to delete department"))
			return
		}

		render.JSON(w, r, response.OK())
	}
}
