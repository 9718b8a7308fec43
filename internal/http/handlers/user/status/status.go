// Package status implements the staff HTTP handler suspending or
// reactivating a user account. A suspended account is blocked at login.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

// Request carries the target account state.
type Request struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// Handler handles account-status HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the account-status write interface.
type Service interface {
	UpdateStatus(ctx context.Context, userUID string, status models.UserStatus) error
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Set a user's account status
// @Description Suspends or reactivates an account. A suspended account cannot log in. Requires the manage_users permission.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "User UID"
// @Param request body Request true "Target account state"
// @Success 200 {object} map[string]any "Status updated"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/users/{uid}/status [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")
	if userUID == "" {
		log.Error("missing user uid")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user uid"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("status", req.Status))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.UpdateStatus(r.Context(), userUID, models.UserStatus(req.Status)); err != nil {
		if errors.Is(err, repository.ErrNoRow) {
			log.Warn("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update status"))
		return
	}

	log.Info("status updated",
		slog.String("uid", userUID),
		slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":    userUID,
		"status": req.Status,
	}))
}
