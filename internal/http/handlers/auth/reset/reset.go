// Package reset implements the HTTP handler completing a password reset.
package reset

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/services/auth"
)

// Request carries the reset token and the replacement password.
type Request struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// Handler handles password-reset HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the reset-completion part of the auth business logic.
type Service interface {
	ResetPassword(ctx context.Context, email, token, newPassword string) error
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
// @Summary Complete a password reset
// @Description Consumes a single-use reset token and sets the new password. The token is invalid after one attempt or after expiry.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Token and new password"
// @Success 200 {object} map[string]any "Password updated"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or invalid token"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /password/reset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.reset"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidOrExpiredToken) {
			log.Warn("invalid or expired reset token")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired token"))
			return
		}
		log.Error("failed to reset password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reset password"))
		return
	}

	log.Info("password reset complete")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "password updated",
	}))
}
