// Package forgot implements the HTTP handler starting a password reset.
//
// The response is uniform whether or not the email is registered, so the
// endpoint cannot be used to probe for accounts.
package forgot

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
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

// Request carries the email a reset link should be sent to.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Handler handles password-reset-request HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the reset-initiation part of the auth business logic.
type Service interface {
	ForgotPassword(ctx context.Context, email string) error
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
// @Summary Request a password reset
// @Description Issues a single-use reset token and queues the reset email. Always answers OK so account existence is not leaked.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Account email"
// @Success 200 {object} map[string]any "Reset initiated"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /password/forgot [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgot"

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

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		// An unknown email gets the same answer as a known one.
		if !errors.Is(err, repository.ErrNoRow) {
			log.Error("failed to start password reset", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start password reset"))
			return
		}
		log.Info("reset requested for unknown email")
	}

	log.Info("password reset initiated")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "if the email is registered, a reset link has been sent",
	}))
}
