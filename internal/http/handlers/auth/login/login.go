// Package login implements the HTTP handler for user authentication.
//
// It decodes the credentials, validates them and delegates the login to the
// auth service. On success the response carries a signed JWT and a profile
// summary; suspended accounts and bad credentials produce distinct statuses.
package login

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
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/services/auth"
)

// Request carries the login credentials.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Handler handles authentication HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the login part of the auth business logic.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (string, *models.User, error)
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
// @Summary Authenticate a user
// @Description Verifies email and password and returns a bearer token with a profile summary.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "User credentials"
// @Success 200 {object} map[string]any "Login successful"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 403 {object} response.ErrorResponse "Account suspended"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Warn("invalid credentials", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
		case errors.Is(err, auth.ErrAccountSuspended):
			log.Warn("suspended account login attempt", slog.String("email", req.Email))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("account suspended"))
		default:
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not log in"))
		}
		return
	}

	log.Info("login success", slog.String("uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token":         token,
		"uid":           user.UID,
		"email":         user.Email,
		"name":          user.Name,
		"role":          string(user.Role),
		"points":        user.Points,
		"is_premium":    user.IsPremium,
		"referral_code": user.ReferralCode,
	}))
}
