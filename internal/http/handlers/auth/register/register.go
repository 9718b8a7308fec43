// Package register implements the HTTP handler for account signup.
//
// It decodes the JSON body, validates the fields and delegates account
// creation to the auth service. A referral code, when present, is credited
// asynchronously to the referrer; the response carries the new user UID.
package register

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

// Request carries the signup fields.
type Request struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required,min=2,max=80"`
	Password     string `json:"password" validate:"required,min=6"`
	ReferralCode string `json:"referral_code,omitempty" validate:"omitempty,min=3,max=20"`
}

// Handler handles account-signup HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the signup part of the auth business logic.
type Service interface {
	Register(ctx context.Context, email, name, rawPassword, referralCode string) (string, error)
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
// @Summary Register a new account
// @Description Creates a user account, grants the welcome bonus and credits the referrer when a referral code is supplied.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Signup data"
// @Success 200 {object} map[string]any "Account created"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 409 {object} response.ErrorResponse "Email already registered"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	uid, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password, req.ReferralCode)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateAccount) {
			log.Warn("email already registered", slog.String("email", req.Email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email already registered"))
			return
		}
		log.Error("failed to register user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user"))
		return
	}

	log.Info("user registered", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": uid,
	}))
}
