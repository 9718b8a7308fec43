// Package adjust implements the staff HTTP handler granting or deducting
// points on a user account. A deduction never drives the balance below
// zero; the ledger rejects it instead.
package adjust

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
	"github.com/muhammad-anas65/TaskCash/internal/services/ledger"
)

// Request carries the signed point delta.
type Request struct {
	Delta int `json:"delta" validate:"required"`
}

// Handler handles point-adjustment HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the adjustment part of the points ledger.
type Service interface {
	AdjustPoints(ctx context.Context, userUID string, delta int) (int, error)
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
// @Summary Adjust a user's points
// @Description Applies a signed point delta to the user's balance. A delta that would go below zero is rejected. Requires the manage_users permission.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "User UID"
// @Param request body Request true "Signed point delta"
// @Success 200 {object} map[string]any "Balance adjusted"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 409 {object} response.ErrorResponse "Insufficient balance"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/users/{uid}/points [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.adjust"

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
	log.Info("request body decoded", slog.Int("delta", req.Delta))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	balance, err := h.service.AdjustPoints(r.Context(), userUID, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			log.Warn("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, ledger.ErrInsufficientBalance):
			log.Info("adjustment would drive balance negative", slog.String("uid", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("insufficient point balance"))
		default:
			log.Error("failed to adjust points", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not adjust points"))
		}
		return
	}

	log.Info("points adjusted",
		slog.String("uid", userUID),
		slog.Int("delta", req.Delta),
		slog.Int("new_balance", balance))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":         userUID,
		"new_balance": balance,
	}))
}
