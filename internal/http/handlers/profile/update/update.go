// Package update implements the HTTP handler saving the payout profile.
// A complete profile is a precondition for filing withdrawal requests.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/muhammad-anas65/TaskCash/internal/http/middlewarectx"
	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// Request carries the payout-profile fields.
type Request struct {
	FullName     string `json:"full_name" validate:"required,min=2,max=80"`
	MobileNumber string `json:"mobile_number" validate:"required,min=7,max=20"`
	Method       string `json:"method" validate:"required,oneof=PayPal Easypaisa JazzCash"`
	Details      string `json:"details" validate:"required,min=3,max=120"`
}

// Handler handles payout-profile HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the profile part of the auth business logic.
type Service interface {
	UpdatePaymentProfile(ctx context.Context, userUID, fullName, mobile string, method models.PaymentMethod, details string) error
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
// @Summary Update the payout profile
// @Description Saves the payout identity used for withdrawal settlements.
// @Tags Profile
// @Accept  json
// @Produce  json
// @Param request body Request true "Payout profile"
// @Success 200 {object} map[string]any "Profile saved"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /profile/payment [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

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
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.UpdatePaymentProfile(r.Context(), userUID,
		req.FullName, req.MobileNumber, models.PaymentMethod(req.Method), req.Details)
	if err != nil {
		log.Error("failed to update payment profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update payment profile"))
		return
	}

	log.Info("payment profile updated", slog.String("uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "payment profile updated",
	}))
}
