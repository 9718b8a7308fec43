// Package create implements the HTTP handler filing a premium-upgrade
// request. Payment happens off-platform; the receipt URL is the evidence
// staff review before flipping the premium flag.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/muhammad-anas65/TaskCash/internal/http/middlewarectx"
	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/services/ledger"
)

// Handler handles upgrade-request HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the upgrade part of the points ledger.
type Service interface {
	RequestPremiumUpgrade(ctx context.Context, userUID, planID, receiptURL string) (*models.UpgradeRequest, error)
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
// @Summary Request a premium upgrade
// @Description Files an upgrade request with the off-platform payment receipt. The premium flag flips only when staff approve.
// @Tags Upgrades
// @Accept  json
// @Produce  json
// @Param request body models.DummyUpgrade true "Upgrade request"
// @Success 200 {object} map[string]any "Request filed"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or invalid plan"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /upgrades [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upgrade.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUpgrade
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

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

	up, err := h.service.RequestPremiumUpgrade(r.Context(), userUID, req.PlanID, req.ReceiptURL)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidPlan):
			log.Info("invalid plan", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid subscription plan"))
		case errors.Is(err, ledger.ErrReceiptRequired):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("receipt url required"))
		case errors.Is(err, ledger.ErrNotFound):
			log.Warn("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to create upgrade request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create upgrade request"))
		}
		return
	}

	log.Info("upgrade requested",
		slog.Int64("id", up.ID),
		slog.String("plan_id", up.PlanID))
	render.JSON(w, r, response.StatusOKWithData(up))
}
