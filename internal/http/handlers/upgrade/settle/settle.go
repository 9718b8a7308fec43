// Package settle implements the staff HTTP handler deciding an upgrade
// request. Approval flips the user's premium flag; the flag never flips
// back when a later request is declined.
package settle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/services/ledger"
)

// Request carries the settlement decision.
type Request struct {
	Decision string `json:"decision" validate:"required,oneof=approved declined"`
}

// Handler handles upgrade-settlement HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the upgrade-settlement part of the points ledger.
type Service interface {
	SettleUpgrade(ctx context.Context, id int64, decision models.RequestStatus) (*models.UpgradeRequest, error)
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
// @Summary Settle an upgrade request
// @Description Approves or declines a pending premium upgrade. Approval makes the user premium. Requires the manage_withdrawals permission.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "Upgrade request ID"
// @Param request body Request true "Settlement decision"
// @Success 200 {object} map[string]any "Request settled"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 404 {object} response.ErrorResponse "Request not found"
// @Failure 409 {object} response.ErrorResponse "Already settled"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/upgrades/{id}/settle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upgrade.settle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid upgrade id"))
		return
	}

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

	up, err := h.service.SettleUpgrade(r.Context(), id, models.RequestStatus(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			log.Warn("upgrade request not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("upgrade request not found"))
		case errors.Is(err, ledger.ErrAlreadySettled):
			log.Info("upgrade request already settled", slog.Int64("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("request already settled"))
		default:
			log.Error("failed to settle upgrade request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not settle upgrade request"))
		}
		return
	}

	log.Info("upgrade settled",
		slog.Int64("id", up.ID),
		slog.String("status", string(up.Status)))
	render.JSON(w, r, response.StatusOKWithData(up))
}
