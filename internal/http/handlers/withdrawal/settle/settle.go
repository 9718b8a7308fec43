// Package settle implements the staff HTTP handler deciding a withdrawal.
//
// An approval must carry the payment-receipt URL, a decline must carry a
// reason; a declined request refunds the frozen points. Settlement is
// idempotent: a second decision on the same request is rejected.
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
	Decision      string `json:"decision" validate:"required,oneof=approved declined"`
	ReceiptURL    string `json:"receipt_url,omitempty" validate:"omitempty,url"`
	DeclineReason string `json:"decline_reason,omitempty" validate:"omitempty,min=3"`
}

// Handler handles withdrawal-settlement HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the settlement part of the points ledger.
type Service interface {
	SettleWithdrawal(ctx context.Context, id int64, decision models.RequestStatus, receiptURL, declineReason string) (*models.Withdrawal, error)
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
// @Summary Settle a withdrawal
// @Description Approves or declines a pending withdrawal. A decline refunds the frozen points. Requires the manage_withdrawals permission.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "Withdrawal ID"
// @Param request body Request true "Settlement decision"
// @Success 200 {object} map[string]any "Request settled"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or missing receipt/reason"
// @Failure 404 {object} response.ErrorResponse "Request not found"
// @Failure 409 {object} response.ErrorResponse "Already settled"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/withdrawals/{id}/settle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.withdrawal.settle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid withdrawal id"))
		return
	}

	var req Request
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

	wd, err := h.service.SettleWithdrawal(r.Context(), id,
		models.RequestStatus(req.Decision), req.ReceiptURL, req.DeclineReason)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			log.Warn("withdrawal not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("withdrawal not found"))
		case errors.Is(err, ledger.ErrAlreadySettled):
			log.Info("withdrawal already settled", slog.Int64("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("request already settled"))
		case errors.Is(err, ledger.ErrMissingReceipt):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("approval requires a receipt url"))
		case errors.Is(err, ledger.ErrMissingReason):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("decline requires a reason"))
		default:
			log.Error("failed to settle withdrawal", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not settle withdrawal"))
		}
		return
	}

	log.Info("withdrawal settled",
		slog.Int64("id", wd.ID),
		slog.String("status", string(wd.Status)))
	render.JSON(w, r, response.StatusOKWithData(wd))
}
