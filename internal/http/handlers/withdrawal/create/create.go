// Package create implements the HTTP handler filing a withdrawal request.
//
// The point cost is computed at the configured rate and debited immediately,
// so a pending request cannot be double-spent. The payout profile must be
// complete before a request is accepted.
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

// Handler handles withdrawal-request HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the withdrawal part of the points ledger.
type Service interface {
	RequestWithdrawal(ctx context.Context, userUID string, amountPKR int, method models.PaymentMethod) (*models.Withdrawal, error)
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
// @Summary Request a withdrawal
// @Description Files a cash-out request and debits the point cost up front. The amount must fall inside the configured PKR bounds.
// @Tags Withdrawals
// @Accept  json
// @Produce  json
// @Param request body models.DummyWithdrawal true "Payout request"
// @Success 200 {object} map[string]any "Request filed"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON, amount out of range or profile incomplete"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 409 {object} response.ErrorResponse "Insufficient balance"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /withdrawals [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.withdrawal.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWithdrawal
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

	wd, err := h.service.RequestWithdrawal(r.Context(), userUID, req.AmountPKR, models.PaymentMethod(req.Method))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAmountOutOfRange):
			log.Info("amount outside withdrawal limits", slog.Int("amount_pkr", req.AmountPKR))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("amount outside withdrawal limits"))
		case errors.Is(err, ledger.ErrProfileIncomplete):
			log.Info("payment profile incomplete", slog.String("uid", userUID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment profile incomplete"))
		case errors.Is(err, ledger.ErrInsufficientBalance):
			log.Info("insufficient point balance", slog.String("uid", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("insufficient point balance"))
		default:
			log.Error("failed to create withdrawal", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create withdrawal"))
		}
		return
	}

	log.Info("withdrawal requested",
		slog.Int64("id", wd.ID),
		slog.Int("points", wd.Points))
	render.JSON(w, r, response.StatusOKWithData(wd))
}
