// Package complete implements the HTTP handler crediting a task completion.
//
// The user UID comes from the JWT context; the task id from the URL. The
// ledger enforces the daily quota and the once-per-day rule server-side, so
// a client replaying the request gains nothing.
package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/middlewarectx"
	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/services/ledger"
)

// Handler handles task-completion HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the crediting part of the points ledger.
type Service interface {
	CreditTask(ctx context.Context, userUID string, taskID int64) (*ledger.CreditResult, error)
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Complete a task
// @Description Credits the task's points to the current user, doubled for premium members. Counts against the daily quota.
// @Tags Tasks
// @Produce  json
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]any "Points credited"
// @Failure 400 {object} response.ErrorResponse "Invalid task id"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Task not found"
// @Failure 409 {object} response.ErrorResponse "Quota reached or task already completed today"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /tasks/{id}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.complete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	idStr := chi.URLParam(r, "id")
	taskID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid task id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.CreditTask(r.Context(), userUID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			log.Warn("task not found", slog.Int64("task_id", taskID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("task not found"))
		case errors.Is(err, ledger.ErrQuotaExceeded):
			log.Info("daily task limit reached", slog.String("uid", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("daily task limit reached"))
		case errors.Is(err, ledger.ErrTaskAlreadyCompleted):
			log.Info("task already completed today", slog.Int64("task_id", taskID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("task already completed today"))
		default:
			log.Error("failed to credit task", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not credit task"))
		}
		return
	}

	log.Info("task credited",
		slog.Int64("task_id", res.TaskID),
		slog.Int("points", res.PointsCredited))
	render.JSON(w, r, response.StatusOKWithData(res))
}
