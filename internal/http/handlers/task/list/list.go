// Package list implements the HTTP handler returning the task catalog.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// Handler handles task-catalog HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the catalog read interface.
type Service interface {
	List(ctx context.Context) ([]*models.Task, error)
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List available tasks
// @Description Returns all catalog tasks a user can complete for points.
// @Tags Tasks
// @Produce  json
// @Success 200 {object} map[string]any "Task list"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tasks, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list tasks", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list tasks"))
		return
	}

	log.Info("tasks listed", "count", len(tasks))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"task_count": len(tasks),
		"tasks":      tasks,
	}))
}
