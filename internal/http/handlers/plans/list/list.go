// Package list implements the HTTP handler returning the plan catalog.
// The catalog is static reference data, no service call is involved.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// Handler handles plan-catalog HTTP requests.
type Handler struct {
	log *slog.Logger
}

// New creates a Handler with the given logger.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary List subscription plans
// @Description Returns the account tiers with pricing and earning multipliers.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Plan list"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	log.Info("plans listed", "count", len(models.Plans))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans": models.Plans,
	}))
}
