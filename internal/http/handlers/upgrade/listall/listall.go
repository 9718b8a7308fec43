// Package listall implements the staff HTTP handler returning every
// premium-upgrade request.
package listall

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// Handler handles the staff upgrade listing.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the system-wide upgrade listing.
type Service interface {
	ListAllUpgrades(ctx context.Context, limit, offset int) ([]*models.UpgradeRequest, error)
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List all upgrade requests
// @Description Returns every premium-upgrade request, newest first. Requires the manage_withdrawals permission.
// @Tags Admin
// @Produce  json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]any "Upgrade request list"
// @Failure 403 {object} response.ErrorResponse "Permission denied"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/upgrades [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upgrade.listall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.service.ListAllUpgrades(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list upgrade requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list upgrade requests"))
		return
	}

	log.Info("upgrade requests listed", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"upgrades":   res,
	}))
}
