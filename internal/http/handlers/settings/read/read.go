// Package read implements the staff HTTP handler returning the current
// economy settings.
package read

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

// Handler handles settings-read HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the settings read interface.
type Service interface {
	Current(ctx context.Context) (models.Settings, error)
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Read economy settings
// @Description Returns the current conversion rate, withdrawal bounds and referral parameters. Requires the manage_settings permission.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Current settings"
// @Failure 403 {object} response.ErrorResponse "Permission denied"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, err := h.service.Current(r.Context())
	if err != nil {
		log.Error("failed to read settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read settings"))
		return
	}

	log.Info("settings read")
	render.JSON(w, r, response.StatusOKWithData(s))
}
