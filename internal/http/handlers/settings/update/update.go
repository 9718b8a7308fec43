// Package update implements the staff HTTP handler replacing the economy
// settings. Updates are last-write-wins; requests already priced under the
// old rate keep their frozen point cost.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/services/settings"
)

// Handler handles settings-update HTTP requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the settings write interface.
type Service interface {
	Update(ctx context.Context, req models.DummySettings) (models.Settings, error)
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
// @Summary Update economy settings
// @Description Replaces the conversion rate, withdrawal bounds and referral parameters. Requires the manage_settings permission.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummySettings true "New settings"
// @Success 200 {object} map[string]any "Settings updated"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or invalid bounds"
// @Failure 403 {object} response.ErrorResponse "Permission denied"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/settings [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySettings
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

	s, err := h.service.Update(r.Context(), req)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidBounds) {
			log.Info("invalid withdrawal bounds")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("min withdrawal must be below max"))
			return
		}
		log.Error("failed to update settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update settings"))
		return
	}

	log.Info("settings updated")
	render.JSON(w, r, response.StatusOKWithData(s))
}
