// Package spin implements the HTTP handler for the prize wheel.
//
// The draw and the credit happen server-side in one call; the cooldown is
// kept in Redis so clearing browser state does not grant extra spins.
package spin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/middlewarectx"
	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/services/ledger"
)

// Handler handles prize-wheel HTTP requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the wheel part of the points ledger.
type Service interface {
	Spin(ctx context.Context, userUID string) (*ledger.SpinResult, error)
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Spin the prize wheel
// @Description Draws a random wheel segment and credits its points immediately. One spin per cooldown window.
// @Tags Wheel
// @Produce  json
// @Success 200 {object} map[string]any "Spin result"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 429 {object} response.ErrorResponse "Cooldown active"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /wheel/spin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wheel.spin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Spin(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrCooldownActive):
			log.Info("spin cooldown active", slog.String("uid", userUID))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("spin cooldown active"))
		case errors.Is(err, ledger.ErrNotFound):
			log.Warn("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to spin", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not spin"))
		}
		return
	}

	log.Info("wheel spun",
		slog.String("uid", userUID),
		slog.Int("points", res.Segment.Value))
	render.JSON(w, r, response.StatusOKWithData(res))
}
