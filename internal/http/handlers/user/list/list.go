// Package list implements the staff HTTP handler returning registered
// users. The password hash never leaves the server; the handler maps each
// user to a view before rendering.
package list

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

// View is the user shape exposed to staff.
type View struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	IsPremium     bool   `json:"is_premium"`
	Points        int    `json:"points"`
	ReferralCode  string `json:"referral_code"`
	ReferralCount int    `json:"referral_count"`
}

// Handler handles the staff user listing.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the user listing interface.
type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List users
// @Description Returns registered users with balances and referral stats. Requires the manage_users permission.
// @Tags Admin
// @Produce  json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]any "User list"
// @Failure 403 {object} response.ErrorResponse "Permission denied"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

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

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	views := make([]View, 0, len(users))
	for _, u := range users {
		views = append(views, View{
			UID:           u.UID,
			Email:         u.Email,
			Name:          u.Name,
			Role:          string(u.Role),
			Status:        string(u.Status),
			IsPremium:     u.IsPremium,
			Points:        u.Points,
			ReferralCode:  u.ReferralCode,
			ReferralCount: u.ReferralCount,
		})
	}

	log.Info("users listed", "count", len(views))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(views),
		"users":      views,
	}))
}
