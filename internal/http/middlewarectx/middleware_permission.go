package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// RequirePermission returns a middleware letting a request through only
// when the role set by JWTMiddleware grants the permission.
func RequirePermission(perm models.Permission, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleStr, ok := r.Context().Value(Role).(string)
			if !ok || roleStr == "" {
				log.Error("user role missing from context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if !models.Role(roleStr).HasPermission(perm) {
				log.Warn("permission denied",
					slog.String("role", roleStr),
					slog.String("permission", string(perm)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("permission denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
