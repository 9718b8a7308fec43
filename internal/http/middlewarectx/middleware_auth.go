// Package middlewarectx contains the HTTP middleware validating JWT tokens.
//
// JWTMiddleware checks the Authorization header, validates the token through
// the auth service and, on success, puts the user UID, email and role into
// the request context for the handlers downstream.
//
// On a failed check it responds with HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/muhammad-anas65/TaskCash/internal/http/response"
	"github.com/muhammad-anas65/TaskCash/internal/lib/jwt"
	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
)

// Key is the type of the request-context keys set by this package.
type Key string

const (
	// UserUID is the context key of the authenticated user UID.
	UserUID Key = "user_uid"
	// Email is the context key of the authenticated user email.
	Email Key = "email"
	// Role is the context key of the authenticated user role.
	Role Key = "role"
)

// Service describes the token-validation part of the auth service.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware returns an HTTP middleware validating the Bearer token
// of the Authorization header.
//
// When the token is valid the user UID, email and role are added to the
// request context, otherwise the request is rejected with 401.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
