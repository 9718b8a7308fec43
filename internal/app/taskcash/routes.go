package taskcash

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/muhammad-anas65/TaskCash/internal/http/handlers/auth/forgot"
	"github.com/muhammad-anas65/TaskCash/internal/http/handlers/auth/login"
	"github.com/muhammad-anas65/TaskCash/internal/http/handlers/auth/register"
	"github.com/muhammad-anas65/TaskCash/internal/http/handlers/auth/reset"
	planlist "github.com/muhammad-anas65/TaskCash/internal/http/handlers/plans/list"
	profileupdate "github.com/muhammad-anas65/TaskCash/internal/http/handlers/profile/update"
	settingsread "github.com/muhammad-anas65/TaskCash/internal/http/handlers/settings/read"
	settingsupdate "github.com/muhammad-anas65/TaskCash/internal/http/handlers/settings/update"
	taskcomplete "github.com/muhammad-anas65/TaskCash/internal/http/handlers/task/complete"
	taskcreate "github.com/muhammad-anas65/TaskCash/internal/http/handlers/task/create"
	tasklist "github.com/muhammad-anas65/TaskCash/internal/http/handlers/task/list"
	taskremove "github.com/muhammad-anas65/TaskCash/internal/http/handlers/task/remove"
	taskupdate "github.com/muhammad-anas65/TaskCash/internal/http/handlers/task/update"
	upgradecreate "github.com/muhammad-anas65/TaskCash/internal/http/handlers/upgrade/create"
	upgradelistall "github.com/muhammad-anas65/TaskCash/internal/http/handlers/upgrade/listall"
	upgradesettle "github.com/muhammad-anas65/TaskCash/internal/http/handlers/upgrade/settle"
	useradjust "github.com/muhammad-anas65/TaskCash/internal/http/handlers/user/adjust"
	userlist "github.com/muhammad-anas65/TaskCash/internal/http/handlers/user/list"
	userstatus "github.com/muhammad-anas65/TaskCash/internal/http/handlers/user/status"
	wheelspin "github.com/muhammad-anas65/TaskCash/internal/http/handlers/wheel/spin"
	withdrawalcreate "github.com/muhammad-anas65/TaskCash/internal/http/handlers/withdrawal/create"
	withdrawallist "github.com/muhammad-anas65/TaskCash/internal/http/handlers/withdrawal/list"
	withdrawallistall "github.com/muhammad-anas65/TaskCash/internal/http/handlers/withdrawal/listall"
	withdrawalsettle "github.com/muhammad-anas65/TaskCash/internal/http/handlers/withdrawal/settle"
	"github.com/muhammad-anas65/TaskCash/internal/http/middlewarectx"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	authservice "github.com/muhammad-anas65/TaskCash/internal/services/auth"
	catalogservice "github.com/muhammad-anas65/TaskCash/internal/services/catalog"
	ledgerservice "github.com/muhammad-anas65/TaskCash/internal/services/ledger"
	settingsservice "github.com/muhammad-anas65/TaskCash/internal/services/settings"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

// RegisterRoutes registers every route of the API.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	ledgerService *ledgerservice.Ledger,
	catalogService *catalogservice.Service,
	settingsService *settingsservice.Service,
	db *repository.Storage,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Post("/password/forgot", forgot.New(logger, authService).ServeHTTP)
		r.Post("/password/reset", reset.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger).ServeHTTP)

		// Authenticated user endpoints
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/tasks", tasklist.New(logger, catalogService).ServeHTTP)
			r.Post("/tasks/{id}/complete", taskcomplete.New(logger, ledgerService).ServeHTTP)
			r.Post("/wheel/spin", wheelspin.New(logger, ledgerService).ServeHTTP)
			r.Post("/withdrawals", withdrawalcreate.New(logger, ledgerService).ServeHTTP)
			r.Get("/withdrawals", withdrawallist.New(logger, db).ServeHTTP)
			r.Post("/upgrades", upgradecreate.New(logger, ledgerService).ServeHTTP)
			r.Put("/profile/payment", profileupdate.New(logger, authService).ServeHTTP)
		})

		// Staff endpoints, gated by role permissions
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequirePermission(models.PermManageTasks, logger))
				r.Post("/tasks", taskcreate.New(logger, catalogService).ServeHTTP)
				r.Put("/tasks/{id}", taskupdate.New(logger, catalogService).ServeHTTP)
				r.Delete("/tasks/{id}", taskremove.New(logger, catalogService).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequirePermission(models.PermManageUsers, logger))
				r.Get("/users", userlist.New(logger, db).ServeHTTP)
				r.Post("/users/{uid}/points", useradjust.New(logger, ledgerService).ServeHTTP)
				r.Post("/users/{uid}/status", userstatus.New(logger, db).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequirePermission(models.PermManageWithdrawals, logger))
				r.Get("/withdrawals", withdrawallistall.New(logger, db).ServeHTTP)
				r.Post("/withdrawals/{id}/settle", withdrawalsettle.New(logger, ledgerService).ServeHTTP)
				r.Get("/upgrades", upgradelistall.New(logger, db).ServeHTTP)
				r.Post("/upgrades/{id}/settle", upgradesettle.New(logger, ledgerService).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequirePermission(models.PermManageSettings, logger))
				r.Get("/settings", settingsread.New(logger, settingsService).ServeHTTP)
				r.Put("/settings", settingsupdate.New(logger, settingsService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
