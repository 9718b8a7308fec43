// Package taskcash assembles the HTTP API service: storage, cache, message
// broker, business services and the router.
package taskcash

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/muhammad-anas65/TaskCash/internal/cache"
	"github.com/muhammad-anas65/TaskCash/internal/config"
	"github.com/muhammad-anas65/TaskCash/internal/lib/jwt"
	"github.com/muhammad-anas65/TaskCash/internal/migrations"
	"github.com/muhammad-anas65/TaskCash/internal/rabbitmq"
	authservice "github.com/muhammad-anas65/TaskCash/internal/services/auth"
	catalogservice "github.com/muhammad-anas65/TaskCash/internal/services/catalog"
	ledgerservice "github.com/muhammad-anas65/TaskCash/internal/services/ledger"
	settingsservice "github.com/muhammad-anas65/TaskCash/internal/services/settings"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
)

// App is the assembled HTTP API service.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

// New builds the service from the config: opens the database and runs
// migrations, connects redis and rabbitmq, wires the services and
// registers the routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.AddressRabbit, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	amqpCh, err := rabbitmq.SetupChannel(amqpConn, cfg.ResetQueue)
	if err != nil {
		amqpConn.Close()
		return nil, err
	}
	resetPublisher := rabbitmq.NewPublisher(amqpCh)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	settingsService := settingsservice.NewService(db, cacheRedis, logger)
	ledgerService := ledgerservice.NewLedger(db, settingsService, cacheRedis, logger, cfg.SpinCooldown)
	authService := authservice.NewService(db, ledgerService, cacheRedis, resetPublisher, jwtMaker, logger, cfg.ResetTokenTTL)
	catalogService := catalogservice.NewService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, ledgerService, catalogService, settingsService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and releases the connections.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.amqpCh.Close(); cerr != nil {
			a.logger.Error("failed to close amqp channel", slog.Any("err", cerr))
		}
		if cerr := a.amqpConn.Close(); cerr != nil {
			a.logger.Error("failed to close amqp connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
