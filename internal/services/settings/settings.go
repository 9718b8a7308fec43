// Package settings serves the admin-tunable economy parameters. Reads go
// through a short-lived cache; updates are serialized behind a single writer
// so concurrent admins cannot interleave partial writes.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// ErrInvalidBounds is returned when an update carries min >= max.
var ErrInvalidBounds = fmt.Errorf("minimum withdrawal must be below maximum")

// Repository describes the storage methods for the settings row.
type Repository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, st models.Settings) error
}

// Cache describes the read cache for settings.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

const cacheKey = "settings:economy"

// Service loads and updates the economy settings.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger

	mu sync.Mutex // serializes writers
}

// NewService creates the settings service.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Current returns the current economy parameters, cache first.
func (s *Service) Current(ctx context.Context) (models.Settings, error) {
	const op = "settings.Current"

	var cached models.Settings
	found, err := s.cache.Get(cacheKey, &cached)
	if err == nil && found {
		return cached, nil
	}
	if err != nil {
		s.log.Warn("settings cache read failed", slog.Any("err", err))
	}

	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(cacheKey, st, time.Minute); err != nil {
		s.log.Warn("failed to cache settings", slog.Any("err", err))
	}
	return *st, nil
}

// Update validates and overwrites the settings row, last-write-wins, and
// drops the cache entry so the next read sees the new values.
func (s *Service) Update(ctx context.Context, req models.DummySettings) (models.Settings, error) {
	const op = "settings.Update"

	if req.MinWithdrawalPKR >= req.MaxWithdrawalPKR {
		return models.Settings{}, ErrInvalidBounds
	}

	st := models.Settings{
		PKRPer1000Points:  req.PKRPer1000Points,
		MinWithdrawalPKR:  req.MinWithdrawalPKR,
		MaxWithdrawalPKR:  req.MaxWithdrawalPKR,
		DailyTaskLimit:    req.DailyTaskLimit,
		PointsPerReferral: req.PointsPerReferral,
		ReferralsNeeded:   req.ReferralsNeeded,
		BonusPoints:       req.BonusPoints,
		EasypaisaAccount:  req.EasypaisaAccount,
		JazzCashAccount:   req.JazzCashAccount,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.UpdateSettings(ctx, st); err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate settings cache", slog.Any("err", err))
	}

	s.log.Info("economy settings updated")
	return st, nil
}
