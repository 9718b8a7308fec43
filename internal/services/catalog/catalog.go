// Package catalog maintains the task catalog users earn from. Users read
// it; staff with manage_tasks maintain it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("task not found")

// Repository describes the storage methods for the catalog.
type Repository interface {
	CreateTask(ctx context.Context, task models.Task) (int64, error)
	UpdateTask(ctx context.Context, task models.Task) (int64, error)
	RemoveTask(ctx context.Context, id int64) (int64, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
}

// Service implements catalog maintenance.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates the catalog service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create validates and inserts a catalog entry, returning its ID.
func (s *Service) Create(ctx context.Context, req models.DummyTask) (int64, error) {
	const op = "catalog.Create"

	task := models.Task{
		Title:           req.Title,
		Category:        models.TaskCategory(req.Category),
		Points:          req.Points,
		DurationSeconds: req.DurationSeconds,
		URL:             req.URL,
	}
	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("task created", slog.Int64("id", id), slog.String("title", task.Title))
	return id, nil
}

// Update rewrites an existing catalog entry.
func (s *Service) Update(ctx context.Context, id int64, req models.DummyTask) error {
	const op = "catalog.Update"

	task := models.Task{
		ID:              id,
		Title:           req.Title,
		Category:        models.TaskCategory(req.Category),
		Points:          req.Points,
		DurationSeconds: req.DurationSeconds,
		URL:             req.URL,
	}
	affected, err := s.repo.UpdateTask(ctx, task)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.log.Info("task updated", slog.Int64("id", id), slog.String("title", task.Title))
	return nil
}

// Remove deletes a catalog entry.
func (s *Service) Remove(ctx context.Context, id int64) error {
	const op = "catalog.Remove"

	affected, err := s.repo.RemoveTask(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.log.Info("task removed", slog.Int64("id", id))
	return nil
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]*models.Task, error) {
	const op = "catalog.List"

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoRow) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}
