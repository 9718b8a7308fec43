package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// CreateTask inserts a catalog entry and returns its ID.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) (int64, error) {
	const op = "storage.CreateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tasks (title, category, points, duration_seconds, url)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		task.Title, task.Category, task.Points, task.DurationSeconds, task.URL).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateTask rewrites a catalog entry and returns the number of updated rows.
func (s *Storage) UpdateTask(ctx context.Context, task models.Task) (int64, error) {
	const op = "storage.UpdateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tasks
			  SET title = $1, category = $2, points = $3, duration_seconds = $4, url = $5
			  WHERE id = $6`
	result, err := s.q(ctx).ExecContext(ctx, query,
		task.Title, task.Category, task.Points, task.DurationSeconds, task.URL, task.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// RemoveTask deletes a catalog entry and returns the number of deleted rows.
func (s *Storage) RemoveTask(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tasks WHERE id = $1`
	result, err := s.q(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// GetTask returns the catalog entry with the given ID.
func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	const op = "storage.GetTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, category, points, duration_seconds, url
			  FROM tasks WHERE id = $1`
	t := &models.Task{}
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Category, &t.Points, &t.DurationSeconds, &t.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTasks returns the whole catalog ordered by id.
func (s *Storage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const op = "storage.ListTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, category, points, duration_seconds, url
			  FROM tasks ORDER BY id`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Task
	for rows.Next() {
		var t models.Task
		if err = rows.Scan(&t.ID, &t.Title, &t.Category, &t.Points, &t.DurationSeconds, &t.URL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
