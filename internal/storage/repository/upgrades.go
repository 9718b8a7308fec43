package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// CreateUpgrade inserts a pending premium-upgrade request and returns its ID.
func (s *Storage) CreateUpgrade(ctx context.Context, r models.UpgradeRequest) (int64, error) {
	const op = "storage.CreateUpgrade"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO upgrade_requests (user_uid, user_name, plan_id, plan_name,
			      price_pkr, date, status, receipt_url)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		r.UserUID, r.UserName, r.PlanID, r.PlanName, r.PricePKR, r.Date,
		r.Status, r.ReceiptURL).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUpgrade returns the upgrade request with the given ID.
func (s *Storage) GetUpgrade(ctx context.Context, id int64) (*models.UpgradeRequest, error) {
	const op = "storage.GetUpgrade"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, user_name, plan_id, plan_name, price_pkr, date,
			      status, receipt_url
			  FROM upgrade_requests WHERE id = $1`
	r := &models.UpgradeRequest{}
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.UserUID, &r.UserName, &r.PlanID, &r.PlanName, &r.PricePKR,
		&r.Date, &r.Status, &r.ReceiptURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// SettleUpgrade stamps a terminal status on a pending request. Affects zero
// rows when the request is already terminal.
func (s *Storage) SettleUpgrade(ctx context.Context, id int64, status models.RequestStatus) (int64, error) {
	const op = "storage.SettleUpgrade"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE upgrade_requests
			  SET status = $1
			  WHERE id = $2 AND status = 'pending'`
	result, err := s.q(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListUpgradesByUser returns the user's upgrade requests, newest first.
func (s *Storage) ListUpgradesByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.UpgradeRequest, error) {
	const op = "storage.ListUpgradesByUser"
	return s.listUpgrades(ctx, op,
		`SELECT id, user_uid, user_name, plan_id, plan_name, price_pkr, date, status, receipt_url
		 FROM upgrade_requests WHERE user_uid = $1
		 ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`,
		userUID, limit, offset)
}

// ListAllUpgrades returns every upgrade request, newest first.
func (s *Storage) ListAllUpgrades(ctx context.Context, limit, offset int) ([]*models.UpgradeRequest, error) {
	const op = "storage.ListAllUpgrades"
	return s.listUpgrades(ctx, op,
		`SELECT id, user_uid, user_name, plan_id, plan_name, price_pkr, date, status, receipt_url
		 FROM upgrade_requests
		 ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (s *Storage) listUpgrades(ctx context.Context, op, query string, args ...any) ([]*models.UpgradeRequest, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.UpgradeRequest
	for rows.Next() {
		var r models.UpgradeRequest
		if err = rows.Scan(&r.ID, &r.UserUID, &r.UserName, &r.PlanID, &r.PlanName,
			&r.PricePKR, &r.Date, &r.Status, &r.ReceiptURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
