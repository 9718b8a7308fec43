package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// CreateWithdrawal inserts a pending payout request and returns its ID.
func (s *Storage) CreateWithdrawal(ctx context.Context, w models.Withdrawal) (int64, error) {
	const op = "storage.CreateWithdrawal"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO withdrawals (user_uid, user_name, amount_pkr, points, method,
			      status, date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		w.UserUID, w.UserName, w.AmountPKR, w.Points, w.Method, w.Status, w.Date).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetWithdrawal returns the payout request with the given ID.
func (s *Storage) GetWithdrawal(ctx context.Context, id int64) (*models.Withdrawal, error) {
	const op = "storage.GetWithdrawal"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, user_name, amount_pkr, points, method, status, date,
			      COALESCE(receipt_url, ''), COALESCE(decline_reason, '')
			  FROM withdrawals WHERE id = $1`
	w := &models.Withdrawal{}
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.UserUID, &w.UserName, &w.AmountPKR, &w.Points, &w.Method,
		&w.Status, &w.Date, &w.ReceiptURL, &w.DeclineReason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// SettleWithdrawal stamps a terminal status on a pending request. The status
// guard in the WHERE clause makes the settle idempotent under retries: a
// second settle affects zero rows.
func (s *Storage) SettleWithdrawal(ctx context.Context, id int64, status models.RequestStatus, receiptURL, declineReason string) (int64, error) {
	const op = "storage.SettleWithdrawal"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE withdrawals
			  SET status = $1,
			      receipt_url = NULLIF($2, ''),
			      decline_reason = NULLIF($3, '')
			  WHERE id = $4 AND status = 'pending'`
	result, err := s.q(ctx).ExecContext(ctx, query, status, receiptURL, declineReason, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListWithdrawalsByUser returns the user's payout requests, newest first.
func (s *Storage) ListWithdrawalsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Withdrawal, error) {
	const op = "storage.ListWithdrawalsByUser"
	return s.listWithdrawals(ctx, op,
		`SELECT id, user_uid, user_name, amount_pkr, points, method, status, date,
		     COALESCE(receipt_url, ''), COALESCE(decline_reason, '')
		 FROM withdrawals WHERE user_uid = $1
		 ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`,
		userUID, limit, offset)
}

// ListAllWithdrawals returns every payout request, newest first.
func (s *Storage) ListAllWithdrawals(ctx context.Context, limit, offset int) ([]*models.Withdrawal, error) {
	const op = "storage.ListAllWithdrawals"
	return s.listWithdrawals(ctx, op,
		`SELECT id, user_uid, user_name, amount_pkr, points, method, status, date,
		     COALESCE(receipt_url, ''), COALESCE(decline_reason, '')
		 FROM withdrawals
		 ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (s *Storage) listWithdrawals(ctx context.Context, op, query string, args ...any) ([]*models.Withdrawal, error) {
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
	var result []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err = rows.Scan(&w.ID, &w.UserUID, &w.UserName, &w.AmountPKR, &w.Points,
			&w.Method, &w.Status, &w.Date, &w.ReceiptURL, &w.DeclineReason); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
