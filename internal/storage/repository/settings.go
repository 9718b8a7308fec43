package repository

import (
	"context"
	"fmt"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// GetSettings returns the single economy settings row.
func (s *Storage) GetSettings(ctx context.Context) (*models.Settings, error) {
	const op = "storage.GetSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT pkr_per_1000_points, min_withdrawal_pkr, max_withdrawal_pkr,
			      daily_task_limit, points_per_referral, referrals_needed, bonus_points,
			      easypaisa_account, jazzcash_account
			  FROM settings WHERE id = 1`
	st := &models.Settings{}
	err := s.q(ctx).QueryRowContext(ctx, query).Scan(
		&st.PKRPer1000Points, &st.MinWithdrawalPKR, &st.MaxWithdrawalPKR,
		&st.DailyTaskLimit, &st.PointsPerReferral, &st.ReferralsNeeded,
		&st.BonusPoints, &st.EasypaisaAccount, &st.JazzCashAccount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// UpdateSettings overwrites the economy settings row, last-write-wins.
func (s *Storage) UpdateSettings(ctx context.Context, st models.Settings) error {
	const op = "storage.UpdateSettings"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE settings
			  SET pkr_per_1000_points = $1,
			      min_withdrawal_pkr = $2,
			      max_withdrawal_pkr = $3,
			      daily_task_limit = $4,
			      points_per_referral = $5,
			      referrals_needed = $6,
			      bonus_points = $7,
			      easypaisa_account = $8,
			      jazzcash_account = $9
			  WHERE id = 1`
	if _, err := s.q(ctx).ExecContext(ctx, query,
		st.PKRPer1000Points, st.MinWithdrawalPKR, st.MaxWithdrawalPKR,
		st.DailyTaskLimit, st.PointsPerReferral, st.ReferralsNeeded,
		st.BonusPoints, st.EasypaisaAccount, st.JazzCashAccount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
