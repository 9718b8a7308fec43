package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// ErrNoRow is returned when a lookup matches no record.
var ErrNoRow = errors.New("no row found")

const userColumns = `uid, email, name, password_hash, role, status, is_premium, points,
	referral_code, referral_count, referrals_today_date, referrals_today_count,
	tasks_completed_today, last_task_completion_date, completed_task_ids_today,
	payment_full_name, mobile_number, payment_method, payment_details`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		referralsTodayDate sql.NullTime
		lastCompletionDate sql.NullTime
		completedIDs       []byte
		fullName           sql.NullString
		mobile             sql.NullString
		method             sql.NullString
		details            sql.NullString
	)
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Status,
		&u.IsPremium, &u.Points, &u.ReferralCode, &u.ReferralCount,
		&referralsTodayDate, &u.ReferralsTodayCount,
		&u.TasksCompletedToday, &lastCompletionDate, &completedIDs,
		&fullName, &mobile, &method, &details); err != nil {
		return nil, err
	}
	if referralsTodayDate.Valid {
		u.ReferralsTodayDate = &referralsTodayDate.Time
	}
	if lastCompletionDate.Valid {
		u.LastTaskCompletionDate = &lastCompletionDate.Time
	}
	if len(completedIDs) > 0 {
		if err := json.Unmarshal(completedIDs, &u.CompletedTaskIDsToday); err != nil {
			return nil, err
		}
	}
	u.PaymentFullName = fullName.String
	u.MobileNumber = mobile.String
	u.PaymentMethod = models.PaymentMethod(method.String)
	u.PaymentDetails = details.String
	return u, nil
}

// RegisterUser saves a new user and returns the generated UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, name, password_hash, role, status, is_premium,
			      points, referral_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.q(ctx).QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role, user.Status,
		user.IsPremium, user.Points, user.ReferralCode).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser returns the user with the given UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.q(ctx).QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.q(ctx).QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByReferralCode returns the user owning the referral code,
// matched case-insensitively.
func (s *Storage) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	const op = "storage.GetUserByReferralCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(referral_code) = LOWER($1)`
	u, err := scanUser(s.q(ctx).QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers returns users with pagination, newest first.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.q(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePoints adds delta (positive or negative) to the balance and returns
// the new value. The WHERE clause refuses any update that would drive the
// balance negative; callers distinguish that case from a missing user by
// loading the row first.
func (s *Storage) UpdatePoints(ctx context.Context, userUID string, delta int) (int, error) {
	const op = "storage.UpdatePoints"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET points = points + $1
			  WHERE uid = $2 AND points + $1 >= 0
			  RETURNING points`
	var balance int
	err := s.q(ctx).QueryRowContext(ctx, query, delta, userUID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// UpdateTaskProgress overwrites the user's daily task counters.
func (s *Storage) UpdateTaskProgress(ctx context.Context, userUID string, completedToday int, date time.Time, taskIDs []int64) error {
	const op = "storage.UpdateTaskProgress"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	ids, err := json.Marshal(taskIDs)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE users
			  SET tasks_completed_today = $1,
			      last_task_completion_date = $2,
			      completed_task_ids_today = $3
			  WHERE uid = $4`
	if _, err := s.q(ctx).ExecContext(ctx, query, completedToday, date, ids, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateReferralProgress overwrites the referral counters.
func (s *Storage) UpdateReferralProgress(ctx context.Context, userUID string, total int, todayDate time.Time, todayCount int) error {
	const op = "storage.UpdateReferralProgress"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET referral_count = $1,
			      referrals_today_date = $2,
			      referrals_today_count = $3
			  WHERE uid = $4`
	if _, err := s.q(ctx).ExecContext(ctx, query, total, todayDate, todayCount, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetPremium flips the premium flag on. The transition is one-way.
func (s *Storage) SetPremium(ctx context.Context, userUID string) error {
	const op = "storage.SetPremium"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET is_premium = TRUE WHERE uid = $1`
	if _, err := s.q(ctx).ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePassword replaces the password hash for the given email.
func (s *Storage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE email = $2`
	res, err := s.q(ctx).ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	return nil
}

// UpdatePaymentProfile stores the payout identity of the user.
func (s *Storage) UpdatePaymentProfile(ctx context.Context, userUID, fullName, mobile string, method models.PaymentMethod, details string) error {
	const op = "storage.UpdatePaymentProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET payment_full_name = $1,
			      mobile_number = $2,
			      payment_method = $3,
			      payment_details = $4
			  WHERE uid = $5`
	if _, err := s.q(ctx).ExecContext(ctx, query, fullName, mobile, method, details, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateStatus sets the account status (active or suspended).
func (s *Storage) UpdateStatus(ctx context.Context, userUID string, status models.UserStatus) error {
	const op = "storage.UpdateStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET status = $1 WHERE uid = $2`
	res, err := s.q(ctx).ExecContext(ctx, query, status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	return nil
}
