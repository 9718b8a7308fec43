// Package ledger implements the points economy: task crediting, balance
// adjustments, withdrawal and upgrade settlement, referrals and the prize
// wheel. Every operation validates first and mutates second, and runs behind
// a per-user lock so the points >= 0 invariant survives concurrent calls.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/muhammad-anas65/TaskCash/internal/metrics"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

// Repository describes the storage methods the ledger relies on.
type Repository interface {
	WithUserLock(ctx context.Context, userUID string, fn func(ctx context.Context) error) error
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	UpdatePoints(ctx context.Context, userUID string, delta int) (int, error)
	UpdateTaskProgress(ctx context.Context, userUID string, completedToday int, date time.Time, taskIDs []int64) error
	UpdateReferralProgress(ctx context.Context, userUID string, total int, todayDate time.Time, todayCount int) error
	SetPremium(ctx context.Context, userUID string) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateWithdrawal(ctx context.Context, w models.Withdrawal) (int64, error)
	GetWithdrawal(ctx context.Context, id int64) (*models.Withdrawal, error)
	SettleWithdrawal(ctx context.Context, id int64, status models.RequestStatus, receiptURL, declineReason string) (int64, error)
	CreateUpgrade(ctx context.Context, r models.UpgradeRequest) (int64, error)
	GetUpgrade(ctx context.Context, id int64) (*models.UpgradeRequest, error)
	SettleUpgrade(ctx context.Context, id int64, status models.RequestStatus) (int64, error)
}

// SettingsProvider hands the ledger the current economy parameters. Every
// operation reads them fresh, so admin updates apply without a restart.
type SettingsProvider interface {
	Current(ctx context.Context) (models.Settings, error)
}

// CooldownStore is the server-authoritative store gating the prize wheel.
// SetNX claims the cooldown slot atomically; Invalidate releases it when
// the spin fails after the claim.
type CooldownStore interface {
	SetNX(key string, value any, expiration time.Duration) (bool, error)
	Invalidate(key string) error
}

// Segment is one slice of the prize wheel.
type Segment struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// wheelSegments is the fixed prize table. Every segment is equally likely;
// the draw is not weighted by payout.
var wheelSegments = []Segment{
	{Label: "50", Value: 50},
	{Label: "Try Again", Value: 0},
	{Label: "100", Value: 100},
	{Label: "20", Value: 20},
	{Label: "200", Value: 200},
	{Label: "Try Again", Value: 0},
	{Label: "75", Value: 75},
	{Label: "10", Value: 10},
}

// Ledger owns every mutation of user point balances.
type Ledger struct {
	repo         Repository
	settings     SettingsProvider
	cooldown     CooldownStore
	log          *slog.Logger
	spinCooldown time.Duration

	now func() time.Time // injectable clock for tests
	rng func(n int) int  // injectable segment draw for tests
}

// NewLedger creates the ledger service.
func NewLedger(repo Repository, settings SettingsProvider, cooldown CooldownStore, log *slog.Logger, spinCooldown time.Duration) *Ledger {
	return &Ledger{
		repo:         repo,
		settings:     settings,
		cooldown:     cooldown,
		log:          log,
		spinCooldown: spinCooldown,
		now:          time.Now,
		rng:          rand.Intn,
	}
}

// CreditResult reports a successful task completion.
type CreditResult struct {
	TaskID         int64 `json:"task_id"`
	PointsCredited int   `json:"points_credited"`
	NewBalance     int   `json:"new_balance"`
	CompletedToday int   `json:"completed_today"`
}

// today returns the current calendar day, UTC, day granularity.
func (l *Ledger) today() time.Time {
	return l.now().UTC().Truncate(24 * time.Hour)
}

func sameDay(a *time.Time, b time.Time) bool {
	if a == nil {
		return false
	}
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CreditTask credits a task completion against the user's daily quota.
// A new calendar day resets the counters; the same task id is credited at
// most once per day; premium users earn at twice the task's points.
func (l *Ledger) CreditTask(ctx context.Context, userUID string, taskID int64) (*CreditResult, error) {
	const op = "ledger.CreditTask"

	task, err := l.repo.GetTask(ctx, taskID)
	if errors.Is(err, repository.ErrNoRow) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := l.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result *CreditResult
	err = l.repo.WithUserLock(ctx, userUID, func(ctx context.Context) error {
		user, err := l.repo.GetUser(ctx, userUID)
		if errors.Is(err, repository.ErrNoRow) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		today := l.today()
		completed := 1
		ids := []int64{taskID}
		if sameDay(user.LastTaskCompletionDate, today) {
			for _, done := range user.CompletedTaskIDsToday {
				if done == taskID {
					return ErrTaskAlreadyCompleted
				}
			}
			if user.TasksCompletedToday >= cfg.DailyTaskLimit {
				return ErrQuotaExceeded
			}
			completed = user.TasksCompletedToday + 1
			ids = append(user.CompletedTaskIDsToday, taskID)
		}

		if err = l.repo.UpdateTaskProgress(ctx, userUID, completed, today, ids); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		credit := task.Points * user.EarningMultiplier()
		balance, err := l.repo.UpdatePoints(ctx, userUID, credit)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		result = &CreditResult{
			TaskID:         taskID,
			PointsCredited: credit,
			NewBalance:     balance,
			CompletedToday: completed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TaskCompletions.Inc()
	metrics.PointsCredited.WithLabelValues("task").Add(float64(result.PointsCredited))
	l.log.Info("task credited",
		slog.String("user_uid", userUID),
		slog.Int64("task_id", taskID),
		slog.Int("points", result.PointsCredited))
	return result, nil
}

// AdjustPoints adds delta (positive or negative) to the balance. The balance
// never goes below zero; an adjustment that would is rejected whole.
func (l *Ledger) AdjustPoints(ctx context.Context, userUID string, delta int) (int, error) {
	const op = "ledger.AdjustPoints"

	var balance int
	err := l.repo.WithUserLock(ctx, userUID, func(ctx context.Context) error {
		user, err := l.repo.GetUser(ctx, userUID)
		if errors.Is(err, repository.ErrNoRow) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if user.Points+delta < 0 {
			return ErrInsufficientBalance
		}

		balance, err = l.repo.UpdatePoints(ctx, userUID, delta)
		if errors.Is(err, repository.ErrNoRow) {
			// The lock makes this unreachable in practice; the CHECK
			// constraint remains the backstop.
			return ErrInsufficientBalance
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if delta >= 0 {
		metrics.PointsCredited.WithLabelValues("adjustment").Add(float64(delta))
	} else {
		metrics.PointsDebited.WithLabelValues("adjustment").Add(float64(-delta))
	}
	return balance, nil
}

// PointsNeeded converts a PKR amount to its point cost at the given rate,
// always rounding up, never in the user's favor.
func PointsNeeded(amountPKR, pkrPer1000Points int) int {
	return (amountPKR*1000 + pkrPer1000Points - 1) / pkrPer1000Points
}

// RequestWithdrawal validates and creates a pending payout request. Checks
// run in order and the first failure wins: amount bounds, profile
// completeness, balance. The point cost is debited immediately (pessimistic
// reservation) and frozen on the request.
func (l *Ledger) RequestWithdrawal(ctx context.Context, userUID string, amountPKR int, method models.PaymentMethod) (*models.Withdrawal, error) {
	const op = "ledger.RequestWithdrawal"

	cfg, err := l.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if amountPKR < cfg.MinWithdrawalPKR || amountPKR > cfg.MaxWithdrawalPKR {
		return nil, ErrAmountOutOfRange
	}

	var created *models.Withdrawal
	err = l.repo.WithUserLock(ctx, userUID, func(ctx context.Context) error {
		user, err := l.repo.GetUser(ctx, userUID)
		if errors.Is(err, repository.ErrNoRow) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !user.ProfileComplete() {
			return ErrProfileIncomplete
		}

		pointsNeeded := PointsNeeded(amountPKR, cfg.PKRPer1000Points)
		if user.Points < pointsNeeded {
			return ErrInsufficientBalance
		}

		if _, err = l.repo.UpdatePoints(ctx, userUID, -pointsNeeded); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		w := models.Withdrawal{
			UserUID:   userUID,
			UserName:  user.Name,
			AmountPKR: amountPKR,
			Points:    pointsNeeded,
			Method:    method,
			Status:    models.StatusPending,
			Date:      l.today(),
		}
		id, err := l.repo.CreateWithdrawal(ctx, w)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		w.ID = id
		created = &w
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PointsDebited.WithLabelValues("withdrawal").Add(float64(created.Points))
	l.log.Info("withdrawal requested",
		slog.String("user_uid", userUID),
		slog.Int64("id", created.ID),
		slog.Int("amount_pkr", created.AmountPKR),
		slog.Int("points", created.Points))
	return created, nil
}

// SettleWithdrawal stamps a terminal decision on a pending payout request.
// Approval requires a receipt URL, decline requires a reason and refunds the
// frozen point cost. Settling a terminal request fails with ErrAlreadySettled.
func (l *Ledger) SettleWithdrawal(ctx context.Context, id int64, decision models.RequestStatus, receiptURL, declineReason string) (*models.Withdrawal, error) {
	const op = "ledger.SettleWithdrawal"

	switch decision {
	case models.StatusApproved:
		if receiptURL == "" {
			return nil, ErrMissingReceipt
		}
	case models.StatusDeclined:
		if declineReason == "" {
			return nil, ErrMissingReason
		}
	default:
		return nil, fmt.Errorf("%s: unknown decision %q", op, decision)
	}

	req, err := l.repo.GetWithdrawal(ctx, id)
	if errors.Is(err, repository.ErrNoRow) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.Status.Terminal() {
		return nil, ErrAlreadySettled
	}

	// A request pointing at a vanished user is inconsistent data and must
	// not settle silently.
	if _, err = l.repo.GetUser(ctx, req.UserUID); err != nil {
		if errors.Is(err, repository.ErrNoRow) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = l.repo.WithUserLock(ctx, req.UserUID, func(ctx context.Context) error {
		affected, err := l.repo.SettleWithdrawal(ctx, id, decision, receiptURL, declineReason)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if affected == 0 {
			return ErrAlreadySettled
		}
		if decision == models.StatusDeclined {
			if _, err = l.repo.UpdatePoints(ctx, req.UserUID, req.Points); err != nil {
				return fmt.Errorf("%s: refund: %w", op, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = decision
	req.ReceiptURL = receiptURL
	req.DeclineReason = declineReason
	metrics.Settlements.WithLabelValues("withdrawal", string(decision)).Inc()
	if decision == models.StatusDeclined {
		metrics.PointsCredited.WithLabelValues("refund").Add(float64(req.Points))
	}
	l.log.Info("withdrawal settled",
		slog.Int64("id", id),
		slog.String("decision", string(decision)))
	return req, nil
}

// RequestPremiumUpgrade creates a pending upgrade request. Payment happens
// off-platform, evidenced by the receipt; no points move.
func (l *Ledger) RequestPremiumUpgrade(ctx context.Context, userUID, planID, receiptURL string) (*models.UpgradeRequest, error) {
	const op = "ledger.RequestPremiumUpgrade"

	plan := models.PlanByID(planID)
	if plan == nil || plan.PricePKR == 0 {
		return nil, ErrInvalidPlan
	}
	if receiptURL == "" {
		return nil, ErrReceiptRequired
	}

	user, err := l.repo.GetUser(ctx, userUID)
	if errors.Is(err, repository.ErrNoRow) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := models.UpgradeRequest{
		UserUID:    userUID,
		UserName:   user.Name,
		PlanID:     plan.ID,
		PlanName:   plan.Name,
		PricePKR:   plan.PricePKR,
		Date:       l.today(),
		Status:     models.StatusPending,
		ReceiptURL: receiptURL,
	}
	id, err := l.repo.CreateUpgrade(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.ID = id

	l.log.Info("upgrade requested",
		slog.String("user_uid", userUID),
		slog.String("plan", plan.ID),
		slog.Int64("id", id))
	return &r, nil
}

// SettleUpgrade stamps a terminal decision on a pending upgrade request.
// Approval flips the owning user's premium flag; approving a request of an
// already-premium user is a no-op, not an error.
func (l *Ledger) SettleUpgrade(ctx context.Context, id int64, decision models.RequestStatus) (*models.UpgradeRequest, error) {
	const op = "ledger.SettleUpgrade"

	if decision != models.StatusApproved && decision != models.StatusDeclined {
		return nil, fmt.Errorf("%s: unknown decision %q", op, decision)
	}

	req, err := l.repo.GetUpgrade(ctx, id)
	if errors.Is(err, repository.ErrNoRow) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.Status.Terminal() {
		return nil, ErrAlreadySettled
	}

	if _, err = l.repo.GetUser(ctx, req.UserUID); err != nil {
		if errors.Is(err, repository.ErrNoRow) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := l.repo.SettleUpgrade(ctx, id, decision)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, ErrAlreadySettled
	}

	if decision == models.StatusApproved {
		if err = l.repo.SetPremium(ctx, req.UserUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	req.Status = decision
	metrics.Settlements.WithLabelValues("upgrade", string(decision)).Inc()
	l.log.Info("upgrade settled",
		slog.Int64("id", id),
		slog.String("decision", string(decision)))
	return req, nil
}

// ProcessReferral credits the owner of the given referral code for one
// signup. An unknown code is a silent no-op. The same-day counter resets on
// date change; the daily bonus fires exactly when the post-increment count
// equals the configured threshold, once per day.
func (l *Ledger) ProcessReferral(ctx context.Context, code string) error {
	const op = "ledger.ProcessReferral"

	if code == "" {
		return nil
	}
	referrer, err := l.repo.GetUserByReferralCode(ctx, code)
	if errors.Is(err, repository.ErrNoRow) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := l.settings.Current(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return l.repo.WithUserLock(ctx, referrer.UID, func(ctx context.Context) error {
		user, err := l.repo.GetUser(ctx, referrer.UID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		today := l.today()
		todayCount := 1
		if sameDay(user.ReferralsTodayDate, today) {
			todayCount = user.ReferralsTodayCount + 1
		}

		credit := cfg.PointsPerReferral
		if todayCount == cfg.ReferralsNeeded {
			credit += cfg.BonusPoints
		}

		if err = l.repo.UpdateReferralProgress(ctx, user.UID, user.ReferralCount+1, today, todayCount); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if _, err = l.repo.UpdatePoints(ctx, user.UID, credit); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		metrics.PointsCredited.WithLabelValues("referral").Add(float64(credit))
		l.log.Info("referral credited",
			slog.String("referrer_uid", user.UID),
			slog.Int("points", credit),
			slog.Int("today_count", todayCount))
		return nil
	})
}

// SpinResult reports a prize wheel outcome.
type SpinResult struct {
	Segment    Segment `json:"segment"`
	NewBalance int     `json:"new_balance"`
}

// Spin draws a uniformly random wheel segment, credits its value when
// positive and records the spin timestamp. The cooldown is gated by the
// server-side store, so clearing client state does not bypass it; the slot
// is claimed with a single SET NX, so two concurrent requests cannot both
// pass the gate. The UI's multi-second animation is cosmetic; the credit
// happens here, immediately.
func (l *Ledger) Spin(ctx context.Context, userUID string) (*SpinResult, error) {
	const op = "ledger.Spin"

	key := "spin:" + userUID
	claimed, err := l.cooldown.SetNX(key, l.now().UnixMilli(), l.spinCooldown)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !claimed {
		return nil, ErrCooldownActive
	}

	segment := wheelSegments[l.rng(len(wheelSegments))]

	var balance int
	err = l.repo.WithUserLock(ctx, userUID, func(ctx context.Context) error {
		user, err := l.repo.GetUser(ctx, userUID)
		if errors.Is(err, repository.ErrNoRow) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		balance = user.Points

		if segment.Value > 0 {
			balance, err = l.repo.UpdatePoints(ctx, userUID, segment.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		return nil
	})
	if err != nil {
		// the user did not get a spin, release the claimed slot
		if delErr := l.cooldown.Invalidate(key); delErr != nil {
			l.log.Error("failed to release spin cooldown",
				slog.String("user_uid", userUID),
				slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	metrics.Spins.Inc()
	if segment.Value > 0 {
		metrics.PointsCredited.WithLabelValues("spin").Add(float64(segment.Value))
	}
	l.log.Info("wheel spun",
		slog.String("user_uid", userUID),
		slog.Int("prize", segment.Value))
	return &SpinResult{Segment: segment, NewBalance: balance}, nil
}
