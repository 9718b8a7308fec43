package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) WithUserLock(ctx context.Context, userUID string, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, userUID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) UpdatePoints(ctx context.Context, userUID string, delta int) (int, error) {
	args := m.Called(ctx, userUID, delta)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) UpdateTaskProgress(ctx context.Context, userUID string, completedToday int, date time.Time, taskIDs []int64) error {
	return m.Called(ctx, userUID, completedToday, date, taskIDs).Error(0)
}
func (m *RepoMock) UpdateReferralProgress(ctx context.Context, userUID string, total int, todayDate time.Time, todayCount int) error {
	return m.Called(ctx, userUID, total, todayDate, todayCount).Error(0)
}
func (m *RepoMock) SetPremium(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}
func (m *RepoMock) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}
func (m *RepoMock) CreateWithdrawal(ctx context.Context, w models.Withdrawal) (int64, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) GetWithdrawal(ctx context.Context, id int64) (*models.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}
func (m *RepoMock) SettleWithdrawal(ctx context.Context, id int64, status models.RequestStatus, receiptURL, declineReason string) (int64, error) {
	args := m.Called(ctx, id, status, receiptURL, declineReason)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) CreateUpgrade(ctx context.Context, r models.UpgradeRequest) (int64, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) GetUpgrade(ctx context.Context, id int64) (*models.UpgradeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpgradeRequest), args.Error(1)
}
func (m *RepoMock) SettleUpgrade(ctx context.Context, id int64, status models.RequestStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

type SettingsMock struct{ mock.Mock }

func (m *SettingsMock) Current(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

type CooldownMock struct{ mock.Mock }

func (m *CooldownMock) SetNX(key string, value any, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}
func (m *CooldownMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestLedger(repo *RepoMock, settings *SettingsMock, cooldown *CooldownMock) *Ledger {
	l := NewLedger(repo, settings, cooldown, newNoopLogger(), 24*time.Hour)
	l.now = func() time.Time { return fixedNow }
	return l
}

func fixedToday() time.Time {
	return fixedNow.Truncate(24 * time.Hour)
}

func TestLedger_CreditTask(t *testing.T) {
	task := &models.Task{ID: 7, Title: "Visit site", Category: models.CategoryWebsite, Points: 50}
	yesterday := fixedToday().AddDate(0, 0, -1)
	todayDate := fixedToday()

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, s *SettingsMock)
		wantErr    error
		wantResult *CreditResult
	}{
		{
			name: "first task of a fresh day",
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				r.On("GetTask", mock.Anything, int64(7)).Return(task, nil).Once()
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{
					UID: "u1", Points: 100,
					LastTaskCompletionDate: &yesterday,
					TasksCompletedToday:    5,
					CompletedTaskIDsToday:  []int64{1, 2, 3, 4, 5},
				}, nil).Once()
				r.On("UpdateTaskProgress", mock.Anything, "u1", 1, todayDate, []int64{7}).Return(nil).Once()
				r.On("UpdatePoints", mock.Anything, "u1", 50).Return(150, nil).Once()
			},
			wantResult: &CreditResult{TaskID: 7, PointsCredited: 50, NewBalance: 150, CompletedToday: 1},
		},
		{
			name: "premium user earns double",
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				r.On("GetTask", mock.Anything, int64(7)).Return(task, nil).Once()
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{
					UID: "u1", Points: 0, IsPremium: true,
				}, nil).Once()
				r.On("UpdateTaskProgress", mock.Anything, "u1", 1, todayDate, []int64{7}).Return(nil).Once()
				r.On("UpdatePoints", mock.Anything, "u1", 100).Return(100, nil).Once()
			},
			wantResult: &CreditResult{TaskID: 7, PointsCredited: 100, NewBalance: 100, CompletedToday: 1},
		},
		{
			name: "second task of the same day increments the counter",
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				r.On("GetTask", mock.Anything, int64(7)).Return(task, nil).Once()
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{
					UID: "u1", Points: 50,
					LastTaskCompletionDate: &todayDate,
					TasksCompletedToday:    1,
					CompletedTaskIDsToday:  []int64{3},
				}, nil).Once()
				r.On("UpdateTaskProgress", mock.Anything, "u1", 2, todayDate, []int64{3, 7}).Return(nil).Once()
				r.On("UpdatePoints", mock.Anything, "u1", 50).Return(100, nil).Once()
			},
			wantResult: &CreditResult{TaskID: 7, PointsCredited: 50, NewBalance: 100, CompletedToday: 2},
		},
		{
			name: "daily quota reached",
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				r.On("GetTask", mock.Anything, int64(7)).Return(task, nil).Once()
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{
					UID: "u1",
					LastTaskCompletionDate: &todayDate,
					TasksCompletedToday:    5,
					CompletedTaskIDsToday:  []int64{1, 2, 3, 4, 5},
				}, nil).Once()
			},
			wantErr: ErrQuotaExceeded,
		},
		{
			name: "same task twice in one day",
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				r.On("GetTask", mock.Anything, int64(7)).Return(task, nil).Once()
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{
					UID: "u1",
					LastTaskCompletionDate: &todayDate,
					TasksCompletedToday:    1,
					CompletedTaskIDsToday:  []int64{7},
				}, nil).Once()
			},
			wantErr: ErrTaskAlreadyCompleted,
		},
		{
			name: "unknown task",
			setupMocks: func(r *RepoMock, _ *SettingsMock) {
				r.On("GetTask", mock.Anything, int64(7)).Return(nil, repository.ErrNoRow).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			settings := new(SettingsMock)
			tt.setupMocks(repo, settings)

			l := newTestLedger(repo, settings, new(CooldownMock))
			got, err := l.CreditTask(context.Background(), "u1", 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantResult, got)
			}
			repo.AssertExpectations(t)
			settings.AssertExpectations(t)
		})
	}
}

func TestLedger_AdjustPoints(t *testing.T) {
	tests := []struct {
		name       string
		delta      int
		setupMocks func(r *RepoMock)
		wantErr    error
		want       int
	}{
		{
			name:  "grant",
			delta: 200,
			setupMocks: func(r *RepoMock) {
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Points: 100}, nil).Once()
				r.On("UpdatePoints", mock.Anything, "u1", 200).Return(300, nil).Once()
			},
			want: 300,
		},
		{
			name:  "deduction within balance",
			delta: -50,
			setupMocks: func(r *RepoMock) {
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Points: 100}, nil).Once()
				r.On("UpdatePoints", mock.Anything, "u1", -50).Return(50, nil).Once()
			},
			want: 50,
		},
		{
			name:  "deduction below zero is rejected whole",
			delta: -101,
			setupMocks: func(r *RepoMock) {
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Points: 100}, nil).Once()
			},
			wantErr: ErrInsufficientBalance,
		},
		{
			name:  "unknown user",
			delta: 10,
			setupMocks: func(r *RepoMock) {
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(nil, repository.ErrNoRow).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
			got, err := l.AdjustPoints(context.Background(), "u1", tt.delta)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPointsNeeded(t *testing.T) {
	// 1390 PKR at 278 per 1000 points is exactly 5000 points.
	assert.Equal(t, 5000, PointsNeeded(1390, 278))
	// Non-divisible amounts round up, never in the user's favor.
	assert.Equal(t, 3598, PointsNeeded(1000, 278))
	assert.Equal(t, 10000, PointsNeeded(2780, 278))
}

func TestLedger_RequestWithdrawal(t *testing.T) {
	completeUser := &models.User{
		UID: "u1", Name: "Ali", Points: 6000,
		PaymentFullName: "Ali Khan", PaymentDetails: "0300-1234567",
	}

	tests := []struct {
		name       string
		amount     int
		setupMocks func(r *RepoMock, s *SettingsMock)
		wantErr    error
	}{
		{
			name:   "below minimum",
			amount: 1389,
			setupMocks: func(_ *RepoMock, s *SettingsMock) {
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
			},
			wantErr: ErrAmountOutOfRange,
		},
		{
			name:   "above maximum",
			amount: 10001,
			setupMocks: func(_ *RepoMock, s *SettingsMock) {
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
			},
			wantErr: ErrAmountOutOfRange,
		},
		{
			name:   "incomplete profile",
			amount: 1390,
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Points: 6000}, nil).Once()
			},
			wantErr: ErrProfileIncomplete,
		},
		{
			name:   "insufficient balance",
			amount: 2000,
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(completeUser, nil).Once()
			},
			wantErr: ErrInsufficientBalance,
		},
		{
			name:   "success debits the frozen cost",
			amount: 1390,
			setupMocks: func(r *RepoMock, s *SettingsMock) {
				s.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
				r.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(completeUser, nil).Once()
				r.On("UpdatePoints", mock.Anything, "u1", -5000).Return(1000, nil).Once()
				r.On("CreateWithdrawal", mock.Anything, mock.MatchedBy(func(w models.Withdrawal) bool {
					return w.UserUID == "u1" &&
						w.AmountPKR == 1390 &&
						w.Points == 5000 &&
						w.Status == models.StatusPending
				})).Return(int64(11), nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			settings := new(SettingsMock)
			tt.setupMocks(repo, settings)

			l := newTestLedger(repo, settings, new(CooldownMock))
			got, err := l.RequestWithdrawal(context.Background(), "u1", tt.amount, models.MethodEasypaisa)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(11), got.ID)
				assert.Equal(t, 5000, got.Points)
				assert.Equal(t, models.StatusPending, got.Status)
			}
			repo.AssertExpectations(t)
			settings.AssertExpectations(t)
		})
	}
}

func TestLedger_SettleWithdrawal_Approve(t *testing.T) {
	repo := new(RepoMock)
	pending := &models.Withdrawal{ID: 11, UserUID: "u1", Points: 5000, Status: models.StatusPending}
	repo.On("GetWithdrawal", mock.Anything, int64(11)).Return(pending, nil).Once()
	repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
	repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
	repo.On("SettleWithdrawal", mock.Anything, int64(11), models.StatusApproved, "https://pay.example/r/1", "").
		Return(int64(1), nil).Once()

	l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
	got, err := l.SettleWithdrawal(context.Background(), 11, models.StatusApproved, "https://pay.example/r/1", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, "https://pay.example/r/1", got.ReceiptURL)
	repo.AssertExpectations(t)
}

func TestLedger_SettleWithdrawal_DeclineRefunds(t *testing.T) {
	repo := new(RepoMock)
	pending := &models.Withdrawal{ID: 11, UserUID: "u1", Points: 5000, Status: models.StatusPending}
	repo.On("GetWithdrawal", mock.Anything, int64(11)).Return(pending, nil).Once()
	repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
	repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
	repo.On("SettleWithdrawal", mock.Anything, int64(11), models.StatusDeclined, "", "invalid account").
		Return(int64(1), nil).Once()
	// The frozen cost comes back in full.
	repo.On("UpdatePoints", mock.Anything, "u1", 5000).Return(6000, nil).Once()

	l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
	got, err := l.SettleWithdrawal(context.Background(), 11, models.StatusDeclined, "", "invalid account")

	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, got.Status)
	assert.Equal(t, "invalid account", got.DeclineReason)
	repo.AssertExpectations(t)
}

func TestLedger_SettleWithdrawal_Guards(t *testing.T) {
	t.Run("approval without receipt", func(t *testing.T) {
		l := newTestLedger(new(RepoMock), new(SettingsMock), new(CooldownMock))
		_, err := l.SettleWithdrawal(context.Background(), 11, models.StatusApproved, "", "")
		assert.ErrorIs(t, err, ErrMissingReceipt)
	})

	t.Run("decline without reason", func(t *testing.T) {
		l := newTestLedger(new(RepoMock), new(SettingsMock), new(CooldownMock))
		_, err := l.SettleWithdrawal(context.Background(), 11, models.StatusDeclined, "", "")
		assert.ErrorIs(t, err, ErrMissingReason)
	})

	t.Run("already terminal", func(t *testing.T) {
		repo := new(RepoMock)
		settled := &models.Withdrawal{ID: 11, UserUID: "u1", Status: models.StatusApproved}
		repo.On("GetWithdrawal", mock.Anything, int64(11)).Return(settled, nil).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		_, err := l.SettleWithdrawal(context.Background(), 11, models.StatusApproved, "https://r", "")
		assert.ErrorIs(t, err, ErrAlreadySettled)
		repo.AssertExpectations(t)
	})

	t.Run("lost settlement race", func(t *testing.T) {
		repo := new(RepoMock)
		pending := &models.Withdrawal{ID: 11, UserUID: "u1", Status: models.StatusPending}
		repo.On("GetWithdrawal", mock.Anything, int64(11)).Return(pending, nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
		repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
		repo.On("SettleWithdrawal", mock.Anything, int64(11), models.StatusApproved, "https://r", "").
			Return(int64(0), nil).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		_, err := l.SettleWithdrawal(context.Background(), 11, models.StatusApproved, "https://r", "")
		assert.ErrorIs(t, err, ErrAlreadySettled)
		repo.AssertExpectations(t)
	})

	t.Run("vanished owner", func(t *testing.T) {
		repo := new(RepoMock)
		pending := &models.Withdrawal{ID: 11, UserUID: "ghost", Status: models.StatusPending}
		repo.On("GetWithdrawal", mock.Anything, int64(11)).Return(pending, nil).Once()
		repo.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrNoRow).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		_, err := l.SettleWithdrawal(context.Background(), 11, models.StatusApproved, "https://r", "")
		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestLedger_RequestPremiumUpgrade(t *testing.T) {
	t.Run("unknown plan", func(t *testing.T) {
		l := newTestLedger(new(RepoMock), new(SettingsMock), new(CooldownMock))
		_, err := l.RequestPremiumUpgrade(context.Background(), "u1", "platinum", "https://r")
		assert.ErrorIs(t, err, ErrInvalidPlan)
	})

	t.Run("free plan is not upgradeable", func(t *testing.T) {
		l := newTestLedger(new(RepoMock), new(SettingsMock), new(CooldownMock))
		_, err := l.RequestPremiumUpgrade(context.Background(), "u1", "free", "https://r")
		assert.ErrorIs(t, err, ErrInvalidPlan)
	})

	t.Run("missing receipt", func(t *testing.T) {
		l := newTestLedger(new(RepoMock), new(SettingsMock), new(CooldownMock))
		_, err := l.RequestPremiumUpgrade(context.Background(), "u1", "premium", "")
		assert.ErrorIs(t, err, ErrReceiptRequired)
	})

	t.Run("success snapshots the plan", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Name: "Ali"}, nil).Once()
		repo.On("CreateUpgrade", mock.Anything, mock.MatchedBy(func(r models.UpgradeRequest) bool {
			return r.UserUID == "u1" &&
				r.PlanID == "premium" &&
				r.PricePKR == 1500 &&
				r.Status == models.StatusPending
		})).Return(int64(3), nil).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		got, err := l.RequestPremiumUpgrade(context.Background(), "u1", "premium", "https://r")

		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
		assert.Equal(t, "Premium Member", got.PlanName)
		repo.AssertExpectations(t)
	})
}

func TestLedger_SettleUpgrade(t *testing.T) {
	t.Run("approval flips the premium flag", func(t *testing.T) {
		repo := new(RepoMock)
		pending := &models.UpgradeRequest{ID: 3, UserUID: "u1", Status: models.StatusPending}
		repo.On("GetUpgrade", mock.Anything, int64(3)).Return(pending, nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
		repo.On("SettleUpgrade", mock.Anything, int64(3), models.StatusApproved).Return(int64(1), nil).Once()
		repo.On("SetPremium", mock.Anything, "u1").Return(nil).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		got, err := l.SettleUpgrade(context.Background(), 3, models.StatusApproved)

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("decline leaves the flag alone", func(t *testing.T) {
		repo := new(RepoMock)
		pending := &models.UpgradeRequest{ID: 3, UserUID: "u1", Status: models.StatusPending}
		repo.On("GetUpgrade", mock.Anything, int64(3)).Return(pending, nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
		repo.On("SettleUpgrade", mock.Anything, int64(3), models.StatusDeclined).Return(int64(1), nil).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		got, err := l.SettleUpgrade(context.Background(), 3, models.StatusDeclined)

		require.NoError(t, err)
		assert.Equal(t, models.StatusDeclined, got.Status)
		repo.AssertNotCalled(t, "SetPremium", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("already settled", func(t *testing.T) {
		repo := new(RepoMock)
		settled := &models.UpgradeRequest{ID: 3, UserUID: "u1", Status: models.StatusDeclined}
		repo.On("GetUpgrade", mock.Anything, int64(3)).Return(settled, nil).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		_, err := l.SettleUpgrade(context.Background(), 3, models.StatusApproved)
		assert.ErrorIs(t, err, ErrAlreadySettled)
		repo.AssertExpectations(t)
	})
}

func TestLedger_ProcessReferral(t *testing.T) {
	todayDate := fixedToday()
	yesterday := todayDate.AddDate(0, 0, -1)

	t.Run("empty code is a no-op", func(t *testing.T) {
		repo := new(RepoMock)
		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		require.NoError(t, l.ProcessReferral(context.Background(), ""))
		repo.AssertNotCalled(t, "GetUserByReferralCode", mock.Anything, mock.Anything)
	})

	t.Run("unknown code is a silent no-op", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByReferralCode", mock.Anything, "REFXXXXXX").Return(nil, repository.ErrNoRow).Once()

		l := newTestLedger(repo, new(SettingsMock), new(CooldownMock))
		require.NoError(t, l.ProcessReferral(context.Background(), "REFXXXXXX"))
		repo.AssertExpectations(t)
	})

	referralCase := func(t *testing.T, user *models.User, wantTotal, wantTodayCount, wantCredit int) {
		t.Helper()
		repo := new(RepoMock)
		settings := new(SettingsMock)
		repo.On("GetUserByReferralCode", mock.Anything, "REFABC123").Return(user, nil).Once()
		settings.On("Current", mock.Anything).Return(models.DefaultSettings(), nil).Once()
		repo.On("WithUserLock", mock.Anything, user.UID).Return(nil).Once()
		repo.On("GetUser", mock.Anything, user.UID).Return(user, nil).Once()
		repo.On("UpdateReferralProgress", mock.Anything, user.UID, wantTotal, todayDate, wantTodayCount).Return(nil).Once()
		repo.On("UpdatePoints", mock.Anything, user.UID, wantCredit).Return(user.Points+wantCredit, nil).Once()

		l := newTestLedger(repo, settings, new(CooldownMock))
		require.NoError(t, l.ProcessReferral(context.Background(), "REFABC123"))
		repo.AssertExpectations(t)
		settings.AssertExpectations(t)
	}

	t.Run("regular referral credits the base points", func(t *testing.T) {
		referralCase(t, &models.User{
			UID: "ref1", Points: 100, ReferralCount: 2,
			ReferralsTodayDate: &todayDate, ReferralsTodayCount: 2,
		}, 3, 3, 100)
	})

	t.Run("fifth same-day referral adds the bonus", func(t *testing.T) {
		referralCase(t, &models.User{
			UID: "ref1", Points: 400, ReferralCount: 10,
			ReferralsTodayDate: &todayDate, ReferralsTodayCount: 4,
		}, 11, 5, 600)
	})

	t.Run("sixth same-day referral is back to base", func(t *testing.T) {
		referralCase(t, &models.User{
			UID: "ref1", Points: 1000, ReferralCount: 11,
			ReferralsTodayDate: &todayDate, ReferralsTodayCount: 5,
		}, 12, 6, 100)
	})

	t.Run("date change resets the daily counter", func(t *testing.T) {
		referralCase(t, &models.User{
			UID: "ref1", Points: 1000, ReferralCount: 11,
			ReferralsTodayDate: &yesterday, ReferralsTodayCount: 4,
		}, 12, 1, 100)
	})
}

func TestLedger_Spin(t *testing.T) {
	t.Run("cooldown slot already claimed", func(t *testing.T) {
		repo := new(RepoMock)
		cooldown := new(CooldownMock)
		cooldown.On("SetNX", "spin:u1", fixedNow.UnixMilli(), 24*time.Hour).Return(false, nil).Once()

		l := newTestLedger(repo, new(SettingsMock), cooldown)
		_, err := l.Spin(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrCooldownActive)
		repo.AssertNotCalled(t, "WithUserLock", mock.Anything, mock.Anything)
		cooldown.AssertExpectations(t)
	})

	t.Run("winning segment credits behind the claimed slot", func(t *testing.T) {
		repo := new(RepoMock)
		cooldown := new(CooldownMock)
		cooldown.On("SetNX", "spin:u1", fixedNow.UnixMilli(), 24*time.Hour).Return(true, nil).Once()
		repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Points: 10}, nil).Once()
		repo.On("UpdatePoints", mock.Anything, "u1", 200).Return(210, nil).Once()

		l := newTestLedger(repo, new(SettingsMock), cooldown)
		l.rng = func(int) int { return 4 } // the 200-point segment

		got, err := l.Spin(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 200, got.Segment.Value)
		assert.Equal(t, 210, got.NewBalance)
		repo.AssertExpectations(t)
		cooldown.AssertNotCalled(t, "Invalidate", mock.Anything)
		cooldown.AssertExpectations(t)
	})

	t.Run("try-again segment keeps the slot claimed", func(t *testing.T) {
		repo := new(RepoMock)
		cooldown := new(CooldownMock)
		cooldown.On("SetNX", "spin:u1", fixedNow.UnixMilli(), 24*time.Hour).Return(true, nil).Once()
		repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1", Points: 10}, nil).Once()

		l := newTestLedger(repo, new(SettingsMock), cooldown)
		l.rng = func(int) int { return 1 } // a zero-value segment

		got, err := l.Spin(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Segment.Value)
		assert.Equal(t, 10, got.NewBalance)
		repo.AssertNotCalled(t, "UpdatePoints", mock.Anything, mock.Anything, mock.Anything)
		cooldown.AssertNotCalled(t, "Invalidate", mock.Anything)
		repo.AssertExpectations(t)
		cooldown.AssertExpectations(t)
	})

	t.Run("store failure on the claim surfaces", func(t *testing.T) {
		repo := new(RepoMock)
		cooldown := new(CooldownMock)
		cooldown.On("SetNX", "spin:u1", fixedNow.UnixMilli(), 24*time.Hour).Return(false, errors.New("redis down")).Once()

		l := newTestLedger(repo, new(SettingsMock), cooldown)
		_, err := l.Spin(context.Background(), "u1")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCooldownActive)
		repo.AssertNotCalled(t, "WithUserLock", mock.Anything, mock.Anything)
	})

	t.Run("unknown user releases the claimed slot", func(t *testing.T) {
		repo := new(RepoMock)
		cooldown := new(CooldownMock)
		cooldown.On("SetNX", "spin:u1", fixedNow.UnixMilli(), 24*time.Hour).Return(true, nil).Once()
		repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(nil, repository.ErrNoRow).Once()
		cooldown.On("Invalidate", "spin:u1").Return(nil).Once()

		l := newTestLedger(repo, new(SettingsMock), cooldown)
		l.rng = func(int) int { return 0 }

		_, err := l.Spin(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrNotFound)
		cooldown.AssertExpectations(t)
	})

	t.Run("credit failure releases the claimed slot", func(t *testing.T) {
		repo := new(RepoMock)
		cooldown := new(CooldownMock)
		cooldown.On("SetNX", "spin:u1", fixedNow.UnixMilli(), 24*time.Hour).Return(true, nil).Once()
		repo.On("WithUserLock", mock.Anything, "u1").Return(nil).Once()
		repo.On("GetUser", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
		cooldown.On("Invalidate", "spin:u1").Return(nil).Once()

		l := newTestLedger(repo, new(SettingsMock), cooldown)
		l.rng = func(int) int { return 0 }

		_, err := l.Spin(context.Background(), "u1")
		assert.Error(t, err)
		cooldown.AssertExpectations(t)
	})
}
