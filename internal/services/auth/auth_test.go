package auth

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

	"github.com/muhammad-anas65/TaskCash/internal/lib/jwt"
	"github.com/muhammad-anas65/TaskCash/internal/lib/password"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return m.Called(ctx, email, passwordHash).Error(0)
}
func (m *UsersMock) UpdatePaymentProfile(ctx context.Context, userUID, fullName, mobile string, method models.PaymentMethod, details string) error {
	return m.Called(ctx, userUID, fullName, mobile, method, details).Error(0)
}

type LedgerMock struct{ mock.Mock }

func (m *LedgerMock) ProcessReferral(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type TokensMock struct{ mock.Mock }

func (m *TokensMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *TokensMock) GetDel(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishResetEmail(ctx context.Context, msg models.ResetEmail) error {
	return m.Called(ctx, msg).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(users *UsersMock, ledger *LedgerMock, tokens *TokensMock, resets *PublisherMock) *Service {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return NewService(users, ledger, tokens, resets, maker, newNoopLogger(), 15*time.Minute)
}

func TestService_Register(t *testing.T) {
	t.Run("success grants the welcome bonus", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").Return(nil, repository.ErrNoRow).Once()
		users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "ali@example.com" &&
				u.Role == models.RoleUser &&
				u.Status == models.StatusActive &&
				u.Points == 100 &&
				u.ReferralCode != ""
		})).Return("uid-1", nil).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		uid, err := svc.Register(context.Background(), "ali@example.com", "Ali", "secret1", "")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").
			Return(&models.User{UID: "uid-1"}, nil).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		_, err := svc.Register(context.Background(), "ali@example.com", "Ali", "secret1", "")

		assert.ErrorIs(t, err, ErrDuplicateAccount)
		users.AssertExpectations(t)
	})

	t.Run("referral code is forwarded to the ledger", func(t *testing.T) {
		users := new(UsersMock)
		ledger := new(LedgerMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").Return(nil, repository.ErrNoRow).Once()
		users.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
		ledger.On("ProcessReferral", mock.Anything, "REFABC123").Return(nil).Once()

		svc := newTestService(users, ledger, new(TokensMock), new(PublisherMock))
		_, err := svc.Register(context.Background(), "ali@example.com", "Ali", "secret1", "REFABC123")

		require.NoError(t, err)
		ledger.AssertExpectations(t)
	})

	t.Run("referral failure does not fail the signup", func(t *testing.T) {
		users := new(UsersMock)
		ledger := new(LedgerMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").Return(nil, repository.ErrNoRow).Once()
		users.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
		ledger.On("ProcessReferral", mock.Anything, "REFABC123").Return(errors.New("db down")).Once()

		svc := newTestService(users, ledger, new(TokensMock), new(PublisherMock))
		uid, err := svc.Register(context.Background(), "ali@example.com", "Ali", "secret1", "REFABC123")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
	})
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("secret1")
	require.NoError(t, err)

	active := &models.User{
		UID: "uid-1", Email: "ali@example.com", PasswordHash: hash,
		Role: models.RoleUser, Status: models.StatusActive,
	}

	t.Run("success issues a parseable token", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").Return(active, nil).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		token, user, err := svc.Login(context.Background(), "ali@example.com", "secret1")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", user.UID)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserUID)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNoRow).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").Return(active, nil).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		_, _, err := svc.Login(context.Background(), "ali@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended account", func(t *testing.T) {
		suspended := &models.User{
			UID: "uid-2", Email: "bad@example.com", PasswordHash: hash,
			Status: models.StatusSuspended,
		}
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "bad@example.com").Return(suspended, nil).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		_, _, err := svc.Login(context.Background(), "bad@example.com", "secret1")
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})
}

func TestService_ForgotPassword(t *testing.T) {
	t.Run("stores a token and publishes the email", func(t *testing.T) {
		users := new(UsersMock)
		tokens := new(TokensMock)
		resets := new(PublisherMock)
		users.On("GetUserByEmail", mock.Anything, "ali@example.com").
			Return(&models.User{UID: "uid-1"}, nil).Once()

		var issued string
		tokens.On("Set", "reset:ali@example.com", mock.Anything, 15*time.Minute).
			Run(func(args mock.Arguments) { issued = args.Get(1).(string) }).
			Return(nil).Once()
		resets.On("PublishResetEmail", mock.Anything, mock.MatchedBy(func(msg models.ResetEmail) bool {
			return msg.Email == "ali@example.com" && msg.Token == issued
		})).Return(nil).Once()

		svc := newTestService(users, new(LedgerMock), tokens, resets)
		require.NoError(t, svc.ForgotPassword(context.Background(), "ali@example.com"))
		tokens.AssertExpectations(t)
		resets.AssertExpectations(t)
	})

	t.Run("unknown email is reported to the handler", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNoRow).Once()

		svc := newTestService(users, new(LedgerMock), new(TokensMock), new(PublisherMock))
		err := svc.ForgotPassword(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, repository.ErrNoRow)
	})
}

func TestService_ResetPassword(t *testing.T) {
	t.Run("valid token updates the password", func(t *testing.T) {
		users := new(UsersMock)
		tokens := new(TokensMock)
		tokens.On("GetDel", "reset:ali@example.com", mock.Anything).
			Run(func(args mock.Arguments) { *(args.Get(1).(*string)) = "tok-1" }).
			Return(true, nil).Once()
		users.On("UpdatePassword", mock.Anything, "ali@example.com", mock.AnythingOfType("string")).
			Return(nil).Once()

		svc := newTestService(users, new(LedgerMock), tokens, new(PublisherMock))
		require.NoError(t, svc.ResetPassword(context.Background(), "ali@example.com", "tok-1", "newsecret"))
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("missing token", func(t *testing.T) {
		tokens := new(TokensMock)
		tokens.On("GetDel", "reset:ali@example.com", mock.Anything).Return(false, nil).Once()

		svc := newTestService(new(UsersMock), new(LedgerMock), tokens, new(PublisherMock))
		err := svc.ResetPassword(context.Background(), "ali@example.com", "tok-1", "newsecret")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("mismatched token is still consumed", func(t *testing.T) {
		users := new(UsersMock)
		tokens := new(TokensMock)
		tokens.On("GetDel", "reset:ali@example.com", mock.Anything).
			Run(func(args mock.Arguments) { *(args.Get(1).(*string)) = "tok-1" }).
			Return(true, nil).Once()

		svc := newTestService(users, new(LedgerMock), tokens, new(PublisherMock))
		err := svc.ResetPassword(context.Background(), "ali@example.com", "tok-2", "newsecret")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		tokens.AssertExpectations(t)
	})
}
