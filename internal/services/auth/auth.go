// Package auth contains registration, login, payment-profile updates and
// the password-reset flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/muhammad-anas65/TaskCash/internal/lib/jwt"
	"github.com/muhammad-anas65/TaskCash/internal/lib/password"
	"github.com/muhammad-anas65/TaskCash/internal/lib/referral"
	"github.com/muhammad-anas65/TaskCash/internal/models"
	"github.com/muhammad-anas65/TaskCash/internal/storage/repository"
)

// Expected auth failures.
var (
	// ErrDuplicateAccount means the signup email already exists.
	ErrDuplicateAccount = errors.New("account with this email already exists")
	// ErrInvalidCredentials means the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountSuspended means a suspended account tried to log in.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrInvalidOrExpiredToken means the reset token is unknown, consumed
	// or past its TTL.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
)

// welcomePoints is the signup bonus credited to every new account.
const welcomePoints = 100

// UserRepository describes the storage methods auth relies on.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdatePaymentProfile(ctx context.Context, userUID, fullName, mobile string, method models.PaymentMethod, details string) error
}

// ReferralLedger credits the owner of a referral code on signup.
type ReferralLedger interface {
	ProcessReferral(ctx context.Context, code string) error
}

// TokenStore keeps single-use password-reset tokens with a TTL.
type TokenStore interface {
	Set(key string, value any, expiration time.Duration) error
	GetDel(key string, result any) (bool, error)
}

// ResetPublisher hands a reset token to the out-of-process delivery channel.
type ResetPublisher interface {
	PublishResetEmail(ctx context.Context, msg models.ResetEmail) error
}

// Service implements accounts and sessions.
type Service struct {
	users    UserRepository
	ledger   ReferralLedger
	tokens   TokenStore
	resets   ResetPublisher
	jwtMaker jwt.Maker
	log      *slog.Logger
	tokenTTL time.Duration
}

// NewService creates the auth service.
func NewService(users UserRepository, ledger ReferralLedger, tokens TokenStore, resets ResetPublisher, jwtMaker jwt.Maker, log *slog.Logger, resetTokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		ledger:   ledger,
		tokens:   tokens,
		resets:   resets,
		jwtMaker: jwtMaker,
		log:      log,
		tokenTTL: resetTokenTTL,
	}
}

// Register creates a user account with the welcome bonus and the role
// "user", then credits the referrer when a code was supplied. An unknown
// referral code is ignored, it never fails a signup.
func (s *Service) Register(ctx context.Context, email, name, rawPassword, referralCode string) (string, error) {
	const op = "auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrNoRow) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	code, err := referral.NewCode()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		Points:       welcomePoints,
		ReferralCode: code,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if referralCode != "" {
		if err := s.ledger.ProcessReferral(ctx, referralCode); err != nil {
			// The account exists either way; the missed credit is logged,
			// not surfaced to the new user.
			s.log.Error("failed to process referral", slog.String("code", referralCode), slog.Any("err", err))
		}
	}

	s.log.Info("user registered", slog.String("uid", uid))
	return uid, nil
}

// Login verifies the password and issues a bearer token. Suspended accounts
// are refused.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNoRow) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.Status == models.StatusSuspended {
		return "", nil, ErrAccountSuspended
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken parses a bearer token and returns the identity it carries.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// ForgotPassword generates an opaque single-use token, stores it with a TTL
// and hands it to the delivery channel. An unknown email is reported to the
// caller so the handler can answer uniformly.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNoRow) {
			return repository.ErrNoRow
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token := uuid.NewString()
	if err := s.tokens.Set("reset:"+email, token, s.tokenTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.resets.PublishResetEmail(ctx, models.ResetEmail{Email: email, Token: token}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset requested", slog.String("email", email))
	return nil
}

// ResetPassword consumes the stored token and replaces the password. The
// token must exist and match; consumption happens even on a mismatch, so a
// token survives at most one attempt against it.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	const op = "auth.ResetPassword"

	var stored string
	found, err := s.tokens.GetDel("reset:"+email, &stored)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found || stored != token {
		return ErrInvalidOrExpiredToken
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.UpdatePassword(ctx, email, hashed); err != nil {
		if errors.Is(err, repository.ErrNoRow) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset completed", slog.String("email", email))
	return nil
}

// UpdatePaymentProfile stores the payout identity of the user.
func (s *Service) UpdatePaymentProfile(ctx context.Context, userUID, fullName, mobile string, method models.PaymentMethod, details string) error {
	const op = "auth.UpdatePaymentProfile"

	if err := s.users.UpdatePaymentProfile(ctx, userUID, fullName, mobile, method, details); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
