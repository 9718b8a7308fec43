// Package models contains the domain structures of the task-reward service:
// users, tasks, withdrawal and upgrade requests, subscription plans and the
// admin-tunable economy settings.
package models

import "time"

// PaymentMethod is the payout channel selected by a user.
type PaymentMethod string

// Supported payout channels.
const (
	MethodPayPal    PaymentMethod = "PayPal"
	MethodEasypaisa PaymentMethod = "Easypaisa"
	MethodJazzCash  PaymentMethod = "JazzCash"
)

// UserStatus is the account state. Suspended accounts cannot log in.
type UserStatus string

const (
	// StatusActive is the normal account state.
	StatusActive UserStatus = "active"
	// StatusSuspended blocks the account at login.
	StatusSuspended UserStatus = "suspended"
)

// User represents a registered account of the service.
// Points is the internal currency balance and never goes below zero.
type User struct {
	UID          string     // Unique identifier of the user
	Email        string     // Email address (unique)
	Name         string     // Display name
	PasswordHash string     // bcrypt hash of the password
	Role         Role       // user or one of the staff roles
	Status       UserStatus // active or suspended
	IsPremium    bool       // Premium tier, one-way false -> true
	Points       int        // Current point balance, >= 0

	ReferralCode        string // Code handed out to invite others
	ReferralCount       int    // Total referred signups
	ReferralsTodayDate  *time.Time
	ReferralsTodayCount int

	TasksCompletedToday    int
	LastTaskCompletionDate *time.Time
	CompletedTaskIDsToday  []int64

	// Payout profile. Optional until the first withdrawal, at which point
	// FullName and AccountDetails must be set.
	PaymentFullName string
	MobileNumber    string
	PaymentMethod   PaymentMethod
	PaymentDetails  string
}

// ProfileComplete reports whether the payout profile carries enough
// identity to settle a withdrawal.
func (u *User) ProfileComplete() bool {
	return u.PaymentFullName != "" && u.PaymentDetails != ""
}

// EarningMultiplier returns the point multiplier for the user's tier.
func (u *User) EarningMultiplier() int {
	if u.IsPremium {
		return 2
	}
	return 1
}
