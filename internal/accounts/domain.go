// Package accounts owns the principal model and the account-state gate
// that decides whether an account may authenticate.
package accounts

import (
	"errors"
	"time"
)

// Status is the lifecycle state of an account. Transitions are
// performed by the administration endpoints; the gate only reads it.
type Status string

const (
	// StatusPending marks a registered but not yet verified account.
	StatusPending Status = "pending"
	// StatusActive marks a fully usable account.
	StatusActive Status = "active"
	// StatusDeactivated marks an account its owner switched off.
	StatusDeactivated Status = "deactivated"
	// StatusSuspended marks an account temporarily restricted by an admin.
	StatusSuspended Status = "suspended"
	// StatusBanned marks a permanently blocked account.
	StatusBanned Status = "banned"
)

// User represents a principal.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Status        Status
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("accounts: not found")
	// ErrInvalidCredentials indicates a failed login; callers must not
	// reveal whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
	// ErrEmailTaken indicates a registration against an existing email.
	ErrEmailTaken = errors.New("accounts: email already registered")
	// ErrAccessDenied is the base error for every gate denial.
	ErrAccessDenied = errors.New("accounts: access denied")
	// ErrCodeInvalid indicates an unknown or expired verification code.
	ErrCodeInvalid = errors.New("accounts: invalid verification code")
)
