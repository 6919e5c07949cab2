// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package account

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
)

// MaxEmailLength is the RFC 3696 upper bound on a full address.
const MaxEmailLength = 320

// Account is a platform account, keyed by its email address.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string `json:"-"`
	Confirmed    bool
	Instances    []string
	CreatedBy    string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Submission is a candidate account as received from the signup flow.
type Submission struct {
	Email    string
	Name     string
	Password string
}

// Validate checks a submission before any storage work happens.
// Password strength is deliberately not policed here: the hash is
// computed server-side, so only non-emptiness is enforceable.
func (s Submission) Validate() error {
	email := strings.TrimSpace(s.Email)
	if email == "" {
		return oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("ACCOUNT_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email must contain a local part and a domain")
	}
	if strings.ContainsAny(email, " \t") {
		return oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot contain whitespace")
	}
	if strings.TrimSpace(s.Name) == "" {
		return oops.Code("ACCOUNT_INVALID_NAME").Errorf("name cannot be empty")
	}
	if s.Password == "" {
		return oops.Code("ACCOUNT_INVALID_PASSWORD").Errorf("password cannot be empty")
	}
	return nil
}

// NewAccount creates a validated, unconfirmed Account from a submission
// and its password hash. The identifier is derived from the email
// address, normalized to lower case, which is also the unique key.
func NewAccount(sub Submission, passwordHash string) (*Account, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_PASSWORD").Errorf("password hash cannot be empty")
	}

	email := strings.ToLower(strings.TrimSpace(sub.Email))
	now := time.Now()
	return &Account{
		ID:           email,
		Email:        email,
		Name:         strings.TrimSpace(sub.Name),
		PasswordHash: passwordHash,
		Confirmed:    false,
		Instances:    []string{},
		CreatedBy:    email,
		UpdatedBy:    email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Repository manages account persistence.
type Repository interface {
	// Create stores a new account. Returns ErrEmailTaken when the email
	// is already registered.
	Create(ctx context.Context, acct *Account) error

	// GetByEmail retrieves an account by email (case-insensitive),
	// including its owned instance names. Returns ErrNotFound when no
	// account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// MarkConfirmed flips the confirmed flag to true. Returns
	// ErrNotFound for an unknown account.
	MarkConfirmed(ctx context.Context, id string) error
}

// Transactor runs a function inside a single storage transaction.
// All repository calls made with the context it passes to fn share one
// atomic commit.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
