// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ConfirmationToken is a one-time credential proving control of an
// account's email address. The token value itself is the opaque
// artifact mailed to the user; it is stored server-side and consumed
// with a single atomic check-and-set.
type ConfirmationToken struct {
	Token     uuid.UUID
	AccountID string
	Consumed  bool
	CreatedAt time.Time
}

// NewConfirmationToken mints an unconsumed token for an account.
func NewConfirmationToken(accountID string) (*ConfirmationToken, error) {
	if accountID == "" {
		return nil, oops.Code("TOKEN_INVALID_ACCOUNT").Errorf("account id cannot be empty")
	}
	return &ConfirmationToken{
		Token:     uuid.New(),
		AccountID: accountID,
		Consumed:  false,
		CreatedAt: time.Now(),
	}, nil
}

// TokenRepository manages confirmation token persistence.
type TokenRepository interface {
	// Create stores a new unconsumed token.
	Create(ctx context.Context, token *ConfirmationToken) error

	// Consume atomically marks an unconsumed token as consumed and
	// returns the owning account id. An unknown or already-consumed
	// token returns ErrNotFound; at most one caller can ever succeed
	// for a given token.
	Consume(ctx context.Context, token uuid.UUID) (accountID string, err error)
}
