// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ConfirmationService consumes confirmation tokens and flips the owning
// account's confirmed flag.
type ConfirmationService struct {
	accounts Repository
	tokens   TokenRepository
	tx       Transactor
}

// NewConfirmationService creates a ConfirmationService.
func NewConfirmationService(accounts Repository, tokens TokenRepository, tx Transactor) (*ConfirmationService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("tokens repository is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	return &ConfirmationService{accounts: accounts, tokens: tokens, tx: tx}, nil
}

// Confirm consumes the token and marks the account confirmed as one
// atomic operation. Two concurrent confirmations of the same token
// cannot both succeed: the token row's check-and-set admits exactly one
// winner. A replayed token deterministically fails with
// TOKEN_NOT_FOUND, it never silently succeeds again.
func (s *ConfirmationService) Confirm(ctx context.Context, token uuid.UUID) error {
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		accountID, err := s.tokens.Consume(ctx, token)
		if err != nil {
			return err
		}
		return s.accounts.MarkConfirmed(ctx, accountID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("TOKEN_NOT_FOUND").
				Errorf("confirmation token is unknown or already consumed")
		}
		return oops.Code("ACCOUNT_CONFIRM_FAILED").
			With("operation", "consume token and confirm account").
			Wrap(err)
	}
	return nil
}
