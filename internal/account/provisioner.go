// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/rushplatform/rush/internal/observability"
)

// Notifier dispatches the confirmation email for a freshly provisioned
// account. Implementations live at the edge (SMTP); the provisioner
// only sees this interface.
type Notifier interface {
	SendConfirmation(ctx context.Context, acct *Account, token uuid.UUID) error
}

// Provisioner creates accounts. The account record and its confirmation
// token are written in one transaction; the confirmation email is
// dispatched only after that transaction commits.
type Provisioner struct {
	accounts Repository
	tokens   TokenRepository
	tx       Transactor
	hasher   PasswordHasher
	notifier Notifier
	logger   *slog.Logger
}

// NewProvisioner creates a Provisioner. All dependencies are required
// except logger, which defaults to slog.Default().
func NewProvisioner(accounts Repository, tokens TokenRepository, tx Transactor, hasher PasswordHasher, notifier Notifier, logger *slog.Logger) (*Provisioner, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("tokens repository is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		accounts: accounts,
		tokens:   tokens,
		tx:       tx,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Provision validates the submission, then atomically creates the
// account and its confirmation token. Readers never observe an account
// without a token or a token without an account.
//
// Notification failure after commit is logged and counted but does not
// roll the account back: the record stays persisted with
// confirmed=false, and a resend flow picks it up operationally.
func (p *Provisioner) Provision(ctx context.Context, sub Submission) (*Account, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := p.hasher.Hash(sub.Password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_PROVISION_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	acct, err := NewAccount(sub, passwordHash)
	if err != nil {
		return nil, err
	}
	token, err := NewConfirmationToken(acct.ID)
	if err != nil {
		return nil, err
	}

	err = p.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := p.accounts.Create(ctx, acct); err != nil {
			return err
		}
		return p.tokens.Create(ctx, token)
	})
	if err != nil {
		// Conflicts keep their code for the boundary mapping;
		// everything else is a provisioning failure.
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, oops.Code("ACCOUNT_PROVISION_FAILED").
			With("operation", "persist account and token").
			Wrap(err)
	}

	if err := p.notifier.SendConfirmation(ctx, acct, token.Token); err != nil {
		observability.RecordConfirmationMailFailure()
		p.logger.Error("confirmation email dispatch failed; account remains unconfirmed",
			"account_id", acct.ID,
			"error", err)
	}

	return acct, nil
}
