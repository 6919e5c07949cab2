// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/account/mocks"
	"github.com/rushplatform/rush/pkg/errutil"
)

func validSubmission() account.Submission {
	return account.Submission{
		Email:    "kaylee@serenity.io",
		Name:     "Kaylee Frye",
		Password: "shiny",
	}
}

func TestNewProvisioner_NilDependencies(t *testing.T) {
	accounts := mocks.NewMockRepository(t)
	tokens := mocks.NewMockTokenRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	notifier := mocks.NewMockNotifier(t)
	tx := mocks.Passthrough{}

	tests := []struct {
		name        string
		build       func() (*account.Provisioner, error)
		expectError string
	}{
		{
			name: "nil accounts repository",
			build: func() (*account.Provisioner, error) {
				return account.NewProvisioner(nil, tokens, tx, hasher, notifier, nil)
			},
			expectError: "accounts repository is required",
		},
		{
			name: "nil tokens repository",
			build: func() (*account.Provisioner, error) {
				return account.NewProvisioner(accounts, nil, tx, hasher, notifier, nil)
			},
			expectError: "tokens repository is required",
		},
		{
			name: "nil transactor",
			build: func() (*account.Provisioner, error) {
				return account.NewProvisioner(accounts, tokens, nil, hasher, notifier, nil)
			},
			expectError: "transactor is required",
		},
		{
			name: "nil hasher",
			build: func() (*account.Provisioner, error) {
				return account.NewProvisioner(accounts, tokens, tx, nil, notifier, nil)
			},
			expectError: "password hasher is required",
		},
		{
			name: "nil notifier",
			build: func() (*account.Provisioner, error) {
				return account.NewProvisioner(accounts, tokens, tx, hasher, nil, nil)
			},
			expectError: "notifier is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestProvisioner_Provision(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and token in one transaction, then notifies", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		notifier := mocks.NewMockNotifier(t)

		hasher.On("Hash", "shiny").Return("$argon2id$v=19$...", nil)
		accounts.On("Create", ctx, mock.AnythingOfType("*account.Account")).Return(nil)
		tokens.On("Create", ctx, mock.AnythingOfType("*account.ConfirmationToken")).Return(nil)
		notifier.On("SendConfirmation", ctx, mock.AnythingOfType("*account.Account"), mock.AnythingOfType("uuid.UUID")).Return(nil)

		p, err := account.NewProvisioner(accounts, tokens, mocks.Passthrough{}, hasher, notifier, nil)
		require.NoError(t, err)

		acct, err := p.Provision(ctx, validSubmission())
		require.NoError(t, err)
		assert.Equal(t, "kaylee@serenity.io", acct.ID)
		assert.Equal(t, "$argon2id$v=19$...", acct.PasswordHash)
		assert.False(t, acct.Confirmed)
	})

	t.Run("notification failure does not fail provisioning", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		notifier := mocks.NewMockNotifier(t)

		hasher.On("Hash", "shiny").Return("$argon2id$v=19$...", nil)
		accounts.On("Create", ctx, mock.Anything).Return(nil)
		tokens.On("Create", ctx, mock.Anything).Return(nil)
		notifier.On("SendConfirmation", ctx, mock.Anything, mock.Anything).
			Return(errors.New("relay unavailable"))

		p, err := account.NewProvisioner(accounts, tokens, mocks.Passthrough{}, hasher, notifier, nil)
		require.NoError(t, err)

		acct, err := p.Provision(ctx, validSubmission())
		require.NoError(t, err, "a committed account must survive a failed email dispatch")
		assert.NotNil(t, acct)
	})

	t.Run("invalid submission short-circuits before any storage work", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		notifier := mocks.NewMockNotifier(t)

		p, err := account.NewProvisioner(accounts, tokens, mocks.Passthrough{}, hasher, notifier, nil)
		require.NoError(t, err)

		_, err = p.Provision(ctx, account.Submission{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_EMAIL")
	})

	t.Run("duplicate email keeps its conflict code", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		notifier := mocks.NewMockNotifier(t)

		hasher.On("Hash", "shiny").Return("$argon2id$v=19$...", nil)
		accounts.On("Create", ctx, mock.Anything).Return(account.ErrEmailTaken)

		p, err := account.NewProvisioner(accounts, tokens, mocks.Passthrough{}, hasher, notifier, nil)
		require.NoError(t, err)

		_, err = p.Provision(ctx, validSubmission())
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrEmailTaken)
	})

	t.Run("token write failure aborts the whole transaction", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		notifier := mocks.NewMockNotifier(t)

		hasher.On("Hash", "shiny").Return("$argon2id$v=19$...", nil)
		accounts.On("Create", ctx, mock.Anything).Return(nil)
		tokens.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

		p, err := account.NewProvisioner(accounts, tokens, mocks.Passthrough{}, hasher, notifier, nil)
		require.NoError(t, err)

		_, err = p.Provision(ctx, validSubmission())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_PROVISION_FAILED")
	})

	t.Run("hashing failure aborts provisioning", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		notifier := mocks.NewMockNotifier(t)

		hasher.On("Hash", "shiny").Return("", errors.New("entropy exhausted"))

		p, err := account.NewProvisioner(accounts, tokens, mocks.Passthrough{}, hasher, notifier, nil)
		require.NoError(t, err)

		_, err = p.Provision(ctx, validSubmission())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_PROVISION_FAILED")
	})
}
