// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/account/mocks"
	"github.com/rushplatform/rush/pkg/errutil"
)

func TestNewConfirmationService_NilDependencies(t *testing.T) {
	accounts := mocks.NewMockRepository(t)
	tokens := mocks.NewMockTokenRepository(t)
	tx := mocks.Passthrough{}

	_, err := account.NewConfirmationService(nil, tokens, tx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accounts repository is required")

	_, err = account.NewConfirmationService(accounts, nil, tx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokens repository is required")

	_, err = account.NewConfirmationService(accounts, tokens, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transactor is required")
}

func TestConfirmationService_Confirm(t *testing.T) {
	ctx := context.Background()
	token := uuid.New()

	t.Run("consumes token and confirms the account", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)

		tokens.On("Consume", ctx, token).Return("kaylee@serenity.io", nil)
		accounts.On("MarkConfirmed", ctx, "kaylee@serenity.io").Return(nil)

		svc, err := account.NewConfirmationService(accounts, tokens, mocks.Passthrough{})
		require.NoError(t, err)

		require.NoError(t, svc.Confirm(ctx, token))
	})

	t.Run("unknown or replayed token", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)

		tokens.On("Consume", ctx, token).Return("", account.ErrNotFound)

		svc, err := account.NewConfirmationService(accounts, tokens, mocks.Passthrough{})
		require.NoError(t, err)

		err = svc.Confirm(ctx, token)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_NOT_FOUND")
	})

	t.Run("confirm failure after consume aborts the transaction", func(t *testing.T) {
		accounts := mocks.NewMockRepository(t)
		tokens := mocks.NewMockTokenRepository(t)

		tokens.On("Consume", ctx, token).Return("kaylee@serenity.io", nil)
		accounts.On("MarkConfirmed", ctx, "kaylee@serenity.io").Return(errors.New("disk full"))

		svc, err := account.NewConfirmationService(accounts, tokens, mocks.Passthrough{})
		require.NoError(t, err)

		err = svc.Confirm(ctx, token)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ACCOUNT_CONFIRM_FAILED")
	})
}
