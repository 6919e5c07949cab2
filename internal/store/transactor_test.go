// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushplatform/rush/internal/store"
	"github.com/rushplatform/rush/pkg/errutil"
)

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO instances").
		WithArgs("engine-room").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	transactor := store.NewTransactor(mock)
	err = transactor.InTransaction(context.Background(), func(ctx context.Context) error {
		tx, ok := store.TxFromContext(ctx)
		require.True(t, ok)
		_, execErr := tx.Exec(ctx, "INSERT INTO instances (name) VALUES ($1)", "engine-room")
		return execErr
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("business rule violated")
	transactor := store.NewTransactor(mock)
	err = transactor.InTransaction(context.Background(), func(context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_BeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	transactor := store.NewTransactor(mock)
	err = transactor.InTransaction(context.Background(), func(context.Context) error {
		t.Fatal("fn must not run when Begin fails")
		return nil
	})
	errutil.AssertErrorCode(t, err, "TX_BEGIN_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_CommitFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	transactor := store.NewTransactor(mock)
	err = transactor.InTransaction(context.Background(), func(context.Context) error {
		return nil
	})
	errutil.AssertErrorCode(t, err, "TX_COMMIT_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxFromContext_Absent(t *testing.T) {
	tx, ok := store.TxFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, tx)
}
