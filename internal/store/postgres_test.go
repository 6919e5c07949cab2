// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package store_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushplatform/rush/internal/store"
	"github.com/rushplatform/rush/pkg/errutil"
)

func TestConnect_InvalidURL(t *testing.T) {
	pool, err := store.Connect(context.Background(), "not a database url ://")
	assert.Nil(t, pool)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}

// contextWithTx opens a transaction on mock and returns a context
// carrying it, the way repositories see it inside InTransaction.
func contextWithTx(t *testing.T, mock pgxmock.PgxPoolIface) context.Context {
	t.Helper()
	mock.ExpectBegin()
	mock.ExpectCommit()

	var captured context.Context
	err := store.NewTransactor(mock).InTransaction(context.Background(), func(ctx context.Context) error {
		captured = ctx
		return nil
	})
	require.NoError(t, err)
	return captured
}

func TestQuerierFrom_PrefersTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	conn := &fakeConn{}
	scope, err := store.BindScope(context.Background(), conn, "kaylee@serenity.io")
	require.NoError(t, err)

	ctx := store.NewContext(contextWithTx(t, mock), scope)

	tx, ok := store.TxFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, store.Querier(tx), store.QuerierFrom(ctx, mock))
}

func TestQuerierFrom_ScopeBeforePool(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	conn := &fakeConn{}
	scope, err := store.BindScope(context.Background(), conn, "kaylee@serenity.io")
	require.NoError(t, err)

	ctx := store.NewContext(context.Background(), scope)
	assert.Equal(t, store.Querier(conn), store.QuerierFrom(ctx, mock))
}

func TestQuerierFrom_DefaultsToPool(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	assert.Equal(t, store.Querier(mock), store.QuerierFrom(context.Background(), mock))
}
