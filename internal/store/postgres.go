// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package store provides PostgreSQL connection management, schema
// migrations, transactions, and per-request credential scoping.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DB is the subset of pgxpool.Pool the repositories and the transactor
// depend on. pgxmock's pool interface satisfies it, which keeps
// repository tests off a live database.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Querier is the read/write surface repositories issue statements
// against. It is satisfied by a pool, a pooled connection, and a
// transaction, so one repository method works in all three contexts.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// connectTimeout bounds startup retries against an unavailable database.
const connectTimeout = 30 * time.Second

// Connect opens a pgx connection pool and verifies it with a ping,
// retrying with fibonacci backoff while the database comes up.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}

	var pool *pgxpool.Pool
	backoff := retry.WithMaxDuration(connectTimeout, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, connErr := pgxpool.NewWithConfig(ctx, cfg)
		if connErr != nil {
			return connErr
		}
		if pingErr := p.Ping(ctx); pingErr != nil {
			p.Close()
			return retry.RetryableError(pingErr)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "connect to database").
			Wrap(err)
	}
	return pool, nil
}

// QuerierFrom resolves the Querier for the current request context.
// An open transaction wins, then a credential-scoped connection, then
// the shared pool. Repositories call this at the top of every method so
// transactional and scoped execution need no special-cased code paths.
func QuerierFrom(ctx context.Context, db DB) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	if scope, ok := ScopeFromContext(ctx); ok {
		return scope.conn
	}
	return db
}
