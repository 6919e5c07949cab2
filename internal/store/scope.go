// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// subjectSetting is the connection-local setting that carries the
// authenticated subject for the duration of one request. Row-level
// policies in the schema read it via current_setting.
const subjectSetting = "rush.subject"

// ScopeConn is the connection surface a Scope manages. *pgxpool.Conn
// satisfies it; tests substitute a fake.
type ScopeConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

// Scope is a single pooled connection credentialed for exactly one
// request. The credential is bound on acquisition and reset on Release,
// so a connection returned to the pool never carries a stale subject
// into another request.
type Scope struct {
	conn     ScopeConn
	subject  string
	released atomic.Bool
}

// scopeKey carries the request's Scope through context.
type scopeKey struct{}

// AcquireScope checks a connection out of the pool and binds subject to
// it. An empty subject acquires an anonymous scope: any residual
// connection-local state is explicitly cleared before the handler runs.
func AcquireScope(ctx context.Context, pool *pgxpool.Pool, subject string) (*Scope, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, oops.Code("SCOPE_ACQUIRE_FAILED").
			With("operation", "acquire pooled connection").
			Wrap(err)
	}
	scope, err := BindScope(ctx, conn, subject)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return scope, nil
}

// BindScope credentials an already-acquired connection. Split from
// AcquireScope so the bind/reset sequence is testable without a pool.
func BindScope(ctx context.Context, conn ScopeConn, subject string) (*Scope, error) {
	if subject != "" {
		if _, err := conn.Exec(ctx, `SELECT set_config($1, $2, false)`, subjectSetting, subject); err != nil {
			return nil, oops.Code("SCOPE_BIND_FAILED").
				With("operation", "bind subject to connection").
				Wrap(err)
		}
	} else {
		if _, err := conn.Exec(ctx, `RESET ALL`); err != nil {
			return nil, oops.Code("SCOPE_BIND_FAILED").
				With("operation", "clear connection credentials").
				Wrap(err)
		}
	}
	return &Scope{conn: conn, subject: subject}, nil
}

// Subject returns the subject bound to this scope, or "" for anonymous.
func (s *Scope) Subject() string {
	return s.subject
}

// Authenticated reports whether a subject is bound to this scope.
func (s *Scope) Authenticated() bool {
	return s.subject != ""
}

// Release resets the connection's credential state and returns it to
// the pool. It is idempotent and must run on every exit path of a
// request, including handler panics and client disconnects; callers
// pass a context that survives request cancellation.
func (s *Scope) Release(ctx context.Context) {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	// The reset must not be skipped: a pooled connection with a live
	// subject would leak elevated credentials into a later request.
	if _, err := s.conn.Exec(ctx, `RESET ALL`); err != nil {
		slog.Warn("failed to reset scoped connection before release",
			"subject_bound", s.subject != "",
			"error", err)
	}
	s.conn.Release()
}

// NewContext returns a child context carrying the request's scope.
func NewContext(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope bound to this request, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*Scope)
	return scope, ok
}
