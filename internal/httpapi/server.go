// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package httpapi serves the control-plane HTTP API: account
// provisioning, email confirmation, sign-in, and instance management.
//
// Every request passes through host resolution (which tenant, if any,
// the request addresses) and the auth gate (which binds a
// database-level subject scope for the lifetime of the request).
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/instance"
	"github.com/rushplatform/rush/internal/observability"
	"github.com/rushplatform/rush/internal/session"
	"github.com/rushplatform/rush/internal/store"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Provisioner creates accounts with their confirmation tokens.
type Provisioner interface {
	Provision(ctx context.Context, sub account.Submission) (*account.Account, error)
}

// Confirmer consumes confirmation tokens.
type Confirmer interface {
	Confirm(ctx context.Context, token uuid.UUID) error
}

// SessionIssuer issues and verifies session tokens.
type SessionIssuer interface {
	SignIn(ctx context.Context, email, password, scope string) (string, error)
	Verify(token string) (*session.Claims, error)
}

// InstanceService provisions and lists named instances for accounts.
type InstanceService interface {
	Create(ctx context.Context, name, accountID string) (*instance.Instance, error)
	List(ctx context.Context, accountID string) ([]*instance.Instance, error)
}

// Pinger reports database connectivity for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ScopeFactory acquires a database scope bound to a subject. The empty
// subject yields an anonymous scope.
type ScopeFactory func(ctx context.Context, subject string) (*store.Scope, error)

// Deps holds the dependencies required by the API server.
type Deps struct {
	Addr        string
	Provisioner Provisioner
	Confirmer   Confirmer
	Sessions    SessionIssuer
	Instances   InstanceService
	Pinger      Pinger
	Scopes      ScopeFactory
	Metrics     *observability.Metrics
	Logger      *slog.Logger
}

// PoolScopeFactory returns a ScopeFactory backed by a pgx pool.
func PoolScopeFactory(pool *pgxpool.Pool) ScopeFactory {
	return func(ctx context.Context, subject string) (*store.Scope, error) {
		return store.AcquireScope(ctx, pool, subject)
	}
}

// Server is the control-plane HTTP API server.
type Server struct {
	addr        string
	provisioner Provisioner
	confirmer   Confirmer
	sessions    SessionIssuer
	instances   InstanceService
	pinger      Pinger
	scopes      ScopeFactory
	metrics     *observability.Metrics
	logger      *slog.Logger
	server      *http.Server
}

// New creates an API server with the given dependencies. The server is
// not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if deps.Provisioner == nil {
		return nil, fmt.Errorf("provisioner is required")
	}
	if deps.Confirmer == nil {
		return nil, fmt.Errorf("confirmer is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session issuer is required")
	}
	if deps.Instances == nil {
		return nil, fmt.Errorf("instance service is required")
	}
	if deps.Pinger == nil {
		return nil, fmt.Errorf("pinger is required")
	}
	if deps.Scopes == nil {
		return nil, fmt.Errorf("scope factory is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:        deps.Addr,
		provisioner: deps.Provisioner,
		confirmer:   deps.Confirmer,
		sessions:    deps.Sessions,
		instances:   deps.Instances,
		pinger:      deps.Pinger,
		scopes:      deps.Scopes,
		metrics:     deps.Metrics,
		logger:      logger,
	}, nil
}

// Start begins listening for HTTP connections in a background
// goroutine. Serve errors other than graceful close are reported on
// the returned channel, which is closed when the listener stops.
func (s *Server) Start() (<-chan error, error) {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
			errCh <- err
		}
	}()

	s.logger.Info("api server started", "addr", s.addr)
	return errCh, nil
}

// Close gracefully shuts down the API server, waiting for in-flight
// requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("api server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}
