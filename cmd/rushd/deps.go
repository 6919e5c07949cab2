// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/config"
	"github.com/rushplatform/rush/internal/observability"
)

// APIServer is the lifecycle surface of the public HTTP server.
type APIServer interface {
	Start() (<-chan error, error)
	Close() error
}

// ObservabilityServer is the lifecycle surface of the metrics/health server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory connects to PostgreSQL.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, url string) (*pgxpool.Pool, error)

	// NotifierFactory builds the confirmation email notifier for the
	// loaded configuration.
	// Default: mailer.New when SMTP is configured, mailer.NewLogNotifier otherwise
	NotifierFactory func(cfg config.Config) (account.Notifier, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// APIServerFactory wraps httpapi.New so tests can substitute a stub.
	APIServerFactory func(cfg config.Config, pool *pgxpool.Pool, metrics *observability.Metrics) (APIServer, error)
}
