// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/rushplatform/rush/internal/account"
	accountpg "github.com/rushplatform/rush/internal/account/postgres"
	"github.com/rushplatform/rush/internal/config"
	"github.com/rushplatform/rush/internal/httpapi"
	"github.com/rushplatform/rush/internal/instance"
	instancepg "github.com/rushplatform/rush/internal/instance/postgres"
	"github.com/rushplatform/rush/internal/logging"
	"github.com/rushplatform/rush/internal/mailer"
	"github.com/rushplatform/rush/internal/observability"
	"github.com/rushplatform/rush/internal/session"
	"github.com/rushplatform/rush/internal/store"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the control-plane HTTP server",
		Long: `Start the control-plane HTTP server, which handles account
provisioning, email confirmation, sign-in, and instance management.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	cmd.Flags().String("server.addr", "", "HTTP listen address")
	cmd.Flags().String("server.metrics_addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("server.base_url", "", "externally reachable base URL for confirmation links")
	cmd.Flags().String("log.format", "", "log format (json or text)")

	return cmd
}

// runServeWithDeps starts the control plane with injectable
// dependencies. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = store.Connect
	}
	if deps.NotifierFactory == nil {
		deps.NotifierFactory = defaultNotifier
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.SetDefault("rushd", version, cfg.Log.Format)

	slog.Info("starting control plane",
		"addr", cfg.Server.Addr,
		"log_format", cfg.Log.Format,
	)

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Server.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	apiFactory := deps.APIServerFactory
	if apiFactory == nil {
		apiFactory = func(cfg config.Config, pool *pgxpool.Pool, metrics *observability.Metrics) (APIServer, error) {
			return buildAPIServer(cfg, pool, metrics, deps)
		}
	}

	apiServer, err := apiFactory(cfg, pool, metrics)
	if err != nil {
		return fmt.Errorf("failed to build api server: %w", err)
	}

	apiErrChan, err := apiServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Control plane started")
	slog.Info("control plane ready", "addr", cfg.Server.Addr)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	slog.Info("shutting down...")

	if err := apiServer.Close(); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// buildAPIServer wires the domain services onto the HTTP server.
func buildAPIServer(cfg config.Config, pool *pgxpool.Pool, metrics *observability.Metrics, deps *ServeDeps) (APIServer, error) {
	accountRepo := accountpg.NewAccountRepository(pool)
	tokenRepo := accountpg.NewTokenRepository(pool)
	instanceRepo := instancepg.NewInstanceRepository(pool)
	transactor := store.NewTransactor(pool)
	hasher := account.NewArgon2idHasher()

	notifier, err := deps.NotifierFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build mail notifier: %w", err)
	}

	provisioner, err := account.NewProvisioner(accountRepo, tokenRepo, transactor, hasher, notifier, slog.Default())
	if err != nil {
		return nil, err
	}
	confirmer, err := account.NewConfirmationService(accountRepo, tokenRepo, transactor)
	if err != nil {
		return nil, err
	}
	issuer, err := session.NewIssuer(accountRepo, hasher, []byte(cfg.Session.SigningKey), cfg.Session.TTL)
	if err != nil {
		return nil, err
	}
	instances, err := instance.NewService(instanceRepo)
	if err != nil {
		return nil, err
	}

	return httpapi.New(httpapi.Deps{
		Addr:        cfg.Server.Addr,
		Provisioner: provisioner,
		Confirmer:   confirmer,
		Sessions:    issuer,
		Instances:   instances,
		Pinger:      pool,
		Scopes:      httpapi.PoolScopeFactory(pool),
		Metrics:     metrics,
		Logger:      slog.Default(),
	})
}

// defaultNotifier builds the confirmation notifier for the loaded
// configuration: a real SMTP mailer when a relay is configured, a
// logging stand-in otherwise.
func defaultNotifier(cfg config.Config) (account.Notifier, error) {
	if !cfg.MailEnabled() {
		slog.Warn("no SMTP relay configured, confirmation emails will be logged only")
		return mailer.NewLogNotifier(cfg.Server.BaseURL, slog.Default()), nil
	}
	return mailer.New(mailer.Options{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		BaseURL:  cfg.Server.BaseURL,
		Logger:   slog.Default(),
	})
}

// monitorServerErrors watches a server's error channel and cancels the
// context on error so a failed server takes the process down
// gracefully. It exits when an error arrives, the channel closes, or
// the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
