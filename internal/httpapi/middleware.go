// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rushplatform/rush/internal/session"
	"github.com/rushplatform/rush/internal/store"
	"github.com/rushplatform/rush/internal/tenant"
	"github.com/rushplatform/rush/pkg/errutil"
)

// guard gates a handler on a per-route predicate.
type guard func(http.HandlerFunc) http.HandlerFunc

// requireControlPlane rejects requests addressed to a tenant host.
// Control-plane endpoints exist only in the control-plane namespace.
func requireControlPlane(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := tenant.FromContext(r.Context()); ok {
			writeNotFound(w)
			return
		}
		next(w, r)
	}
}

// requireTenant rejects requests that do not address a tenant host.
func requireTenant(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := tenant.FromContext(r.Context()); !ok {
			writeNotFound(w)
			return
		}
		next(w, r)
	}
}

// requireAuth rejects requests without an authenticated identity.
func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.IdentityFromContext(r.Context()); !ok {
			writeUnauthorized(w)
			return
		}
		next(w, r)
	}
}

// tenantMiddleware resolves the request's Host header to a tenant name
// and stores it in the request context. Hosts that do not match the
// tenant form pass through as control-plane requests.
func (s *Server) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, ok := tenant.Resolve(r.Host); ok {
			r = r.WithContext(tenant.NewContext(r.Context(), name))
		}
		next.ServeHTTP(w, r)
	})
}

// authGate authenticates the request's bearer token (if any) and binds
// a database scope for the request's lifetime. The scope is always
// released, including on handler panic or client disconnect. A missing
// or invalid token yields an anonymous scope; route guards decide
// whether anonymous access is acceptable.
func (s *Server) authGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subject := ""
		if token := bearerToken(r); token != "" {
			claims, err := s.sessions.Verify(token)
			if err != nil {
				s.logger.DebugContext(ctx, "rejected session token", "error", err)
			} else {
				subject = claims.Subject
				ctx = session.NewContext(ctx, &session.Identity{
					Subject: claims.Subject,
					Scope:   claims.Scope,
				})
			}
		}

		scope, err := s.scopes(ctx, subject)
		if err != nil {
			errutil.LogError(ctx, s.logger, "failed to bind request scope", err)
			writeInternalError(w)
			return
		}
		// Release must run even when the request context is already
		// cancelled, otherwise the bound credentials leak into the pool.
		defer scope.Release(context.WithoutCancel(ctx))

		ctx = store.NewContext(ctx, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the bearer token from the Authorization header,
// or returns "" when absent or malformed.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each request and records the request metric.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = r.URL.Path
		}

		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(
				r.Method, routePattern, strconv.Itoa(rec.status),
			).Inc()
		}

		s.logger.InfoContext(r.Context(), "request handled",
			"method", r.Method,
			"route", routePattern,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// recoveryMiddleware converts handler panics into 500 responses.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.ErrorContext(r.Context(), "handler panicked",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
