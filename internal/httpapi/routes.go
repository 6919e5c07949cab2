// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// route describes one API endpoint and the guards that gate it.
type route struct {
	method  string
	pattern string
	guards  []guard
	handler http.HandlerFunc
}

// routes returns the control-plane route table.
func (s *Server) routes() []route {
	return []route{
		{
			method:  http.MethodPost,
			pattern: "/account",
			guards:  []guard{requireControlPlane},
			handler: s.handleCreateAccount,
		},
		{
			method:  http.MethodGet,
			pattern: "/account/confirm",
			guards:  []guard{requireControlPlane},
			handler: s.handleConfirmAccount,
		},
		{
			method:  http.MethodPost,
			pattern: "/account/signin",
			guards:  []guard{requireControlPlane},
			handler: s.handleSignIn,
		},
		{
			method:  http.MethodPost,
			pattern: "/instance",
			guards:  []guard{requireControlPlane, requireAuth},
			handler: s.handleCreateInstance,
		},
		{
			method:  http.MethodGet,
			pattern: "/instance",
			guards:  []guard{requireControlPlane, requireAuth},
			handler: s.handleListInstances,
		},
		{
			method:  http.MethodGet,
			pattern: "/health_check",
			handler: s.handleHealthCheck,
		},
	}
}

// Router builds the chi router with all middleware and routes. It is
// exported so tests can drive the full stack through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(s.tenantMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.authGate)

	for _, rt := range s.routes() {
		handler := rt.handler
		for i := len(rt.guards) - 1; i >= 0; i-- {
			handler = rt.guards[i](handler)
		}
		r.Method(rt.method, rt.pattern, handler)
	}

	return r
}
