// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/session"
)

// accountResponse is the public JSON shape of an account. The password
// hash never leaves the service.
type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Confirmed bool      `json:"confirmed"`
	Instances []string  `json:"instances"`
	CreatedAt time.Time `json:"created_at"`
}

func newAccountResponse(acct *account.Account) accountResponse {
	instances := acct.Instances
	if instances == nil {
		instances = []string{}
	}
	return accountResponse{
		ID:        acct.ID,
		Email:     acct.Email,
		Name:      acct.Name,
		Confirmed: acct.Confirmed,
		Instances: instances,
		CreatedAt: acct.CreatedAt,
	}
}

// handleCreateAccount provisions a new account and dispatches its
// confirmation email.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var sub account.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	acct, err := s.provisioner.Provision(r.Context(), sub)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.AccountsCreatedTotal.Inc()
	}
	writeJSON(w, http.StatusOK, newAccountResponse(acct))
}

// handleConfirmAccount consumes a confirmation token. A token is good
// for exactly one confirmation; replays and unknown tokens both come
// back as 400.
func (s *Server) handleConfirmAccount(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		s.recordConfirmation("failure")
		writeBadRequest(w, "token query parameter is required")
		return
	}

	token, err := uuid.Parse(raw)
	if err != nil {
		s.recordConfirmation("failure")
		writeBadRequest(w, "token must be a valid UUID")
		return
	}

	if err := s.confirmer.Confirm(r.Context(), token); err != nil {
		s.recordConfirmation("failure")
		s.writeServiceError(w, r, err)
		return
	}

	s.recordConfirmation("success")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "email address confirmed",
	})
}

// signInRequest is the sign-in request body.
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignIn exchanges credentials for a session token.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	token, err := s.sessions.SignIn(r.Context(), req.Email, req.Password, session.RootScope)
	if err != nil {
		s.recordSignIn("failure")
		s.writeServiceError(w, r, err)
		return
	}

	s.recordSignIn("success")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// createInstanceRequest is the instance creation request body.
type createInstanceRequest struct {
	Name string `json:"name"`
}

// handleCreateInstance provisions a named instance for the
// authenticated account.
func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req createInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	inst, err := s.instances.Create(r.Context(), req.Name, identity.Subject)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, instanceResponse{
		Name:      inst.Name,
		AccountID: inst.AccountID,
		CreatedAt: inst.CreatedAt,
	})
}

// instanceResponse is the public JSON shape of an instance.
type instanceResponse struct {
	Name      string    `json:"name"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// handleListInstances returns the instances owned by the authenticated
// account, oldest first.
func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	instances, err := s.instances.List(r.Context(), identity.Subject)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := make([]instanceResponse, 0, len(instances))
	for _, inst := range instances {
		resp = append(resp, instanceResponse{
			Name:      inst.Name,
			AccountID: inst.AccountID,
			CreatedAt: inst.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealthCheck reports whether the service can reach its database.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) recordConfirmation(status string) {
	if s.metrics != nil {
		s.metrics.ConfirmationsTotal.WithLabelValues(status).Inc()
	}
}

func (s *Server) recordSignIn(status string) {
	if s.metrics != nil {
		s.metrics.SigninsTotal.WithLabelValues(status).Inc()
	}
}
