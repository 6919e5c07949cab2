// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package session issues and verifies signed, time-bounded session
// tokens scoped to a tenant namespace. Tokens are stateless after
// issuance: no server-side session table exists.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rushplatform/rush/internal/account"
)

// RootScope is the session scope for control-plane requests that carry
// no tenant.
const RootScope = "root"

// DefaultTTL bounds a session token's lifetime unless configured otherwise.
const DefaultTTL = 24 * time.Hour

// tokenIssuer is the iss claim stamped on every session token.
const tokenIssuer = "rush-control-plane"

// dummyPasswordHash is verified when the email is unknown so response
// time stays constant. It is not a credential and matches no password.
//
//nolint:gosec // G101: fake hash for timing-attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Claims are the contents of a session token.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Issuer verifies credentials and mints signed session tokens.
type Issuer struct {
	accounts   account.Repository
	hasher     account.PasswordHasher
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer. The signing key must be at least 32
// bytes; ttl of zero selects DefaultTTL.
func NewIssuer(accounts account.Repository, hasher account.PasswordHasher, signingKey []byte, ttl time.Duration) (*Issuer, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if len(signingKey) < 32 {
		return nil, oops.Code("SESSION_KEY_TOO_SHORT").
			With("min_bytes", 32).
			Errorf("session signing key must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		accounts:   accounts,
		hasher:     hasher,
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// NewIssuerWithClock creates an Issuer with an injected time source.
// Used by tests that need deterministic expiry.
func NewIssuerWithClock(accounts account.Repository, hasher account.PasswordHasher, signingKey []byte, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	issuer, err := NewIssuer(accounts, hasher, signingKey, ttl)
	if err != nil {
		return nil, err
	}
	if now == nil {
		return nil, oops.Errorf("clock is required")
	}
	issuer.now = now
	return issuer, nil
}

// SignIn verifies email and password and returns a signed session token
// bound to {subject, scope, expiry}. The error for an unknown email and
// the error for a wrong password are identical, so responses carry no
// account-enumeration signal; a dummy hash is verified for unknown
// emails to keep timing constant as well.
func (i *Issuer) SignIn(ctx context.Context, email, password, scope string) (string, error) {
	acct, lookupErr := i.accounts.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	accountExists := false
	switch {
	case lookupErr == nil:
		targetHash = acct.PasswordHash
		accountExists = true
	case errors.Is(lookupErr, account.ErrNotFound):
		// Keep going with the dummy hash.
	default:
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "get account by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := i.hasher.Verify(password, targetHash)
	if verifyErr != nil && accountExists {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !accountExists || !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	if scope == "" {
		scope = RootScope
	}

	now := i.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "sign session token").
			Wrap(err)
	}
	return signed, nil
}

// Verify parses and validates a session token. Expired, malformed, or
// wrongly signed tokens all return SESSION_INVALID.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, oops.Code("SESSION_INVALID").Errorf("session token cannot be empty")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID").Errorf("invalid session token")
	}
	return claims, nil
}
