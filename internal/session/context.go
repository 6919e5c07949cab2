// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package session

import "context"

// Identity is the authenticated principal attached to a request after
// its bearer token verifies.
type Identity struct {
	Subject string
	Scope   string
}

// identityKey is a private context key type so other packages cannot
// forge an identity value.
type identityKey struct{}

// NewContext returns a child context carrying the verified identity.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the request's verified identity, if any.
// Anonymous requests carry none.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
