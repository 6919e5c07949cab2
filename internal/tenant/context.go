// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package tenant

import "context"

// ctxKey is a private context key type so other packages cannot
// collide with or forge the tenant value.
type ctxKey struct{}

// NewContext returns a child context carrying the resolved tenant name.
func NewContext(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, name)
}

// FromContext returns the tenant name carried by ctx.
// ok is false for control-plane requests, which carry no tenant.
func FromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKey{}).(string)
	return name, ok
}
