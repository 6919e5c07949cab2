// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package tenant resolves which tenant a request belongs to from its
// Host header and carries the result through request context.
package tenant

import "strings"

// Resolve extracts a tenant name from a raw host string.
//
// The platform serves tenants on subdomains of a single apex domain
// (tenant.rush.tld), so a resolvable host contains exactly two period
// separators and the tenant name is the segment before the first one.
// Any other period count means the request targets the control plane.
//
// A port suffix is stripped before counting. The rule is deliberately
// strict: custom apex domains and nested subdomains are not supported
// and must not be silently accepted here.
func Resolve(host string) (string, bool) {
	host = stripPort(host)

	periods := strings.Count(host, ".")
	if periods != 2 {
		return "", false
	}

	name := host[:strings.IndexByte(host, '.')]
	if name == "" {
		return "", false
	}
	return name, true
}

// stripPort removes a trailing :port from a host string. IPv6 literals
// never resolve to a tenant, so bracket handling is not needed beyond
// leaving them untouched.
func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		return host
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}
