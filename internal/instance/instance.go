// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package instance manages tenant instances: named deployments owned
// by exactly one account, addressed as subdomains of the platform apex.
package instance

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/samber/oops"
)

// Instance name constraints. Names become DNS labels
// (name.rush.tld), so the DNS label rules apply.
const (
	MinNameLength = 3
	MaxNameLength = 63
)

// nameRegex matches names that start with a letter and contain only
// lower-case letters, digits, and hyphens, with no trailing hyphen.
var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// ErrNameTaken is returned when an instance name is already in use.
// Uniqueness holds across the whole control-plane namespace, not per
// account, because the name doubles as the tenant's subdomain.
var ErrNameTaken = errors.New("instance name already in use")

// Instance is a tenant instance owned by one account.
type Instance struct {
	Name      string
	AccountID string
	CreatedAt time.Time
}

// ValidateName validates a candidate instance name.
func ValidateName(name string) error {
	if name == "" {
		return oops.Code("INSTANCE_INVALID_NAME").Errorf("instance name cannot be empty")
	}
	if len(name) < MinNameLength {
		return oops.Code("INSTANCE_INVALID_NAME").
			With("min", MinNameLength).
			Errorf("instance name must be at least %d characters", MinNameLength)
	}
	if len(name) > MaxNameLength {
		return oops.Code("INSTANCE_INVALID_NAME").
			With("max", MaxNameLength).
			Errorf("instance name must be at most %d characters", MaxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return oops.Code("INSTANCE_INVALID_NAME").
			Errorf("instance name must start with a letter and contain only lower-case letters, digits, and hyphens")
	}
	return nil
}

// NewInstance creates a validated Instance.
func NewInstance(name, accountID string) (*Instance, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, oops.Code("INSTANCE_INVALID_OWNER").Errorf("owning account id cannot be empty")
	}
	return &Instance{
		Name:      name,
		AccountID: accountID,
		CreatedAt: time.Now(),
	}, nil
}

// Repository manages instance persistence.
type Repository interface {
	// Create stores a new instance. Returns ErrNameTaken when the name
	// is already registered in the control-plane namespace.
	Create(ctx context.Context, inst *Instance) error

	// ListByAccount returns all instances owned by an account, ordered
	// by creation time.
	ListByAccount(ctx context.Context, accountID string) ([]*Instance, error)
}
