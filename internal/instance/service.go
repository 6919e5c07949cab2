// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package instance

import (
	"context"

	"github.com/samber/oops"
)

// Service coordinates instance creation for authenticated accounts.
type Service struct {
	instances Repository
}

// NewService creates a Service.
func NewService(instances Repository) (*Service, error) {
	if instances == nil {
		return nil, oops.Errorf("instances repository is required")
	}
	return &Service{instances: instances}, nil
}

// Create provisions a new instance owned by accountID. The created
// instance appears in the owning account's instance list on the next
// read; ownership never changes afterward.
func (s *Service) Create(ctx context.Context, name, accountID string) (*Instance, error) {
	inst, err := NewInstance(name, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.instances.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// List returns the instances owned by accountID, oldest first.
func (s *Service) List(ctx context.Context, accountID string) ([]*Instance, error) {
	if accountID == "" {
		return nil, oops.Code("INSTANCE_INVALID_OWNER").Errorf("owning account id cannot be empty")
	}
	return s.instances.ListByAccount(ctx, accountID)
}
