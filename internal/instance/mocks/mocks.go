// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package mocks provides testify mocks for instance interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/rushplatform/rush/internal/instance"
)

// MockRepository is a mock implementation of instance.Repository.
type MockRepository struct {
	mock.Mock
}

var _ instance.Repository = (*MockRepository)(nil)

// NewMockRepository creates a MockRepository that asserts its
// expectations at the end of the test.
func NewMockRepository(t *testing.T) *MockRepository {
	t.Helper()
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, inst *instance.Instance) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockRepository) ListByAccount(ctx context.Context, accountID string) ([]*instance.Instance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*instance.Instance), args.Error(1)
}
