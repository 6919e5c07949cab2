// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package mocks provides testify mocks for the account package's
// interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/rushplatform/rush/internal/account"
)

// MockRepository mocks account.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository whose expectations are
// asserted on test cleanup.
func NewMockRepository(t *testing.T) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, acct *account.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if acct, ok := args.Get(0).(*account.Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) MarkConfirmed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenRepository mocks account.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a MockTokenRepository whose
// expectations are asserted on test cleanup.
func NewMockTokenRepository(t *testing.T) *MockTokenRepository {
	m := &MockTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenRepository) Create(ctx context.Context, token *account.ConfirmationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Consume(ctx context.Context, token uuid.UUID) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// MockPasswordHasher mocks account.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose
// expectations are asserted on test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, encodedHash string) (bool, error) {
	args := m.Called(password, encodedHash)
	return args.Bool(0), args.Error(1)
}

// MockNotifier mocks account.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a MockNotifier whose expectations are
// asserted on test cleanup.
func NewMockNotifier(t *testing.T) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, acct *account.Account, token uuid.UUID) error {
	args := m.Called(ctx, acct, token)
	return args.Error(0)
}

// MockTransactor mocks account.Transactor. By default it executes the
// transaction function with the given context, mirroring a committed
// transaction.
type MockTransactor struct {
	mock.Mock
}

// NewMockTransactor creates a MockTransactor whose expectations are
// asserted on test cleanup.
func NewMockTransactor(t *testing.T) *MockTransactor {
	m := &MockTransactor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// Passthrough is a Transactor stand-in that simply runs the function,
// for tests that only care about the calls made inside it.
type Passthrough struct{}

func (Passthrough) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Compile-time interface checks.
var (
	_ account.Repository      = (*MockRepository)(nil)
	_ account.TokenRepository = (*MockTokenRepository)(nil)
	_ account.PasswordHasher  = (*MockPasswordHasher)(nil)
	_ account.Notifier        = (*MockNotifier)(nil)
	_ account.Transactor      = (*MockTransactor)(nil)
	_ account.Transactor      = Passthrough{}
)
