// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package account implements account provisioning and confirmation for
// the control plane.
//
// # Domain Types
//
// Account and ConfirmationToken are created through their constructors
// (NewAccount, NewConfirmationToken), which validate input. Repository
// implementations receive pre-validated values.
//
// # Services
//
// Provisioner creates an account and its confirmation token inside one
// transaction and dispatches the confirmation email after commit.
// ConfirmationService consumes a token exactly once and flips the
// account's confirmed flag atomically.
package account
