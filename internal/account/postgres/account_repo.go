// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package postgres implements the account package's repositories using
// PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/store"
)

// AccountRepository implements account.Repository using PostgreSQL.
type AccountRepository struct {
	db store.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db store.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) error {
	q := store.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (
			id, email, name, password_hash, confirmed,
			created_by, updated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		acct.ID,
		acct.Email,
		acct.Name,
		acct.PasswordHash,
		acct.Confirmed,
		acct.CreatedBy,
		acct.UpdatedBy,
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_EMAIL_TAKEN").
				With("email", acct.Email).
				Wrap(account.ErrEmailTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("id", acct.ID).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves an account by email (case-insensitive),
// including its owned instance names.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	q := store.QuerierFrom(ctx, r.db)
	row := q.QueryRow(ctx, `
		SELECT id, email, name, password_hash, confirmed,
		       created_by, updated_by, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			With("email", email).
			Wrap(err)
	}

	instances, err := r.instanceNames(ctx, q, acct.ID)
	if err != nil {
		return nil, err
	}
	acct.Instances = instances
	return acct, nil
}

// MarkConfirmed flips the confirmed flag to true.
func (r *AccountRepository) MarkConfirmed(ctx context.Context, id string) error {
	q := store.QuerierFrom(ctx, r.db)
	result, err := q.Exec(ctx, `
		UPDATE accounts SET confirmed = TRUE, updated_at = $2
		WHERE id = $1
	`, id, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_CONFIRM_FAILED").
			With("operation", "mark account confirmed").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// instanceNames loads the account's owned instance names in creation order.
func (r *AccountRepository) instanceNames(ctx context.Context, q store.Querier, accountID string) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT name FROM instances
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INSTANCES_FAILED").
			With("operation", "list account instances").
			With("account_id", accountID).
			Wrap(err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.Code("ACCOUNT_INSTANCES_FAILED").
				With("operation", "scan instance name").
				Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_INSTANCES_FAILED").
			With("operation", "iterate instance names").
			Wrap(err)
	}
	return names, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*account.Account, error) {
	var acct account.Account
	err := row.Scan(
		&acct.ID,
		&acct.Email,
		&acct.Name,
		&acct.PasswordHash,
		&acct.Confirmed,
		&acct.CreatedBy,
		&acct.UpdatedBy,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}
	return &acct, nil
}

// Compile-time interface check.
var _ account.Repository = (*AccountRepository)(nil)
