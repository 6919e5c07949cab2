// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/rushplatform/rush/internal/account"
	"github.com/rushplatform/rush/internal/store"
)

// TokenRepository implements account.TokenRepository using PostgreSQL.
type TokenRepository struct {
	db store.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db store.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a new confirmation token.
func (r *TokenRepository) Create(ctx context.Context, token *account.ConfirmationToken) error {
	q := store.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO confirmation_tokens (token, account_id, consumed, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		token.Token,
		token.AccountID,
		token.Consumed,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert confirmation token").
			With("account_id", token.AccountID).
			Wrap(err)
	}
	return nil
}

// Consume marks the token consumed and returns the owning account ID.
// The check and the update happen in a single statement so a token can
// be consumed at most once even under concurrent requests.
func (r *TokenRepository) Consume(ctx context.Context, token uuid.UUID) (string, error) {
	q := store.QuerierFrom(ctx, r.db)
	var accountID string
	err := q.QueryRow(ctx, `
		UPDATE confirmation_tokens SET consumed = TRUE
		WHERE token = $1 AND NOT consumed
		RETURNING account_id
	`, token).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", oops.Code("TOKEN_NOT_FOUND").
			With("token", token.String()).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return "", oops.Code("TOKEN_CONSUME_FAILED").
			With("operation", "consume confirmation token").
			With("token", token.String()).
			Wrap(err)
	}
	return accountID, nil
}

// Compile-time interface check.
var _ account.TokenRepository = (*TokenRepository)(nil)
