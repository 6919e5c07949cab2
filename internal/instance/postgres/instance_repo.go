// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package postgres implements the instance package's repository using
// PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/rushplatform/rush/internal/instance"
	"github.com/rushplatform/rush/internal/store"
)

// InstanceRepository implements instance.Repository using PostgreSQL.
type InstanceRepository struct {
	db store.DB
}

// NewInstanceRepository creates a new InstanceRepository.
func NewInstanceRepository(db store.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// Create stores a new instance.
func (r *InstanceRepository) Create(ctx context.Context, inst *instance.Instance) error {
	q := store.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO instances (name, account_id, created_at)
		VALUES ($1, $2, $3)
	`,
		inst.Name,
		inst.AccountID,
		inst.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("INSTANCE_NAME_TAKEN").
				With("name", inst.Name).
				Wrap(instance.ErrNameTaken)
		}
		return oops.Code("INSTANCE_CREATE_FAILED").
			With("operation", "insert instance").
			With("name", inst.Name).
			Wrap(err)
	}
	return nil
}

// ListByAccount returns the instances owned by an account in creation order.
func (r *InstanceRepository) ListByAccount(ctx context.Context, accountID string) ([]*instance.Instance, error) {
	q := store.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT name, account_id, created_at
		FROM instances
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, oops.Code("INSTANCE_LIST_FAILED").
			With("operation", "list instances by account").
			With("account_id", accountID).
			Wrap(err)
	}
	defer rows.Close()

	instances := []*instance.Instance{}
	for rows.Next() {
		var inst instance.Instance
		if err := rows.Scan(&inst.Name, &inst.AccountID, &inst.CreatedAt); err != nil {
			return nil, oops.Code("INSTANCE_LIST_FAILED").
				With("operation", "scan instance").
				Wrap(err)
		}
		instances = append(instances, &inst)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("INSTANCE_LIST_FAILED").
			With("operation", "iterate instances").
			Wrap(err)
	}
	return instances, nil
}

// Compile-time interface check.
var _ instance.Repository = (*InstanceRepository)(nil)
