// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package account

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/dberr"
	"github.com/thachln/userbase/pkg/uuid"
)

// PostgresRepository implements the [Repository] interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] values so nothing upstream depends on
// driver details.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new account row.

Description: Generates the opaque store id (UUIDv7), initializes timestamps,
and inserts. The database UNIQUE constraints on name and email are the
authority for uniqueness: a violation — including one caused by a concurrent
registration that slipped past the service's pre-check — comes back as a
client-safe duplicate error, never a generic 500.

Parameters:
  - ctx: context.Context
  - acct: *Account (Entity to persist; ID and timestamps are written back)

Returns:
  - error: apperr.Duplicate on unique violations, wrapped driver errors otherwise
*/
func (repository *PostgresRepository) Create(ctx context.Context, acct *Account) error {
	const query = `
		INSERT INTO accounts (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if acct.ID == "" {
		acct.ID = uuid.New()
	}
	now := time.Now()
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
	}
	acct.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		acct.ID,
		acct.Name,
		acct.Email,
		acct.PasswordHash,
		acct.CreatedAt,
		acct.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			if dberr.ConstraintName(err) == "accounts_name_key" {
				return apperr.Duplicate("Name is already taken, kindly try another name")
			}
			return apperr.Duplicate("Email already exists, kindly try another email")
		}
		return dberr.Wrap(err)
	}

	return nil
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *Account: Hydrated entity
  - error: dberr.ErrNotFound or wrapped driver errors
*/
func (repository *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE email = $1`

	return repository.queryOne(ctx, query, email)
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - ctx: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated entity
  - error: dberr.ErrNotFound or wrapped driver errors
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	return repository.queryOne(ctx, query, id)
}

/*
UpdatePassword replaces only the stored password hash and bumps updated_at.

Parameters:
  - ctx: context.Context
  - accountID: string
  - newHash: string

Returns:
  - error: dberr.ErrNotFound if no row matched, wrapped driver errors otherwise
*/
func (repository *PostgresRepository) UpdatePassword(ctx context.Context, accountID, newHash string) error {
	const query = `
		UPDATE accounts
		SET password_hash = $2, updated_at = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, accountID, newHash, time.Now())
	if err != nil {
		return dberr.Wrap(err)
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// queryOne runs a single-row account query; driver errors go through
// [dberr.Wrap] so pgx.ErrNoRows surfaces as the shared not-found error.
func (repository *PostgresRepository) queryOne(ctx context.Context, query string, arg any) (*Account, error) {
	acct := &Account{}
	err := repository.pool.QueryRow(ctx, query, arg).Scan(
		&acct.ID,
		&acct.Name,
		&acct.Email,
		&acct.PasswordHash,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return acct, nil
}
