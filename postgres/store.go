// Package postgres provides the PostgreSQL-backed account store used by
// the service binary. The core only reads accounts; provisioning and
// password changes belong to whatever system owns the accounts table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clutchworks/authcore"
)

// AccountStore reads accounts from PostgreSQL. The pool is owned by the
// caller and is never closed by the store.
type AccountStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewAccountStore wires an AccountStore over the given pool. table names
// the accounts table ("accounts" when empty).
func NewAccountStore(pool *pgxpool.Pool, table string) (*AccountStore, error) {
	if pool == nil {
		return nil, errors.New("postgres: nil pool")
	}
	if table == "" {
		table = "accounts"
	}
	return &AccountStore{pool: pool, table: table}, nil
}

const accountColumns = "id, email, name, password_hash, is_active, is_admin"

// FindByID returns the account with the given identity, or (nil, nil)
// when no such account exists.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*authcore.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", accountColumns, s.table)
	return s.scanOne(s.pool.QueryRow(ctx, query, id))
}

// FindByEmail returns the account registered under email, or (nil, nil)
// when no such account exists. Matching is exact; normalize case upstream
// if the deployment treats emails case-insensitively.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*authcore.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = $1", accountColumns, s.table)
	return s.scanOne(s.pool.QueryRow(ctx, query, email))
}

func (s *AccountStore) scanOne(row pgx.Row) (*authcore.Account, error) {
	var a authcore.Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.IsActive, &a.IsAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: account lookup: %w", err)
	}
	return &a, nil
}

// Ping reports pool connectivity, for readiness checks.
func (s *AccountStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ authcore.AccountStore = (*AccountStore)(nil)
