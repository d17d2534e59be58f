package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retain-dental/retain/internal/infra"
)

// Repository persists wallets.
type Repository interface {
	Insert(ctx context.Context, wallet Wallet) error
	Delete(ctx context.Context, identityKey string) error
	FindByIdentityKey(ctx context.Context, identityKey string) (Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates a wallet record.
func (r *PostgresRepository) Insert(ctx context.Context, wallet Wallet) error {
	key, err := uuid.Parse(wallet.IdentityKey)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (identity_key, balance, created_at) VALUES ($1, $2, $3)`,
		key, wallet.Balance, wallet.CreatedAt.UTC())
	if infra.IsUniqueViolation(err) {
		return ErrExists
	}
	return err
}

// Delete removes the wallet for an identity.
func (r *PostgresRepository) Delete(ctx context.Context, identityKey string) error {
	key, err := uuid.Parse(identityKey)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM wallets WHERE identity_key = $1`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByIdentityKey fetches the wallet for an identity.
func (r *PostgresRepository) FindByIdentityKey(ctx context.Context, identityKey string) (Wallet, error) {
	key, err := uuid.Parse(identityKey)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	var (
		id        uuid.UUID
		balance   int64
		createdAt time.Time
	)
	err = r.db.QueryRow(ctx, `SELECT identity_key, balance, created_at FROM wallets WHERE identity_key = $1`, key).
		Scan(&id, &balance, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return Wallet{IdentityKey: id.String(), Balance: balance, CreatedAt: createdAt.UTC()}, nil
}
