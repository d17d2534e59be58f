package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/retain-dental/retain/internal/infra"
)

// PostgresProvider keeps identities in the service's own PostgreSQL database.
// The UNIQUE constraint on login_id arbitrates concurrent creation.
type PostgresProvider struct {
	db   *pgxpool.Pool
	cost int
}

// NewPostgresProvider builds a Postgres-backed identity provider.
func NewPostgresProvider(db *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{db: db, cost: bcrypt.DefaultCost}
}

// CreateIdentity hashes the credential and inserts a new identity.
func (p *PostgresProvider) CreateIdentity(ctx context.Context, loginID, credential string, meta Metadata) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}

	key := uuid.New()
	_, err = p.db.Exec(ctx, `INSERT INTO identities (id, login_id, credential_hash, display_name, role, clinic_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`, key, loginID, hash, meta.DisplayName, meta.Role, meta.ClinicID, time.Now().UTC())
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return "", ErrIdentityExists
		}
		return "", err
	}
	return key.String(), nil
}

// DeleteIdentity removes an identity by key.
func (p *PostgresProvider) DeleteIdentity(ctx context.Context, key string) error {
	id, err := uuid.Parse(key)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := p.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindIdentityByLoginID returns the key bound to a login identifier.
func (p *PostgresProvider) FindIdentityByLoginID(ctx context.Context, loginID string) (string, error) {
	var id uuid.UUID
	if err := p.db.QueryRow(ctx, `SELECT id FROM identities WHERE login_id = $1`, loginID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return id.String(), nil
}

// Authenticate verifies a credential against the stored hash.
func (p *PostgresProvider) Authenticate(ctx context.Context, loginID, credential string) (Identity, error) {
	row := p.db.QueryRow(ctx, `SELECT id, login_id, credential_hash, display_name, role, clinic_id, created_at
        FROM identities WHERE login_id = $1`, loginID)
	var (
		id        uuid.UUID
		createdAt time.Time
		ident     Identity
	)
	if err := row.Scan(&id, &ident.LoginID, &ident.CredentialHash, &ident.DisplayName, &ident.Role, &ident.ClinicID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword(ident.CredentialHash, []byte(credential)); err != nil {
		return Identity{}, ErrInvalidCredential
	}
	ident.Key = id.String()
	ident.CreatedAt = createdAt.UTC()
	return ident, nil
}
