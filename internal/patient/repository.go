package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retain-dental/retain/internal/infra"
)

// Repository persists patient profiles.
type Repository interface {
	Insert(ctx context.Context, profile Profile) error
	Delete(ctx context.Context, identityKey string) error
	FindByIdentityKey(ctx context.Context, identityKey string) (Profile, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new profile.
func (r *PostgresRepository) Insert(ctx context.Context, profile Profile) error {
	key, err := uuid.Parse(profile.IdentityKey)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO patient_profiles (identity_key, clinic_id, name, mobile, role, tier, lifetime_spend, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		key, profile.ClinicID, profile.Name, profile.Mobile, profile.Role, profile.Tier, profile.LifetimeSpend, profile.Status, profile.CreatedAt.UTC())
	if infra.IsUniqueViolation(err) {
		return ErrExists
	}
	return err
}

// Delete removes the profile linked to an identity.
func (r *PostgresRepository) Delete(ctx context.Context, identityKey string) error {
	key, err := uuid.Parse(identityKey)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM patient_profiles WHERE identity_key = $1`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByIdentityKey fetches the profile linked to an identity.
func (r *PostgresRepository) FindByIdentityKey(ctx context.Context, identityKey string) (Profile, error) {
	key, err := uuid.Parse(identityKey)
	if err != nil {
		return Profile{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT identity_key, clinic_id, name, mobile, role, tier, lifetime_spend, status, created_at
        FROM patient_profiles WHERE identity_key = $1`, key)
	var (
		id        uuid.UUID
		createdAt time.Time
		p         Profile
	)
	if err := row.Scan(&id, &p.ClinicID, &p.Name, &p.Mobile, &p.Role, &p.Tier, &p.LifetimeSpend, &p.Status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.IdentityKey = id.String()
	p.CreatedAt = createdAt.UTC()
	return p, nil
}
