package logo

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a clinic slug is unknown or has no logo.
var ErrNotFound = errors.New("clinic logo not found")

// Directory resolves clinic slugs to logo URLs.
type Directory interface {
	FindClinicLogoBySlug(ctx context.Context, slug string) (string, error)
}

// PostgresDirectory reads logo URLs from the clinics table.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory builds a directory backed by PostgreSQL.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// FindClinicLogoBySlug returns the logo URL for slug.
func (d *PostgresDirectory) FindClinicLogoBySlug(ctx context.Context, slug string) (string, error) {
	var url *string
	err := d.db.QueryRow(ctx, `SELECT logo_url FROM clinics WHERE slug = $1`, slug).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if url == nil || *url == "" {
		return "", ErrNotFound
	}
	return *url, nil
}

// MemoryDirectory is an in-memory Directory for development and tests.
type MemoryDirectory struct {
	mu    sync.RWMutex
	logos map[string]string
}

// NewMemoryDirectory builds an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{logos: make(map[string]string)}
}

// Put registers a logo URL for slug.
func (d *MemoryDirectory) Put(slug, url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logos[slug] = url
}

func (d *MemoryDirectory) FindClinicLogoBySlug(_ context.Context, slug string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	url, ok := d.logos[slug]
	if !ok || url == "" {
		return "", ErrNotFound
	}
	return url, nil
}
