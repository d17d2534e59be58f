package patient

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory profile store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Insert(_ context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[profile.IdentityKey]; exists {
		return ErrExists
	}
	r.profiles[profile.IdentityKey] = profile
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, identityKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[identityKey]; !exists {
		return ErrNotFound
	}
	delete(r.profiles, identityKey)
	return nil
}

func (r *memoryRepository) FindByIdentityKey(_ context.Context, identityKey string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[identityKey]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}
