package wallet

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Wallet)}
}

func (r *memoryRepository) Insert(_ context.Context, wallet Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[wallet.IdentityKey]; exists {
		return ErrExists
	}
	r.storage[wallet.IdentityKey] = wallet
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, identityKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[identityKey]; !exists {
		return ErrNotFound
	}
	delete(r.storage, identityKey)
	return nil
}

func (r *memoryRepository) FindByIdentityKey(_ context.Context, identityKey string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[identityKey]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}
