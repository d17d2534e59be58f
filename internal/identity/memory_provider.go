package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryProvider is an in-process identity provider for development and tests.
type MemoryProvider struct {
	mu      sync.RWMutex
	byLogin map[string]Identity
	keys    map[string]string
}

// NewMemoryProvider builds an empty in-memory identity provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		byLogin: make(map[string]Identity),
		keys:    make(map[string]string),
	}
}

func (p *MemoryProvider) CreateIdentity(_ context.Context, loginID, credential string, meta Metadata) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.MinCost)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byLogin[loginID]; exists {
		return "", ErrIdentityExists
	}
	ident := Identity{
		Key:            uuid.NewString(),
		LoginID:        loginID,
		DisplayName:    meta.DisplayName,
		Role:           meta.Role,
		ClinicID:       meta.ClinicID,
		CredentialHash: hash,
		CreatedAt:      time.Now().UTC(),
	}
	p.byLogin[loginID] = ident
	p.keys[ident.Key] = loginID
	return ident.Key, nil
}

func (p *MemoryProvider) DeleteIdentity(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	loginID, ok := p.keys[key]
	if !ok {
		return ErrNotFound
	}
	delete(p.keys, key)
	delete(p.byLogin, loginID)
	return nil
}

func (p *MemoryProvider) FindIdentityByLoginID(_ context.Context, loginID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ident, ok := p.byLogin[loginID]
	if !ok {
		return "", ErrNotFound
	}
	return ident.Key, nil
}

func (p *MemoryProvider) Authenticate(_ context.Context, loginID, credential string) (Identity, error) {
	p.mu.RLock()
	ident, ok := p.byLogin[loginID]
	p.mu.RUnlock()
	if !ok {
		return Identity{}, ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(ident.CredentialHash, []byte(credential)); err != nil {
		return Identity{}, ErrInvalidCredential
	}
	return ident, nil
}

// Get returns the stored identity for a key.
func (p *MemoryProvider) Get(key string) (Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	loginID, ok := p.keys[key]
	if !ok {
		return Identity{}, false
	}
	return p.byLogin[loginID], true
}

// Len reports how many identities exist.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byLogin)
}
