package identity

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryProviderCreateFindDelete(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	key, err := p.CreateIdentity(ctx, "5551234567@retain.dental", "123456", Metadata{DisplayName: "Sarah Lee", Role: RolePatient, ClinicID: "clinic-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := p.FindIdentityByLoginID(ctx, "5551234567@retain.dental")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != key {
		t.Fatalf("expected key %s, got %s", key, found)
	}

	ident, ok := p.Get(key)
	if !ok || ident.Role != RolePatient || ident.ClinicID != "clinic-1" {
		t.Fatalf("unexpected identity: %+v", ident)
	}

	if err := p.DeleteIdentity(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.FindIdentityByLoginID(ctx, "5551234567@retain.dental"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := p.DeleteIdentity(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemoryProviderRejectsDuplicateLogin(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if _, err := p.CreateIdentity(ctx, "1@retain.dental", "1234", Metadata{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := p.CreateIdentity(ctx, "1@retain.dental", "9999", Metadata{}); !errors.Is(err, ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("expected one identity, got %d", p.Len())
	}
}

func TestMemoryProviderAuthenticate(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if _, err := p.CreateIdentity(ctx, "2@retain.dental", "4321", Metadata{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := p.Authenticate(ctx, "2@retain.dental", "4321"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := p.Authenticate(ctx, "2@retain.dental", "0000"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}
