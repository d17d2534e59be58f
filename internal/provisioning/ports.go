package provisioning

import (
	"context"

	"github.com/retain-dental/retain/internal/identity"
	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/wallet"
)

// IdentityProvider issues login identities. It is the arbiter of login
// identifier uniqueness and reports identity.ErrIdentityExists on collision
// and identity.ErrNotFound on missing lookups.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, loginID, credential string, meta identity.Metadata) (string, error)
	DeleteIdentity(ctx context.Context, key string) error
	FindIdentityByLoginID(ctx context.Context, loginID string) (string, error)
}

// DataStore holds patient profiles and wallets keyed by identity key.
type DataStore interface {
	InsertProfile(ctx context.Context, profile patient.Profile) error
	InsertWallet(ctx context.Context, w wallet.Wallet) error
	DeleteProfile(ctx context.Context, identityKey string) error
	DeleteWallet(ctx context.Context, identityKey string) error
	FindProfileByIdentityKey(ctx context.Context, identityKey string) (patient.Profile, error)
	FindWalletByIdentityKey(ctx context.Context, identityKey string) (wallet.Wallet, error)
}
