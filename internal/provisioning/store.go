package provisioning

import (
	"context"

	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/wallet"
)

// Store adapts the profile and wallet repositories to DataStore.
type Store struct {
	profiles patient.Repository
	wallets  wallet.Repository
}

// NewStore builds a DataStore over the given repositories.
func NewStore(profiles patient.Repository, wallets wallet.Repository) *Store {
	return &Store{profiles: profiles, wallets: wallets}
}

func (s *Store) InsertProfile(ctx context.Context, profile patient.Profile) error {
	return s.profiles.Insert(ctx, profile)
}

func (s *Store) InsertWallet(ctx context.Context, w wallet.Wallet) error {
	return s.wallets.Insert(ctx, w)
}

func (s *Store) DeleteProfile(ctx context.Context, identityKey string) error {
	return s.profiles.Delete(ctx, identityKey)
}

func (s *Store) DeleteWallet(ctx context.Context, identityKey string) error {
	return s.wallets.Delete(ctx, identityKey)
}

func (s *Store) FindProfileByIdentityKey(ctx context.Context, identityKey string) (patient.Profile, error) {
	return s.profiles.FindByIdentityKey(ctx, identityKey)
}

func (s *Store) FindWalletByIdentityKey(ctx context.Context, identityKey string) (wallet.Wallet, error) {
	return s.wallets.FindByIdentityKey(ctx, identityKey)
}
