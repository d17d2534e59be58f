package wallet

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no wallet exists for an identity key.
	ErrNotFound = errors.New("wallet not found")
	// ErrExists is returned when a wallet already exists for an identity key.
	ErrExists = errors.New("wallet already exists")
)

// Wallet holds a patient's loyalty balance, keyed by identity.
type Wallet struct {
	IdentityKey string
	Balance     int64
	CreatedAt   time.Time
}

// New returns an empty wallet for the identity.
func New(identityKey string) Wallet {
	return Wallet{IdentityKey: identityKey, Balance: 0, CreatedAt: time.Now().UTC()}
}
