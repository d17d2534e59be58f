package identity

import (
	"errors"
	"time"
)

// RolePatient tags identities created by patient onboarding.
const RolePatient = "PATIENT"

var (
	// ErrNotFound is returned when no identity matches a login identifier or key.
	ErrNotFound = errors.New("identity not found")

	// ErrIdentityExists is returned when the login identifier is already bound
	// to an identity. The provider is the arbiter of that uniqueness.
	ErrIdentityExists = errors.New("identity already exists")

	// ErrInvalidCredential is returned when a credential does not match.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Identity is a login identity owned by the identity provider.
type Identity struct {
	Key            string
	LoginID        string
	DisplayName    string
	Role           string
	ClinicID       string
	CredentialHash []byte
	CreatedAt      time.Time
}

// Metadata is attached to an identity when it is created.
type Metadata struct {
	DisplayName string
	Role        string
	ClinicID    string
}
