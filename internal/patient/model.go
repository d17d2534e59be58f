package patient

import (
	"errors"
	"time"
)

const (
	// RolePatient mirrors the identity role on the CRM profile.
	RolePatient = "PATIENT"
	// TierMember is the baseline loyalty tier every new patient starts in.
	TierMember = "MEMBER"
	// StatusActive marks a profile that can book and earn rewards.
	StatusActive = "ACTIVE"
)

var (
	// ErrNotFound is returned when no profile exists for an identity key.
	ErrNotFound = errors.New("profile not found")
	// ErrExists is returned when a profile already exists for an identity key.
	ErrExists = errors.New("profile already exists")
)

// Profile is the clinic CRM record for a patient. IdentityKey is a
// back-reference to the identity provider; the profile does not own it.
type Profile struct {
	IdentityKey   string
	ClinicID      string
	Name          string
	Mobile        string
	Role          string
	Tier          string
	LifetimeSpend int64
	Status        string
	CreatedAt     time.Time
}

// NewProfile returns a freshly onboarded profile with baseline tier, zero
// spend and active status.
func NewProfile(identityKey, clinicID, name, mobile string) Profile {
	return Profile{
		IdentityKey:   identityKey,
		ClinicID:      clinicID,
		Name:          name,
		Mobile:        mobile,
		Role:          RolePatient,
		Tier:          TierMember,
		LifetimeSpend: 0,
		Status:        StatusActive,
		CreatedAt:     time.Now().UTC(),
	}
}
