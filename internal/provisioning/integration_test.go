//go:build integration

package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/retain-dental/retain/internal/identity"
	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/testutil/containers"
	"github.com/retain-dental/retain/internal/wallet"
)

// PostgresOnboardingSuite runs the workflow against a real Postgres so the
// unique constraints, not in-memory maps, arbitrate duplicates.
type PostgresOnboardingSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	provider *identity.PostgresProvider
	profiles *patient.PostgresRepository
	wallets  *wallet.PostgresRepository
}

func TestPostgresOnboardingSuite(t *testing.T) {
	suite.Run(t, new(PostgresOnboardingSuite))
}

func (s *PostgresOnboardingSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.provider = identity.NewPostgresProvider(s.pg.Pool)
	s.profiles = patient.NewPostgresRepository(s.pg.Pool)
	s.wallets = wallet.NewPostgresRepository(s.pg.Pool)
}

func (s *PostgresOnboardingSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

func (s *PostgresOnboardingSuite) count(table string) int {
	var n int
	err := s.pg.Pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n)
	s.Require().NoError(err)
	return n
}

func (s *PostgresOnboardingSuite) TestProvisionAndReplay() {
	ctx := context.Background()
	orch := New(s.provider, NewStore(s.profiles, s.wallets))

	first, err := orch.Provision(ctx, sarah())
	s.Require().NoError(err)
	second, err := orch.Provision(ctx, sarah())
	s.Require().NoError(err)

	s.Equal(first.IdentityKey, second.IdentityKey)
	s.True(second.AlreadyProvisioned)
	s.Equal(1, s.count("identities"))
	s.Equal(1, s.count("patient_profiles"))
	s.Equal(1, s.count("wallets"))

	ident, err := s.provider.Authenticate(ctx, first.LoginID, DefaultFallbackPIN)
	s.Require().NoError(err)
	s.Equal(identity.RolePatient, ident.Role)
}

func (s *PostgresOnboardingSuite) TestWalletFailureLeavesNothingBehind() {
	ctx := context.Background()
	f := newFaults()
	f.failOnce(opInsertWallet, errors.New("wallets unavailable"))
	store := &flakyStore{Store: NewStore(s.profiles, s.wallets), faults: f}

	_, err := New(s.provider, store).Provision(ctx, sarah())

	var partial *PartialFailureError
	s.Require().ErrorAs(err, &partial)
	s.True(partial.RolledBack())
	s.Zero(s.count("identities"))
	s.Zero(s.count("patient_profiles"))
	s.Zero(s.count("wallets"))
}

func (s *PostgresOnboardingSuite) TestDuplicateInsertsMapToSentinels() {
	ctx := context.Background()
	key, err := s.provider.CreateIdentity(ctx, "5550000000@retain.dental", "1234", identity.Metadata{Role: identity.RolePatient})
	s.Require().NoError(err)

	_, err = s.provider.CreateIdentity(ctx, "5550000000@retain.dental", "1234", identity.Metadata{Role: identity.RolePatient})
	s.ErrorIs(err, identity.ErrIdentityExists)

	s.Require().NoError(s.profiles.Insert(ctx, patient.NewProfile(key, "clinic-1", "A", "5550000000")))
	s.ErrorIs(s.profiles.Insert(ctx, patient.NewProfile(key, "clinic-1", "A", "5550000000")), patient.ErrExists)

	s.Require().NoError(s.wallets.Insert(ctx, wallet.New(key)))
	s.ErrorIs(s.wallets.Insert(ctx, wallet.New(key)), wallet.ErrExists)

	s.Require().NoError(s.wallets.Delete(ctx, key))
	s.ErrorIs(s.wallets.Delete(ctx, key), wallet.ErrNotFound)
}
