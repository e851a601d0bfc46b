package vault

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"fastpass/internal/connection"
	id "fastpass/pkg/domain"
)

type VaultSuite struct {
	suite.Suite
	vault       *Vault
	connections *connection.InMemory
	created     int
	ctx         context.Context
}

func (s *VaultSuite) SetupTest() {
	s.connections = connection.NewInMemory()
	s.created = 0
	s.vault = New(s.connections, slog.New(slog.DiscardHandler), func() { s.created++ })
	s.ctx = context.Background()
}

func TestVaultSuite(t *testing.T) {
	suite.Run(t, new(VaultSuite))
}

func (s *VaultSuite) TestGetOrCreate() {
	userID := id.NewUserID()
	appID := id.AppID("shop-demo")

	s.Run("first call mints a prefixed credential in signup mode", func() {
		cred, mode, err := s.vault.GetOrCreate(s.ctx, userID, appID)
		s.Require().NoError(err)
		s.Equal(ModeSignup, mode)
		s.True(strings.HasPrefix(cred, CredentialPrefix))
		s.Greater(len(cred), len(CredentialPrefix)+20)
		s.Equal(1, s.created)
	})

	s.Run("second call returns the same credential in login mode", func() {
		first, _, err := s.vault.GetOrCreate(s.ctx, userID, appID)
		s.Require().NoError(err)

		second, mode, err := s.vault.GetOrCreate(s.ctx, userID, appID)
		s.Require().NoError(err)
		s.Equal(ModeLogin, mode)
		s.Equal(first, second)
		s.Equal(1, s.created)
	})

	s.Run("different apps get different credentials", func() {
		credA, _, err := s.vault.GetOrCreate(s.ctx, userID, "app-a")
		s.Require().NoError(err)
		credB, _, err := s.vault.GetOrCreate(s.ctx, userID, "app-b")
		s.Require().NoError(err)
		s.NotEqual(credA, credB)
	})

	s.Run("different users get different credentials for the same app", func() {
		credA, _, err := s.vault.GetOrCreate(s.ctx, id.NewUserID(), appID)
		s.Require().NoError(err)
		credB, _, err := s.vault.GetOrCreate(s.ctx, id.NewUserID(), appID)
		s.Require().NoError(err)
		s.NotEqual(credA, credB)
	})
}

func (s *VaultSuite) TestRaceLoser() {
	userID := id.NewUserID()
	appID := id.AppID("racy-app")

	// A concurrent writer already stored a credential between our read and
	// write; the stored value must win and mode must report login.
	_, err := s.connections.SetCredential(s.ctx, userID, appID, "fp_existing")
	s.Require().NoError(err)

	cred, mode, err := s.vault.GetOrCreate(s.ctx, userID, appID)
	s.Require().NoError(err)
	s.Equal("fp_existing", cred)
	s.Equal(ModeLogin, mode)
	s.Equal(0, s.created)
}

func (s *VaultSuite) TestApprovalCountUntouched() {
	userID := id.NewUserID()
	appID := id.AppID("counting-app")

	_, _, err := s.vault.GetOrCreate(s.ctx, userID, appID)
	s.Require().NoError(err)

	rec, err := s.connections.Get(s.ctx, userID, appID)
	s.Require().NoError(err)
	s.Zero(rec.ApprovedCount)
}
