//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fastpass/internal/appregistry/models"
	"fastpass/internal/appregistry/store"
	"fastpass/internal/catalog"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
	"fastpass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	owner    id.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "client_apps"))
	s.owner = id.NewUserID()
}

func (s *PostgresStoreSuite) newApp(rawID string) *models.ClientApp {
	appID, err := id.ParseAppID(rawID)
	s.Require().NoError(err)
	app, err := models.NewClientApp(appID, s.owner, "App "+rawID, "https://"+rawID+".example.com/cb",
		map[string]bool{"name": true, "email": true}, catalog.New(), time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	app.ButtonStyle = models.ButtonStyle{MainText: "Sign in"}
	return app
}

func (s *PostgresStoreSuite) TestPutAndGet() {
	ctx := context.Background()
	app := s.newApp("shop-demo")
	s.Require().NoError(s.store.Put(ctx, app))

	got, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.Name, got.Name)
	s.Equal(s.owner, got.OwnerUID)
	s.True(got.Requests("email"))
	s.Equal("Sign in", got.ButtonStyle.MainText)
}

func (s *PostgresStoreSuite) TestPutDoesNotOverwriteVerification() {
	ctx := context.Background()
	app := s.newApp("shop-demo")
	s.Require().NoError(s.store.Put(ctx, app))
	s.Require().NoError(s.store.SetVerified(ctx, app.ID, true))
	s.Require().NoError(s.store.IncrementApprovals(ctx, app.ID))

	app.Name = "Renamed"
	s.Require().NoError(s.store.Put(ctx, app))

	got, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.True(got.Verified, "verified must survive a developer update")
	s.Equal(int64(1), got.Approvals, "approvals must survive a developer update")
}

func (s *PostgresStoreSuite) TestListByOwner() {
	ctx := context.Background()
	first := s.newApp("first")
	second := s.newApp("second")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	second.UpdatedAt = second.CreatedAt
	other := s.newApp("other")
	other.OwnerUID = id.NewUserID()

	s.Require().NoError(s.store.Put(ctx, second))
	s.Require().NoError(s.store.Put(ctx, first))
	s.Require().NoError(s.store.Put(ctx, other))

	apps, err := s.store.ListByOwner(ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Equal(first.ID, apps[0].ID)
	s.Equal(second.ID, apps[1].ID)
}

func (s *PostgresStoreSuite) TestNotFound() {
	ctx := context.Background()
	missing, err := id.ParseAppID("missing")
	s.Require().NoError(err)

	_, err = s.store.Get(ctx, missing)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.IncrementApprovals(ctx, missing), sentinel.ErrNotFound)
	s.ErrorIs(s.store.SetVerified(ctx, missing, true), sentinel.ErrNotFound)
}
