//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fastpass/internal/session"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = session.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestCreateCheckRevoke() {
	ctx := context.Background()
	sessionID := uuid.NewString()
	rec := session.Record{UserID: uuid.NewString(), CreatedAt: time.Now().UTC()}

	s.Require().NoError(s.store.Create(ctx, sessionID, rec, time.Minute))
	s.Require().NoError(s.store.CheckActive(ctx, sessionID))

	s.Require().NoError(s.store.Revoke(ctx, sessionID))
	err := s.store.CheckActive(ctx, sessionID)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *RedisStoreSuite) TestUnknownSession() {
	err := s.store.CheckActive(context.Background(), uuid.NewString())
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *RedisStoreSuite) TestTTLExpiry() {
	ctx := context.Background()
	sessionID := uuid.NewString()
	rec := session.Record{UserID: uuid.NewString(), CreatedAt: time.Now().UTC()}

	s.Require().NoError(s.store.Create(ctx, sessionID, rec, 100*time.Millisecond))
	s.Require().NoError(s.store.CheckActive(ctx, sessionID))

	s.Require().Eventually(func() bool {
		return s.store.CheckActive(ctx, sessionID) != nil
	}, 2*time.Second, 50*time.Millisecond)
}

func (s *RedisStoreSuite) TestRevokeIsIdempotent() {
	ctx := context.Background()
	sessionID := uuid.NewString()
	s.Require().NoError(s.store.Revoke(ctx, sessionID))
	s.Require().NoError(s.store.Revoke(ctx, sessionID))
}
