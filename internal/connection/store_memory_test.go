package connection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	user  id.UserID
	app   id.AppID
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.user = id.NewUserID()

	appID, err := id.ParseAppID("shop-demo")
	s.Require().NoError(err)
	s.app = appID
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) TestRecordApproval() {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	s.Require().NoError(s.store.RecordApproval(s.ctx, s.user, s.app, first))
	s.Require().NoError(s.store.RecordApproval(s.ctx, s.user, s.app, second))

	rec, err := s.store.Get(s.ctx, s.user, s.app)
	s.Require().NoError(err)
	s.Equal(int64(2), rec.ApprovedCount)
	s.Equal(second, rec.LastUsed)
}

func (s *InMemorySuite) TestGetUnknown() {
	_, err := s.store.Get(s.ctx, s.user, s.app)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestSetCredentialKeepsFirstWrite() {
	stored, err := s.store.SetCredential(s.ctx, s.user, s.app, "fp_first")
	s.Require().NoError(err)
	s.Equal("fp_first", stored)

	stored, err = s.store.SetCredential(s.ctx, s.user, s.app, "fp_second")
	s.Require().NoError(err)
	s.Equal("fp_first", stored)

	rec, err := s.store.Get(s.ctx, s.user, s.app)
	s.Require().NoError(err)
	s.Equal("fp_first", rec.Credential)
}

func (s *InMemorySuite) TestListByUser() {
	other := id.NewUserID()
	alpha, err := id.ParseAppID("alpha")
	s.Require().NoError(err)
	beta, err := id.ParseAppID("beta")
	s.Require().NoError(err)

	now := time.Now().UTC()
	s.Require().NoError(s.store.RecordApproval(s.ctx, s.user, beta, now))
	s.Require().NoError(s.store.RecordApproval(s.ctx, s.user, alpha, now))
	s.Require().NoError(s.store.RecordApproval(s.ctx, other, alpha, now))

	recs, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(alpha, recs[0].AppID)
	s.Equal(beta, recs[1].AppID)

	s.Run("returned records are copies", func() {
		recs[0].ApprovedCount = 99
		rec, err := s.store.Get(s.ctx, s.user, alpha)
		s.Require().NoError(err)
		s.Equal(int64(1), rec.ApprovedCount)
	})
}
