package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fastpass/internal/profile/models"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	user  id.UserID
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.user = id.NewUserID()
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) seed() *models.UserProfile {
	profile := &models.UserProfile{
		UID:      s.user,
		Name:     "Jordan Lee",
		Email:    "jordan@example.com",
		AgeGroup: models.AgeGroupAdult,
		Attributes: map[string]any{
			"bio": "Hello there",
		},
	}
	s.Require().NoError(s.store.Put(s.ctx, profile))
	return profile
}

func (s *InMemorySuite) TestPutAndGet() {
	s.seed()

	got, err := s.store.Get(s.ctx, s.user)
	s.Require().NoError(err)
	s.Equal("Jordan Lee", got.Name)

	s.Run("returned profile is a copy", func() {
		got.Attributes["bio"] = "mutated"
		again, err := s.store.Get(s.ctx, s.user)
		s.Require().NoError(err)
		s.Equal("Hello there", again.Attributes["bio"])
	})

	s.Run("unknown user", func() {
		_, err := s.store.Get(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySuite) TestPatch() {
	s.seed()

	err := s.store.Patch(s.ctx, s.user, map[string]any{
		"bio":  "Updated",
		"city": "Lisbon",
	})
	s.Require().NoError(err)

	got, err := s.store.Get(s.ctx, s.user)
	s.Require().NoError(err)
	s.Equal("Updated", got.Attributes["bio"])
	s.Equal("Lisbon", got.Attributes["city"])

	s.ErrorIs(s.store.Patch(s.ctx, id.NewUserID(), map[string]any{"bio": "x"}), sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestGetOrCreate() {
	ident := Identity{Name: "Jordan Lee", Email: "jordan@example.com", PFP: "https://img.example.com/j.png"}

	profile, created, err := GetOrCreate(s.ctx, s.store, s.user, ident)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(models.AgeGroupUnset, profile.AgeGroup)
	s.Equal("Jordan Lee", profile.Name)

	s.Run("second call returns the stored profile", func() {
		s.Require().NoError(s.store.Patch(s.ctx, s.user, map[string]any{"bio": "kept"}))
		again, created, err := GetOrCreate(s.ctx, s.store, s.user, Identity{Name: "Different"})
		s.Require().NoError(err)
		s.False(created)
		s.Equal("Jordan Lee", again.Name)
		s.Equal("kept", again.Attributes["bio"])
	})
}

func (s *InMemorySuite) TestSubscribe() {
	s.seed()

	ctx, cancelCtx := context.WithCancel(s.ctx)
	defer cancelCtx()

	ch, cancel, err := s.store.Subscribe(ctx, s.user)
	s.Require().NoError(err)
	defer cancel()

	s.Require().NoError(s.store.Patch(s.ctx, s.user, map[string]any{"bio": "first update"}))

	select {
	case snapshot := <-ch:
		s.Equal("first update", snapshot.Attributes["bio"])
	case <-time.After(time.Second):
		s.Fail("no snapshot delivered after write")
	}

	s.Run("slow consumers keep only the latest snapshot", func() {
		s.Require().NoError(s.store.Patch(s.ctx, s.user, map[string]any{"bio": "second"}))
		s.Require().NoError(s.store.Patch(s.ctx, s.user, map[string]any{"bio": "third"}))

		select {
		case snapshot := <-ch:
			s.Equal("third", snapshot.Attributes["bio"])
		case <-time.After(time.Second):
			s.Fail("no snapshot delivered after write")
		}
	})

	s.Run("cancel closes the channel", func() {
		cancel()
		select {
		case _, open := <-ch:
			s.False(open)
		case <-time.After(time.Second):
			s.Fail("channel not closed after cancel")
		}
	})
}
