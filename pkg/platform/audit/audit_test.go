package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "fastpass/pkg/domain"
)

type AuditSuite struct {
	suite.Suite
	store    *InMemory
	recorder *Recorder
	ctx      context.Context
	user     id.UserID
}

func (s *AuditSuite) SetupTest() {
	s.store = NewInMemory()
	s.recorder = NewRecorder(s.store, slog.New(slog.DiscardHandler), 16)
	s.ctx = context.Background()
	s.user = id.NewUserID()
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

// drain runs the worker until the inbox has been persisted, then stops it.
func (s *AuditSuite) drain(sink Sink) {
	ctx, cancel := context.WithCancel(s.ctx)
	worker := NewWorker(s.recorder, sink, slog.New(slog.DiscardHandler))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	s.Require().Eventually(func() bool {
		return len(s.recorder.inbox) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func (s *AuditSuite) TestFill() {
	e := Event{UserID: s.user, Action: ActionApprovalGranted}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e.Fill(now)

	s.Equal(now, e.Timestamp)
	s.NotEmpty(e.ID)
	s.Equal(CategoryConsent, e.Category)

	s.Run("existing values are kept", func() {
		stamped := Event{ID: "fixed", Timestamp: now.Add(-time.Hour), Category: CategorySecurity}
		stamped.Fill(now)
		s.Equal("fixed", stamped.ID)
		s.Equal(now.Add(-time.Hour), stamped.Timestamp)
		s.Equal(CategorySecurity, stamped.Category)
	})
}

func (s *AuditSuite) TestCategoryFor() {
	s.Equal(CategoryConsent, categoryFor(ActionApprovalDeclined))
	s.Equal(CategorySecurity, categoryFor(ActionCredentialIssued))
	s.Equal(CategorySecurity, categoryFor(ActionSessionCreated))
	s.Equal(CategoryOperations, categoryFor(ActionAppVerified))
	s.Equal(CategoryOperations, categoryFor(ActionProfileCreated))
}

func (s *AuditSuite) TestEmitAndList() {
	s.recorder.Emit(s.ctx, Event{UserID: s.user, Action: ActionApprovalGranted})
	time.Sleep(2 * time.Millisecond) // distinct ULID timestamps
	s.recorder.Emit(s.ctx, Event{UserID: s.user, Action: ActionApprovalDeclined})
	s.recorder.Emit(s.ctx, Event{UserID: id.NewUserID(), Action: ActionApprovalGranted})

	s.drain(nil)

	events, err := s.recorder.List(s.ctx, s.user, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.Run("newest first", func() {
		s.Equal(ActionApprovalDeclined, events[0].Action)
		s.Equal(ActionApprovalGranted, events[1].Action)
	})

	s.Run("limit applies", func() {
		events, err := s.recorder.List(s.ctx, s.user, 1)
		s.Require().NoError(err)
		s.Len(events, 1)
	})
}

func (s *AuditSuite) TestEmitDropsWhenFull() {
	small := NewRecorder(s.store, slog.New(slog.DiscardHandler), 1)
	small.Emit(s.ctx, Event{UserID: s.user, Action: ActionApprovalGranted})
	// Second emit must not block even though nothing drains the inbox.
	small.Emit(s.ctx, Event{UserID: s.user, Action: ActionApprovalGranted})
	s.Equal(1, len(small.inbox))
}

type captureSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (c *captureSink) Publish(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (s *AuditSuite) TestWorkerFansOutToSink() {
	sink := &captureSink{}
	s.recorder.Emit(s.ctx, Event{UserID: s.user, Action: ActionApprovalGranted})
	s.drain(sink)

	s.Require().Eventually(func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
}

func (s *AuditSuite) TestWorkerSurvivesSinkFailure() {
	sink := &captureSink{err: errors.New("broker down")}
	s.recorder.Emit(s.ctx, Event{UserID: s.user, Action: ActionApprovalGranted})
	s.drain(sink)

	events, err := s.recorder.List(s.ctx, s.user, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *AuditSuite) TestDeviceSummary() {
	chrome := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	s.Equal("Chrome on Linux", DeviceSummary(chrome))
	s.Equal("", DeviceSummary(""))
}
