package audit

import (
	"context"
	"sort"
	"sync"

	id "fastpass/pkg/domain"
)

// Store is the append-only activity sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListByUser returns a user's events, newest first.
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]Event, error)
}

// InMemory keeps events in a slice. Default backing for development and unit
// tests.
type InMemory struct {
	mu     sync.Mutex
	events []Event
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	// ULIDs sort by emission time, so ordering by ID is ordering by time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
