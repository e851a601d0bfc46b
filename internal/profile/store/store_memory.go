package store

import (
	"context"
	"sync"

	"fastpass/internal/profile/models"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

// InMemory keeps profiles in a map. It favors clarity over performance and is
// the default backing for development and unit tests.
type InMemory struct {
	mu          sync.RWMutex
	profiles    map[id.UserID]*models.UserProfile
	subscribers map[id.UserID]map[int]chan *models.UserProfile
	nextSubID   int
}

var _ Store = (*InMemory)(nil)
var _ Watcher = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		profiles:    make(map[id.UserID]*models.UserProfile),
		subscribers: make(map[id.UserID]map[int]chan *models.UserProfile),
	}
}

func (s *InMemory) Get(_ context.Context, userID id.UserID) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		return p.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Put(_ context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	s.profiles[profile.UID] = profile.Clone()
	s.mu.Unlock()
	s.notify(profile.UID)
	return nil
}

func (s *InMemory) Patch(_ context.Context, userID id.UserID, attrs map[string]any) error {
	s.mu.Lock()
	p, ok := s.profiles[userID]
	if !ok {
		s.mu.Unlock()
		return sentinel.ErrNotFound
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]any, len(attrs))
	}
	for k, v := range attrs {
		p.Attributes[k] = v
	}
	s.mu.Unlock()
	s.notify(userID)
	return nil
}

// Subscribe delivers a snapshot after every write. Slow consumers drop
// intermediate snapshots rather than blocking writers.
func (s *InMemory) Subscribe(ctx context.Context, userID id.UserID) (<-chan *models.UserProfile, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *models.UserProfile, 1)
	subID := s.nextSubID
	s.nextSubID++
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[int]chan *models.UserProfile)
	}
	s.subscribers[userID][subID] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subscribers[userID]; ok {
			if _, live := subs[subID]; live {
				delete(subs, subID)
				close(ch)
			}
		}
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}

func (s *InMemory) notify(userID id.UserID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return
	}
	for _, ch := range s.subscribers[userID] {
		// Keep only the latest snapshot for slow consumers.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p.Clone():
		default:
		}
	}
}
