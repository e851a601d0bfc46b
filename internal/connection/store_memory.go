package connection

import (
	"context"
	"sort"
	"sync"
	"time"

	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

type key struct {
	userID id.UserID
	appID  id.AppID
}

// InMemory keeps connections in a map. Default backing for development and
// unit tests.
type InMemory struct {
	mu      sync.Mutex
	records map[key]*Record
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[key]*Record)}
}

func (s *InMemory) Get(_ context.Context, userID id.UserID, appID id.AppID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[key{userID, appID}]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) RecordApproval(_ context.Context, userID id.UserID, appID id.AppID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{userID, appID}
	rec, ok := s.records[k]
	if !ok {
		rec = &Record{UserID: userID, AppID: appID}
		s.records[k] = rec
	}
	rec.ApprovedCount++
	rec.LastUsed = at
	return nil
}

func (s *InMemory) SetCredential(_ context.Context, userID id.UserID, appID id.AppID, credential string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{userID, appID}
	rec, ok := s.records[k]
	if !ok {
		rec = &Record{UserID: userID, AppID: appID}
		s.records[k] = rec
	}
	if rec.Credential != "" {
		return rec.Credential, nil
	}
	rec.Credential = credential
	return credential, nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Record
	for k, rec := range s.records {
		if k.userID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out, nil
}
