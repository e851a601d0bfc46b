package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"fastpass/internal/appregistry/models"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

// InMemory keeps registrations in a map. Default backing for development and
// unit tests.
type InMemory struct {
	mu   sync.RWMutex
	apps map[id.AppID]*models.ClientApp
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[id.AppID]*models.ClientApp)}
}

func (s *InMemory) Get(_ context.Context, appID id.AppID) (*models.ClientApp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.apps[appID]; ok {
		return clone(app), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Put(_ context.Context, app *models.ClientApp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = clone(app)
	return nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerUID id.UserID) ([]*models.ClientApp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ClientApp
	for _, app := range s.apps {
		if app.OwnerUID == ownerUID {
			out = append(out, clone(app))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) IncrementApprovals(_ context.Context, appID id.AppID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Approvals++
	app.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemory) SetVerified(_ context.Context, appID id.AppID, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Verified = verified
	app.VerificationRequested = false
	app.UpdatedAt = time.Now().UTC()
	return nil
}

func clone(app *models.ClientApp) *models.ClientApp {
	cp := *app
	if app.RequestedIntegrations != nil {
		cp.RequestedIntegrations = make(map[string]bool, len(app.RequestedIntegrations))
		for k, v := range app.RequestedIntegrations {
			cp.RequestedIntegrations[k] = v
		}
	}
	return &cp
}
