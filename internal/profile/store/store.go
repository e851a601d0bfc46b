// Package store provides profile persistence. The broker treats the profile
// store as a collaborator: read, write, subscribe.
package store

import (
	"context"
	"errors"

	"fastpass/internal/profile/models"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

// Store is the profile persistence contract.
type Store interface {
	// Get returns the profile or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID) (*models.UserProfile, error)

	// Put creates or replaces the profile.
	Put(ctx context.Context, profile *models.UserProfile) error

	// Patch merges attribute values into an existing profile.
	Patch(ctx context.Context, userID id.UserID, attrs map[string]any) error
}

// Watcher is implemented by stores that can push profile updates. The popup
// preview re-runs policy evaluation whenever the profile changes mid-flow.
type Watcher interface {
	// Subscribe returns a channel receiving a snapshot after every write to
	// the profile. Cancel must be called to release the subscription.
	Subscribe(ctx context.Context, userID id.UserID) (<-chan *models.UserProfile, func(), error)
}

// Identity seeds a profile from the authentication provider on first load.
type Identity struct {
	Name  string
	Email string
	PFP   string
}

// GetOrCreate reads the profile, creating an empty one (unset age group) from
// the identity seed when none exists. The created flag lets callers log the
// first authentication exactly once.
func GetOrCreate(ctx context.Context, s Store, userID id.UserID, ident Identity) (*models.UserProfile, bool, error) {
	profile, err := s.Get(ctx, userID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, err
	}
	profile = &models.UserProfile{
		UID:      userID,
		Name:     ident.Name,
		Email:    ident.Email,
		PFP:      ident.PFP,
		AgeGroup: models.AgeGroupUnset,
	}
	if putErr := s.Put(ctx, profile); putErr != nil {
		return nil, false, putErr
	}
	return profile, true, nil
}
