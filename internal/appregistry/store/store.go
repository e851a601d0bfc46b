// Package store provides client app persistence for the registry.
package store

import (
	"context"

	"fastpass/internal/appregistry/models"
	id "fastpass/pkg/domain"
)

// Store is the client app persistence contract.
type Store interface {
	// Get returns the app or sentinel.ErrNotFound.
	Get(ctx context.Context, appID id.AppID) (*models.ClientApp, error)

	// Put creates or replaces a registration.
	Put(ctx context.Context, app *models.ClientApp) error

	// ListByOwner returns the apps registered by a developer.
	ListByOwner(ctx context.Context, ownerUID id.UserID) ([]*models.ClientApp, error)

	// IncrementApprovals bumps the aggregate approval counter by one.
	IncrementApprovals(ctx context.Context, appID id.AppID) error

	// SetVerified flips the verification flag. Admin-only path.
	SetVerified(ctx context.Context, appID id.AppID, verified bool) error
}
