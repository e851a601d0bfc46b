// Package service implements registry operations over the app store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fastpass/internal/appregistry/models"
	"fastpass/internal/appregistry/store"
	"fastpass/internal/catalog"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/sentinel"
	"fastpass/pkg/secrets"
)

type Service struct {
	store        store.Store
	catalog      *catalog.Catalog
	adminKeyHash string
	logger       *slog.Logger
}

// New wires the registry service. adminKeyHash is the bcrypt hash of the
// out-of-band admin key that gates verification; empty disables admin actions.
func New(s store.Store, cat *catalog.Catalog, adminKeyHash string, logger *slog.Logger) *Service {
	return &Service{store: s, catalog: cat, adminKeyHash: adminKeyHash, logger: logger}
}

// RegisterParams is the developer-facing registration payload.
type RegisterParams struct {
	AppID                 string             `json:"appId"`
	Name                  string             `json:"name"`
	Description           string             `json:"description"`
	ButtonDescription     string             `json:"buttonDescription"`
	Logo                  string             `json:"logo"`
	RedirectURI           string             `json:"redirectUri"`
	MinAgeGroup           string             `json:"minAgeGroup"`
	RequestedIntegrations map[string]bool    `json:"requestedIntegrations"`
	ButtonStyle           models.ButtonStyle `json:"buttonStyle"`
}

// Register creates or updates an app owned by the caller. Verified status is
// never writable through this path.
func (s *Service) Register(ctx context.Context, ownerUID id.UserID, params RegisterParams) (*models.ClientApp, error) {
	appID, err := id.ParseAppID(params.AppID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	existing, err := s.store.Get(ctx, appID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up app")
	}
	if existing != nil && existing.OwnerUID != ownerUID {
		return nil, dErrors.New(dErrors.CodeConflict, "app id is already registered")
	}

	app, err := models.NewClientApp(appID, ownerUID, params.Name, params.RedirectURI, params.RequestedIntegrations, s.catalog, now)
	if err != nil {
		return nil, err
	}
	app.Description = params.Description
	app.ButtonDescription = params.ButtonDescription
	app.Logo = params.Logo
	app.ButtonStyle = params.ButtonStyle
	if params.MinAgeGroup != "" {
		app.MinAgeGroup = models.MinAgeGroup(params.MinAgeGroup)
	}
	if existing != nil {
		app.Verified = existing.Verified
		app.VerificationRequested = existing.VerificationRequested
		app.Approvals = existing.Approvals
		app.CreatedAt = existing.CreatedAt
	}

	if err := s.store.Put(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save app")
	}
	s.logger.InfoContext(ctx, "app registered", "app_id", app.ID, "owner_uid", ownerUID)
	return app, nil
}

// Get returns a registration by id.
func (s *Service) Get(ctx context.Context, appID id.AppID) (*models.ClientApp, error) {
	app, err := s.store.Get(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "app not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up app")
	}
	return app, nil
}

// ListByOwner returns the caller's registrations.
func (s *Service) ListByOwner(ctx context.Context, ownerUID id.UserID) ([]*models.ClientApp, error) {
	apps, err := s.store.ListByOwner(ctx, ownerUID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list apps")
	}
	return apps, nil
}

// SetVerified flips verification after checking the admin key.
func (s *Service) SetVerified(ctx context.Context, adminKey string, appID id.AppID, verified bool) error {
	if s.adminKeyHash == "" {
		return dErrors.New(dErrors.CodeForbidden, "admin actions are disabled")
	}
	if err := secrets.Verify(adminKey, s.adminKeyHash); err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid admin key")
	}
	err := s.store.SetVerified(ctx, appID, verified)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "app not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification")
	}
	s.logger.InfoContext(ctx, "app verification updated", "app_id", appID, "verified", verified)
	return nil
}
