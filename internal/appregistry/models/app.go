package models

import (
	"time"

	"fastpass/internal/catalog"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
)

// MinAgeGroup restricts which age groups may authorize an app.
type MinAgeGroup string

const (
	MinAgeAll   MinAgeGroup = "All ages"
	MinAgeAdult MinAgeGroup = "18+"
)

// ButtonStyle carries developer-configurable embed button options.
type ButtonStyle struct {
	MainText              string `json:"mainText,omitempty"`
	HideAppName           bool   `json:"hideAppName,omitempty"`
	HideVerificationBadge bool   `json:"hideVerificationBadge,omitempty"`
}

// ClientApp is a registered third-party integration.
//
// Invariants:
//   - ID satisfies the structural app-id constraints (see domain.ParseAppID)
//   - Name is non-empty
//   - RequestedIntegrations only contains catalog attribute keys
//   - The broker never mutates an app beyond its aggregate approval counter;
//     Verified changes only through the admin verification action
type ClientApp struct {
	ID                    id.AppID        `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	ButtonDescription     string          `json:"buttonDescription,omitempty"`
	Logo                  string          `json:"logo,omitempty"`
	RedirectURI           string          `json:"redirectUri"`
	OwnerUID              id.UserID       `json:"ownerUid"`
	Verified              bool            `json:"verified,omitempty"`
	VerificationRequested bool            `json:"verificationRequested,omitempty"`
	MinAgeGroup           MinAgeGroup     `json:"minAgeGroup,omitempty"`
	RequestedIntegrations map[string]bool `json:"requestedIntegrations,omitempty"`
	ButtonStyle           ButtonStyle     `json:"buttonStyle,omitempty"`
	Approvals             int64           `json:"approvals,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// NewClientApp validates and constructs a registration.
func NewClientApp(appID id.AppID, ownerUID id.UserID, name, redirectURI string, requested map[string]bool, cat *catalog.Catalog, now time.Time) (*ClientApp, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "app name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "app name must be 128 characters or less")
	}
	if redirectURI == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "redirect_uri cannot be empty")
	}
	for key, wanted := range requested {
		if wanted && !cat.Has(key) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown integration: "+key)
		}
	}
	return &ClientApp{
		ID:                    appID,
		OwnerUID:              ownerUID,
		Name:                  name,
		RedirectURI:           redirectURI,
		MinAgeGroup:           MinAgeAll,
		RequestedIntegrations: requested,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// RequestedKeys returns the enabled requested attribute names. The SSO key is
// included when present; name is force-included for SSO requests since a
// sign-in flow always discloses who signed in.
func (a *ClientApp) RequestedKeys() []string {
	keys := make([]string, 0, len(a.RequestedIntegrations))
	for key, wanted := range a.RequestedIntegrations {
		if wanted {
			keys = append(keys, key)
		}
	}
	if a.IsSSORequest() && !a.Requests("name") {
		keys = append(keys, "name")
	}
	return keys
}

// Requests reports whether the app requests the given attribute.
func (a *ClientApp) Requests(key string) bool {
	return a.RequestedIntegrations[key]
}

// IsSSORequest reports whether the app asked for a managed credential.
func (a *ClientApp) IsSSORequest() bool {
	return a.RequestedIntegrations[catalog.KeySSOPassword]
}

// EffectiveMinAge normalizes the optional minimum age group.
func (a *ClientApp) EffectiveMinAge() MinAgeGroup {
	if a.MinAgeGroup == "" {
		return MinAgeAll
	}
	return a.MinAgeGroup
}

// MainButtonText returns the configured or default embed button headline.
func (a *ClientApp) MainButtonText() string {
	if a.ButtonStyle.MainText != "" {
		return a.ButtonStyle.MainText
	}
	return "Continue with FastPass"
}
