package broker

import (
	"fastpass/internal/platform/middleware"
	"fastpass/internal/policy"
	profilestore "fastpass/internal/profile/store"
)

// appSummary is the safe slice of the registration the popup may show.
type appSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	ButtonDescription string `json:"buttonDescription,omitempty"`
	Logo              string `json:"logo,omitempty"`
	Verified          bool   `json:"verified"`
	SSORequest        bool   `json:"ssoRequest"`
}

// profileSummary is the popup's view of the signed-in user.
type profileSummary struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PFP         string `json:"pfp,omitempty"`
	AgeGroupSet bool   `json:"ageGroupSet"`
	Minor       bool   `json:"minor"`
}

type previewResponse struct {
	Disclosed   []string                         `json:"disclosed"`
	Withheld    map[string]policy.WithholdReason `json:"withheld,omitempty"`
	Missing     []string                         `json:"missing,omitempty"`
	PINRequired bool                             `json:"pinRequired"`
}

type contextPayload struct {
	State   State           `json:"state"`
	App     appSummary      `json:"app"`
	Profile profileSummary  `json:"profile"`
	Preview previewResponse `json:"preview"`
	// Ineligible tells the popup to keep Approve disabled and show the
	// reason instead of a disclosure list.
	Ineligible          bool   `json:"ineligible"`
	IneligibilityReason string `json:"ineligibilityReason,omitempty"`
	TargetOrigin        string `json:"targetOrigin"`
	CloseDelayMs        int64  `json:"closeDelayMs"`
}

func contextResponse(auth *Authorization, targetOrigin string, closeDelayMs int64) contextPayload {
	return contextPayload{
		State: auth.State,
		App: appSummary{
			ID:                auth.App.ID.String(),
			Name:              auth.App.Name,
			Description:       auth.App.Description,
			ButtonDescription: auth.App.ButtonDescription,
			Logo:              auth.App.Logo,
			Verified:          auth.App.Verified,
			SSORequest:        auth.App.IsSSORequest(),
		},
		Profile: profileSummary{
			Name:        auth.Profile.Name,
			Email:       auth.Profile.Email,
			PFP:         auth.Profile.PFP,
			AgeGroupSet: auth.Profile.AgeGroupSet(),
			Minor:       auth.Profile.IsMinor(),
		},
		Preview: previewResponse{
			Disclosed:   auth.Preview.Disclosed,
			Withheld:    auth.Preview.Withheld,
			Missing:     auth.Preview.Missing,
			PINRequired: auth.Preview.PINRequired,
		},
		Ineligible:          auth.Ineligible,
		IneligibilityReason: auth.IneligibilityReason,
		TargetOrigin:        targetOrigin,
		CloseDelayMs:        closeDelayMs,
	}
}

func identityFromClaims(claims *middleware.SessionClaims) profilestore.Identity {
	return profilestore.Identity{
		Name:  claims.Name,
		Email: claims.Email,
		PFP:   claims.PFP,
	}
}
