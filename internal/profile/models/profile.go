package models

import (
	id "fastpass/pkg/domain"
)

// AgeGroup gates disclosure of restricted attributes and app eligibility.
// The empty value means the user has not chosen one yet; approval is blocked
// until they do.
type AgeGroup string

const (
	AgeGroupUnset AgeGroup = ""
	AgeGroupMinor AgeGroup = "Under 18"
	AgeGroupAdult AgeGroup = "18+"
)

// SecurityLevel controls when a PIN challenge is required before approval.
type SecurityLevel string

const (
	SecurityOff    SecurityLevel = "Off"
	SecurityLow    SecurityLevel = "Low"
	SecurityMedium SecurityLevel = "Medium"
	SecurityHigh   SecurityLevel = "High"
	SecurityFull   SecurityLevel = "Full"
)

// UserProfile is the aggregate of a user's shareable attributes.
//
// Identity fields (UID, Name, Email, PFP) are synthesized at account creation
// from the authentication provider; everything else is user-entered. The
// Attributes map holds the open-ended catalog values keyed by attribute name.
//
// Invariants:
//   - AgeGroup is one of unset, "Under 18", "18+"
//   - PINSecurityLevel defaults to Off when no PIN is set
type UserProfile struct {
	UID              id.UserID      `json:"uid"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	PFP              string         `json:"pfp"`
	AgeGroup         AgeGroup       `json:"ageGroup"`
	HideEmail        bool           `json:"hideEmail,omitempty"`
	PIN              string         `json:"-"` // never serialized
	PINSecurityLevel SecurityLevel  `json:"pinSecurityLevel,omitempty"`
	Attributes       map[string]any `json:"attributes,omitempty"`
}

// Value looks up the profile's current value for a catalog attribute key.
// Distinguished fields are resolved first; everything else comes from the
// attribute map. Unset values return nil.
func (p *UserProfile) Value(key string) any {
	switch key {
	case "uid":
		return p.UID.String()
	case "name":
		return emptyAsNil(p.Name)
	case "email":
		return emptyAsNil(p.Email)
	case "pfp":
		return emptyAsNil(p.PFP)
	case "ageGroup":
		return emptyAsNil(string(p.AgeGroup))
	}
	if p.Attributes == nil {
		return nil
	}
	v, ok := p.Attributes[key]
	if !ok {
		return nil
	}
	if s, isString := v.(string); isString && s == "" {
		return nil
	}
	return v
}

// IsMinor reports whether the user's age group is "Under 18".
func (p *UserProfile) IsMinor() bool { return p.AgeGroup == AgeGroupMinor }

// AgeGroupSet reports whether the user has chosen an age group.
func (p *UserProfile) AgeGroupSet() bool { return p.AgeGroup != AgeGroupUnset }

// PINEnabled reports whether a PIN exists and its security level is active.
func (p *UserProfile) PINEnabled() bool {
	return p.PIN != "" && p.PINSecurityLevel != SecurityOff && p.PINSecurityLevel != ""
}

// Clone returns a deep copy so subscribers and callers cannot mutate shared
// store state.
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	if p.Attributes != nil {
		cp.Attributes = make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
