// Package policy decides what an authorization discloses and what it demands
// before approval. Evaluation is pure: stores and clocks stay outside.
package policy

import (
	appmodels "fastpass/internal/appregistry/models"
	"fastpass/internal/catalog"
	profilemodels "fastpass/internal/profile/models"
	dErrors "fastpass/pkg/domain-errors"
)

// securityCategories maps each active PIN level to the attribute categories it
// protects. Full protects everything and is special-cased in PINRequired.
var securityCategories = map[profilemodels.SecurityLevel][]catalog.Category{
	profilemodels.SecurityLow: {
		catalog.CategoryProfessional, catalog.CategoryECommerce,
	},
	profilemodels.SecurityMedium: {
		catalog.CategoryContact, catalog.CategorySocial, catalog.CategoryProfessional,
		catalog.CategoryGaming, catalog.CategorySecurity, catalog.CategoryECommerce,
		catalog.CategoryInterests, catalog.CategoryPreferences,
	},
	profilemodels.SecurityHigh: {
		catalog.CategoryIdentity, catalog.CategoryContact, catalog.CategorySocial,
		catalog.CategoryProfessional, catalog.CategoryGaming, catalog.CategorySecurity,
		catalog.CategoryECommerce, catalog.CategoryInterests, catalog.CategoryPreferences,
	},
}

// highSecurityExemptions are keys that never trigger a PIN at the High level;
// they are the basic identity trio a user expects to share casually.
var highSecurityExemptions = map[string]bool{
	"name":  true,
	"email": true,
	"pfp":   true,
}

// WithholdReason explains why a requested attribute will not be shared.
type WithholdReason string

const (
	WithheldRestricted  WithholdReason = "restricted"    // minor protection
	WithheldHiddenEmail WithholdReason = "hidden_email"  // user preference
	WithheldUnverified  WithholdReason = "verified_only" // app not verified
	WithheldUnknownKey  WithholdReason = "unknown"       // not in the catalog
)

// Result is the evaluation outcome the popup preview renders and the approval
// path enforces.
type Result struct {
	// Disclosed holds the keys whose current values will be shared, in
	// catalog order. The reserved sign-in key is never part of it.
	Disclosed []string
	// Withheld maps requested-but-not-shared keys to the reason.
	Withheld map[string]WithholdReason
	// Missing holds required keys with no value yet. Approval stays blocked
	// while it is non-empty only for ageGroup; other gaps merely show as
	// "Not Set" in the preview.
	Missing []string
	// PINRequired reports whether the profile's PIN must be verified before
	// approval.
	PINRequired bool
}

// CheckEligibility is the hard precondition: an adult-only app cannot be
// authorized by a minor. No disclosure is computed past this gate.
func CheckEligibility(app *appmodels.ClientApp, profile *profilemodels.UserProfile) error {
	if app.EffectiveMinAge() == appmodels.MinAgeAdult && profile.IsMinor() {
		return dErrors.New(dErrors.CodeIneligible, "this app requires users to be 18 or older")
	}
	return nil
}

// Evaluate computes the disclosure set, missing fields, and PIN demand for the
// pair. Callers run CheckEligibility first; Evaluate assumes eligibility.
func Evaluate(cat *catalog.Catalog, app *appmodels.ClientApp, profile *profilemodels.UserProfile) Result {
	res := Result{Withheld: make(map[string]WithholdReason)}

	// Age group is implicitly required for every authorization.
	if !profile.AgeGroupSet() {
		res.Missing = append(res.Missing, "ageGroup")
	}

	// Catalog order keeps previews and envelopes deterministic.
	requested := make(map[string]bool, len(app.RequestedIntegrations))
	for _, key := range app.RequestedKeys() {
		requested[key] = true
	}
	for _, attr := range cat.All() {
		key := attr.Key
		if !requested[key] || key == catalog.KeySSOPassword {
			continue
		}
		if profile.IsMinor() && attr.Restricted {
			res.Withheld[key] = WithheldRestricted
			continue
		}
		if attr.VerifiedOnly && !app.Verified {
			res.Withheld[key] = WithheldUnverified
			continue
		}
		if key == "email" && profile.HideEmail {
			res.Withheld[key] = WithheldHiddenEmail
			continue
		}
		if profile.Value(key) == nil {
			if !catalog.StructurallyOptional(key) {
				res.Missing = append(res.Missing, key)
			}
			continue
		}
		res.Disclosed = append(res.Disclosed, key)
	}

	// Requested keys outside the catalog are never disclosed.
	for key := range app.RequestedIntegrations {
		if app.Requests(key) && !cat.Has(key) {
			res.Withheld[key] = WithheldUnknownKey
		}
	}

	res.PINRequired = PINRequired(cat, app, profile)
	return res
}

// PINRequired applies the security-level ladder to the app's requested
// attributes. The ladder looks at what was requested, not at what ends up
// disclosed, so withheld attributes still count toward the demand.
func PINRequired(cat *catalog.Catalog, app *appmodels.ClientApp, profile *profilemodels.UserProfile) bool {
	if !profile.PINEnabled() {
		return false
	}
	level := profile.PINSecurityLevel
	if level == profilemodels.SecurityFull {
		return true
	}
	protected := securityCategories[level]
	for _, key := range app.RequestedKeys() {
		attr, ok := cat.Lookup(key)
		if !ok {
			continue
		}
		if level == profilemodels.SecurityHigh && highSecurityExemptions[key] {
			continue
		}
		if level == profilemodels.SecurityMedium && attr.Category == catalog.CategoryIdentity {
			continue
		}
		for _, c := range protected {
			if attr.Category == c {
				return true
			}
		}
	}
	return false
}

// ValidatePIN checks a PIN attempt against the profile. Input must be 4 to 6
// digits and match exactly.
func ValidatePIN(profile *profilemodels.UserProfile, input string) error {
	if len(input) < 4 || len(input) > 6 {
		return dErrors.New(dErrors.CodeInvalidInput, "PIN must be 4-6 digits")
	}
	if input != profile.PIN {
		return dErrors.New(dErrors.CodeForbidden, "incorrect PIN")
	}
	return nil
}
