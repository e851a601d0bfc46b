package policy

import (
	"testing"

	"github.com/stretchr/testify/suite"

	appmodels "fastpass/internal/appregistry/models"
	"fastpass/internal/catalog"
	profilemodels "fastpass/internal/profile/models"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
)

type PolicySuite struct {
	suite.Suite
	cat *catalog.Catalog
}

func (s *PolicySuite) SetupTest() {
	s.cat = catalog.New()
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) newApp(requested ...string) *appmodels.ClientApp {
	integrations := make(map[string]bool, len(requested))
	for _, key := range requested {
		integrations[key] = true
	}
	return &appmodels.ClientApp{
		ID:                    id.AppID("test-app"),
		Name:                  "Test App",
		RedirectURI:           "https://app.example.com/cb",
		MinAgeGroup:           appmodels.MinAgeAll,
		RequestedIntegrations: integrations,
	}
}

func (s *PolicySuite) newProfile() *profilemodels.UserProfile {
	return &profilemodels.UserProfile{
		UID:      id.NewUserID(),
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		PFP:      "https://cdn.example.com/jamie.png",
		AgeGroup: profilemodels.AgeGroupAdult,
		Attributes: map[string]any{
			"username": "jamiedoe",
			"country":  "USA",
		},
	}
}

func (s *PolicySuite) TestCheckEligibility() {
	s.Run("minor blocked from adult-only app", func() {
		app := s.newApp("name")
		app.MinAgeGroup = appmodels.MinAgeAdult
		profile := s.newProfile()
		profile.AgeGroup = profilemodels.AgeGroupMinor

		err := CheckEligibility(app, profile)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeIneligible))
	})

	s.Run("adult allowed on adult-only app", func() {
		app := s.newApp("name")
		app.MinAgeGroup = appmodels.MinAgeAdult
		s.NoError(CheckEligibility(app, s.newProfile()))
	})

	s.Run("minor allowed on all-ages app", func() {
		app := s.newApp("name")
		profile := s.newProfile()
		profile.AgeGroup = profilemodels.AgeGroupMinor
		s.NoError(CheckEligibility(app, profile))
	})

	s.Run("unset age group passes eligibility", func() {
		// Eligibility only blocks known minors; the unset case is handled
		// by the missing-field gate instead.
		app := s.newApp("name")
		app.MinAgeGroup = appmodels.MinAgeAdult
		profile := s.newProfile()
		profile.AgeGroup = profilemodels.AgeGroupUnset
		s.NoError(CheckEligibility(app, profile))
	})
}

func (s *PolicySuite) TestDisclosure() {
	s.Run("set values are disclosed, unset required values go missing", func() {
		app := s.newApp("name", "email", "username", "bio")
		res := Evaluate(s.cat, app, s.newProfile())

		s.ElementsMatch([]string{"name", "email", "username"}, res.Disclosed)
		s.Equal([]string{"bio"}, res.Missing)
	})

	s.Run("structurally optional fields never go missing", func() {
		app := s.newApp("uid", "name", "email", "pfp", catalog.KeySSOPassword)
		profile := s.newProfile()
		profile.Name = ""
		profile.Email = ""
		profile.PFP = ""

		res := Evaluate(s.cat, app, profile)
		s.Empty(res.Missing)
	})

	s.Run("sign-in key is never disclosed directly", func() {
		app := s.newApp(catalog.KeySSOPassword, "name")
		res := Evaluate(s.cat, app, s.newProfile())
		s.NotContains(res.Disclosed, catalog.KeySSOPassword)
	})

	s.Run("unset age group is implicitly missing", func() {
		app := s.newApp("name")
		profile := s.newProfile()
		profile.AgeGroup = profilemodels.AgeGroupUnset

		res := Evaluate(s.cat, app, profile)
		s.Contains(res.Missing, "ageGroup")
	})

	s.Run("restricted attributes are invisible to minors", func() {
		app := s.newApp("name", "dateOfBirth")
		profile := s.newProfile()
		profile.AgeGroup = profilemodels.AgeGroupMinor
		profile.Attributes["dateOfBirth"] = "2010-01-01"

		res := Evaluate(s.cat, app, profile)
		s.NotContains(res.Disclosed, "dateOfBirth")
		s.NotContains(res.Missing, "dateOfBirth")
		s.Equal(WithheldRestricted, res.Withheld["dateOfBirth"])
	})

	s.Run("adults see restricted attributes", func() {
		app := s.newApp("dateOfBirth")
		profile := s.newProfile()
		profile.Attributes["dateOfBirth"] = "1990-01-01"

		res := Evaluate(s.cat, app, profile)
		s.Contains(res.Disclosed, "dateOfBirth")
	})

	s.Run("hideEmail withholds email", func() {
		app := s.newApp("name", "email")
		profile := s.newProfile()
		profile.HideEmail = true

		res := Evaluate(s.cat, app, profile)
		s.NotContains(res.Disclosed, "email")
		s.Equal(WithheldHiddenEmail, res.Withheld["email"])
	})

	s.Run("verified-only attributes withheld from unverified apps", func() {
		app := s.newApp("city")
		profile := s.newProfile()
		profile.Attributes["city"] = "New York"

		res := Evaluate(s.cat, app, profile)
		s.NotContains(res.Disclosed, "city")
		s.Equal(WithheldUnverified, res.Withheld["city"])

		app.Verified = true
		res = Evaluate(s.cat, app, profile)
		s.Contains(res.Disclosed, "city")
	})

	s.Run("unknown keys are never disclosed", func() {
		app := s.newApp("name", "totallyMadeUp")
		res := Evaluate(s.cat, app, s.newProfile())
		s.NotContains(res.Disclosed, "totallyMadeUp")
		s.NotContains(res.Missing, "totallyMadeUp")
		s.Equal(WithheldUnknownKey, res.Withheld["totallyMadeUp"])
	})

	s.Run("disclosed keys follow catalog order", func() {
		app := s.newApp("username", "email", "name")
		res := Evaluate(s.cat, app, s.newProfile())
		s.Equal([]string{"name", "email", "username"}, res.Disclosed)
	})
}

func (s *PolicySuite) TestPINLadder() {
	professional := func() *appmodels.ClientApp {
		app := s.newApp("jobTitle")
		return app
	}

	s.Run("no PIN set never requires a PIN", func() {
		profile := s.newProfile()
		profile.PINSecurityLevel = profilemodels.SecurityFull
		s.False(PINRequired(s.cat, professional(), profile))
	})

	s.Run("level Off never requires a PIN", func() {
		profile := s.newProfile()
		profile.PIN = "1234"
		profile.PINSecurityLevel = profilemodels.SecurityOff
		s.False(PINRequired(s.cat, professional(), profile))
	})

	s.Run("level Full always requires a PIN", func() {
		profile := s.newProfile()
		profile.PIN = "1234"
		profile.PINSecurityLevel = profilemodels.SecurityFull
		s.True(PINRequired(s.cat, s.newApp("name"), profile))
	})

	s.Run("level Low protects professional and e-commerce only", func() {
		profile := s.newProfile()
		profile.PIN = "1234"
		profile.PINSecurityLevel = profilemodels.SecurityLow

		s.True(PINRequired(s.cat, professional(), profile))
		s.False(PINRequired(s.cat, s.newApp("name", "email"), profile))
		s.False(PINRequired(s.cat, s.newApp("phoneNumber"), profile))
	})

	s.Run("level Medium exempts identity attributes", func() {
		profile := s.newProfile()
		profile.PIN = "1234"
		profile.PINSecurityLevel = profilemodels.SecurityMedium

		s.False(PINRequired(s.cat, s.newApp("name", "email", "pfp"), profile))
		s.True(PINRequired(s.cat, s.newApp("phoneNumber"), profile))
		s.True(PINRequired(s.cat, professional(), profile))
	})

	s.Run("level High exempts only name, email and pfp", func() {
		profile := s.newProfile()
		profile.PIN = "1234"
		profile.PINSecurityLevel = profilemodels.SecurityHigh

		s.False(PINRequired(s.cat, s.newApp("name", "email", "pfp"), profile))
		s.True(PINRequired(s.cat, s.newApp("username"), profile))
		s.True(PINRequired(s.cat, s.newApp("phoneNumber"), profile))
	})

	s.Run("unknown requested keys do not trigger a PIN", func() {
		profile := s.newProfile()
		profile.PIN = "1234"
		profile.PINSecurityLevel = profilemodels.SecurityHigh
		s.False(PINRequired(s.cat, s.newApp("totallyMadeUp"), profile))
	})
}

func (s *PolicySuite) TestValidatePIN() {
	profile := s.newProfile()
	profile.PIN = "123456"

	s.Run("too short", func() {
		err := ValidatePIN(profile, "123")
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})

	s.Run("too long", func() {
		err := ValidatePIN(profile, "1234567")
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})

	s.Run("wrong PIN", func() {
		err := ValidatePIN(profile, "654321")
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("correct PIN", func() {
		s.NoError(ValidatePIN(profile, "123456"))
	})
}
