// Package catalog defines the integration catalog: the closed registry of
// profile attributes a client application may request. The catalog is built
// once at process start and never mutated; consumers receive it by injection
// so policy evaluation stays pure and testable.
package catalog

// Category groups attributes for PIN security-level policy and documentation.
type Category string

const (
	CategoryAuthentication Category = "Authentication"
	CategoryIdentity       Category = "Identity"
	CategoryLocation       Category = "Location"
	CategoryContact        Category = "Contact"
	CategorySocial         Category = "Social"
	CategoryGaming         Category = "Gaming"
	CategoryProfessional   Category = "Professional"
	CategoryEducation      Category = "Education"
	CategoryPreferences    Category = "Preferences"
	CategorySecurity       Category = "Security"
	CategoryECommerce      Category = "E-Commerce"
	CategoryInterests      Category = "Interests"
	CategoryTravel         Category = "Travel"
	CategoryMisc           Category = "Miscellaneous"
)

// KeySSOPassword is the reserved attribute name. An app requesting it asks for
// a managed credential instead of a plain profile snapshot; name and email are
// force-included for those requests.
const KeySSOPassword = "ssoPassword"

// Attribute describes one catalog entry.
//
// Invariants:
//   - Key is unique within the catalog
//   - Restricted attributes are never disclosed to "Under 18" profiles
//   - VerifiedOnly attributes are only disclosable to verified apps
type Attribute struct {
	Key            string
	Label          string
	Example        any
	Type           string
	Category       Category
	Restricted     bool
	VerifiedOnly   bool
	DefaultChecked bool
}

// Catalog is the immutable attribute registry.
type Catalog struct {
	byKey map[string]Attribute
	order []string
}

// New builds the catalog from the static attribute table.
func New() *Catalog {
	c := &Catalog{byKey: make(map[string]Attribute, len(attributes))}
	for _, a := range attributes {
		c.byKey[a.Key] = a
		c.order = append(c.order, a.Key)
	}
	return c
}

// Lookup returns the attribute for key. Unknown keys return ok=false; callers
// must treat them as undisclosable.
func (c *Catalog) Lookup(key string) (Attribute, bool) {
	a, ok := c.byKey[key]
	return a, ok
}

// Has reports whether key is a known catalog attribute.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// All returns the attributes in their stable catalog order.
func (c *Catalog) All() []Attribute {
	out := make([]Attribute, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.byKey[key])
	}
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.order) }

// structurallyOptional lists fields never flagged as missing: they are
// synthesized at account creation (uid, name, email, pfp) or generated on
// demand (the managed credential). Kept as one table so the missing-fields
// rule stays auditable in one place.
var structurallyOptional = map[string]bool{
	"uid":          true,
	"name":         true,
	"email":        true,
	"pfp":          true,
	KeySSOPassword: true,
}

// StructurallyOptional reports whether a key is exempt from missing-field
// detection.
func StructurallyOptional(key string) bool { return structurallyOptional[key] }

var attributes = []Attribute{
	// Authentication
	{Key: KeySSOPassword, Label: "SSO Password", Example: "fp_very_long_and_secure_password", Type: "text", Category: CategoryAuthentication},

	// Identity (core)
	{Key: "name", Label: "Full Name", Example: "John Doe", Type: "text", Category: CategoryIdentity, DefaultChecked: true},
	{Key: "email", Label: "Email Address", Example: "john.doe@example.com", Type: "email", Category: CategoryIdentity, DefaultChecked: true},
	{Key: "pfp", Label: "Profile Picture URL", Example: "https://your-pfp-url.com/avatar.png", Type: "url", Category: CategoryIdentity, DefaultChecked: true},
	{Key: "username", Label: "Username", Example: "johndoe", Type: "text", Category: CategoryIdentity},
	{Key: "displayName", Label: "Display Name", Example: "John D.", Type: "text", Category: CategoryIdentity},
	{Key: "ageGroup", Label: "Age Group", Example: "18+", Type: "select", Category: CategoryIdentity},
	{Key: "dateOfBirth", Label: "Date of Birth", Example: "1990-01-01", Type: "date", Category: CategoryIdentity, Restricted: true},
	{Key: "pronouns", Label: "Pronouns", Example: "He/Him", Type: "select", Category: CategoryIdentity},
	{Key: "bio", Label: "Bio (Short Description)", Example: "Loves coding and hiking.", Type: "textarea", Category: CategoryIdentity},
	{Key: "spokenLanguages", Label: "Spoken Languages", Example: "English, Spanish", Type: "text", Category: CategoryIdentity},

	// Location
	{Key: "country", Label: "Country", Example: "USA", Type: "text", Category: CategoryLocation},
	{Key: "city", Label: "City", Example: "New York", Type: "text", Category: CategoryLocation, Restricted: true, VerifiedOnly: true},
	{Key: "state", Label: "State / Province", Example: "NY", Type: "text", Category: CategoryLocation, Restricted: true, VerifiedOnly: true},
	{Key: "postalCode", Label: "Postal Code", Example: "10001", Type: "text", Category: CategoryLocation, Restricted: true, VerifiedOnly: true},
	{Key: "fullAddress", Label: "Full Address", Example: "123 Main St, New York, NY 10001", Type: "textarea", Category: CategoryLocation, Restricted: true, VerifiedOnly: true},
	{Key: "timezone", Label: "Timezone", Example: "America/New_York", Type: "text", Category: CategoryLocation},

	// Contact & communication
	{Key: "phoneNumber", Label: "Phone Number", Example: "+15551234567", Type: "tel", Category: CategoryContact, Restricted: true, VerifiedOnly: true},
	{Key: "contactPreference", Label: "Preferred Contact Method", Example: "Email", Type: "select", Category: CategoryContact},
	{Key: "publicContactEmail", Label: "Public Contact Email", Example: "hello@johndoe.dev", Type: "email", Category: CategoryContact},
	{Key: "personalWebsite", Label: "Website Link", Example: "https://johndoe.dev", Type: "url", Category: CategoryContact},

	// Social
	{Key: "githubProfile", Label: "GitHub Profile URL", Example: "https://github.com/johndoe", Type: "url", Category: CategorySocial},
	{Key: "twitterHandle", Label: "Twitter / X Handle", Example: "johndoe", Type: "text", Category: CategorySocial},
	{Key: "instagramHandle", Label: "Instagram Handle", Example: "johndoe", Type: "text", Category: CategorySocial},
	{Key: "facebookProfileUrl", Label: "Facebook Profile URL", Example: "https://facebook.com/johndoe", Type: "url", Category: CategorySocial},
	{Key: "tiktokHandle", Label: "TikTok Handle", Example: "johndoestech", Type: "text", Category: CategorySocial},
	{Key: "youtubeChannelUrl", Label: "YouTube Channel URL", Example: "https://youtube.com/c/johndoe", Type: "url", Category: CategorySocial},
	{Key: "twitchUsername", Label: "Twitch Username", Example: "johndoegames", Type: "text", Category: CategorySocial},
	{Key: "redditUsername", Label: "Reddit Username", Example: "u/johndoe", Type: "text", Category: CategorySocial},
	{Key: "devToProfile", Label: "DEV.to Profile", Example: "johndoe", Type: "text", Category: CategorySocial},
	{Key: "mediumProfile", Label: "Medium Profile", Example: "@johndoe", Type: "text", Category: CategorySocial},
	{Key: "spotifyProfile", Label: "Spotify Profile URL", Example: "https://open.spotify.com/user/12345", Type: "url", Category: CategorySocial},

	// Gaming
	{Key: "discordId", Label: "Discord ID", Example: "JohnDoe#1234", Type: "text", Category: CategoryGaming},
	{Key: "gamerTag", Label: "Gamer Tag (Xbox/PSN)", Example: "SuperCoder123", Type: "text", Category: CategoryGaming},
	{Key: "steamProfile", Label: "Steam Profile URL", Example: "https://steamcommunity.com/id/supercoder", Type: "url", Category: CategoryGaming},
	{Key: "epicGamesUsername", Label: "Epic Games Username", Example: "SuperCoder123", Type: "text", Category: CategoryGaming},
	{Key: "riotId", Label: "Riot ID (Valorant/LoL)", Example: "SuperCoder#NA1", Type: "text", Category: CategoryGaming},
	{Key: "battlenetId", Label: "Battle.net ID", Example: "JohnDoe#1234", Type: "text", Category: CategoryGaming, Restricted: true},
	{Key: "nintendoFriendCode", Label: "Nintendo Friend Code", Example: "SW-1234-5678-9012", Type: "text", Category: CategoryGaming, Restricted: true},
	{Key: "preferredGamingPlatform", Label: "Preferred Gaming Platform", Example: "PC", Type: "text", Category: CategoryGaming},
	{Key: "chessUsername", Label: "Chess.com/Lichess Username", Example: "johndoe", Type: "text", Category: CategoryGaming},

	// Professional
	{Key: "jobTitle", Label: "Job Title", Example: "Software Engineer", Type: "text", Category: CategoryProfessional, Restricted: true},
	{Key: "company", Label: "Company", Example: "Tech Corp", Type: "text", Category: CategoryProfessional, Restricted: true},
	{Key: "industry", Label: "Industry", Example: "Technology", Type: "text", Category: CategoryProfessional, Restricted: true},
	{Key: "yearsOfExperience", Label: "Years of Experience", Example: 5, Type: "number", Category: CategoryProfessional, Restricted: true},
	{Key: "skills", Label: "Skills (comma-separated)", Example: "Go,Postgres,Kafka", Type: "text", Category: CategoryProfessional},
	{Key: "portfolioUrl", Label: "Portfolio URL", Example: "https://johndoe.dev", Type: "url", Category: CategoryProfessional, Restricted: true},
	{Key: "linkedinProfile", Label: "LinkedIn Profile URL", Example: "https://linkedin.com/in/johndoe", Type: "url", Category: CategoryProfessional, Restricted: true},
	{Key: "professionalStatus", Label: "Current Status", Example: "Open to Work", Type: "select", Category: CategoryProfessional, Restricted: true},
	{Key: "resumeUrl", Label: "Resume/CV URL", Example: "https://johndoe.dev/resume.pdf", Type: "url", Category: CategoryProfessional, Restricted: true},
	{Key: "salaryExpectation", Label: "Salary Expectation", Example: "$100,000 - $120,000", Type: "text", Category: CategoryProfessional, Restricted: true, VerifiedOnly: true},
	{Key: "willingToRelocate", Label: "Willing to Relocate", Example: true, Type: "boolean", Category: CategoryProfessional, Restricted: true},

	// Education
	{Key: "educationLevel", Label: "Highest Education Level", Example: "Bachelor's Degree", Type: "text", Category: CategoryEducation},
	{Key: "fieldOfStudy", Label: "Field of Study", Example: "Computer Science", Type: "text", Category: CategoryEducation},
	{Key: "almaMater", Label: "Alma Mater (University)", Example: "State University", Type: "text", Category: CategoryEducation},

	// Preferences & settings
	{Key: "language", Label: "Preferred Language", Example: "en-US", Type: "text", Category: CategoryPreferences},
	{Key: "themePreference", Label: "Theme Preference", Example: "dark", Type: "select", Category: CategoryPreferences},
	{Key: "notificationPreference", Label: "Notification Preference", Example: "Enabled", Type: "select", Category: CategoryPreferences},
	{Key: "preferredOs", Label: "Preferred OS", Example: "macOS", Type: "select", Category: CategoryPreferences},
	{Key: "preferredBrowser", Label: "Preferred Browser", Example: "Chrome", Type: "text", Category: CategoryPreferences},
	{Key: "preferredCodeEditor", Label: "Preferred Code Editor", Example: "VS Code", Type: "text", Category: CategoryPreferences},

	// Account & security
	{Key: "twoFactorPreference", Label: "Two-Factor Preference", Example: "Email", Type: "select", Category: CategorySecurity},
	{Key: "accountVisibility", Label: "Account Visibility", Example: "Public", Type: "select", Category: CategorySecurity},
	{Key: "dataSharingConsent", Label: "Data Sharing Consent", Example: true, Type: "select", Category: CategorySecurity, Restricted: true},
	{Key: "marketingEmailsOptIn", Label: "Marketing Emails Opt-in", Example: true, Type: "select", Category: CategorySecurity, Restricted: true},
	{Key: "backupEmail", Label: "Backup Email", Example: "jd.backup@example.com", Type: "email", Category: CategorySecurity},
	{Key: "publicPgpKey", Label: "Public PGP Key", Example: "-----BEGIN PGP PUBLIC KEY BLOCK-----...", Type: "textarea", Category: CategorySecurity},

	// E-Commerce & financial
	{Key: "shippingCountry", Label: "Default Shipping Country", Example: "USA", Type: "text", Category: CategoryECommerce, Restricted: true, VerifiedOnly: true},
	{Key: "shippingAddress", Label: "Default Shipping Address", Example: "123 Main St, New York, NY 10001", Type: "textarea", Category: CategoryECommerce, Restricted: true, VerifiedOnly: true},
	{Key: "preferredCurrency", Label: "Preferred Currency", Example: "USD", Type: "text", Category: CategoryECommerce},
	{Key: "preferredPaymentMethod", Label: "Preferred Payment Method", Example: "Card", Type: "select", Category: CategoryECommerce, Restricted: true, VerifiedOnly: true},
	{Key: "tshirtSize", Label: "T-Shirt Size", Example: "L", Type: "text", Category: CategoryECommerce},
	{Key: "loyaltyProgramId", Label: "Loyalty Program ID", Example: "LP123456", Type: "text", Category: CategoryECommerce},
	{Key: "stripeCustomerId", Label: "Stripe Customer ID", Example: "cus_12345", Type: "text", Category: CategoryECommerce, Restricted: true, VerifiedOnly: true},
	{Key: "paypalMeLink", Label: "PayPal.Me Link", Example: "https://paypal.me/johndoe", Type: "url", Category: CategoryECommerce, Restricted: true},

	// Interests & hobbies
	{Key: "interestTags", Label: "Interest Tags (comma-separated)", Example: "hiking,coding,music", Type: "text", Category: CategoryInterests},
	{Key: "favoriteGameGenre", Label: "Favorite Game Genre", Example: "RPG", Type: "text", Category: CategoryInterests},
	{Key: "favoriteMovieGenre", Label: "Favorite Movie Genre", Example: "Sci-Fi", Type: "text", Category: CategoryInterests},
	{Key: "hobbies", Label: "Hobbies (comma-separated)", Example: "Photography, Cooking, Chess", Type: "text", Category: CategoryInterests},

	// Travel
	{Key: "travelStyle", Label: "Travel Style", Example: "Backpacking", Type: "text", Category: CategoryTravel, Restricted: true},
	{Key: "preferredAirlines", Label: "Preferred Airlines (comma-separated)", Example: "Delta, United", Type: "text", Category: CategoryTravel, Restricted: true},
	{Key: "frequentFlyerNumber", Label: "Frequent Flyer Number", Example: "123456789", Type: "text", Category: CategoryTravel, Restricted: true, VerifiedOnly: true},

	// Miscellaneous
	{Key: "handedness", Label: "Handedness", Example: "Right-handed", Type: "text", Category: CategoryMisc},
	{Key: "vehicleType", Label: "Primary Vehicle Type", Example: "Sedan", Type: "text", Category: CategoryMisc, Restricted: true},
}
