package model

import "time"

// Tier is a subscription level.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
)

// User is the active session identity.
type User struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	IsAuthenticated  bool   `json:"isAuthenticated"`
	SubscriptionTier Tier   `json:"subscriptionTier,omitempty"`
	BiometricEnabled bool   `json:"biometricEnabled,omitempty"`
}

// IsPremium reports whether the user holds the premium tier.
func (u User) IsPremium() bool {
	return u.SubscriptionTier == TierPremium
}

// Account is a locally registered credential record.
type Account struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Tier         Tier      `json:"tier,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeAmoled Theme = "amoled"
	ThemeSystem Theme = "system"
)

// Themes lists the selectable themes in display order.
var Themes = []Theme{ThemeSystem, ThemeLight, ThemeDark, ThemeAmoled}

// ParseTheme maps a string onto a Theme, falling back to ThemeSystem.
func ParseTheme(s string) Theme {
	for _, t := range Themes {
		if string(t) == s {
			return t
		}
	}
	return ThemeSystem
}
