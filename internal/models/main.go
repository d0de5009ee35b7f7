// Package models defines the core data structures for users, sessions and
// display preferences.
package models

// User represents a registered account.
// Records are append-only: they are never edited or removed once stored.
type User struct {
	// Name is the display name shown on the welcome screen.
	Name string `json:"name"`
	// Email identifies the user and is unique across the directory.
	Email string `json:"email"`
	// Password is kept in clear text; this is a demo store, not a vault.
	Password string `json:"password"`
}

// Session is the single active login slot.
type Session struct {
	// ID correlates log records of one login.
	ID string `json:"id,omitempty"`
	// Username is the name of the logged-in user.
	Username string `json:"username"`
	// LoginTime is the human-readable time the session was established.
	LoginTime string `json:"loginTime"`
}

// Theme is the persisted colour scheme.
type Theme string

const (
	// ThemeLight is the default scheme.
	ThemeLight Theme = "light"
	// ThemeDark is the alternative scheme.
	ThemeDark Theme = "dark"
)

// Toggle returns the opposite theme. Anything that is not dark toggles to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
