package domain

import "time"

// Theme is the colour scheme of the page.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", ErrUnknownTheme
	}
}

// UserPreferences represents the persisted preferences of one visitor.
// SessionID holds the visitor cookie id, not the in-memory session id.
type UserPreferences struct {
	SessionID string    `json:"session_id"`
	Theme     Theme     `json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preferences used when none are stored.
func DefaultPreferences(sessionID string) *UserPreferences {
	return &UserPreferences{SessionID: sessionID, Theme: ThemeLight}
}
