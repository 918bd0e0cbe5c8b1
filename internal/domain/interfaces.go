package domain

import (
	"context"
	"io"
	"time"
)

// Extractor is the upload collaborator: it submits one file to the
// extraction backend and returns the decoded result.
type Extractor interface {
	Extract(ctx context.Context, filename string, file io.Reader) (*ExtractionResult, error)
}

// PreferenceRepository defines persistence operations for user preferences
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, sessionID string) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *UserPreferences) error
}

// PreferenceService defines the use-case operations for preferences
type PreferenceService interface {
	GetTheme(ctx context.Context, visitorID string) (Theme, error)
	SetTheme(ctx context.Context, visitorID string, theme Theme) (Theme, error)
	ToggleTheme(ctx context.Context, visitorID string) (Theme, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetExtractorURL() string
	GetExtractorTimeout() time.Duration
	GetMaxFileSize() int64
	GetMaxConcurrentExtractions() int64
	GetMaxSessions() int
	GetLogLevel() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetPreferencesDB() string
	GetAllowedOrigins() []string
}
