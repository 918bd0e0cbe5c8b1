package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"extract-viewer/internal/domain"

	_ "modernc.org/sqlite"
)

const preferencesSchema = `
CREATE TABLE IF NOT EXISTS user_preferences (
	session_id TEXT PRIMARY KEY,
	theme      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLitePreferenceRepository stores preferences in a local SQLite file. It
// is used when Supabase is not configured.
type SQLitePreferenceRepository struct {
	db     *sql.DB
	logger domain.Logger
}

// OpenPreferencesDB opens the SQLite database at path and applies the schema.
func OpenPreferencesDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(preferencesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// NewSQLitePreferenceRepository creates a repository over an open database
func NewSQLitePreferenceRepository(db *sql.DB, logger domain.Logger) *SQLitePreferenceRepository {
	return &SQLitePreferenceRepository{db: db, logger: logger}
}

// GetPreferences returns the stored preferences, or the defaults
func (r *SQLitePreferenceRepository) GetPreferences(ctx context.Context, sessionID string) (*domain.UserPreferences, error) {
	var (
		theme   string
		updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT theme, updated_at FROM user_preferences WHERE session_id = ?`, sessionID,
	).Scan(&theme, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultPreferences(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs := &domain.UserPreferences{
		SessionID: sessionID,
		Theme:     domain.ThemeLight,
		UpdatedAt: time.Unix(updated, 0).UTC(),
	}
	if t, err := domain.ParseTheme(theme); err == nil {
		prefs.Theme = t
	}
	return prefs, nil
}

// UpdatePreferences inserts or replaces the preferences of a session
func (r *SQLitePreferenceRepository) UpdatePreferences(ctx context.Context, prefs *domain.UserPreferences) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (session_id, theme, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at`,
		prefs.SessionID, string(prefs.Theme), prefs.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	r.logger.Debug("Preferences updated", "session_id", prefs.SessionID, "theme", prefs.Theme)
	return nil
}

// Close closes the database
func (r *SQLitePreferenceRepository) Close() error {
	return r.db.Close()
}
