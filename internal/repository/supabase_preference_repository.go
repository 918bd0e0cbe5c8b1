package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"extract-viewer/internal/domain"
)

const preferencesTable = "user_preferences"

// SupabasePreferenceRepository implements the domain.PreferenceRepository interface
type SupabasePreferenceRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabasePreferenceRepository creates a new Supabase preference repository
func NewSupabasePreferenceRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.PreferenceRepository {
	return &SupabasePreferenceRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetPreferences retrieves session preferences from Supabase
func (r *SupabasePreferenceRepository) GetPreferences(ctx context.Context, sessionID string) (*domain.UserPreferences, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, domain.ErrPreferencesStore
	}

	data, _, err := client.From(preferencesTable).
		Select("*", "", false).
		Eq("session_id", sessionID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefsData []map[string]interface{}
	if err := json.Unmarshal(data, &prefsData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(prefsData) == 0 {
		// Return default preferences if none exist
		return domain.DefaultPreferences(sessionID), nil
	}

	return mapToPreferences(prefsData[0]), nil
}

// UpdatePreferences updates or creates session preferences in Supabase
func (r *SupabasePreferenceRepository) UpdatePreferences(ctx context.Context, prefs *domain.UserPreferences) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return domain.ErrPreferencesStore
	}

	data := map[string]interface{}{
		"session_id": prefs.SessionID,
		"theme":      prefs.Theme,
		"updated_at": prefs.UpdatedAt.UTC().Format(time.RFC3339),
	}

	// Use upsert to insert or update
	_, _, err := client.From(preferencesTable).
		Upsert(data, "session_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	r.logger.Info("Preferences updated successfully", "session_id", prefs.SessionID, "theme", prefs.Theme)
	return nil
}

// mapToPreferences converts a row to a UserPreferences struct
func mapToPreferences(data map[string]interface{}) *domain.UserPreferences {
	prefs := &domain.UserPreferences{
		SessionID: getString(data, "session_id"),
		Theme:     domain.ThemeLight,
	}
	if theme, err := domain.ParseTheme(getString(data, "theme")); err == nil {
		prefs.Theme = theme
	}
	if ts, err := time.Parse(time.RFC3339, getString(data, "updated_at")); err == nil {
		prefs.UpdatedAt = ts
	}
	return prefs
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
