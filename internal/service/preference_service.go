package service

import (
	"context"
	"time"

	"extract-viewer/internal/domain"
)

type preferenceService struct {
	preferenceRepo domain.PreferenceRepository
	logger         domain.Logger
	now            func() time.Time
}

func NewPreferenceService(
	preferenceRepo domain.PreferenceRepository,
	logger domain.Logger,
) domain.PreferenceService {
	return &preferenceService{
		preferenceRepo: preferenceRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// GetTheme returns the stored theme, or the default when none is stored
func (s *preferenceService) GetTheme(ctx context.Context, visitorID string) (domain.Theme, error) {
	prefs, err := s.preferenceRepo.GetPreferences(ctx, visitorID)
	if err != nil {
		return "", err
	}
	if prefs == nil || prefs.Theme == "" {
		return domain.DefaultPreferences(visitorID).Theme, nil
	}
	return prefs.Theme, nil
}

// SetTheme stores a theme
func (s *preferenceService) SetTheme(ctx context.Context, visitorID string, theme domain.Theme) (domain.Theme, error) {
	theme, err := domain.ParseTheme(string(theme))
	if err != nil {
		return "", &domain.ValidationError{Field: "theme", Message: err.Error()}
	}
	prefs := &domain.UserPreferences{
		SessionID: visitorID,
		Theme:     theme,
		UpdatedAt: s.now(),
	}
	if err := s.preferenceRepo.UpdatePreferences(ctx, prefs); err != nil {
		s.logger.Error("Failed to store theme", err, "session", visitorID)
		return "", err
	}
	return theme, nil
}

// ToggleTheme switches between light and dark
func (s *preferenceService) ToggleTheme(ctx context.Context, visitorID string) (domain.Theme, error) {
	current, err := s.GetTheme(ctx, visitorID)
	if err != nil {
		return "", err
	}
	next := domain.ThemeDark
	if current == domain.ThemeDark {
		next = domain.ThemeLight
	}
	return s.SetTheme(ctx, visitorID, next)
}
