package config

import (
	"database/sql"
	"fmt"
	"os"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/repository"
	"extract-viewer/internal/service"
	"extract-viewer/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config               domain.Config
	Logger               domain.Logger
	SupabaseClient       domain.SupabaseClient
	PreferenceRepository domain.PreferenceRepository
	PreferenceService    domain.PreferenceService
	Extractor            domain.Extractor
	Sessions             *service.SessionStore

	db *sql.DB
}

// NewContainer creates a new dependency injection container from the
// environment and the optional CONFIG_FILE overlay
func NewContainer() (*Container, error) {
	cfg, err := LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig wires every dependency from cfg
func NewContainerWithConfig(cfg domain.Config) (*Container, error) {
	appLogger := logger.NewLoggerWithWriter(cfg.GetLogLevel(), os.Stdout)

	c := &Container{
		Config:         cfg,
		Logger:         appLogger,
		SupabaseClient: repository.NewSupabaseClient(cfg, appLogger),
	}

	// Preferences live in Supabase when it is configured, locally otherwise
	if c.SupabaseClient.IsConfigured() {
		if err := c.SupabaseClient.Initialize(); err != nil {
			return nil, err
		}
		c.PreferenceRepository = repository.NewSupabasePreferenceRepository(c.SupabaseClient, appLogger)
	} else {
		db, err := repository.OpenPreferencesDB(cfg.GetPreferencesDB())
		if err != nil {
			return nil, fmt.Errorf("failed to open preferences database: %w", err)
		}
		c.db = db
		c.PreferenceRepository = repository.NewSQLitePreferenceRepository(db, appLogger)
		appLogger.Info("Using local preferences database", "path", cfg.GetPreferencesDB())
	}
	c.PreferenceService = service.NewPreferenceService(c.PreferenceRepository, appLogger)

	c.Extractor = repository.NewExtractionClient(
		cfg.GetExtractorURL(),
		cfg.GetExtractorTimeout(),
		cfg.GetMaxConcurrentExtractions(),
		appLogger.With("component", "extractor"),
	)

	sessionLogger := appLogger.With("component", "session")
	sessions, err := service.NewSessionStore(cfg.GetMaxSessions(), func(id string) *service.Session {
		return service.NewSession(id, c.Extractor, sessionLogger)
	}, sessionLogger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Sessions = sessions

	return c, nil
}

// Close releases sessions and the local database
func (c *Container) Close() error {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
