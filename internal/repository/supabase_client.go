package repository

import (
	"fmt"

	"extract-viewer/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient implements the domain.SupabaseClient interface
type SupabaseClient struct {
	client *supabase.Client
	config domain.Config
	logger domain.Logger
}

// NewSupabaseClient creates a new Supabase client instance
func NewSupabaseClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	return &SupabaseClient{
		config: config,
		logger: logger,
	}
}

// IsConfigured reports whether a Supabase URL and key are set
func (s *SupabaseClient) IsConfigured() bool {
	return s.config.GetSupabaseURL() != "" && s.config.GetSupabaseKey() != ""
}

// Initialize establishes a connection to Supabase
func (s *SupabaseClient) Initialize() error {
	if !s.IsConfigured() {
		return fmt.Errorf("Supabase URL and key must be provided")
	}

	supabaseURL := s.config.GetSupabaseURL()
	client, err := supabase.NewClient(supabaseURL, s.config.GetSupabaseKey(), &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase client initialized successfully", "url", supabaseURL)
	return nil
}

// DB returns the underlying Supabase client, nil before Initialize
func (s *SupabaseClient) DB() *supabase.Client {
	return s.client
}
