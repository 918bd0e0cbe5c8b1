package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient gives repositories access to the Supabase REST API.
type SupabaseClient interface {
	Initialize() error
	IsConfigured() bool
	DB() *supabase.Client
}
