package handler

import (
	"net/http"
	"slices"

	"extract-viewer/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestLogger(container.Logger))

	// Health check endpoint (no session required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"extract-viewer"}`))
	}).Methods("GET")

	// Initialize handlers
	appHandler := NewAppHandler(container)
	preferenceHandler := NewPreferenceHandler(container)

	sessionMiddleware := NewSessionMiddleware(container.Sessions, container.Logger)

	// Page and upload
	web := router.PathPrefix("").Subrouter()
	web.Use(sessionMiddleware.Middleware)
	web.HandleFunc("/", appHandler.Page).Methods("GET")
	web.HandleFunc("/app", appHandler.Page).Methods("GET")
	web.HandleFunc("/upload", appHandler.Upload).Methods("POST")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(sessionMiddleware.Middleware)

	// Session routes
	api.HandleFunc("/session", appHandler.Session).Methods("GET")
	api.HandleFunc("/session/blocks", appHandler.Blocks).Methods("GET")
	api.HandleFunc("/select", appHandler.Select).Methods("POST")
	api.HandleFunc("/drop", appHandler.Drop).Methods("POST")
	api.HandleFunc("/back", appHandler.Back).Methods("POST")
	api.HandleFunc("/reset", appHandler.Reset).Methods("POST")
	api.HandleFunc("/escape", appHandler.Escape).Methods("POST")
	api.HandleFunc("/modal/close", appHandler.CloseModal).Methods("POST")
	api.HandleFunc("/notifications/{id}/dismiss", appHandler.DismissNotification).Methods("POST")

	// Block routes
	blocks := api.PathPrefix("/blocks/{block:[0-9]+}").Subrouter()
	blocks.HandleFunc("/image/open", appHandler.OpenImage).Methods("POST")
	blocks.HandleFunc("/audio/{action}", appHandler.Audio).Methods("POST")
	blocks.HandleFunc("/video/frames/{dir:next|prev}", appHandler.Frames).Methods("POST")
	blocks.HandleFunc("/video/frames/{frame:[0-9]+}/select", appHandler.SelectFrame).Methods("POST")
	blocks.HandleFunc("/video/{action}", appHandler.Video).Methods("POST")
	blocks.HandleFunc("/text/{action}", appHandler.Text).Methods("POST")

	// Preference routes
	api.HandleFunc("/preferences/theme", preferenceHandler.GetTheme).Methods("GET")
	api.HandleFunc("/preferences/theme", preferenceHandler.UpdateTheme).Methods("PUT")
	api.HandleFunc("/preferences/theme/toggle", preferenceHandler.ToggleTheme).Methods("POST")

	// Configure CORS
	var origins []string
	if container.Config != nil {
		origins = container.Config.GetAllowedOrigins()
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			CapabilitiesHeader,
		},
		// the session cookie is only shared with listed origins
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
