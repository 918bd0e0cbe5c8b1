package handler

import (
	"encoding/json"
	"net/http"

	"extract-viewer/internal/config"
	"extract-viewer/internal/domain"
)

// PreferenceHandler handles preference-related HTTP requests
type PreferenceHandler struct {
	container         *config.Container
	logger            domain.Logger
	preferenceService domain.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(container *config.Container) *PreferenceHandler {
	return &PreferenceHandler{
		container:         container,
		logger:            container.Logger,
		preferenceService: container.PreferenceService,
	}
}

type themeResponse struct {
	Theme domain.Theme `json:"theme"`
}

// GetTheme handles getting the theme of the visitor
func (h *PreferenceHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	visitor, ok := VisitorFromContext(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Visitor not found in context")
		return
	}

	theme, err := h.preferenceService.GetTheme(r.Context(), visitor)
	if err != nil {
		h.logger.Error("Failed to get theme", err, "visitor", visitor)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve preferences")
		return
	}

	writeJSON(w, http.StatusOK, themeResponse{Theme: theme})
}

// UpdateTheme handles storing the theme of the visitor
func (h *PreferenceHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	visitor, ok := VisitorFromContext(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Visitor not found in context")
		return
	}

	var req themeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	theme, err := h.preferenceService.SetTheme(r.Context(), visitor, req.Theme)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			writeError(w, status, err.Error())
			return
		}
		writeError(w, status, "Failed to update preferences")
		return
	}

	writeJSON(w, http.StatusOK, themeResponse{Theme: theme})
}

// ToggleTheme handles switching between light and dark
func (h *PreferenceHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	visitor, ok := VisitorFromContext(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Visitor not found in context")
		return
	}

	theme, err := h.preferenceService.ToggleTheme(r.Context(), visitor)
	if err != nil {
		h.logger.Error("Failed to toggle theme", err, "visitor", visitor)
		writeError(w, statusFor(err), "Failed to update preferences")
		return
	}

	writeJSON(w, http.StatusOK, themeResponse{Theme: theme})
}
