package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/service"
	apperrors "extract-viewer/pkg/errors"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	visitorContextKey contextKey = "visitor"
)

// SessionFromContext returns the browser session attached by SessionMiddleware
func SessionFromContext(r *http.Request) (*service.Session, bool) {
	s, ok := r.Context().Value(sessionContextKey).(*service.Session)
	return s, ok
}

// VisitorFromContext returns the visitor id attached by SessionMiddleware
func VisitorFromContext(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(visitorContextKey).(string)
	return id, ok && id != ""
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps an application or domain error to an HTTP status
func statusFor(err error) int {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return apperrors.GetStatusCode(err)
}

// actionResponse is the reply of every session action: the new state, the
// effects for the browser, and the error of the action if any.
type actionResponse struct {
	service.Snapshot
	Error string `json:"error,omitempty"`
}

// writeSnapshot replies with the session state after an action
func writeSnapshot(w http.ResponseWriter, s *service.Session, err error) {
	resp := actionResponse{Snapshot: s.Snapshot()}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		resp.Error = apperrors.GetMessage(err, err.Error())
	}
	writeJSON(w, status, resp)
}

// blockPosition reads the {block} path variable
func blockPosition(r *http.Request) (int, error) {
	return intVar(r, "block")
}

func intVar(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewValidationError("invalid "+name, raw)
	}
	return n, nil
}

// controlRequest is the body of a block control action. Fields not used by
// an action are ignored.
type controlRequest struct {
	Value    float64 `json:"value"`
	Current  float64 `json:"current"`
	Duration float64 `json:"duration"`
	Reason   string  `json:"reason"`
}

func decodeControl(r *http.Request) (controlRequest, error) {
	var req controlRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return req, nil
}
