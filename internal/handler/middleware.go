package handler

import (
	"context"
	"net/http"
	"time"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/host"
	"extract-viewer/internal/service"

	"github.com/google/uuid"
)

const visitorCookieMaxAge = 365 * 24 * 60 * 60

const (
	// SessionCookie carries the browser session id.
	SessionCookie = "ev_session"
	// VisitorCookie carries the long-lived id preferences are stored under.
	// It outlives sessions, which are dropped on restart or eviction.
	VisitorCookie = "ev_visitor"
	// CapabilitiesHeader lists the host capabilities the page detected,
	// e.g. "clipboard,speech,media,waveform,resize,viewport".
	CapabilitiesHeader = "X-Host-Capabilities"
)

// SessionResolver finds or creates the session of a request.
type SessionResolver interface {
	GetOrCreate(id string) (*service.Session, bool)
}

// SessionMiddleware attaches the browser session to the request context,
// creating one and setting its cookie when the request carries none.
type SessionMiddleware struct {
	sessions SessionResolver
	logger   domain.Logger
}

// NewSessionMiddleware creates the session middleware
func NewSessionMiddleware(sessions SessionResolver, logger domain.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, logger: logger}
}

// Middleware is the http middleware function
func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}

		s, created := m.sessions.GetOrCreate(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			m.logger.Debug("New browser session", "session", s.ID)
		}

		if caps := r.Header.Get(CapabilitiesHeader); caps != "" {
			s.Declare(host.ParseFlags(caps))
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, s)
		ctx = context.WithValue(ctx, visitorContextKey, m.visitor(w, r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// visitor returns the visitor id of the request, minting and setting a new
// one when the cookie is absent or not a uuid.
func (m *SessionMiddleware) visitor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   visitorCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	m.logger.Debug("New visitor", "visitor", id)
	return id
}

// RequestLogger logs every request with its status and latency
func RequestLogger(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"elapsed", time.Since(start).String())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
