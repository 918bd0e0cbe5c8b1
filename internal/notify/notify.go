// Package notify holds the user-visible notification stack of a session.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity is the visual kind of a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// DismissAfter is how long a notification stays visible unless dismissed.
const DismissAfter = 5 * time.Second

// Notification is one entry of the stack.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	// ExpiresIn is the remaining visible time in milliseconds as of the
	// read that produced this copy.
	ExpiresIn int64 `json:"expires_in_ms"`
}

// Icon returns the icon class for the severity.
func (n Notification) Icon() string {
	switch n.Severity {
	case Success:
		return "fa-check-circle"
	case Error:
		return "fa-exclamation-circle"
	case Warning:
		return "fa-exclamation-triangle"
	default:
		return "fa-info-circle"
	}
}

// Center stacks notifications in arrival order and expires them after
// DismissAfter. Expiry is evaluated against the injected clock whenever the
// stack is read, so no timer goroutines are left behind.
type Center struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
	ttl   time.Duration
}

// Option configures a Center.
type Option func(*Center)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithTTL overrides DismissAfter.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) { c.ttl = ttl }
}

// NewCenter creates an empty notification stack.
func NewCenter(opts ...Option) *Center {
	c := &Center{now: time.Now, ttl: DismissAfter}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push appends a notification and returns it.
func (c *Center) Push(severity Severity, message string) Notification {
	switch severity {
	case Success, Error, Warning, Info:
	default:
		severity = Info
	}

	n := Notification{
		ID:        uuid.NewString(),
		Severity:  severity,
		Message:   message,
		CreatedAt: c.now(),
		ExpiresIn: c.ttl.Milliseconds(),
	}

	c.mu.Lock()
	c.prune()
	c.items = append(c.items, n)
	c.mu.Unlock()
	return n
}

func (c *Center) Success(message string) Notification { return c.Push(Success, message) }
func (c *Center) Error(message string) Notification   { return c.Push(Error, message) }
func (c *Center) Warning(message string) Notification { return c.Push(Warning, message) }
func (c *Center) Info(message string) Notification    { return c.Push(Info, message) }

// Dismiss removes a notification before it expires. It reports whether the
// notification was still visible.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the visible notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	now := c.now()
	out := make([]Notification, len(c.items))
	for i, n := range c.items {
		n.ExpiresIn = (c.ttl - now.Sub(n.CreatedAt)).Milliseconds()
		out[i] = n
	}
	return out
}

// Latest returns the most recent visible notification.
func (c *Center) Latest() (Notification, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Notification{}, false
	}
	return active[len(active)-1], true
}

// caller holds c.mu
func (c *Center) prune() {
	now := c.now()
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Sub(n.CreatedAt) < c.ttl {
			kept = append(kept, n)
		}
	}
	c.items = kept
}
