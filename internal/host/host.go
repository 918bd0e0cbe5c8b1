// Package host implements the renderer's host capabilities for a browser
// that is driven remotely: every capability call is queued as an Effect,
// and the page drains and executes the queue after each request.
package host

import (
	"context"
	"strings"
	"sync"

	"extract-viewer/internal/domain"
)

// Effect kinds understood by the page script.
const (
	KindClipboardWrite = "clipboard.write"
	KindSpeechSpeak    = "speech.speak"
	KindSpeechCancel   = "speech.cancel"
	KindMediaBind      = "media.bind"
	KindMediaPlay      = "media.play"
	KindMediaPause     = "media.pause"
	KindMediaSeek      = "media.seek"
	KindMediaRate      = "media.rate"
	KindMediaTrack     = "media.track"
	KindMediaUnbind    = "media.unbind"
	KindWaveformLoad   = "waveform.load"
	KindResizeObserve  = "resize.observe"
	KindViewportScroll = "viewport.scroll"
)

// MaxPendingEffects bounds the queue of a page that stopped polling.
const MaxPendingEffects = 256

// Effect is one command for the browser.
type Effect struct {
	Kind    string  `json:"kind"`
	Target  string  `json:"target,omitempty"`
	Locator string  `json:"locator,omitempty"`
	Text    string  `json:"text,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Mode    string  `json:"mode,omitempty"`
}

// Flags lists the capabilities a browser declared.
type Flags struct {
	Clipboard bool
	Speech    bool
	Media     bool
	Waveform  bool
	Resize    bool
	Viewport  bool
}

// DefaultFlags is assumed when a browser declares nothing: the baseline
// every supported browser has.
func DefaultFlags() Flags {
	return Flags{Clipboard: true, Media: true, Viewport: true}
}

// ParseFlags reads a comma separated capability list such as
// "clipboard,speech,media". An empty list yields DefaultFlags.
func ParseFlags(list string) Flags {
	list = strings.TrimSpace(list)
	if list == "" {
		return DefaultFlags()
	}
	var f Flags
	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "clipboard":
			f.Clipboard = true
		case "speech":
			f.Speech = true
		case "media":
			f.Media = true
		case "waveform":
			f.Waveform = true
		case "resize":
			f.Resize = true
		case "viewport":
			f.Viewport = true
		}
	}
	return f
}

// Recorder queues effects. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	effects []Effect
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Capabilities exposes the recorder through the capabilities the browser
// declared; undeclared ones stay nil.
func (r *Recorder) Capabilities(f Flags) domain.Capabilities {
	var caps domain.Capabilities
	if f.Clipboard {
		caps.Clipboard = r
	}
	if f.Speech {
		caps.Speech = r
	}
	if f.Media {
		caps.Media = r
	}
	if f.Waveform {
		caps.Waveform = r
	}
	if f.Resize {
		caps.Resize = r
	}
	if f.Viewport {
		caps.Viewport = r
	}
	return caps
}

// Drain returns and clears the queued effects.
func (r *Recorder) Drain() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.effects
	r.effects = nil
	if out == nil {
		out = []Effect{}
	}
	return out
}

// Pending returns a copy of the queue without clearing it.
func (r *Recorder) Pending() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Effect(nil), r.effects...)
}

func (r *Recorder) push(e Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
	if over := len(r.effects) - MaxPendingEffects; over > 0 {
		r.effects = append([]Effect(nil), r.effects[over:]...)
	}
}

// WriteText implements domain.Clipboard.
func (r *Recorder) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.push(Effect{Kind: KindClipboardWrite, Text: text})
	return nil
}

// Speak implements domain.SpeechSynthesizer.
func (r *Recorder) Speak(utteranceID, text string) error {
	r.push(Effect{Kind: KindSpeechSpeak, Target: utteranceID, Text: text})
	return nil
}

// Cancel implements domain.SpeechSynthesizer.
func (r *Recorder) Cancel(utteranceID string) {
	r.push(Effect{Kind: KindSpeechCancel, Target: utteranceID})
}

// Load implements domain.WaveformRenderer.
func (r *Recorder) Load(containerID, locator string) error {
	r.push(Effect{Kind: KindWaveformLoad, Target: containerID, Locator: locator})
	return nil
}

// Observe implements domain.ResizeObserver.
func (r *Recorder) Observe(elementID string) {
	r.push(Effect{Kind: KindResizeObserve, Target: elementID})
}

// ScrollIntoView implements domain.Viewport.
func (r *Recorder) ScrollIntoView(elementID string) {
	r.push(Effect{Kind: KindViewportScroll, Target: elementID})
}

// Bind implements domain.MediaHost.
func (r *Recorder) Bind(elementID string, kind domain.MediaKind, locator string) domain.MediaElement {
	r.push(Effect{Kind: KindMediaBind, Target: elementID, Locator: locator, Mode: string(kind)})
	return &element{id: elementID, rec: r}
}

type element struct {
	id  string
	rec *Recorder
}

func (e *element) Play() error {
	e.rec.push(Effect{Kind: KindMediaPlay, Target: e.id})
	return nil
}

func (e *element) Pause() {
	e.rec.push(Effect{Kind: KindMediaPause, Target: e.id})
}

func (e *element) Seek(seconds float64) {
	e.rec.push(Effect{Kind: KindMediaSeek, Target: e.id, Value: seconds})
}

func (e *element) SetRate(rate float64) {
	e.rec.push(Effect{Kind: KindMediaRate, Target: e.id, Value: rate})
}

func (e *element) SetTextTrack(mode domain.TextTrackMode) {
	e.rec.push(Effect{Kind: KindMediaTrack, Target: e.id, Mode: string(mode)})
}

func (e *element) Unbind() {
	e.rec.push(Effect{Kind: KindMediaUnbind, Target: e.id})
}
