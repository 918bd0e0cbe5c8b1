package domain

import "context"

// Host capabilities consumed by the renderer. Every one of them is optional;
// a nil value means the host does not offer it and the integration point
// that would use it degrades instead of failing.

// Clipboard writes text to the user's clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// SpeechSynthesizer reads text aloud. Natural completion is reported back
// by the host through the read-aloud control, not through this interface.
type SpeechSynthesizer interface {
	Speak(utteranceID, text string) error
	Cancel(utteranceID string)
}

// MediaKind distinguishes audio from video elements.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// TextTrackMode is the visibility of a subtitle track.
type TextTrackMode string

const (
	TrackShowing TextTrackMode = "showing"
	TrackHidden  TextTrackMode = "hidden"
)

// MediaElement is a native playback element bound to one locator.
type MediaElement interface {
	Play() error
	Pause()
	Seek(seconds float64)
	SetRate(rate float64)
	SetTextTrack(mode TextTrackMode)
	Unbind()
}

// MediaHost creates playback elements.
type MediaHost interface {
	Bind(elementID string, kind MediaKind, locator string) MediaElement
}

// WaveformRenderer draws an audio waveform into a container.
type WaveformRenderer interface {
	Load(containerID, locator string) error
}

// ResizeObserver reports layout width changes of an element back to the
// renderer.
type ResizeObserver interface {
	Observe(elementID string)
}

// Viewport scrolls elements into view.
type Viewport interface {
	ScrollIntoView(elementID string)
}

// Capabilities is the set of host facilities available to one session.
type Capabilities struct {
	Clipboard Clipboard
	Speech    SpeechSynthesizer
	Media     MediaHost
	Waveform  WaveformRenderer
	Resize    ResizeObserver
	Viewport  Viewport
}

// HasClipboard reports whether copy-to-clipboard can be offered.
func (c Capabilities) HasClipboard() bool { return c.Clipboard != nil }

// HasSpeech reports whether read-aloud can be offered.
func (c Capabilities) HasSpeech() bool { return c.Speech != nil }

// HasMedia reports whether native playback elements exist.
func (c Capabilities) HasMedia() bool { return c.Media != nil }

// HasWaveform reports whether waveform visualisation can be attached.
func (c Capabilities) HasWaveform() bool { return c.Waveform != nil }

// HasResize reports whether layout width changes are observable.
func (c Capabilities) HasResize() bool { return c.Resize != nil }

// HasViewport reports whether elements can be scrolled into view.
func (c Capabilities) HasViewport() bool { return c.Viewport != nil }
