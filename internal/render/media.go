package render

import (
	"fmt"
	"math"

	"extract-viewer/internal/domain"
	apperrors "extract-viewer/pkg/errors"
)

// Playback rate sets offered by the players. 1.0 is the default of both.
var (
	AudioRates = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}
	VideoRates = []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 2.0}
)

const (
	defaultRate = 1.0
	// compactWidth is the container width below which controls collapse.
	compactWidth = 400
)

// transport is the state shared by audio and video players.
type transport struct {
	ElementID string
	Locator   string
	Rates     []float64

	el       domain.MediaElement
	playing  bool
	current  float64
	duration float64
	rate     float64
	compact  bool
	released bool
}

func newTransport(elementID string, kind domain.MediaKind, locator string, rates []float64, e *env) transport {
	t := transport{
		ElementID: elementID,
		Locator:   locator,
		Rates:     rates,
		duration:  math.NaN(),
		rate:      defaultRate,
		el:        noopElement{},
	}
	if e.caps.HasMedia() {
		t.el = e.caps.Media.Bind(elementID, kind, locator)
	}
	if e.caps.HasResize() {
		e.caps.Resize.Observe(elementID)
	}
	return t
}

// Playing reports whether the element is playing.
func (t *transport) Playing() bool { return t.playing }

// Rate returns the selected playback rate.
func (t *transport) Rate() float64 { return t.rate }

// Compact reports whether the controls are collapsed for a narrow container.
func (t *transport) Compact() bool { return t.compact }

// Released reports whether the player has been torn down.
func (t *transport) Released() bool { return t.released }

// CurrentTime returns the last reported position in seconds.
func (t *transport) CurrentTime() float64 { return t.current }

// Duration returns the last reported duration, NaN while unknown.
func (t *transport) Duration() float64 { return t.duration }

// TimeUpdate records a progress notification from the element. Updates may
// arrive at any rate; only the latest one matters.
func (t *transport) TimeUpdate(current, duration float64) {
	if t.released {
		return
	}
	if math.IsNaN(current) || math.IsInf(current, 0) || current < 0 {
		current = 0
	}
	t.current = current
	t.duration = duration
}

// Progress returns the elapsed share in percent, 0 when the duration is
// not usable.
func (t *transport) Progress() float64 {
	if !validDuration(t.duration) {
		return 0
	}
	return math.Min(100, t.current/t.duration*100)
}

// Readout returns "elapsed / total".
func (t *transport) Readout() string {
	return FormatTime(t.current) + " / " + FormatTime(t.duration)
}

// Seek moves to fraction (0..1) of the duration. Without a known duration
// it does nothing.
func (t *transport) Seek(fraction float64) {
	if t.released || !validDuration(t.duration) || math.IsNaN(fraction) {
		return
	}
	fraction = math.Max(0, math.Min(1, fraction))
	t.seekTo(fraction * t.duration)
}

func (t *transport) seekTo(seconds float64) {
	if t.released {
		return
	}
	t.current = seconds
	t.el.Seek(seconds)
}

// SetRate selects a playback rate from the player's set.
func (t *transport) SetRate(rate float64) error {
	if t.released {
		return nil
	}
	for _, r := range t.Rates {
		if r == rate {
			t.rate = rate
			t.el.SetRate(rate)
			return nil
		}
	}
	return apperrors.NewValidationError(domain.ErrUnsupportedRate.Error(), fmt.Sprintf("%g", rate))
}

// Layout records the container width reported by the resize observer.
func (t *transport) Layout(width float64) {
	t.compact = width > 0 && width < compactWidth
}

// Played and Paused record playback changes made through the native
// controls, which the host reports.
func (t *transport) Played() { t.playing = !t.released }
func (t *transport) Paused() { t.playing = false }

// Ended records natural completion.
func (t *transport) Ended() {
	t.playing = false
}

// Release pauses and unbinds the element. Further events are ignored.
func (t *transport) Release() {
	if t.released {
		return
	}
	if t.playing {
		t.el.Pause()
	}
	t.el.Unbind()
	t.playing = false
	t.released = true
}

// AudioPlayer is the player of one audio track.
type AudioPlayer struct {
	transport
	// WaveformID is the waveform container, empty when no waveform is drawn.
	WaveformID string
}

func newAudioPlayer(pos int, locator string, e *env) *AudioPlayer {
	p := &AudioPlayer{
		transport: newTransport(fmt.Sprintf("audio-%d", pos), domain.MediaAudio, locator, AudioRates, e),
	}
	if e.caps.HasWaveform() {
		id := fmt.Sprintf("waveform-%d", pos)
		if err := e.caps.Waveform.Load(id, locator); err != nil {
			e.logger.Warn("Waveform unavailable, using native controls", "element", p.ElementID, "error", err)
		} else {
			p.WaveformID = id
		}
	}
	return p
}

// TogglePlay plays a paused track or pauses a playing one. A host that
// refuses playback leaves the player paused; the native controls remain.
func (p *AudioPlayer) TogglePlay() error {
	if p.released {
		return nil
	}
	if p.playing {
		p.el.Pause()
		p.playing = false
		return nil
	}
	if err := p.el.Play(); err != nil {
		return apperrors.NewMediaError("playback refused", err)
	}
	p.playing = true
	return nil
}

// VideoPlayer is the player of one video segment.
type VideoPlayer struct {
	transport
	Poster   string
	Frames   *FrameStrip
	Captions *CaptionToggle
}

func newVideoPlayer(pos int, unit domain.ContentUnit, e *env) *VideoPlayer {
	p := &VideoPlayer{
		transport: newTransport(fmt.Sprintf("video-%d", pos), domain.MediaVideo, unit.Video, VideoRates, e),
	}

	switch {
	case unit.Thumbnail != "":
		p.Poster = unit.Thumbnail
	case len(unit.Frames) > 0:
		p.Poster = unit.Frames[0]
	}

	if len(unit.Frames) > 0 {
		p.Frames = newFrameStrip(pos, unit, p, e)
	}
	if unit.Captions != "" {
		p.Captions = &CaptionToggle{
			Locator: unit.Captions,
			Label:   "English",
			Lang:    "en",
			enabled: true,
			el:      p.el,
		}
		p.el.SetTextTrack(domain.TrackShowing)
	}
	return p
}


// Frame is one still of a video's frame strip.
type Frame struct {
	ID           string
	Locator      string
	Alt          string
	Timestamp    float64
	HasTimestamp bool
}

// FrameStrip navigates the extracted stills of a video. The cursor stays
// within [0, len(Frames)-1] and never wraps.
type FrameStrip struct {
	Frames []Frame

	cursor int
	player *VideoPlayer
	modal  *Modal
	view   domain.Viewport
}

func newFrameStrip(pos int, unit domain.ContentUnit, player *VideoPlayer, e *env) *FrameStrip {
	s := &FrameStrip{
		Frames: make([]Frame, len(unit.Frames)),
		player: player,
		modal:  e.modal,
		view:   e.caps.Viewport,
	}
	for i, locator := range unit.Frames {
		ts, ok := unit.FrameTimestamp(i)
		s.Frames[i] = Frame{
			ID:           fmt.Sprintf("frame-%d-%d", pos, i),
			Locator:      locator,
			Alt:          fmt.Sprintf("Frame %d", i+1),
			Timestamp:    ts,
			HasTimestamp: ok,
		}
	}
	return s
}

// Cursor returns the highlighted frame position.
func (s *FrameStrip) Cursor() int { return s.cursor }

// Next moves the cursor forward. At the last frame it is a no-op.
func (s *FrameStrip) Next() bool {
	if s.cursor >= len(s.Frames)-1 {
		return false
	}
	s.moveTo(s.cursor + 1)
	return true
}

// Prev moves the cursor back. At the first frame it is a no-op.
func (s *FrameStrip) Prev() bool {
	if s.cursor <= 0 {
		return false
	}
	s.moveTo(s.cursor - 1)
	return true
}

// Select makes frame i current and opens it in the shared modal.
func (s *FrameStrip) Select(i int) error {
	if i < 0 || i >= len(s.Frames) {
		return apperrors.NewNotFoundError(fmt.Sprintf("frame %d not found", i))
	}
	s.cursor = i
	s.seek(i)
	f := s.Frames[i]
	s.modal.Open(f.Locator, f.Alt)
	return nil
}

func (s *FrameStrip) moveTo(i int) {
	s.cursor = i
	if s.view != nil {
		s.view.ScrollIntoView(s.Frames[i].ID)
	}
	s.seek(i)
}

func (s *FrameStrip) seek(i int) {
	if f := s.Frames[i]; f.HasTimestamp {
		s.player.seekTo(f.Timestamp)
	}
}

// CaptionToggle switches the subtitle track between shown and hidden.
type CaptionToggle struct {
	Locator string
	Label   string
	Lang    string

	enabled bool
	el      domain.MediaElement
}

// Toggle flips the track and returns the new mode.
func (c *CaptionToggle) Toggle() domain.TextTrackMode {
	c.enabled = !c.enabled
	mode := c.Mode()
	c.el.SetTextTrack(mode)
	return mode
}

// Mode returns the track visibility.
func (c *CaptionToggle) Mode() domain.TextTrackMode {
	if c.enabled {
		return domain.TrackShowing
	}
	return domain.TrackHidden
}

// Active mirrors Mode for the button affordance.
func (c *CaptionToggle) Active() bool { return c.enabled }

// noopElement stands in when the host has no native media element.
type noopElement struct{}

func (noopElement) Play() error { return nil }
func (noopElement) Pause()      {}
func (noopElement) Unbind()     {}

func (noopElement) Seek(float64)    {}
func (noopElement) SetRate(float64) {}

func (noopElement) SetTextTrack(domain.TextTrackMode) {}
