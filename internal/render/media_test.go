package render

import (
	"errors"
	"math"
	"testing"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/host"
	apperrors "extract-viewer/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderAudio(t *testing.T, f *fixture) *AudioPlayer {
	t.Helper()
	p := f.renderer.Render(&domain.ExtractionResult{
		ContentType: domain.ContentTypeAudio,
		Units:       []domain.ContentUnit{{Index: 1, Source: domain.SourceSpeech, Audio: "/f/a.mp3"}},
	})
	require.NotNil(t, p.Blocks[0].Audio)
	return p.Blocks[0].Audio
}

func renderVideo(t *testing.T, f *fixture, unit domain.ContentUnit) *VideoPlayer {
	t.Helper()
	p := f.renderer.Render(&domain.ExtractionResult{
		ContentType: domain.ContentTypeVideo,
		Units:       []domain.ContentUnit{unit},
	})
	require.NotNil(t, p.Blocks[0].Video)
	return p.Blocks[0].Video
}

func TestAudioPlayer_Defaults(t *testing.T) {
	f := newFixture(allFlags())
	a := renderAudio(t, f)

	assert.Equal(t, "audio-0", a.ElementID)
	assert.Equal(t, "waveform-0", a.WaveformID)
	assert.Equal(t, 1.0, a.Rate())
	assert.Equal(t, AudioRates, a.Rates)
	assert.Equal(t, "0:00 / 0:00", a.Readout())
	assert.Equal(t, 0.0, a.Progress())

	effects := f.rec.Drain()
	assert.Len(t, effectsOf(effects, host.KindMediaBind), 1)
	assert.Len(t, effectsOf(effects, host.KindWaveformLoad), 1)
	assert.Len(t, effectsOf(effects, host.KindResizeObserve), 1)
}

func TestAudioPlayer_WithoutOptionalCapabilities(t *testing.T) {
	f := newFixture(host.Flags{})
	a := renderAudio(t, f)

	assert.Empty(t, a.WaveformID, "no waveform capability, native controls only")
	require.NoError(t, a.TogglePlay())
	assert.True(t, a.Playing())
	require.NoError(t, a.SetRate(2.0))
	assert.Empty(t, f.rec.Pending())
}

func TestAudioPlayer_TogglePlayAndEnded(t *testing.T) {
	f := newFixture(allFlags())
	a := renderAudio(t, f)
	f.rec.Drain()

	require.NoError(t, a.TogglePlay())
	assert.True(t, a.Playing())
	require.NoError(t, a.TogglePlay())
	assert.False(t, a.Playing())
	require.NoError(t, a.TogglePlay())
	a.Ended()
	assert.False(t, a.Playing())

	effects := f.rec.Drain()
	assert.Len(t, effectsOf(effects, host.KindMediaPlay), 2)
	assert.Len(t, effectsOf(effects, host.KindMediaPause), 1)
}

func TestAudioPlayer_ProgressGuards(t *testing.T) {
	f := newFixture(allFlags())
	a := renderAudio(t, f)

	a.TimeUpdate(30, math.NaN())
	assert.Equal(t, 0.0, a.Progress())
	assert.Equal(t, "0:30 / 0:00", a.Readout())

	a.TimeUpdate(30, 0)
	assert.Equal(t, 0.0, a.Progress())

	a.TimeUpdate(30, 120)
	assert.InDelta(t, 25.0, a.Progress(), 1e-9)
	assert.Equal(t, "0:30 / 2:00", a.Readout())

	// sparse or bursty delivery: only the latest update counts
	a.TimeUpdate(31, 120)
	a.TimeUpdate(90, 120)
	assert.InDelta(t, 75.0, a.Progress(), 1e-9)
}

func TestAudioPlayer_Seek(t *testing.T) {
	f := newFixture(allFlags())
	a := renderAudio(t, f)
	f.rec.Drain()

	a.Seek(0.5)
	assert.Empty(t, effectsOf(f.rec.Drain(), host.KindMediaSeek), "unknown duration: seek is ignored")

	a.TimeUpdate(0, 200)
	a.Seek(0.25)
	seeks := effectsOf(f.rec.Drain(), host.KindMediaSeek)
	require.Len(t, seeks, 1)
	assert.Equal(t, 50.0, seeks[0].Value)
	assert.Equal(t, 50.0, a.CurrentTime())

	a.Seek(7)
	assert.Equal(t, 200.0, a.CurrentTime(), "fraction is clamped to 1")
}

func TestAudioPlayer_SetRate(t *testing.T) {
	f := newFixture(allFlags())
	a := renderAudio(t, f)

	require.NoError(t, a.SetRate(0.75))
	assert.Equal(t, 0.75, a.Rate())
	require.NoError(t, a.SetRate(0.75), "repeating is harmless")

	err := a.SetRate(0.25)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, 0.75, a.Rate(), "rejected rate leaves state unchanged")
}

func TestAudioPlayer_Layout(t *testing.T) {
	f := newFixture(allFlags())
	a := renderAudio(t, f)

	a.Layout(320)
	assert.True(t, a.Compact())
	a.Layout(800)
	assert.False(t, a.Compact())
}

type refusingMedia struct{ domain.MediaElement }

func (refusingMedia) Play() error { return errors.New("autoplay blocked") }

type refusingHost struct{ inner domain.MediaHost }

func (h refusingHost) Bind(id string, kind domain.MediaKind, locator string) domain.MediaElement {
	return refusingMedia{h.inner.Bind(id, kind, locator)}
}

func TestAudioPlayer_PlaybackRefused(t *testing.T) {
	rec := host.NewRecorder()
	caps := rec.Capabilities(host.Flags{Media: true})
	caps.Media = refusingHost{inner: caps.Media}
	r := NewRenderer(caps, NewModal(), nil, nopLogger{})

	p := r.Render(&domain.ExtractionResult{
		ContentType: domain.ContentTypeAudio,
		Units:       []domain.ContentUnit{{Index: 1, Audio: "/a.mp3"}},
	})
	err := p.Blocks[0].Audio.TogglePlay()
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMedia))
	assert.False(t, p.Blocks[0].Audio.Playing())
}

func TestVideoPlayer_Poster(t *testing.T) {
	f := newFixture(allFlags())

	v := renderVideo(t, f, domain.ContentUnit{Index: 1, Video: "/v.mp4", Thumbnail: "/t.jpg", Frames: []string{"/f0.jpg"}})
	assert.Equal(t, "/t.jpg", v.Poster)

	v = renderVideo(t, f, domain.ContentUnit{Index: 1, Video: "/v.mp4", Frames: []string{"/f0.jpg"}})
	assert.Equal(t, "/f0.jpg", v.Poster)

	v = renderVideo(t, f, domain.ContentUnit{Index: 1, Video: "/v.mp4"})
	assert.Empty(t, v.Poster)
	assert.Nil(t, v.Frames)
	assert.Nil(t, v.Captions)
	assert.Equal(t, VideoRates, v.Rates)
	require.NoError(t, v.SetRate(0.25))
}

func TestVideoPlayer_NoMediaPayloadNoPlayer(t *testing.T) {
	f := newFixture(allFlags())
	p := f.renderer.Render(&domain.ExtractionResult{
		ContentType: domain.ContentTypeVideo,
		Units:       []domain.ContentUnit{{Index: 1, Frames: []string{"/f0.jpg"}}},
	})
	assert.Nil(t, p.Blocks[0].Video)
}

func TestFrameStrip_Navigation(t *testing.T) {
	f := newFixture(allFlags())
	v := renderVideo(t, f, domain.ContentUnit{
		Index:           1,
		Video:           "/v.mp4",
		Frames:          []string{"/f0.jpg", "/f1.jpg", "/f2.jpg"},
		FrameTimestamps: []float64{0, 5},
	})
	s := v.Frames
	f.rec.Drain()

	assert.False(t, s.Prev(), "prev at 0 is a no-op")
	assert.Equal(t, 0, s.Cursor())

	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.Equal(t, 2, s.Cursor())
	assert.False(t, s.Next(), "next at the last frame is a no-op")
	assert.Equal(t, 2, s.Cursor())

	effects := f.rec.Drain()
	scrolls := effectsOf(effects, host.KindViewportScroll)
	require.Len(t, scrolls, 2)
	assert.Equal(t, "frame-0-1", scrolls[0].Target)
	assert.Equal(t, "frame-0-2", scrolls[1].Target)

	seeks := effectsOf(effects, host.KindMediaSeek)
	require.Len(t, seeks, 1, "frame 2 has no aligned timestamp")
	assert.Equal(t, 5.0, seeks[0].Value)

	assert.True(t, s.Prev())
	assert.Equal(t, 1, s.Cursor())
}

func TestFrameStrip_SelectOpensModalAndSeeks(t *testing.T) {
	f := newFixture(allFlags())
	v := renderVideo(t, f, domain.ContentUnit{
		Index:           1,
		Video:           "/v.mp4",
		Frames:          []string{"/f0.jpg", "/f1.jpg"},
		FrameTimestamps: []float64{0, 12.5},
	})
	f.rec.Drain()

	require.NoError(t, v.Frames.Select(1))
	assert.Equal(t, 1, v.Frames.Cursor())
	assert.Equal(t, ModalState{Open: true, Locator: "/f1.jpg", Title: "Frame 2"}, f.renderer.Modal().State())
	assert.Equal(t, 12.5, v.CurrentTime())

	require.NoError(t, v.Frames.Select(0))
	assert.Equal(t, "/f0.jpg", f.renderer.Modal().State().Locator, "modal content is replaced, not stacked")
	seeks := effectsOf(f.rec.Drain(), host.KindMediaSeek)
	require.Len(t, seeks, 2)
	assert.Equal(t, 0.0, seeks[1].Value, "a zero offset is still an aligned timestamp")

	err := v.Frames.Select(5)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Equal(t, 0, v.Frames.Cursor())
}

func TestFrameStrip_WithoutViewport(t *testing.T) {
	f := newFixture(host.Flags{Media: true})
	v := renderVideo(t, f, domain.ContentUnit{Index: 1, Video: "/v.mp4", Frames: []string{"/a", "/b"}})
	f.rec.Drain()

	assert.True(t, v.Frames.Next())
	assert.Empty(t, effectsOf(f.rec.Drain(), host.KindViewportScroll))
}

func TestCaptionToggle(t *testing.T) {
	f := newFixture(allFlags())
	v := renderVideo(t, f, domain.ContentUnit{Index: 1, Video: "/v.mp4", Captions: "/c.vtt"})
	require.NotNil(t, v.Captions)

	tracks := effectsOf(f.rec.Drain(), host.KindMediaTrack)
	require.Len(t, tracks, 1)
	assert.Equal(t, string(domain.TrackShowing), tracks[0].Mode)

	assert.Equal(t, domain.TrackShowing, v.Captions.Mode())
	assert.True(t, v.Captions.Active())

	assert.Equal(t, domain.TrackHidden, v.Captions.Toggle())
	assert.False(t, v.Captions.Active())
	assert.Equal(t, domain.TrackShowing, v.Captions.Toggle())
	assert.True(t, v.Captions.Active())

	tracks = effectsOf(f.rec.Drain(), host.KindMediaTrack)
	require.Len(t, tracks, 2)
	assert.Equal(t, string(domain.TrackHidden), tracks[0].Mode)
	assert.Equal(t, string(domain.TrackShowing), tracks[1].Mode)
}

func TestVideoPlayer_PlayedPausedReleased(t *testing.T) {
	f := newFixture(allFlags())
	v := renderVideo(t, f, domain.ContentUnit{Index: 1, Video: "/v.mp4"})

	v.Played()
	assert.True(t, v.Playing())
	v.Paused()
	assert.False(t, v.Playing())

	v.Played()
	f.renderer.Reset()
	assert.True(t, v.Released())
	v.Played()
	assert.False(t, v.Playing(), "a released player ignores host events")
}
