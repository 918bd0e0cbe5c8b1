package host

import (
	"context"
	"testing"

	"extract-viewer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	assert.Equal(t, DefaultFlags(), ParseFlags(""))

	f := ParseFlags(" speech, Waveform ,unknown")
	assert.True(t, f.Speech)
	assert.True(t, f.Waveform)
	assert.False(t, f.Clipboard)
	assert.False(t, f.Media)
}

func TestRecorder_CapabilitiesFollowFlags(t *testing.T) {
	rec := NewRecorder()
	caps := rec.Capabilities(Flags{Clipboard: true, Media: true})

	assert.True(t, caps.HasClipboard())
	assert.True(t, caps.HasMedia())
	assert.False(t, caps.HasSpeech())
	assert.False(t, caps.HasWaveform())
	assert.False(t, caps.HasResize())
	assert.False(t, caps.HasViewport())
}

func TestRecorder_QueuesAndDrains(t *testing.T) {
	rec := NewRecorder()
	el := rec.Bind("audio-0", domain.MediaAudio, "/f/a.mp3")
	require.NoError(t, el.Play())
	el.SetRate(1.5)
	el.Pause()

	effects := rec.Drain()
	require.Len(t, effects, 4)
	assert.Equal(t, KindMediaBind, effects[0].Kind)
	assert.Equal(t, "audio", effects[0].Mode)
	assert.Equal(t, KindMediaRate, effects[2].Kind)
	assert.Equal(t, 1.5, effects[2].Value)

	assert.Empty(t, rec.Drain())
}

func TestRecorder_ClipboardCanceled(t *testing.T) {
	rec := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rec.WriteText(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Pending())
}

func TestRecorder_BoundedQueue(t *testing.T) {
	rec := NewRecorder()
	for i := 0; i < MaxPendingEffects+10; i++ {
		rec.ScrollIntoView("frame")
	}
	assert.Len(t, rec.Pending(), MaxPendingEffects)
}
