package service

import (
	"context"
	"fmt"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/render"
	apperrors "extract-viewer/pkg/errors"
)

// Block controls. Each runs under the session lock against the block at
// pos of the presentation on display.

func (s *Session) withBlock(pos int, fn func(*render.Block) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.renderer.Block(pos)
	if err != nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s: %d", domain.ErrBlockNotFound, pos))
	}
	return fn(b)
}

func unavailable(pos int, control string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s: block %d has no %s", domain.ErrControlUnavailable, pos, control))
}

func (s *Session) withAudio(pos int, fn func(*render.AudioPlayer) error) error {
	return s.withBlock(pos, func(b *render.Block) error {
		if b.Audio == nil {
			return unavailable(pos, "audio player")
		}
		return fn(b.Audio)
	})
}

func (s *Session) withVideo(pos int, fn func(*render.VideoPlayer) error) error {
	return s.withBlock(pos, func(b *render.Block) error {
		if b.Video == nil {
			return unavailable(pos, "video player")
		}
		return fn(b.Video)
	})
}

func (s *Session) withFrames(pos int, fn func(*render.FrameStrip) error) error {
	return s.withVideo(pos, func(v *render.VideoPlayer) error {
		if v.Frames == nil {
			return unavailable(pos, "frame strip")
		}
		return fn(v.Frames)
	})
}

func (s *Session) withText(pos int, fn func(*render.TextBlock) error) error {
	return s.withBlock(pos, func(b *render.Block) error {
		if b.Text == nil {
			return unavailable(pos, "text")
		}
		return fn(b.Text)
	})
}

// OpenImage enlarges the page image of a block.
func (s *Session) OpenImage(pos int) error {
	return s.withBlock(pos, func(b *render.Block) error {
		if b.Image == nil {
			return unavailable(pos, "image")
		}
		b.Image.Open()
		return nil
	})
}

func (s *Session) AudioTogglePlay(pos int) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		return a.TogglePlay()
	})
}

func (s *Session) AudioEnded(pos int) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		a.Ended()
		return nil
	})
}

// AudioPlayback records a play or pause made through the native controls.
func (s *Session) AudioPlayback(pos int, playing bool) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		if playing {
			a.Played()
		} else {
			a.Paused()
		}
		return nil
	})
}

func (s *Session) AudioTimeUpdate(pos int, current, duration float64) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		a.TimeUpdate(current, duration)
		return nil
	})
}

// AudioSeek seeks to fraction (0..1) of the track.
func (s *Session) AudioSeek(pos int, fraction float64) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		a.Seek(fraction)
		return nil
	})
}

func (s *Session) AudioSetRate(pos int, rate float64) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		return a.SetRate(rate)
	})
}

func (s *Session) AudioLayout(pos int, width float64) error {
	return s.withAudio(pos, func(a *render.AudioPlayer) error {
		a.Layout(width)
		return nil
	})
}

func (s *Session) VideoSetRate(pos int, rate float64) error {
	return s.withVideo(pos, func(v *render.VideoPlayer) error {
		return v.SetRate(rate)
	})
}

func (s *Session) VideoLayout(pos int, width float64) error {
	return s.withVideo(pos, func(v *render.VideoPlayer) error {
		v.Layout(width)
		return nil
	})
}

func (s *Session) VideoTimeUpdate(pos int, current, duration float64) error {
	return s.withVideo(pos, func(v *render.VideoPlayer) error {
		v.TimeUpdate(current, duration)
		return nil
	})
}

// VideoPlayback records a play or pause made through the native controls.
func (s *Session) VideoPlayback(pos int, playing bool) error {
	return s.withVideo(pos, func(v *render.VideoPlayer) error {
		if playing {
			v.Played()
		} else {
			v.Paused()
		}
		return nil
	})
}

func (s *Session) VideoEnded(pos int) error {
	return s.withVideo(pos, func(v *render.VideoPlayer) error {
		v.Ended()
		return nil
	})
}

// ToggleCaptions flips the subtitle track of a video.
func (s *Session) ToggleCaptions(pos int) (domain.TextTrackMode, error) {
	var mode domain.TextTrackMode
	err := s.withVideo(pos, func(v *render.VideoPlayer) error {
		if v.Captions == nil {
			return unavailable(pos, "captions")
		}
		mode = v.Captions.Toggle()
		return nil
	})
	return mode, err
}

// NextFrame and PrevFrame move the frame cursor; at either end they leave
// it where it is.
func (s *Session) NextFrame(pos int) error {
	return s.withFrames(pos, func(f *render.FrameStrip) error {
		f.Next()
		return nil
	})
}

func (s *Session) PrevFrame(pos int) error {
	return s.withFrames(pos, func(f *render.FrameStrip) error {
		f.Prev()
		return nil
	})
}

func (s *Session) SelectFrame(pos, frame int) error {
	return s.withFrames(pos, func(f *render.FrameStrip) error {
		return f.Select(frame)
	})
}

// CopyText copies a block's text. Failures become a notification, so the
// returned error only reports a missing block.
func (s *Session) CopyText(ctx context.Context, pos int) (bool, error) {
	var ok bool
	err := s.withText(pos, func(t *render.TextBlock) error {
		ok = t.Copy(ctx)
		return nil
	})
	return ok, err
}

// CopyFailed records that the browser could not complete a queued copy.
func (s *Session) CopyFailed(pos int, reason string) error {
	return s.withText(pos, func(t *render.TextBlock) error {
		t.CopyFailed(apperrors.NewClipboardError(reason, nil))
		return nil
	})
}

func (s *Session) CopyAcknowledged(pos int) error {
	return s.withText(pos, func(t *render.TextBlock) error {
		t.CopyAcknowledged()
		return nil
	})
}

func (s *Session) ToggleSpeech(pos int) error {
	return s.withText(pos, func(t *render.TextBlock) error {
		if t.ReadAloud == nil {
			return unavailable(pos, "read aloud")
		}
		return t.ReadAloud.Toggle()
	})
}

func (s *Session) SpeechEnded(pos int) error {
	return s.withText(pos, func(t *render.TextBlock) error {
		if t.ReadAloud == nil {
			return unavailable(pos, "read aloud")
		}
		t.ReadAloud.Finished()
		return nil
	})
}
