package render

import (
	"context"
	"fmt"
	"strings"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/notify"
	apperrors "extract-viewer/pkg/errors"
)

// CopyFailedMessage is shown when the clipboard rejects a copy.
const CopyFailedMessage = "Failed to copy text. Please try again."

// Paragraphs splits text into one paragraph per non-blank line. Blank lines
// are dropped, never merged into their neighbours.
func Paragraphs(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// TextBlock presents a unit's extracted text.
type TextBlock struct {
	ID         string
	Text       string
	Paragraphs []string
	ReadAloud  *ReadAloud

	copied    bool
	clipboard domain.Clipboard
	notifier  *notify.Center
	logger    domain.Logger
}

func newTextBlock(pos int, text string, e *env) *TextBlock {
	t := &TextBlock{
		ID:         fmt.Sprintf("text-%d", pos),
		Text:       text,
		Paragraphs: Paragraphs(text),
		clipboard:  e.caps.Clipboard,
		notifier:   e.notifier,
		logger:     e.logger,
	}
	if e.caps.HasSpeech() {
		t.ReadAloud = &ReadAloud{
			UtteranceID: fmt.Sprintf("speech-%d", pos),
			text:        text,
			synth:       e.caps.Speech,
			guard:       e.speech,
		}
	}
	return t
}

// Copy writes the full text to the clipboard. Failures, including a host
// without a clipboard, become an error notification; it never returns one.
func (t *TextBlock) Copy(ctx context.Context) bool {
	if t.clipboard == nil {
		t.CopyFailed(apperrors.NewClipboardError("clipboard unavailable", nil))
		return false
	}
	if err := t.clipboard.WriteText(ctx, t.Text); err != nil {
		t.CopyFailed(err)
		return false
	}
	t.copied = true
	return true
}

// CopyFailed reports a copy the host could not complete.
func (t *TextBlock) CopyFailed(err error) {
	t.copied = false
	t.logger.Warn("Failed to copy text", "block", t.ID, "error", err)
	t.notifier.Error(CopyFailedMessage)
}

// CopyAcknowledged returns the copy control to its idle label.
func (t *TextBlock) CopyAcknowledged() {
	t.copied = false
}

// Copied reports whether the copy control shows its confirmation.
func (t *TextBlock) Copied() bool { return t.copied }

// CopyLabel is the copy control's current label.
func (t *TextBlock) CopyLabel() string {
	if t.copied {
		return "Copied!"
	}
	return "Copy Text"
}

// SpeechState is the read-aloud toggle state.
type SpeechState string

const (
	SpeechIdle     SpeechState = "speak"
	SpeechSpeaking SpeechState = "stop"
)

// ReadAloud is a two-state toggle over the host's speech synthesis.
type ReadAloud struct {
	UtteranceID string

	text     string
	speaking bool
	synth    domain.SpeechSynthesizer
	guard    *speechGuard
}

// State returns the toggle state.
func (r *ReadAloud) State() SpeechState {
	if r.speaking {
		return SpeechSpeaking
	}
	return SpeechIdle
}

// Label is the toggle's current label.
func (r *ReadAloud) Label() string {
	if r.speaking {
		return "Stop Reading"
	}
	return "Read Aloud"
}

// Toggle starts reading or stops it.
func (r *ReadAloud) Toggle() error {
	if r.speaking {
		r.stop()
		return nil
	}
	r.guard.take(r)
	if err := r.synth.Speak(r.UtteranceID, r.text); err != nil {
		r.guard.release(r)
		return apperrors.NewMediaError("speech synthesis refused", err)
	}
	r.speaking = true
	return nil
}

// Finished records natural completion of the utterance.
func (r *ReadAloud) Finished() {
	r.speaking = false
	r.guard.release(r)
}

func (r *ReadAloud) stop() {
	if !r.speaking {
		return
	}
	r.synth.Cancel(r.UtteranceID)
	r.speaking = false
	r.guard.release(r)
}

// speechGuard keeps at most one read-aloud toggle in the speaking state;
// the host has a single synthesis queue.
type speechGuard struct {
	active *ReadAloud
}

func (g *speechGuard) take(r *ReadAloud) {
	if g.active != nil && g.active != r {
		g.active.stop()
	}
	g.active = r
}

func (g *speechGuard) release(r *ReadAloud) {
	if g.active == r {
		g.active = nil
	}
}
