package render

import (
	"extract-viewer/internal/domain"
)

// PresentationView is the serialisable snapshot of a Presentation.
type PresentationView struct {
	Filename      string                `json:"filename"`
	ContentType   domain.ContentType    `json:"content_type"`
	DownloadLinks *domain.DownloadLinks `json:"download_links,omitempty"`
	Blocks        []BlockView           `json:"blocks"`
}

type BlockView struct {
	ID         string     `json:"id"`
	Position   int        `json:"position"`
	Label      string     `json:"label"`
	Badge      string     `json:"badge"`
	BadgeClass string     `json:"badge_class"`
	Image      *ImageView `json:"image,omitempty"`
	Audio      *AudioView `json:"audio,omitempty"`
	Video      *VideoView `json:"video,omitempty"`
	Text       *TextView  `json:"text,omitempty"`
}

type ImageView struct {
	Locator string `json:"locator"`
	Alt     string `json:"alt"`
	Label   string `json:"label"`
}

type PlayerView struct {
	ElementID string    `json:"element_id"`
	Locator   string    `json:"locator"`
	Playing   bool      `json:"playing"`
	Rate      float64   `json:"rate"`
	Rates     []float64 `json:"rates"`
	Progress  float64   `json:"progress"`
	Readout   string    `json:"readout"`
	Compact   bool      `json:"compact"`
}

type AudioView struct {
	PlayerView
	WaveformID string `json:"waveform_id,omitempty"`
}

type FrameView struct {
	ID        string   `json:"id"`
	Locator   string   `json:"locator"`
	Alt       string   `json:"alt"`
	Timestamp *float64 `json:"timestamp,omitempty"`
	Current   bool     `json:"current"`
}

type CaptionView struct {
	Locator string `json:"locator"`
	Label   string `json:"label"`
	Lang    string `json:"lang"`
	Mode    string `json:"mode"`
	Active  bool   `json:"active"`
}

type VideoView struct {
	PlayerView
	Poster      string       `json:"poster,omitempty"`
	Frames      []FrameView  `json:"frames,omitempty"`
	FrameCursor int          `json:"frame_cursor"`
	Captions    *CaptionView `json:"captions,omitempty"`
}

type TextView struct {
	ID          string   `json:"id"`
	Paragraphs  []string `json:"paragraphs"`
	CopyLabel   string   `json:"copy_label"`
	Copied      bool     `json:"copied"`
	CanSpeak    bool     `json:"can_speak"`
	SpeechState string   `json:"speech_state,omitempty"`
	SpeechLabel string   `json:"speech_label,omitempty"`
}

// View snapshots the presentation. A nil presentation yields nil.
func (p *Presentation) View() *PresentationView {
	if p == nil {
		return nil
	}
	v := &PresentationView{
		Filename:      p.Filename,
		ContentType:   p.ContentType,
		DownloadLinks: p.DownloadLinks,
		Blocks:        make([]BlockView, 0, len(p.Blocks)),
	}
	for _, b := range p.Blocks {
		v.Blocks = append(v.Blocks, b.View())
	}
	return v
}

// View snapshots one block.
func (b *Block) View() BlockView {
	v := BlockView{
		ID:         b.ID,
		Position:   b.Position,
		Label:      b.Label,
		Badge:      b.Badge,
		BadgeClass: b.BadgeClass,
	}
	if b.Image != nil {
		v.Image = &ImageView{Locator: b.Image.Locator, Alt: b.Image.Alt, Label: b.Image.Label}
	}
	if b.Audio != nil {
		v.Audio = &AudioView{PlayerView: b.Audio.playerView(), WaveformID: b.Audio.WaveformID}
	}
	if b.Video != nil {
		v.Video = b.Video.view()
	}
	if b.Text != nil {
		v.Text = b.Text.view()
	}
	return v
}

func (t *transport) playerView() PlayerView {
	return PlayerView{
		ElementID: t.ElementID,
		Locator:   t.Locator,
		Playing:   t.playing,
		Rate:      t.rate,
		Rates:     t.Rates,
		Progress:  t.Progress(),
		Readout:   t.Readout(),
		Compact:   t.compact,
	}
}

func (p *VideoPlayer) view() *VideoView {
	v := &VideoView{PlayerView: p.playerView(), Poster: p.Poster}
	if p.Frames != nil {
		v.FrameCursor = p.Frames.Cursor()
		v.Frames = make([]FrameView, len(p.Frames.Frames))
		for i, f := range p.Frames.Frames {
			fv := FrameView{ID: f.ID, Locator: f.Locator, Alt: f.Alt, Current: i == v.FrameCursor}
			if f.HasTimestamp {
				ts := f.Timestamp
				fv.Timestamp = &ts
			}
			v.Frames[i] = fv
		}
	}
	if p.Captions != nil {
		v.Captions = &CaptionView{
			Locator: p.Captions.Locator,
			Label:   p.Captions.Label,
			Lang:    p.Captions.Lang,
			Mode:    string(p.Captions.Mode()),
			Active:  p.Captions.Active(),
		}
	}
	return v
}

func (t *TextBlock) view() *TextView {
	v := &TextView{
		ID:         t.ID,
		Paragraphs: t.Paragraphs,
		CopyLabel:  t.CopyLabel(),
		Copied:     t.copied,
	}
	if t.ReadAloud != nil {
		v.CanSpeak = true
		v.SpeechState = string(t.ReadAloud.State())
		v.SpeechLabel = t.ReadAloud.Label()
	}
	return v
}
