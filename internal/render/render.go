// Package render turns an extraction result into an interactive
// presentation: one block per content unit, each carrying the transient
// controls (players, frame strip, caption and read-aloud toggles) bound to
// that unit's payload.
//
// A Renderer and everything it builds are confined to their owner; callers
// serialise access (the session controller holds a lock around every event).
package render

import (
	"fmt"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/notify"
)

// Presentation is the rendered form of one ExtractionResult.
type Presentation struct {
	Filename      string
	ContentType   domain.ContentType
	DownloadLinks *domain.DownloadLinks
	Blocks        []*Block

	result *domain.ExtractionResult
}

// Result returns the result this presentation was built from.
func (p *Presentation) Result() *domain.ExtractionResult {
	return p.result
}

// Block is the presentation of one content unit.
type Block struct {
	ID         string
	Position   int
	Label      string
	Badge      string
	BadgeClass string

	Image *ImagePreview
	Audio *AudioPlayer
	Video *VideoPlayer
	Text  *TextBlock
}

// release stops everything the block may still have running.
func (b *Block) release() {
	if b.Audio != nil {
		b.Audio.Release()
	}
	if b.Video != nil {
		b.Video.Release()
	}
	if b.Text != nil && b.Text.ReadAloud != nil {
		b.Text.ReadAloud.stop()
	}
}

// Renderer builds presentations and owns the one that is current.
type Renderer struct {
	env     *env
	current *Presentation
}

// env is what strategies need from the renderer.
type env struct {
	caps     domain.Capabilities
	modal    *Modal
	notifier *notify.Center
	logger   domain.Logger
	speech   *speechGuard
}

// NewRenderer creates a renderer bound to one host, one shared modal and one
// notification stack.
func NewRenderer(caps domain.Capabilities, modal *Modal, notifier *notify.Center, logger domain.Logger) *Renderer {
	return &Renderer{
		env: &env{
			caps:     caps,
			modal:    modal,
			notifier: notifier,
			logger:   logger,
			speech:   &speechGuard{},
		},
	}
}

// SetCapabilities replaces the host capabilities used by later renders.
// Blocks already built keep the capabilities they were built with.
func (r *Renderer) SetCapabilities(caps domain.Capabilities) {
	r.env.caps = caps
}

// Modal returns the shared modal.
func (r *Renderer) Modal() *Modal {
	return r.env.modal
}

// Current returns the presentation on display, or nil.
func (r *Renderer) Current() *Presentation {
	return r.current
}

// Render discards the current presentation and builds a new one, one block
// per unit in unit order. A nil result renders as an empty presentation.
func (r *Renderer) Render(result *domain.ExtractionResult) *Presentation {
	r.Reset()

	owned := result.Clone()
	if owned == nil {
		owned = &domain.ExtractionResult{ContentType: domain.ContentTypePDF}
	}

	strat := strategyFor(owned.ContentType)
	p := &Presentation{
		Filename:      owned.Filename,
		ContentType:   owned.ContentType,
		DownloadLinks: owned.DownloadLinks,
		Blocks:        make([]*Block, 0, len(owned.Units)),
		result:        owned,
	}

	for pos, unit := range owned.Units {
		b := &Block{
			ID:         fmt.Sprintf("block-%d", pos),
			Position:   pos,
			Label:      strat.label(unit.Index),
			Badge:      unit.Source.Badge(),
			BadgeClass: unit.Source.BadgeClass(),
		}
		strat.media(b, unit, r.env)
		if unit.HasText() {
			b.Text = newTextBlock(pos, unit.Text, r.env)
		}
		p.Blocks = append(p.Blocks, b)
	}

	r.current = p
	r.env.logger.Debug("Rendered extraction result",
		"filename", p.Filename,
		"content_type", p.ContentType,
		"blocks", len(p.Blocks))
	return p
}

// Reset tears down the current presentation: media is paused and unbound,
// read-aloud is cancelled and the shared modal is closed. It is idempotent.
func (r *Renderer) Reset() {
	if r.current != nil {
		for _, b := range r.current.Blocks {
			b.release()
		}
		r.current = nil
	}
	r.env.speech.active = nil
	r.env.modal.Close()
}

// Block returns the block at position pos of the current presentation.
func (r *Renderer) Block(pos int) (*Block, error) {
	if r.current == nil || pos < 0 || pos >= len(r.current.Blocks) {
		return nil, domain.ErrBlockNotFound
	}
	return r.current.Blocks[pos], nil
}

// strategy renders the media part of a block for one content type.
type strategy interface {
	label(index int) string
	media(b *Block, unit domain.ContentUnit, e *env)
}

func strategyFor(ct domain.ContentType) strategy {
	switch ct {
	case domain.ContentTypeAudio:
		return audioStrategy{}
	case domain.ContentTypeVideo:
		return videoStrategy{}
	default:
		return imageStrategy{}
	}
}

// imageStrategy serves pdf pages and images alike.
type imageStrategy struct{}

func (imageStrategy) label(index int) string {
	return fmt.Sprintf("Page %d", index)
}

func (s imageStrategy) media(b *Block, unit domain.ContentUnit, e *env) {
	if unit.Image == "" {
		return
	}
	label := s.label(unit.Index)
	b.Image = &ImagePreview{
		Locator: unit.Image,
		Alt:     label + " Image",
		Label:   label,
		modal:   e.modal,
	}
}

type audioStrategy struct{}

func (audioStrategy) label(index int) string {
	return fmt.Sprintf("Audio Track %d", index)
}

func (audioStrategy) media(b *Block, unit domain.ContentUnit, e *env) {
	if unit.Audio == "" {
		return
	}
	b.Audio = newAudioPlayer(b.Position, unit.Audio, e)
}

type videoStrategy struct{}

func (videoStrategy) label(index int) string {
	return fmt.Sprintf("Video Segment %d", index)
}

func (videoStrategy) media(b *Block, unit domain.ContentUnit, e *env) {
	if unit.Video == "" {
		return
	}
	b.Video = newVideoPlayer(b.Position, unit, e)
}

// ImagePreview is an enlargeable image.
type ImagePreview struct {
	Locator string
	Alt     string
	Label   string

	modal *Modal
}

// Open shows the image in the shared modal.
func (p *ImagePreview) Open() {
	p.modal.Open(p.Locator, p.Label)
}
