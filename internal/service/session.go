package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/host"
	"extract-viewer/internal/notify"
	"extract-viewer/internal/render"
	apperrors "extract-viewer/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
)

// User-facing messages of the session controller.
const (
	MsgSelectFile         = "Please select a file first."
	MsgUploadInProgress   = "An upload is already in progress."
	MsgProcessingFailed   = "An error occurred while processing your file. Please try again."
	MsgExtracted          = "Content extracted successfully!"
	MsgFileTypeNotAllowed = "File type not allowed. Please select a PDF, image, audio, or video file."
	MsgReady              = "Ready for a new file!"
)

// AllowedExtensions are the file extensions accepted by drag and drop.
var AllowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "mp3", "wav", "mp4", "avi", "mov", "mkv"}

// Stage is which part of the page is active.
type Stage string

const (
	StageForm    Stage = "form"
	StageLoading Stage = "loading"
	StageResults Stage = "results"
)

// File icon classes shown next to the selected file name.
const (
	IconPDF   = "pdf-icon"
	IconImage = "image-icon"
	IconAudio = "audio-icon"
	IconVideo = "video-icon"
	IconFile  = "file-icon"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// Upload is one file submitted through the form.
type Upload struct {
	Filename string
	File     io.Reader
}

// Selection describes the file currently chosen in the form.
type Selection struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime,omitempty"`
	Icon     string `json:"icon"`
}

// View is the serialisable state of a session.
type View struct {
	SessionID      string                   `json:"session_id"`
	Stage          Stage                    `json:"stage"`
	FormVisible    bool                     `json:"form_visible"`
	Loading        bool                     `json:"loading"`
	ResultsVisible bool                     `json:"results_visible"`
	Selection      *Selection               `json:"selection,omitempty"`
	Presentation   *render.PresentationView `json:"presentation,omitempty"`
	Modal          render.ModalState        `json:"modal"`
	Notifications  []notify.Notification    `json:"notifications"`
}

// Snapshot is a view plus the host effects queued since the last snapshot.
type Snapshot struct {
	View    View          `json:"view"`
	Effects []host.Effect `json:"effects"`
}

// Session is the controller of one browser session. It owns the renderer,
// the shared modal, the notification stack and the effect queue, and
// serialises every event under one lock.
type Session struct {
	ID string

	mu         sync.Mutex
	stage      Stage
	selection  *Selection
	generation uint64
	closed     bool

	extractor domain.Extractor
	recorder  *host.Recorder
	notifier  *notify.Center
	renderer  *render.Renderer
	logger    domain.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	flags  host.Flags
	notify []notify.Option
}

// WithHostFlags sets the capabilities the browser declared.
func WithHostFlags(flags host.Flags) SessionOption {
	return func(o *sessionOptions) { o.flags = flags }
}

// WithNotifyOptions configures the session's notification stack.
func WithNotifyOptions(opts ...notify.Option) SessionOption {
	return func(o *sessionOptions) { o.notify = append(o.notify, opts...) }
}

// NewSession creates a session showing the empty form.
func NewSession(id string, extractor domain.Extractor, logger domain.Logger, opts ...SessionOption) *Session {
	o := sessionOptions{flags: host.DefaultFlags()}
	for _, opt := range opts {
		opt(&o)
	}

	recorder := host.NewRecorder()
	notifier := notify.NewCenter(o.notify...)
	return &Session{
		ID:        id,
		stage:     StageForm,
		extractor: extractor,
		recorder:  recorder,
		notifier:  notifier,
		renderer:  render.NewRenderer(recorder.Capabilities(o.flags), render.NewModal(), notifier, logger),
		logger:    logger,
	}
}

// Declare records the capabilities the browser reports. They apply to the
// next rendered result.
func (s *Session) Declare(flags host.Flags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.SetCapabilities(s.recorder.Capabilities(flags))
}

// Submit uploads a file and renders the result. Whatever happens, the
// session leaves the loading stage and the form is shown again.
func (s *Session) Submit(ctx context.Context, up Upload) error {
	s.mu.Lock()
	if up.File == nil || strings.TrimSpace(up.Filename) == "" {
		s.notifier.Error(MsgSelectFile)
		s.mu.Unlock()
		return apperrors.NewValidationError(MsgSelectFile, domain.ErrNoFileSelected.Error())
	}
	if s.stage == StageLoading {
		s.notifier.Warning(MsgUploadInProgress)
		s.mu.Unlock()
		return apperrors.NewConflictError(domain.ErrUploadInProgress.Error())
	}

	file, sel := sniff(up)
	s.selection = sel
	s.stage = StageLoading
	s.renderer.Reset()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info("Uploading file", "session", s.ID, "filename", up.Filename, "mime", sel.MIME)
	result, err := s.extractor.Extract(ctx, up.Filename, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.closed {
		s.logger.Info("Discarding result of abandoned upload", "session", s.ID, "filename", up.Filename)
		return apperrors.NewConflictError("upload abandoned")
	}
	s.stage = StageForm

	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeServer) {
			s.logger.Warn("Extraction rejected", "session", s.ID, "filename", up.Filename, "error", err)
			s.notifier.Error("Error: " + apperrors.GetMessage(err, err.Error()))
		} else {
			s.logger.Error("Error uploading file", err, "session", s.ID, "filename", up.Filename)
			s.notifier.Error(MsgProcessingFailed)
		}
		return err
	}

	p := s.renderer.Render(result)
	s.stage = StageResults
	s.logger.Info("Content extracted", "session", s.ID, "filename", p.Filename, "blocks", len(p.Blocks))
	s.notifier.Success(MsgExtracted)
	return nil
}

// Drop validates a dropped file by extension. A disallowed file is
// rejected with an error notification and never uploaded.
func (s *Session) Drop(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext := extensionOf(filename)
	if !allowedExtension(ext) {
		s.notifier.Error(MsgFileTypeNotAllowed)
		return apperrors.NewValidationError(domain.ErrFileTypeNotAllowed.Error(), filename)
	}
	s.selection = &Selection{Filename: filename, Icon: iconForExtension(ext)}
	return nil
}

// SelectFile records the file chosen in the form. head is the start of the
// file, used to detect its type; it may be empty.
func (s *Session) SelectFile(filename string, head []byte) *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := selectionFor(filename, head)
	s.selection = sel
	out := *sel
	return &out
}

// BackToForm hides the results and clears the selection.
func (s *Session) BackToForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toForm()
}

// Reset returns to the initial state and confirms it.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toForm()
	s.notifier.Info(MsgReady)
}

func (s *Session) toForm() {
	s.generation++
	s.stage = StageForm
	s.selection = nil
	s.renderer.Reset()
}

// Escape closes the shared modal.
func (s *Session) Escape() {
	s.CloseModal()
}

// CloseModal closes the shared modal.
func (s *Session) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Modal().Close()
}

// Dismiss removes a notification before it expires.
func (s *Session) Dismiss(id string) error {
	if !s.notifier.Dismiss(id) {
		return apperrors.NewNotFoundError("notification not found")
	}
	return nil
}

// Notify pushes a notification onto the session's stack.
func (s *Session) Notify(severity notify.Severity, message string) notify.Notification {
	return s.notifier.Push(severity, message)
}

// Close tears the session down. Pending uploads are discarded on return.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.toForm()
	s.recorder.Drain()
}

// View returns the session state without draining effects.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Snapshot returns the session state and drains the effect queue.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{View: s.view(), Effects: s.recorder.Drain()}
}

func (s *Session) view() View {
	v := View{
		SessionID:      s.ID,
		Stage:          s.stage,
		FormVisible:    s.stage != StageLoading,
		Loading:        s.stage == StageLoading,
		ResultsVisible: s.stage == StageResults,
		Modal:          s.renderer.Modal().State(),
		Notifications:  s.notifier.Active(),
	}
	if s.selection != nil {
		sel := *s.selection
		v.Selection = &sel
	}
	if s.stage == StageResults {
		v.Presentation = s.renderer.Current().View()
	}
	return v
}

// sniff detects the upload's type from its first bytes and returns a reader
// that still yields the whole file.
func sniff(up Upload) (io.Reader, *Selection) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.File, head)
	head = head[:n]
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return io.MultiReader(bytes.NewReader(head), errReader{err}), selectionFor(up.Filename, head)
	}
	return io.MultiReader(bytes.NewReader(head), up.File), selectionFor(up.Filename, head)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func selectionFor(filename string, head []byte) *Selection {
	sel := &Selection{Filename: filename, Icon: IconFile}
	if len(head) == 0 {
		sel.Icon = iconForExtension(extensionOf(filename))
		return sel
	}
	mt := mimetype.Detect(head)
	sel.MIME = mt.String()
	sel.Icon = iconForMIME(sel.MIME, extensionOf(filename))
	return sel
}

// FileIcon returns the icon class for a file, from its detected type and
// falling back to its extension.
func FileIcon(filename string, head []byte) string {
	return selectionFor(filename, head).Icon
}

func iconForMIME(mime, ext string) string {
	top, _, _ := strings.Cut(mime, "/")
	switch {
	case top == "application" && ext == "pdf":
		return IconPDF
	case top == "image":
		return IconImage
	case top == "audio":
		return IconAudio
	case top == "video":
		return IconVideo
	default:
		return IconFile
	}
}

func iconForExtension(ext string) string {
	switch ext {
	case "pdf":
		return IconPDF
	case "png", "jpg", "jpeg":
		return IconImage
	case "mp3", "wav":
		return IconAudio
	case "mp4", "avi", "mov", "mkv":
		return IconVideo
	default:
		return IconFile
	}
}

func extensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func allowedExtension(ext string) bool {
	return slices.Contains(AllowedExtensions, ext)
}
