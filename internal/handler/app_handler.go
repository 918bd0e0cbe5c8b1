package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"extract-viewer/internal/config"
	"extract-viewer/internal/domain"
	"extract-viewer/internal/notify"
	"extract-viewer/internal/render"
	"extract-viewer/internal/service"
	apperrors "extract-viewer/pkg/errors"

	"github.com/gorilla/mux"
)

// MsgFileTooLarge is shown when an upload exceeds the configured limit.
const MsgFileTooLarge = "File is too large."

// AppHandler serves the page and every session action
type AppHandler struct {
	container   *config.Container
	logger      domain.Logger
	maxFileSize int64
}

// NewAppHandler creates a new app handler
func NewAppHandler(container *config.Container) *AppHandler {
	h := &AppHandler{
		container: container,
		logger:    container.Logger,
	}
	if container.Config != nil {
		h.maxFileSize = container.Config.GetMaxFileSize()
	}
	return h
}

// session returns the session of the request or writes an error
func (h *AppHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	s, ok := SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Session not found in context")
	}
	return s, ok
}

// Upload handles the upload form
func (h *AppHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	}

	var up service.Upload
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		up = service.Upload{Filename: header.Filename, File: file}
	case errors.Is(err, http.ErrMissingFile):
		// Submit reports the missing file to the user
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.Notify(notify.Error, MsgFileTooLarge)
			writeSnapshot(w, s, apperrors.NewValidationError(MsgFileTooLarge, fmt.Sprintf("limit is %d bytes", tooLarge.Limit)))
			return
		}
		h.logger.Warn("Failed to parse upload", "session", s.ID, "error", err)
		writeSnapshot(w, s, apperrors.NewValidationError("Invalid upload", err.Error()))
		return
	}

	writeSnapshot(w, s, s.Submit(r.Context(), up))
}

// Drop handles a file dropped onto the form
func (h *AppHandler) Drop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeSnapshot(w, s, s.Drop(req.Filename))
}

// Select records the file chosen in the form. head carries the first bytes
// of the file, base64 encoded, for type detection.
func (h *AppHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Filename string `json:"filename"`
		Head     []byte `json:"head"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.SelectFile(req.Filename, req.Head)
	writeSnapshot(w, s, nil)
}

// Session returns the session state and drains pending effects
func (h *AppHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeSnapshot(w, s, nil)
}

// Blocks renders the current result blocks as an HTML fragment
func (h *AppHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, s.View().Presentation); err != nil {
		h.logger.Error("Failed to render blocks", err, "session", s.ID)
		writeError(w, http.StatusInternalServerError, "Failed to render results")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Back returns to the form
func (h *AppHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, (*service.Session).BackToForm)
}

// Reset returns to the initial state
func (h *AppHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, (*service.Session).Reset)
}

// Escape handles the Escape key
func (h *AppHandler) Escape(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, (*service.Session).Escape)
}

// CloseModal closes the image modal
func (h *AppHandler) CloseModal(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, (*service.Session).CloseModal)
}

func (h *AppHandler) simple(w http.ResponseWriter, r *http.Request, action func(*service.Session)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	action(s)
	writeSnapshot(w, s, nil)
}

// DismissNotification removes a notification
func (h *AppHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeSnapshot(w, s, s.Dismiss(mux.Vars(r)["id"]))
}

// OpenImage opens the image of a block in the modal
func (h *AppHandler) OpenImage(w http.ResponseWriter, r *http.Request) {
	h.block(w, r, func(s *service.Session, pos int, _ controlRequest) error {
		return s.OpenImage(pos)
	})
}

// Audio handles the controls of an audio player
func (h *AppHandler) Audio(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	h.block(w, r, func(s *service.Session, pos int, req controlRequest) error {
		switch action {
		case "play":
			return s.AudioTogglePlay(pos)
		case "ended":
			return s.AudioEnded(pos)
		case "played":
			return s.AudioPlayback(pos, true)
		case "paused":
			return s.AudioPlayback(pos, false)
		case "time":
			return s.AudioTimeUpdate(pos, req.Current, req.Duration)
		case "seek":
			return s.AudioSeek(pos, req.Value)
		case "rate":
			return s.AudioSetRate(pos, req.Value)
		case "layout":
			return s.AudioLayout(pos, req.Value)
		default:
			return unknownAction(action)
		}
	})
}

// Video handles the controls of a video player
func (h *AppHandler) Video(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	h.block(w, r, func(s *service.Session, pos int, req controlRequest) error {
		switch action {
		case "rate":
			return s.VideoSetRate(pos, req.Value)
		case "layout":
			return s.VideoLayout(pos, req.Value)
		case "time":
			return s.VideoTimeUpdate(pos, req.Current, req.Duration)
		case "played":
			return s.VideoPlayback(pos, true)
		case "paused":
			return s.VideoPlayback(pos, false)
		case "ended":
			return s.VideoEnded(pos)
		case "captions":
			_, err := s.ToggleCaptions(pos)
			return err
		default:
			return unknownAction(action)
		}
	})
}

// Frames moves through the frame strip of a video
func (h *AppHandler) Frames(w http.ResponseWriter, r *http.Request) {
	dir := mux.Vars(r)["dir"]
	h.block(w, r, func(s *service.Session, pos int, _ controlRequest) error {
		switch dir {
		case "next":
			return s.NextFrame(pos)
		case "prev":
			return s.PrevFrame(pos)
		default:
			return unknownAction(dir)
		}
	})
}

// SelectFrame opens a frame in the modal and seeks the video to it
func (h *AppHandler) SelectFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := intVar(r, "frame")
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.GetMessage(err, "invalid frame"))
		return
	}
	h.block(w, r, func(s *service.Session, pos int, _ controlRequest) error {
		return s.SelectFrame(pos, frame)
	})
}

// Text handles the copy and read-aloud actions of a text block
func (h *AppHandler) Text(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	h.block(w, r, func(s *service.Session, pos int, req controlRequest) error {
		switch action {
		case "copy":
			_, err := s.CopyText(r.Context(), pos)
			return err
		case "copy-failed":
			return s.CopyFailed(pos, req.Reason)
		case "copied":
			return s.CopyAcknowledged(pos)
		case "speak":
			return s.ToggleSpeech(pos)
		case "speech-ended":
			return s.SpeechEnded(pos)
		default:
			return unknownAction(action)
		}
	})
}

func (h *AppHandler) block(w http.ResponseWriter, r *http.Request, action func(*service.Session, int, controlRequest) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	pos, err := blockPosition(r)
	if err != nil {
		writeSnapshot(w, s, err)
		return
	}
	req, err := decodeControl(r)
	if err != nil {
		writeSnapshot(w, s, err)
		return
	}
	if err := action(s, pos, req); err != nil {
		h.logger.Debug("Block action failed", "session", s.ID, "block", pos, "path", r.URL.Path, "error", err)
		writeSnapshot(w, s, err)
		return
	}
	writeSnapshot(w, s, nil)
}

func unknownAction(action string) error {
	return apperrors.NewNotFoundError("unknown action " + action)
}
