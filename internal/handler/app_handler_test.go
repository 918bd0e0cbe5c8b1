package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"extract-viewer/internal/config"
	"extract-viewer/internal/domain"
	"extract-viewer/internal/host"
	"extract-viewer/internal/notify"
	"extract-viewer/internal/service"
	apperrors "extract-viewer/pkg/errors"
)

func imageResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		ContentType: domain.ContentTypeImage,
		Units: []domain.ContentUnit{
			{Index: 1, Source: domain.SourceOCR, Text: "Hello\n\nWorld", Image: "/files/p1.png"},
		},
		DownloadLinks: &domain.DownloadLinks{Original: "/d/scan.png", Text: "/d/scan.txt"},
	}
}

func audioResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		ContentType: domain.ContentTypeAudio,
		Units: []domain.ContentUnit{
			{Index: 1, Source: domain.SourceSpeech, Text: "spoken words", Audio: "/files/a1.mp3"},
		},
	}
}

func TestAppHandler_PageSetsSessionCookie(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{}))

	rr := c.do(http.MethodGet, "/", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if c.cookie == nil || c.cookie.Value == "" {
		t.Fatalf("expected a session cookie")
	}
	if !c.cookie.HttpOnly {
		t.Fatalf("expected session cookie to be HttpOnly")
	}
	body := rr.Body.String()
	if !strings.Contains(body, `data-theme="light"`) {
		t.Fatalf("expected default theme in page")
	}
	if !strings.Contains(body, `accept=".pdf,.png,.jpg,.jpeg,.mp3,.wav,.mp4,.avi,.mov,.mkv"`) {
		t.Fatalf("expected accepted extensions in page")
	}

	first := c.cookie.Value
	rr = c.do(http.MethodGet, "/app", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if c.cookie.Value != first {
		t.Fatalf("expected the session to be reused")
	}
}

func TestAppHandler_UploadSuccess(t *testing.T) {
	ext := &stubExtractor{result: imageResult()}
	c := newTestClient(t, newTestContainer(t, ext))

	rr := c.upload("scan.png", "\x89PNG\r\n\x1a\npayload")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	resp := decodeAction(t, rr)
	if resp.Error != "" {
		t.Fatalf("expected no error, got %s", resp.Error)
	}
	v := resp.View
	if v.Stage != service.StageResults || !v.ResultsVisible || v.Loading {
		t.Fatalf("expected results stage, got %+v", v)
	}
	if !v.FormVisible {
		t.Fatalf("expected form to stay visible")
	}
	if v.Presentation == nil || v.Presentation.Filename != "scan.png" || len(v.Presentation.Blocks) != 1 {
		t.Fatalf("unexpected presentation: %+v", v.Presentation)
	}
	if v.Selection == nil || v.Selection.Icon != service.IconImage {
		t.Fatalf("expected image selection, got %+v", v.Selection)
	}
	last := v.Notifications[len(v.Notifications)-1]
	if last.Message != service.MsgExtracted {
		t.Fatalf("expected success notification, got %s", last.Message)
	}
	if last.ExpiresIn <= 0 || last.ExpiresIn > notify.DismissAfter.Milliseconds() {
		t.Fatalf("expected notification to carry its remaining time, got %d", last.ExpiresIn)
	}

	page := c.do(http.MethodGet, "/", nil, "").Body.String()
	if !strings.Contains(page, `data-expires-in="`) {
		t.Fatalf("expected rendered notifications to carry their expiry")
	}

	page = c.do(http.MethodGet, "/", nil, "").Body.String()
	if !strings.Contains(page, `id="block-0"`) || !strings.Contains(page, "Download text") {
		t.Fatalf("expected rendered results in page")
	}
}

func TestAppHandler_UploadWithoutFile(t *testing.T) {
	ext := &stubExtractor{result: imageResult()}
	c := newTestClient(t, newTestContainer(t, ext))

	rr := c.upload("", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	resp := decodeAction(t, rr)
	if resp.Error != service.MsgSelectFile {
		t.Fatalf("expected %q, got %q", service.MsgSelectFile, resp.Error)
	}
	if ext.Calls() != 0 {
		t.Fatalf("expected no extraction request")
	}
}

func TestAppHandler_UploadTooLarge(t *testing.T) {
	ext := &stubExtractor{result: imageResult()}
	container := newTestContainer(t, ext)
	container.Config.(*config.AppConfig).MaxFileSize = 64
	c := newTestClient(t, container)

	rr := c.upload("big.png", strings.Repeat("x", 4096))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if ext.Calls() != 0 {
		t.Fatalf("expected no extraction request")
	}
	if resp := decodeAction(t, rr); resp.View.Stage != service.StageForm {
		t.Fatalf("expected form stage, got %s", resp.View.Stage)
	}
}

func TestAppHandler_UploadServerError(t *testing.T) {
	ext := &stubExtractor{err: apperrors.NewServerError("unsupported format")}
	c := newTestClient(t, newTestContainer(t, ext))

	rr := c.upload("doc.pdf", "%PDF-1.4")
	if rr.Code == http.StatusOK {
		t.Fatalf("expected an error status")
	}
	resp := decodeAction(t, rr)
	if resp.Error != "unsupported format" {
		t.Fatalf("expected server message, got %q", resp.Error)
	}
	v := resp.View
	if v.Presentation != nil || !v.FormVisible || v.Loading {
		t.Fatalf("expected form without results, got %+v", v)
	}
	last := v.Notifications[len(v.Notifications)-1]
	if last.Message != "Error: unsupported format" {
		t.Fatalf("unexpected notification %q", last.Message)
	}
}

func TestAppHandler_Drop(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{}))

	rr := c.postJSON("/api/v1/drop", `{"filename":"report.exe"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	resp := decodeAction(t, rr)
	last := resp.View.Notifications[len(resp.View.Notifications)-1]
	if last.Message != service.MsgFileTypeNotAllowed {
		t.Fatalf("unexpected notification %q", last.Message)
	}

	rr = c.postJSON("/api/v1/drop", `{"filename":"talk.MP3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	resp = decodeAction(t, rr)
	if resp.View.Selection == nil || resp.View.Selection.Icon != service.IconAudio {
		t.Fatalf("expected audio selection, got %+v", resp.View.Selection)
	}

	rr = c.postJSON("/api/v1/drop", `not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestAppHandler_Select(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{}))

	// "JVBERi0xLjQK" is "%PDF-1.4\n"
	rr := c.postJSON("/api/v1/select", `{"filename":"scan.pdf","head":"JVBERi0xLjQK"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	sel := decodeAction(t, rr).View.Selection
	if sel == nil || sel.Icon != service.IconPDF || sel.MIME != "application/pdf" {
		t.Fatalf("expected pdf selection, got %+v", sel)
	}
}

func TestAppHandler_BackAndReset(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: audioResult()}))
	c.upload("talk.mp3", "ID3")

	rr := c.postJSON("/api/v1/back", "")
	resp := decodeAction(t, rr)
	if resp.View.Presentation != nil || resp.View.Stage != service.StageForm || resp.View.Selection != nil {
		t.Fatalf("expected empty form, got %+v", resp.View)
	}
	if !hasEffect(resp.Effects, host.KindMediaUnbind, "audio-0") {
		t.Fatalf("expected media to be unbound, got %+v", resp.Effects)
	}

	resp = decodeAction(t, c.postJSON("/api/v1/reset", ""))
	last := resp.View.Notifications[len(resp.View.Notifications)-1]
	if last.Message != service.MsgReady {
		t.Fatalf("unexpected notification %q", last.Message)
	}
}

func TestAppHandler_AudioControls(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: audioResult()}))
	resp := decodeAction(t, c.upload("talk.mp3", "ID3"))
	if !hasEffect(resp.Effects, host.KindMediaBind, "audio-0") {
		t.Fatalf("expected audio to be bound, got %+v", resp.Effects)
	}

	resp = decodeAction(t, c.postJSON("/api/v1/blocks/0/audio/play", ""))
	if !hasEffect(resp.Effects, host.KindMediaPlay, "audio-0") {
		t.Fatalf("expected play effect, got %+v", resp.Effects)
	}
	if !resp.View.Presentation.Blocks[0].Audio.Playing {
		t.Fatalf("expected player to be playing")
	}

	rr := c.postJSON("/api/v1/blocks/0/audio/time", `{"current":30,"duration":120}`)
	resp = decodeAction(t, rr)
	if got := resp.View.Presentation.Blocks[0].Audio.Progress; got != 25 {
		t.Fatalf("expected progress 25, got %v", got)
	}

	rr = c.postJSON("/api/v1/blocks/0/audio/rate", `{"value":3}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for unsupported rate, got %d", http.StatusBadRequest, rr.Code)
	}

	rr = c.postJSON("/api/v1/blocks/0/audio/rate", `{"value":1.5}`)
	resp = decodeAction(t, rr)
	if !hasEffect(resp.Effects, host.KindMediaRate, "audio-0") {
		t.Fatalf("expected rate effect, got %+v", resp.Effects)
	}

	rr = c.postJSON("/api/v1/blocks/0/audio/rewind", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for unknown action, got %d", http.StatusNotFound, rr.Code)
	}

	rr = c.postJSON("/api/v1/blocks/0/audio/seek", `{"value":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for malformed body, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestAppHandler_AudioNativePlayback(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: audioResult()}))
	c.upload("talk.mp3", "ID3")

	// started from the element's own controls
	resp := decodeAction(t, c.postJSON("/api/v1/blocks/0/audio/played", ""))
	if !resp.View.Presentation.Blocks[0].Audio.Playing {
		t.Fatalf("expected reported playback to be recorded")
	}

	resp = decodeAction(t, c.postJSON("/api/v1/blocks/0/audio/play", ""))
	if !hasEffect(resp.Effects, host.KindMediaPause, "audio-0") {
		t.Fatalf("expected the play button to pause, got %+v", resp.Effects)
	}
	if resp.View.Presentation.Blocks[0].Audio.Playing {
		t.Fatalf("expected player to be paused")
	}

	c.postJSON("/api/v1/blocks/0/audio/played", "")
	resp = decodeAction(t, c.postJSON("/api/v1/blocks/0/audio/paused", ""))
	if resp.View.Presentation.Blocks[0].Audio.Playing {
		t.Fatalf("expected reported pause to be recorded")
	}
}

func TestAppHandler_BlockNotFound(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: imageResult()}))
	c.upload("scan.png", "\x89PNG")

	rr := c.postJSON("/api/v1/blocks/7/image/open", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}

	rr = c.postJSON("/api/v1/blocks/0/video/rate", `{"value":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for missing player, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestAppHandler_ImageModal(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: imageResult()}))
	c.upload("scan.png", "\x89PNG")

	resp := decodeAction(t, c.postJSON("/api/v1/blocks/0/image/open", ""))
	if !resp.View.Modal.Open || resp.View.Modal.Locator != "/files/p1.png" {
		t.Fatalf("expected modal with page image, got %+v", resp.View.Modal)
	}

	resp = decodeAction(t, c.postJSON("/api/v1/escape", ""))
	if resp.View.Modal.Open {
		t.Fatalf("expected escape to close the modal")
	}

	c.postJSON("/api/v1/blocks/0/image/open", "")
	resp = decodeAction(t, c.postJSON("/api/v1/modal/close", ""))
	if resp.View.Modal.Open {
		t.Fatalf("expected modal to close")
	}
}

func TestAppHandler_TextCopy(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: imageResult()}))
	c.upload("scan.png", "\x89PNG")

	resp := decodeAction(t, c.postJSON("/api/v1/blocks/0/text/copy", ""))
	var copied bool
	for _, e := range resp.Effects {
		if e.Kind == host.KindClipboardWrite && e.Text == "Hello\n\nWorld" {
			copied = true
		}
	}
	if !copied {
		t.Fatalf("expected clipboard write of the full text, got %+v", resp.Effects)
	}
	if label := resp.View.Presentation.Blocks[0].Text.CopyLabel; label != "Copied!" {
		t.Fatalf("expected confirmation label, got %s", label)
	}

	resp = decodeAction(t, c.postJSON("/api/v1/blocks/0/text/copy-failed", `{"reason":"denied"}`))
	last := resp.View.Notifications[len(resp.View.Notifications)-1]
	if last.Message != "Failed to copy text. Please try again." {
		t.Fatalf("unexpected notification %q", last.Message)
	}

	rr := c.postJSON("/api/v1/blocks/0/text/speak", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d without speech, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestAppHandler_CapabilitiesHeader(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: imageResult()}))
	c.caps = "clipboard,speech,media"
	c.upload("scan.png", "\x89PNG")

	resp := decodeAction(t, c.postJSON("/api/v1/blocks/0/text/speak", ""))
	if resp.Error != "" {
		t.Fatalf("expected read aloud to start, got %s", resp.Error)
	}
	if !hasEffect(resp.Effects, host.KindSpeechSpeak, "speech-0") {
		t.Fatalf("expected speak effect, got %+v", resp.Effects)
	}
}

func TestAppHandler_Blocks(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{result: imageResult()}))

	rr := c.do(http.MethodGet, "/api/v1/session/blocks", nil, "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "" {
		t.Fatalf("expected empty fragment before any upload, got %d %q", rr.Code, rr.Body.String())
	}

	c.upload("scan.png", "\x89PNG")
	rr = c.do(http.MethodGet, "/api/v1/session/blocks", nil, "")
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html, got %s", ct)
	}
	if !strings.Contains(rr.Body.String(), "<p>World</p>") {
		t.Fatalf("expected paragraphs in fragment: %s", rr.Body.String())
	}
}

func TestAppHandler_DismissNotification(t *testing.T) {
	c := newTestClient(t, newTestContainer(t, &stubExtractor{}))
	resp := decodeAction(t, c.postJSON("/api/v1/reset", ""))
	id := resp.View.Notifications[0].ID

	resp = decodeAction(t, c.postJSON("/api/v1/notifications/"+id+"/dismiss", ""))
	if len(resp.View.Notifications) != 0 {
		t.Fatalf("expected notification to be dismissed")
	}

	rr := c.postJSON("/api/v1/notifications/"+id+"/dismiss", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestAppHandler_MissingSession(t *testing.T) {
	h := NewAppHandler(newTestContainer(t, &stubExtractor{}))
	rr := httptest.NewRecorder()
	h.Session(rr, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}
