package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"extract-viewer/internal/domain"
	"extract-viewer/internal/service"
	apperrors "extract-viewer/pkg/errors"

	"github.com/gorilla/mux"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusTeapot, "nope")

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %s", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"nope"}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestWriteSnapshot_ErrorStatus(t *testing.T) {
	s := service.NewSession("s-1", &stubExtractor{}, NewMockHandlerLogger())

	rr := httptest.NewRecorder()
	writeSnapshot(rr, s, apperrors.NewNotFoundError("block not found"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	resp := decodeAction(t, rr)
	if resp.Error != "block not found" || resp.View.SessionID != "s-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(&domain.ValidationError{Field: "theme", Message: "bad"}); got != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, got)
	}
	if got := statusFor(apperrors.NewConflictError("busy")); got != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, got)
	}
	if got := statusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, got)
	}
}

func TestIntVar(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"block": "3", "frame": "-1"})

	if n, err := blockPosition(req); err != nil || n != 3 {
		t.Fatalf("expected block 3, got %d (%v)", n, err)
	}
	if _, err := intVar(req, "frame"); err == nil {
		t.Fatalf("expected negative frame to be rejected")
	}
}
