package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAppLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("warn", &buf)

	l.Info("hidden")
	l.Debug("hidden too")
	l.Warn("shown", "session", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info/debug lines should be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN: shown session=abc") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAppLogger_ErrorAndWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf).With("component", "extractor")

	l.Error("upload failed", errors.New("boom"), "status", 502, "dangling")

	out := buf.String()
	if !strings.Contains(out, "ERROR: upload failed component=extractor error=boom status=502") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "dangling") {
		t.Fatalf("trailing key without value must be dropped, got %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"DEBUG":    DEBUG,
		"info":     INFO,
		"warning":  WARN,
		"error":    ERROR,
		"nonsense": INFO,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %d, want %d", in, got, want)
		}
	}
}
