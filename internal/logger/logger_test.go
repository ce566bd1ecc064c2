package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("text"); got != FormatText {
		t.Errorf("ParseFormat(text) = %q", got)
	}
	if got := ParseFormat(""); got != FormatJSON {
		t.Errorf("ParseFormat(\"\") = %q", got)
	}
	if got := ParseFormat("yaml"); got != FormatJSON {
		t.Errorf("ParseFormat(yaml) = %q", got)
	}
}

func TestServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "auth-service", slog.LevelInfo, FormatJSON)

	l.Info("hello", "user_id", "u-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}
	if record["service"] != "auth-service" {
		t.Errorf("Expected service attribute, got %v", record["service"])
	}
	if record["user_id"] != "u-1" {
		t.Errorf("Expected user_id attribute, got %v", record["user_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "", slog.LevelWarn, FormatText)

	l.Info("dropped")
	l.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("Expected info record to be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("Expected warn record to be written")
	}
}
