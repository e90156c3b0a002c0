package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
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

func TestNew_JSONWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := WithDraftID(WithComponent(New(&buf, "info"), "drafts"), "d-1")
	logger.Debug("hidden")
	logger.Info("draft created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["msg"] != "draft created" || entry["component"] != "drafts" || entry["draft_id"] != "d-1" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"abcd1234wxyz", "abcd...wxyz"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := SanitizePath(filepath.Join(home, "clips", "a.mp4")); got != "~/clips/a.mp4" {
		t.Errorf("SanitizePath() = %s", got)
	}
	if got := SanitizePath("/srv/a.mp4"); got != "/srv/a.mp4" {
		t.Errorf("SanitizePath() = %s", got)
	}
}
