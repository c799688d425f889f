package cli

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
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("preview failed", "word", "zzyx")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Error("info message should be filtered at warn level")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", line, err)
	}
	if entry["msg"] != "preview failed" || entry["word"] != "zzyx" {
		t.Errorf("unexpected entry %v", entry)
	}
	if slog.Default() != logger {
		t.Error("NewLogger should set the default logger")
	}

	buf.Reset()
	NewLogger(&buf, "debug", "text").Debug("dictionary loaded", "entries", 3)
	if !strings.Contains(buf.String(), "msg=\"dictionary loaded\"") || !strings.Contains(buf.String(), "source=") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}
