package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInit_JSONKeys(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, slog.LevelInfo, "json")
	slog.Info("probe finished", "mode", "authenticated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for _, key := range []string{"timestamp", "level", "message", "mode"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("missing key %q in %v", key, entry)
		}
	}
}

func TestInit_TextRespectsLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, slog.LevelWarn, "text")
	slog.Info("hidden")
	slog.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
