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
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("user registered", "user_id", "user-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "user registered" {
		t.Errorf("msg: got %v, want %q", record["msg"], "user registered")
	}
	if record["user_id"] != "user-1" {
		t.Errorf("user_id: got %v, want %q", record["user_id"], "user-1")
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development"})

	log.Warn("slow query", "elapsed_ms", 250)

	out := buf.String()
	if !strings.Contains(out, "slow query") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "elapsed_ms") || !strings.Contains(out, "250") {
		t.Errorf("output missing attr: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production", Level: slog.LevelWarn})

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %q", buf.String())
	}

	log.Error("should be kept")
	if buf.Len() == 0 {
		t.Error("error record should pass the warn-level filter")
	}
}

func TestWithAttrsCarriesThrough(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development"})

	child := log.With("request_id", "req-42")
	child.Info("handling")

	if out := buf.String(); !strings.Contains(out, "req-42") {
		t.Errorf("output missing inherited attr: %q", out)
	}
}
