package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerWritesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: DebugLevel, Output: &buf, JSON: true})

	log.With("merchant", "M1").Info("normalized", "groups", 2)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "normalized" {
		t.Fatalf("unexpected msg: %#v", entry)
	}
	if entry["merchant"] != "M1" {
		t.Fatalf("expected inherited keyval, got %#v", entry)
	}
	if entry["groups"] != float64(2) {
		t.Fatalf("expected groups keyval, got %#v", entry)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WarnLevel, Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected warn entry, got %q", out)
	}
}
