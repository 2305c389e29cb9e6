package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewJSONLoggerWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	NewComponentLogger(logger, "cache").Debug("loaded", String(FieldRoadmapID, "rm-1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != "cache" {
		t.Errorf("expected component=cache, got %v", entry[FieldComponent])
	}
	if entry[FieldRoadmapID] != "rm-1" {
		t.Errorf("expected roadmap_id=rm-1, got %v", entry[FieldRoadmapID])
	}
}

func TestNewAutoFormatFallsBackToJSONForBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "auto", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
	if !json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	WarnWithContext(logger, "remote write failed", "remote_persist_failed", String(FieldImpact, "cache only"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[FieldEventType] != "remote_persist_failed" {
		t.Errorf("event_type: %v", entry[FieldEventType])
	}
	if entry[FieldImpact] != "cache only" {
		t.Errorf("impact should keep caller value, got %v", entry[FieldImpact])
	}
	if entry[FieldErrorHint] == nil {
		t.Error("error_hint default not injected")
	}
}

func TestNilLoggersAreSafe(t *testing.T) {
	WarnWithContext(nil, "ignored", "noop")
	NewComponentLogger(nil, "x").Info("discarded")
}
