package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("engine")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.component != "engine" {
		t.Errorf("expected component 'engine', got %q", l.component)
	}
}

func TestNew(t *testing.T) {
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "queue")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.component != "queue" {
		t.Errorf("expected component 'queue', got %q", l.component)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "worker")
	l.Warn("operation missing", Fields("operation", "normalize"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["component"] != "worker" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
	if entry["operation"] != "normalize" {
		t.Errorf("expected operation field, got %v", entry["operation"])
	}
	if entry["level"] != "warn" {
		t.Errorf("expected warn level, got %v", entry["level"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "a").WithComponent("b")
	l.Info("hi")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["component"] != "b" {
		t.Errorf("expected component 'b', got %v", entry["component"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "x").WithError(fmt.Errorf("boom"))
	l.Error("failed")
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("expected error field in output, got %s", buf.String())
	}
}

func TestFields(t *testing.T) {
	m := Fields("stage", 2, "workers", 5)
	if m["stage"] != 2 || m["workers"] != 5 {
		t.Errorf("unexpected fields map: %v", m)
	}
}

func TestFieldsOddArgs(t *testing.T) {
	m := Fields("stage", 2, "dangling")
	if len(m) != 1 {
		t.Errorf("expected dangling key dropped, got %v", m)
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("finish", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", m[FieldDuration])
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected default level info, got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format console, got %q", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Level: "info", Format: "json", Output: "stdout"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg.Level = "info"
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}
