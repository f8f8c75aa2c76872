package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}

	log.Debug("hidden")
	log.Warn("imputed values",
		String("symbol", "BTCUSDT"),
		Int("count", 3),
		Float64("ratio", 0.03),
		Bool("fallback", false),
		Duration("elapsed", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line (debug filtered), got %d: %s", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}

	checks := map[string]interface{}{
		"level":    "warn",
		"message":  "imputed values",
		"symbol":   "BTCUSDT",
		"count":    float64(3),
		"ratio":    0.03,
		"fallback": false,
		"elapsed":  float64(1500),
		"error":    "boom",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("Field %q = %v, want %v", k, entry[k], want)
		}
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}

	log.With(String("component", "pipeline")).Info("started")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["component"] != "pipeline" {
		t.Errorf("Expected component field, got %v", entry)
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := NewWithWriter(&Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing", String("k", "v"))
}
