package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", &buf)
	log.Info("hidden")
	log.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if rec["msg"] != "shown" || rec["key"] != "value" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewTextDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("nonsense", "text", &buf)
	log.Debug("hidden")
	log.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatalf("expected a logger")
	}
}
