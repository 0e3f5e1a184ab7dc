package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NOURISH_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Backend != BackendDiskv {
		t.Fatalf("expected diskv backend, got %q", c.Backend)
	}
	if c.RemindInterval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %s", c.RemindInterval)
	}
	if c.Gestures.PullThreshold != 80 || c.Gestures.ReleaseThreshold != 60 || c.Gestures.SwipeThreshold != 50 {
		t.Fatalf("unexpected gesture defaults %+v", c.Gestures)
	}
	if c.Gestures.ReversalTolerance != 4 {
		t.Fatalf("expected reversal tolerance 4, got %v", c.Gestures.ReversalTolerance)
	}
	if c.Gestures.RefreshTimeout != 2*time.Second {
		t.Fatalf("expected 2s refresh timeout, got %s", c.Gestures.RefreshTimeout)
	}
	if filepath.Base(c.BasePath()) != ".nourish.db" || c.BasePath()[0] == '~' {
		t.Fatalf("expected expanded home path, got %q", c.BasePath())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	data := []byte("path: " + filepath.Join(dir, "db") + "\nreminders:\n  interval: 5s\ngestures:\n  swipe_threshold: 70\n")
	if err := os.WriteFile(filepath.Join(dir, ".nourish.yaml"), data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NOURISH_CONFIG_PATH", dir)
	t.Setenv("NOURISH_LOG_LEVEL", "debug")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.BasePath() != filepath.Join(dir, "db") {
		t.Fatalf("unexpected path %q", c.BasePath())
	}
	if c.RemindInterval != 5*time.Second {
		t.Fatalf("expected 5s interval, got %s", c.RemindInterval)
	}
	if c.Gestures.SwipeThreshold != 70 {
		t.Fatalf("expected swipe threshold 70, got %v", c.Gestures.SwipeThreshold)
	}
	if c.Log.Level != "debug" {
		t.Fatalf("expected env log level, got %q", c.Log.Level)
	}
}

func TestPostgresRequiresURL(t *testing.T) {
	t.Setenv("NOURISH_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("NOURISH_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without database_url")
	}
}
