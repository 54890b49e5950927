package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want \"info\"", cfg.LogLevel)
	}
	if cfg.Stage.Workers < 1 {
		t.Errorf("Stage.Workers = %d, want >= 1", cfg.Stage.Workers)
	}
	if cfg.Playback.Speed != 1.0 {
		t.Errorf("Playback.Speed = %v, want 1.0", cfg.Playback.Speed)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	contents := `
log_level = "debug"

[stage]
workers = 4

[playback]
speed = -1.0
blend_speed = 2.5
looping = true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want \"debug\"", cfg.LogLevel)
	}
	if cfg.Stage.Workers != 4 {
		t.Errorf("Stage.Workers = %d, want 4", cfg.Stage.Workers)
	}
	// queue_size absent from the file keeps its default
	if cfg.Stage.QueueSize != 256 {
		t.Errorf("Stage.QueueSize = %d, want 256", cfg.Stage.QueueSize)
	}
	if cfg.Playback.Speed != -1.0 || cfg.Playback.BlendSpeed != 2.5 || !cfg.Playback.Looping {
		t.Errorf("Playback = %+v, want speed=-1 blend_speed=2.5 looping=true", cfg.Playback)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadConfig of missing file succeeded, want error")
	}
}
