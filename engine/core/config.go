package core

import (
	"fmt"
	"os"
	"runtime"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the engine-wide settings read from a TOML file at startup.
// Every field has a usable default, so a missing or partial file is never
// fatal at this layer.
type Config struct {
	// LogLevel is the minimum log level emitted by the engine logger:
	// "debug", "info", "warn" or "error".
	LogLevel string `toml:"log_level"`

	// Stage configures the per-tick update fan-out.
	Stage StageConfig `toml:"stage"`

	// Playback configures the defaults applied to newly built animation players.
	Playback PlaybackConfig `toml:"playback"`
}

// StageConfig controls the worker pool that spreads actor updates across cores.
type StageConfig struct {
	// Workers is the number of pool workers. Zero selects NumCPU-1.
	Workers int `toml:"workers"`

	// QueueSize is the task queue capacity of the worker pool.
	QueueSize int `toml:"queue_size"`
}

// PlaybackConfig carries the initial playback state for animation players
// built without explicit options.
type PlaybackConfig struct {
	// Speed is the default signed playback speed multiplier.
	Speed float32 `toml:"speed"`

	// BlendSpeed is the default crossfade rate in blend-units per second.
	BlendSpeed float32 `toml:"blend_speed"`

	// Looping selects whether players loop by default when an animation ends.
	Looping bool `toml:"looping"`
}

// DefaultConfig returns the configuration used when no file is supplied.
//
// Returns:
//   - *Config: a config populated with engine defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Stage: StageConfig{
			Workers:   max(runtime.NumCPU()-1, 1),
			QueueSize: 256,
		},
		Playback: PlaybackConfig{
			Speed:      1.0,
			BlendSpeed: 1.0,
			Looping:    false,
		},
	}
}

// LoadConfig reads a TOML configuration file and overlays it on the defaults.
// Fields absent from the file keep their default values.
//
// Parameters:
//   - path: filesystem path of the TOML file
//
// Returns:
//   - *Config: the merged configuration
//   - error: error if the file cannot be read or parsed
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if cfg.Stage.Workers <= 0 {
		cfg.Stage.Workers = max(runtime.NumCPU()-1, 1)
	}
	if cfg.Stage.QueueSize <= 0 {
		cfg.Stage.QueueSize = 256
	}

	return cfg, nil
}
