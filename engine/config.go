package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teamstor/team-stor-engine/clock"
)

// Config holds the public runtime knobs. Zero-valued fields are filled
// from DefaultConfig when loaded from file.
type Config struct {
	// FixedUpdatesPerSecond is the fixed simulation rate in Hz.
	FixedUpdatesPerSecond float64 `yaml:"fixed_updates_per_second"`

	// DataDir is the resource root the cache loads from.
	DataDir string `yaml:"data_dir"`

	// ShowIntro selects whether the bootstrap intro sequence plays
	// before the initial context.
	ShowIntro bool `yaml:"show_intro"`

	WindowTitle  string `yaml:"window_title"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		FixedUpdatesPerSecond: clock.DefaultFixedHz,
		DataDir:               "data",
		ShowIntro:             true,
		WindowTitle:           "team-stor",
		WindowWidth:           1280,
		WindowHeight:          720,
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file
// is not an error; a malformed or invalid one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("engine: read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("engine: parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects invalid knobs before the loop starts.
func (c Config) Validate() error {
	if c.FixedUpdatesPerSecond <= 0 {
		return fmt.Errorf("engine: fixed_updates_per_second must be positive, got %v: %w",
			c.FixedUpdatesPerSecond, clock.ErrInvalidRate)
	}
	if c.DataDir == "" {
		return fmt.Errorf("engine: data_dir must not be empty")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("engine: window size must be positive, got %dx%d",
			c.WindowWidth, c.WindowHeight)
	}
	return nil
}
