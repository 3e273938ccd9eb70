// Package config loads engine settings from a TOML file. Every field has a
// default, so an empty or missing file yields a runnable configuration and a
// file only needs to name the settings it changes.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the full engine configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   EngineConfig   `toml:"engine"`
	Assets   AssetsConfig   `toml:"assets"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	// PresentMode selects how frames reach the screen: "fifo" (vsync),
	// "mailbox" or "immediate".
	PresentMode string `toml:"presentMode"`

	// InFlightFrames is how many frames may be queued on the GPU before the
	// CPU waits. Higher values add latency, lower values cost throughput.
	InFlightFrames int `toml:"inFlightFrames"`
}

// EngineConfig configures the main loop.
type EngineConfig struct {
	// TickRate is the target update rate in ticks per second. Zero runs
	// uncapped.
	TickRate int `toml:"tickRate"`

	// Profile enables per-frame timing output.
	Profile bool `toml:"profile"`
}

// AssetsConfig configures asset resolution.
type AssetsConfig struct {
	// Root is the directory asset paths are resolved against.
	Root string `toml:"root"`

	// LoaderWorkers is the number of background decode workers. Zero picks a
	// count from the machine's CPUs.
	LoaderWorkers int `toml:"loaderWorkers"`
}

// presentModes are the accepted presentMode values.
var presentModes = map[string]bool{
	"fifo":      true,
	"mailbox":   true,
	"immediate": true,
}

// Default returns the configuration used when no file overrides it.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "LuveHulgerUlle",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Renderer: RendererConfig{
			PresentMode:    "fifo",
			InFlightFrames: 2,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
	}
}

// Load reads a TOML configuration file over the defaults. A missing file is
// not an error: the defaults are returned unchanged.
//
// Parameters:
//   - path: the configuration file to read
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file exists but cannot be parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result. Fields the data
// does not mention keep their current values.
//
// Parameters:
//   - data: the TOML document
//   - cfg: the configuration to decode into
//
// Returns:
//   - error: an error if decoding or validation fails
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks the configuration for values the engine cannot run with.
//
// Returns:
//   - error: an error describing the first invalid field
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if !presentModes[c.Renderer.PresentMode] {
		return fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode)
	}
	if c.Renderer.InFlightFrames < 1 {
		return fmt.Errorf("inFlightFrames %d must be at least 1", c.Renderer.InFlightFrames)
	}
	if c.Engine.TickRate < 0 {
		return fmt.Errorf("tickRate %d must not be negative", c.Engine.TickRate)
	}
	if c.Assets.LoaderWorkers < 0 {
		return fmt.Errorf("loaderWorkers %d must not be negative", c.Assets.LoaderWorkers)
	}
	return nil
}
