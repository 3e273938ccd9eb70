package engine

import (
	"github.com/rxght/LuveHulgerUlle/engine/camera"
	"github.com/rxght/LuveHulgerUlle/engine/config"
	"github.com/rxght/LuveHulgerUlle/engine/loader"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window the engine runs its frame loop on.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer the engine dispatches each frame.
//
// Parameters:
//   - r: a pre-configured Renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCameraProvider sets the transform provider producing the frame
// context.
//
// Parameters:
//   - p: a pre-configured camera Provider
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraProvider(p camera.Provider) EngineBuilderOption {
	return func(e *engine) {
		e.provider = p
	}
}

// WithLoader sets the background asset loader the engine drains each frame.
//
// Parameters:
//   - l: a pre-configured Loader instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithTickRate sets the fixed update rate in ticks per second.
// Values <= 0 run the tick callback once per frame with the frame delta.
//
// Parameters:
//   - tps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetTickRate(tps)
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithEngineConfig applies the engine section of a loaded configuration:
// tick rate and profiling.
//
// Parameters:
//   - cfg: the engine configuration section
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEngineConfig(cfg config.EngineConfig) EngineBuilderOption {
	return func(e *engine) {
		e.SetTickRate(float64(cfg.TickRate))
		e.profilingEnabled = cfg.Profile
	}
}
