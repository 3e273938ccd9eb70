// Package engine ties the window, renderer, camera provider and asset
// loader into a frame loop. All GPU work happens on the window's locked OS
// thread: each message loop iteration drains finished assets, runs the fixed
// tick, refreshes the camera uniforms and dispatches the frame.
package engine

import (
	"log"
	"sync"
	"time"

	"github.com/rxght/LuveHulgerUlle/engine/camera"
	"github.com/rxght/LuveHulgerUlle/engine/loader"
	"github.com/rxght/LuveHulgerUlle/engine/profiler"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/window"
)

// maxTickDebt caps how far the fixed-tick accumulator may fall behind, so a
// long stall (debugger, window drag) replays a bounded number of ticks
// instead of spiraling.
const maxTickDebt = 250 * time.Millisecond

// engine is the implementation of the Engine interface.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	provider camera.Provider
	loader   loader.Loader

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate    time.Duration
	accumulator time.Duration
	lastFrame   time.Time

	tickCallback   func(deltaTime float32)
	frameCallback  func(deltaTime float32)
	resizeCallback func(width, height int)
	assetCallback  func(results []loader.Result)

	quitOnce sync.Once
}

// Engine is the main entry point. It owns the frame loop and forwards frame
// lifecycle events to the game's callbacks.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer driving this engine.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// CameraProvider returns the transform provider feeding the frame
	// context.
	//
	// Returns:
	//   - camera.Provider: the camera provider
	CameraProvider() camera.Provider

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the fixed update rate in ticks per second. Zero or
	// negative runs the tick callback once per frame with the frame delta.
	//
	// Parameters:
	//   - tps: target ticks per second
	SetTickRate(tps float64)

	// SetTickCallback registers the function called at the fixed tick rate.
	// Use this for game logic, physics and input processing.
	//
	// Parameters:
	//   - callback: function receiving the tick delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called once per rendered frame,
	// before dispatch. Use this for per-frame GPU state such as sprite
	// animation clocks.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetResizeCallback registers a function called after the renderer and
	// camera have adapted to a new surface size. Use this to re-anchor UI
	// elements.
	//
	// Parameters:
	//   - callback: function receiving the new surface size in pixels
	SetResizeCallback(callback func(width, height int))

	// SetAssetCallback registers a function called with the assets that
	// finished loading since the previous frame.
	//
	// Parameters:
	//   - callback: function receiving the finished load results
	SetAssetCallback(callback func(results []loader.Result))

	// Run starts the frame loop. Blocks until the window closes.
	Run()

	// Quit closes the window and ends the frame loop. Safe to call multiple
	// times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options. The
// window, renderer and camera provider are required; the loader is optional.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler: profiler.NewProfiler(),
		tickRate: time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil || e.renderer == nil || e.provider == nil {
		panic("engine requires a window, a renderer and a camera provider")
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) CameraProvider() camera.Provider {
	return e.provider
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the fixed update rate in ticks per second.
func (e *engine) SetTickRate(tps float64) {
	if tps <= 0 {
		e.tickRate = 0
		return
	}
	e.tickRate = time.Duration(float64(time.Second) / tps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

func (e *engine) SetAssetCallback(callback func(results []loader.Result)) {
	e.assetCallback = callback
}

func (e *engine) Run() {
	e.window.SetResizeCallback(func(width, height int) {
		// Minimized windows report a zero-sized framebuffer; the surface
		// cannot be configured for that.
		if width == 0 || height == 0 {
			return
		}
		e.renderer.Resize(width, height)
		e.provider.Camera().Resize(width, height)
		if e.resizeCallback != nil {
			e.resizeCallback(width, height)
		}
	})

	e.lastFrame = time.Now()
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
}

// Quit closes the window and ends the frame loop.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if err := e.window.Close(); err != nil {
			log.Printf("failed to close window: %v", err)
		}
	})
}

// frame runs one full frame: asset delivery, fixed ticks, per-frame update,
// camera refresh and dispatch.
func (e *engine) frame() {
	now := time.Now()
	frameTime := now.Sub(e.lastFrame)
	e.lastFrame = now
	dt := float32(frameTime.Seconds())

	if e.loader != nil {
		results := e.loader.Drain()
		for _, res := range results {
			if res.Err != nil {
				log.Printf("asset %q failed to load: %v", res.Name, res.Err)
			}
		}
		if e.assetCallback != nil && len(results) > 0 {
			e.assetCallback(results)
		}
	}

	if e.tickCallback != nil {
		if e.tickRate > 0 {
			e.accumulator += frameTime
			if e.accumulator > maxTickDebt {
				e.accumulator = maxTickDebt
			}
			step := float32(e.tickRate.Seconds())
			for e.accumulator >= e.tickRate {
				e.tickCallback(step)
				e.accumulator -= e.tickRate
			}
		} else {
			e.tickCallback(dt)
		}
	}

	if e.frameCallback != nil {
		e.frameCallback(dt)
	}

	ctx := e.provider.BeginFrame(dt)
	if err := e.renderer.Dispatch(ctx); err != nil {
		log.Printf("frame %d dropped: %v", e.renderer.FrameIndex(), err)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(e.renderer.DrawCount())
	}
}
