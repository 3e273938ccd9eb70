package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend injects a pre-built backend instead of letting NewRenderer
// construct the WGPU one. Used by tests to substitute a fake GPU, and by
// callers that configure the backend themselves.
//
// Parameters:
//   - b: the backend to drive
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithInFlightFrames sets how many frames may be recorded ahead of GPU
// completion. Higher values smooth stalls at the cost of latency and
// longer-lived transient resources. The default is DefaultInFlightFrames.
//
// Parameters:
//   - n: the in-flight frame count, at least 1
//
// Returns:
//   - RendererBuilderOption: a function that applies the in-flight option to a renderer
func WithInFlightFrames(n uint64) RendererBuilderOption {
	return func(r *renderer) {
		if n < 1 {
			n = 1
		}
		r.pendingInFlight = &n
	}
}

// NewRenderer constructs the frame dispatcher. Without a WithBackend
// option the WGPU backend is created against the given surface descriptor;
// with one, the descriptor may be nil.
//
// Parameters:
//   - surfaceDescriptor: the surface to render to (ignored when a backend is injected)
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - opts: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured dispatcher
//   - error: an error if backend construction fails
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, opts ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:       &sync.Mutex{},
		inFlight: DefaultInFlightFrames,
		items:    make(map[DrawID]*item),
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.pendingInFlight != nil {
		r.inFlight = *r.pendingInFlight
	}

	if r.backend == nil {
		mode := PresentModeVSync
		if r.pendingPresentMode != nil {
			mode = *r.pendingPresentMode
		}
		backend, err := newWGPURendererBackend(surfaceDescriptor, width, height, mode)
		if err != nil {
			return nil, fmt.Errorf("renderer backend: %w", err)
		}
		r.backend = backend
	}

	r.pipelines = pipeline.NewCache(r.backend.CreatePipeline, r.backend.DestroyPipeline)
	r.samplers = sampler.NewCache(r.backend.CreateSampler, r.backend.DestroySampler)
	r.binder = binding.NewBinder(r.backend.CreateBindGroups, r.backend.DestroyBindGroups)

	return r, nil
}
