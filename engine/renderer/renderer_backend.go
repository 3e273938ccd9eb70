package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Geometry is a mesh reference handed out by the backend: GPU vertex and
// index buffers plus the index count used for draw calls.
type Geometry struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	IndexCount   uint32
}

// RendererBackend is the GPU abstraction the dispatcher drives. The
// dispatcher owns ordering, batching, cache bookkeeping and the frame
// lifecycle; the backend owns GPU objects and command encoding. A fake
// backend stands in for the GPU in tests.
type RendererBackend interface {
	// CreatePipeline constructs a GPU render pipeline for the config. Used
	// as the pipeline cache's construction function.
	//
	// Parameters:
	//   - config: the pipeline configuration
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the constructed pipeline
	//   - error: an error wrapping ErrResourceCreation on failure
	CreatePipeline(config pipeline.Config) (*wgpu.RenderPipeline, error)

	// DestroyPipeline releases a pipeline evicted from the cache.
	//
	// Parameters:
	//   - p: the pipeline to release
	DestroyPipeline(p *wgpu.RenderPipeline)

	// CreateSampler constructs a GPU sampler for the config. Used as the
	// sampler cache's construction function.
	//
	// Parameters:
	//   - config: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the constructed sampler
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateSampler(config sampler.Config) (*wgpu.Sampler, error)

	// DestroySampler releases a sampler evicted from the cache.
	//
	// Parameters:
	//   - s: the sampler to release
	DestroySampler(s *wgpu.Sampler)

	// CreateBindGroups constructs the per-slot bind groups for a pipeline's
	// declared slots against a resolved resource tuple. Used as the binder's
	// construction function.
	//
	// Parameters:
	//   - config: the pipeline configuration declaring the slots
	//   - res: the resource tuple to bind
	//
	// Returns:
	//   - [pipeline.SlotCount]*wgpu.BindGroup: the bind groups by slot
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateBindGroups(config pipeline.Config, res binding.Resources) ([pipeline.SlotCount]*wgpu.BindGroup, error)

	// DestroyBindGroups releases the bind groups of an evicted bound set.
	//
	// Parameters:
	//   - groups: the bind groups to release
	DestroyBindGroups(groups [pipeline.SlotCount]*wgpu.BindGroup)

	// CreateGeometry uploads vertex and index data into GPU buffers.
	//
	// Parameters:
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw 16-bit index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - Geometry: the mesh reference
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateGeometry(vertexData, indexData []byte, indexCount uint32) (Geometry, error)

	// DestroyGeometry releases a mesh's GPU buffers.
	//
	// Parameters:
	//   - g: the mesh to release
	DestroyGeometry(g Geometry)

	// CreateUniformBuffer creates a uniform buffer initialized with data.
	//
	// Parameters:
	//   - data: the initial contents; its length fixes the buffer size
	//
	// Returns:
	//   - *wgpu.Buffer: the uniform buffer
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateUniformBuffer(data []byte) (*wgpu.Buffer, error)

	// WriteUniform overwrites a uniform buffer's contents from offset zero.
	//
	// Parameters:
	//   - buf: the uniform buffer to write
	//   - data: the bytes to upload
	WriteUniform(buf *wgpu.Buffer, data []byte)

	// DestroyBuffer releases a GPU buffer.
	//
	// Parameters:
	//   - buf: the buffer to release
	DestroyBuffer(buf *wgpu.Buffer)

	// CreateTexture uploads staged pixel data into a GPU texture array and
	// returns its view.
	//
	// Parameters:
	//   - data: the pixel data, dimensions and layer count
	//
	// Returns:
	//   - *wgpu.TextureView: the texture array view
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateTexture(data common.TextureStagingData) (*wgpu.TextureView, error)

	// DestroyTexture releases a texture view and its backing texture.
	//
	// Parameters:
	//   - view: the view to release
	DestroyTexture(view *wgpu.TextureView)

	// BeginFrame acquires the surface texture and opens the frame's render
	// pass. Paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// BindPipeline makes the pipeline current for subsequent Draw calls.
	//
	// Parameters:
	//   - p: the GPU pipeline to bind
	BindPipeline(p *wgpu.RenderPipeline)

	// BindGroups makes the bound set current for subsequent Draw calls.
	// Entries for undeclared slots are nil and skipped.
	//
	// Parameters:
	//   - groups: the bind groups by slot index
	BindGroups(groups [pipeline.SlotCount]*wgpu.BindGroup)

	// Draw encodes one indexed draw with its inline payload. Returns
	// ErrOutOfFrameResources when the frame's payload arena is full; the
	// dispatcher flushes and retries.
	//
	// Parameters:
	//   - g: the mesh to draw
	//   - payload: the per-draw inline payload
	//
	// Returns:
	//   - error: ErrOutOfFrameResources when the payload arena is exhausted
	Draw(g Geometry, payload Payload) error

	// Flush submits the commands recorded so far without closing the frame,
	// then reopens the render pass with a fresh payload arena.
	//
	// Returns:
	//   - error: an error if resubmission fails
	Flush() error

	// EndFrame closes the render pass, submits the frame's commands and
	// presents the surface.
	//
	// Returns:
	//   - error: an error if submission fails
	EndFrame() error

	// Resize reconfigures the surface for a new size in pixels.
	//
	// Parameters:
	//   - width: the new surface width
	//   - height: the new surface height
	Resize(width, height int)

	// Destroy releases the backend's device resources.
	Destroy()
}
