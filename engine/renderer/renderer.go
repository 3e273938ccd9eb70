// Package renderer is the 2D frame dispatcher. It owns the content-addressed
// pipeline, sampler and bound-set caches, a registry of persistent draw
// items, and the per-frame submission loop. Drawables register once and
// update their inline payload; chunked sources such as tile maps contribute
// transient draws every frame through the BatchSource interface. Dispatch
// sorts everything by layer, batches by pipeline and bound set, and drives
// the backend.
package renderer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/shader"
)

// DefaultInFlightFrames is how many frames may be recorded before the
// oldest must have retired on the GPU. Cache eviction is gated on this so
// a frame still executing never loses its resources.
const DefaultInFlightFrames = 2

// DrawID identifies a registered draw item. Zero is never a valid ID.
type DrawID uint64

// Draw is one submission: a pipeline, a bound set, a mesh, an inline
// payload and a layer. Persistent registry items and per-frame batch
// sources both reduce to this.
type Draw struct {
	Pipeline pipeline.Pipeline
	Set      binding.BoundSet
	Geometry Geometry
	Payload  Payload
	Layer    int
}

// BatchSource contributes transient draws each frame. Sources hold their
// own pipeline and bound-set references (acquired at load time); the
// dispatcher only touches and orders what they emit.
type BatchSource interface {
	// AppendDraws appends this source's draws for the frame to dst and
	// returns the extended slice. Implementations cull against the frame's
	// visible rect.
	//
	// Parameters:
	//   - ctx: the frame context with view data and visible world rect
	//   - dst: the slice to append to
	//
	// Returns:
	//   - []Draw: dst extended with this source's draws
	AppendDraws(ctx common.FrameContext, dst []Draw) []Draw
}

// DrawConfig describes a persistent draw item at registration time.
type DrawConfig struct {
	// Shader names the built-in shader pair to render with.
	Shader string
	// Options adjust the pipeline's fixed-function state.
	Options []pipeline.Option
	// Resources is the resource tuple bound to the pipeline's slots.
	Resources binding.Resources
	// Geometry is the mesh to draw.
	Geometry Geometry
	// Layer orders the item against other draws; lower draws first.
	Layer int
	// Payload is the initial per-draw inline data.
	Payload Payload
}

// item is one registry entry.
type item struct {
	id      DrawID
	seq     uint64
	layer   int
	visible bool

	pipe    pipeline.Pipeline
	set     binding.BoundSet
	geo     Geometry
	payload Payload
}

// Renderer is the frame dispatcher and resource front door. All methods
// must be called from the dispatch goroutine; loader workers hand off
// decoded staging data instead of calling in directly.
type Renderer interface {
	// CreateGeometry uploads a mesh and returns its reference.
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

	// DestroyGeometry releases an uploaded mesh. The caller must ensure no
	// in-flight frame still references it.
	//
	// Parameters:
	//   - g: the mesh to release
	DestroyGeometry(g Geometry)

	// CreateUniformBuffer creates a uniform buffer initialized with data.
	//
	// Parameters:
	//   - data: the initial contents
	//
	// Returns:
	//   - *wgpu.Buffer: the uniform buffer
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateUniformBuffer(data []byte) (*wgpu.Buffer, error)

	// WriteUniform overwrites a uniform buffer from offset zero.
	//
	// Parameters:
	//   - buf: the buffer to write
	//   - data: the bytes to upload
	WriteUniform(buf *wgpu.Buffer, data []byte)

	// CreateTexture uploads staged pixels into a texture array.
	//
	// Parameters:
	//   - data: the staged pixel data
	//
	// Returns:
	//   - *wgpu.TextureView: the texture array view
	//   - error: an error wrapping ErrResourceCreation on failure
	CreateTexture(data common.TextureStagingData) (*wgpu.TextureView, error)

	// AcquireSampler returns the shared sampler for the config.
	//
	// Parameters:
	//   - config: the sampler configuration
	//
	// Returns:
	//   - sampler.Sampler: the shared sampler reference
	//   - error: an error wrapping ErrResourceCreation on failure
	AcquireSampler(config sampler.Config) (sampler.Sampler, error)

	// AcquirePipeline returns the shared pipeline for a built-in shader pair.
	// Batch sources use this to hold their own pipeline reference.
	//
	// Parameters:
	//   - shaderPair: the shader pair name
	//   - opts: pipeline options adjusting fixed-function state
	//
	// Returns:
	//   - pipeline.Pipeline: the shared pipeline reference
	//   - error: an error if the pair is unknown or construction fails
	AcquirePipeline(shaderPair string, opts ...pipeline.Option) (pipeline.Pipeline, error)

	// AcquireBoundSet returns the shared bound set for a pipeline and
	// resource tuple.
	//
	// Parameters:
	//   - p: the pipeline whose slots are bound
	//   - res: the resource tuple
	//
	// Returns:
	//   - binding.BoundSet: the shared bound set reference
	//   - error: an error if the tuple is invalid or construction fails
	AcquireBoundSet(p pipeline.Pipeline, res binding.Resources) (binding.BoundSet, error)

	// Register adds a persistent draw item and returns its ID. The item is
	// visible immediately and keeps references on its pipeline and bound
	// set until Unregister.
	//
	// Parameters:
	//   - config: the draw item description
	//
	// Returns:
	//   - DrawID: the item's identifier
	//   - error: an error if resource acquisition fails
	Register(config DrawConfig) (DrawID, error)

	// SetPayload replaces a registered item's inline payload. Unknown IDs
	// are ignored.
	//
	// Parameters:
	//   - id: the item to update
	//   - payload: the new payload
	SetPayload(id DrawID, payload Payload)

	// SetLayer changes a registered item's draw layer. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the item to update
	//   - layer: the new layer
	SetLayer(id DrawID, layer int)

	// SetVisible toggles a registered item without releasing its resources.
	// Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the item to update
	//   - visible: whether the item is drawn
	SetVisible(id DrawID, visible bool)

	// Unregister removes a draw item and releases its pipeline and bound
	// set references. Unregistering an unknown ID is a no-op.
	//
	// Parameters:
	//   - id: the item to remove
	Unregister(id DrawID)

	// AddBatchSource registers a per-frame draw contributor. Adding the
	// same source twice is a no-op.
	//
	// Parameters:
	//   - s: the source to add
	AddBatchSource(s BatchSource)

	// RemoveBatchSource detaches a per-frame draw contributor.
	//
	// Parameters:
	//   - s: the source to remove
	RemoveBatchSource(s BatchSource)

	// Dispatch renders one frame: collects draws, orders them by layer and
	// registration sequence, batches by pipeline then bound set, submits,
	// advances the frame index and collects retired cache entries.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: an error if the frame could not be submitted
	Dispatch(ctx common.FrameContext) error

	// FrameIndex returns the index of the next frame Dispatch will record.
	//
	// Returns:
	//   - uint64: the frame index
	FrameIndex() uint64

	// DrawCount returns the number of draws the last Dispatch submitted.
	//
	// Returns:
	//   - int: the draw count of the most recent frame
	DrawCount() int

	// Resize reconfigures the surface for a new size in pixels.
	//
	// Parameters:
	//   - width: the new surface width
	//   - height: the new surface height
	Resize(width, height int)

	// Destroy releases every remaining GPU resource and the backend.
	Destroy()
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend  RendererBackend
	inFlight uint64

	pipelines pipeline.Cache
	samplers  sampler.Cache
	binder    binding.Binder

	items   map[DrawID]*item
	nextID  DrawID
	nextSeq uint64
	sources []BatchSource

	frameIndex uint64
	scratch    []Draw

	// Pre-creation config collected from builder options
	pendingPresentMode *PresentMode
	pendingInFlight    *uint64
}

var _ Renderer = &renderer{}

func (r *renderer) CreateGeometry(vertexData, indexData []byte, indexCount uint32) (Geometry, error) {
	return r.backend.CreateGeometry(vertexData, indexData, indexCount)
}

func (r *renderer) DestroyGeometry(g Geometry) {
	r.backend.DestroyGeometry(g)
}

func (r *renderer) CreateUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	return r.backend.CreateUniformBuffer(data)
}

func (r *renderer) WriteUniform(buf *wgpu.Buffer, data []byte) {
	r.backend.WriteUniform(buf, data)
}

func (r *renderer) CreateTexture(data common.TextureStagingData) (*wgpu.TextureView, error) {
	return r.backend.CreateTexture(data)
}

func (r *renderer) AcquireSampler(config sampler.Config) (sampler.Sampler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samplers.Acquire(config)
}

func (r *renderer) AcquirePipeline(shaderPair string, opts ...pipeline.Option) (pipeline.Pipeline, error) {
	config, err := shader.Config(shaderPair, opts...)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines.Acquire(config)
}

func (r *renderer) AcquireBoundSet(p pipeline.Pipeline, res binding.Resources) (binding.BoundSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.binder.Acquire(p, res)
}

func (r *renderer) Register(config DrawConfig) (DrawID, error) {
	pipe, err := r.AcquirePipeline(config.Shader, config.Options...)
	if err != nil {
		return 0, fmt.Errorf("register draw: %w", err)
	}

	set, err := r.AcquireBoundSet(pipe, config.Resources)
	if err != nil {
		r.mu.Lock()
		r.pipelines.Release(pipe)
		r.mu.Unlock()
		return 0, fmt.Errorf("register draw: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.nextSeq++
	it := &item{
		id:      r.nextID,
		seq:     r.nextSeq,
		layer:   config.Layer,
		visible: true,
		pipe:    pipe,
		set:     set,
		geo:     config.Geometry,
		payload: config.Payload,
	}
	r.items[it.id] = it
	return it.id, nil
}

func (r *renderer) SetPayload(id DrawID, payload Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[id]; ok {
		it.payload = payload
	}
}

func (r *renderer) SetLayer(id DrawID, layer int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[id]; ok {
		it.layer = layer
	}
}

func (r *renderer) SetVisible(id DrawID, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[id]; ok {
		it.visible = visible
	}
}

func (r *renderer) Unregister(id DrawID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return
	}
	delete(r.items, id)
	r.binder.Release(it.set)
	r.pipelines.Release(it.pipe)
}

func (r *renderer) AddBatchSource(s BatchSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sources {
		if existing == s {
			return
		}
	}
	r.sources = append(r.sources, s)
}

func (r *renderer) RemoveBatchSource(s BatchSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.sources {
		if existing == s {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return
		}
	}
}

func (r *renderer) Dispatch(ctx common.FrameContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	draws := r.collectLocked(ctx)
	sortDraws(draws)

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("frame %d: %w", r.frameIndex, err)
	}

	if err := r.submitLocked(draws); err != nil {
		// The frame must still be closed: an open pass and an unpresented
		// surface would reject every later BeginFrame.
		if endErr := r.backend.EndFrame(); endErr != nil {
			return fmt.Errorf("frame %d: %w (end frame: %v)", r.frameIndex, err, endErr)
		}
		return fmt.Errorf("frame %d: %w", r.frameIndex, err)
	}

	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("frame %d: %w", r.frameIndex, err)
	}

	r.frameIndex++
	r.collectCachesLocked()
	return nil
}

// collectLocked gathers the frame's draws from the registry and the batch
// sources into the reused scratch slice.
func (r *renderer) collectLocked(ctx common.FrameContext) []Draw {
	draws := r.scratch[:0]

	ids := make([]DrawID, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.items[ids[i]].seq < r.items[ids[j]].seq })

	for _, id := range ids {
		it := r.items[id]
		if !it.visible {
			continue
		}
		draws = append(draws, Draw{
			Pipeline: it.pipe,
			Set:      it.set,
			Geometry: it.geo,
			Payload:  it.payload,
			Layer:    it.layer,
		})
	}

	for _, s := range r.sources {
		draws = s.AppendDraws(ctx, draws)
	}

	r.scratch = draws
	return draws
}

// sortDraws orders draws by layer, then pipeline, then bound set. The sort
// is stable so items on one layer keep their registration order and batch
// runs stay deterministic.
func sortDraws(draws []Draw) {
	sort.SliceStable(draws, func(i, j int) bool {
		a, b := draws[i], draws[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Pipeline.Key() != b.Pipeline.Key() {
			return a.Pipeline.Key() < b.Pipeline.Key()
		}
		return false
	})
}

// submitLocked walks the ordered draws, re-binding only when the pipeline
// or bound set actually changes, and stamps every touched cache entry with
// the current frame.
func (r *renderer) submitLocked(draws []Draw) error {
	var currentPipe pipeline.Pipeline
	var currentSet binding.BoundSet

	for i := range draws {
		d := &draws[i]

		if currentPipe == nil || currentPipe.Key() != d.Pipeline.Key() {
			r.backend.BindPipeline(d.Pipeline.Handle())
			currentPipe = d.Pipeline
			currentSet = nil
		}
		r.pipelines.Touch(d.Pipeline, r.frameIndex)

		if currentSet == nil || currentSet.Key() != d.Set.Key() {
			r.backend.BindGroups(d.Set.Groups())
			currentSet = d.Set
		}
		r.binder.Touch(d.Set, r.frameIndex)

		err := r.backend.Draw(d.Geometry, d.Payload)
		if errors.Is(err, ErrOutOfFrameResources) {
			// Arena exhausted mid-frame: push what we have to the GPU and
			// record the rest against a fresh arena.
			if err = r.backend.Flush(); err != nil {
				return err
			}
			r.backend.BindPipeline(currentPipe.Handle())
			r.backend.BindGroups(currentSet.Groups())
			err = r.backend.Draw(d.Geometry, d.Payload)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// collectCachesLocked evicts cache entries no in-flight frame can still
// reference. With N frames in flight, a frame is known retired once N
// newer frames have been recorded.
func (r *renderer) collectCachesLocked() {
	if r.frameIndex < r.inFlight {
		return
	}
	oldestLive := r.frameIndex - r.inFlight
	r.pipelines.Collect(oldestLive)
	r.binder.Collect(oldestLive)
	r.samplers.Collect(oldestLive)
}

func (r *renderer) FrameIndex() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameIndex
}

func (r *renderer) DrawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scratch)
}

func (r *renderer) Resize(width, height int) {
	r.backend.Resize(width, height)
}

func (r *renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.items {
		r.binder.Release(it.set)
		r.pipelines.Release(it.pipe)
		delete(r.items, id)
	}
	r.binder.Collect(^uint64(0))
	r.pipelines.Collect(^uint64(0))
	r.samplers.Collect(^uint64(0))
	r.backend.Destroy()
}
