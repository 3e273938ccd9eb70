package tilemap

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
)

// RendererAPI is the slice of the renderer a tilemap drawable needs: resource
// creation plus shared pipeline and bound-set acquisition. The full renderer
// satisfies it.
type RendererAPI interface {
	CreateGeometry(vertexData, indexData []byte, indexCount uint32) (renderer.Geometry, error)
	DestroyGeometry(g renderer.Geometry)
	CreateUniformBuffer(data []byte) (*wgpu.Buffer, error)
	AcquireSampler(config sampler.Config) (sampler.Sampler, error)
	AcquirePipeline(shaderPair string, opts ...pipeline.Option) (pipeline.Pipeline, error)
	AcquireBoundSet(p pipeline.Pipeline, res binding.Resources) (binding.BoundSet, error)
}

var _ RendererAPI = (renderer.Renderer)(nil)

// animGeometry pairs one animated tile type with its per-chunk mesh.
type animGeometry struct {
	typeID uint32
	geo    renderer.Geometry
}

// chunkGeometry is one chunk's uploaded meshes.
type chunkGeometry struct {
	static    renderer.Geometry
	hasStatic bool
	animated  []animGeometry
}

// Drawable renders a map as a renderer batch source. Each frame it advances
// the map's animation arena, culls chunks against the visible rect and emits
// one draw per (chunk, static) plus one per (chunk, animated type); per-frame
// cost is proportional to visible chunks, never to map size.
type Drawable struct {
	r RendererAPI
	m *Map

	layer int

	staticPipe pipeline.Pipeline
	animPipe   pipeline.Pipeline
	staticSet  binding.BoundSet
	animSet    binding.BoundSet

	chunks  []chunkGeometry
	visible []int
}

var _ renderer.BatchSource = &Drawable{}

// DrawableOption is a functional option applied during NewDrawable.
type DrawableOption func(*Drawable)

// WithLayer sets the draw layer the map renders on.
//
// Parameters:
//   - layer: the draw layer; lower draws first
//
// Returns:
//   - DrawableOption: a function that applies the layer option
func WithLayer(layer int) DrawableOption {
	return func(d *Drawable) {
		d.layer = layer
	}
}

// NewDrawable uploads a map's chunk meshes and resolves its draw state: the
// tile-chunk and tile-animation pipelines, the atlas binding with a
// pixel-art sampler and an edge-margin uniform insetting samples by half a
// texel.
//
// Parameters:
//   - r: the renderer slice used for resource creation
//   - m: the map to render
//   - atlas: the tileset atlas as a texture array, one layer per tile
//   - global: the cartesian-to-device matrix buffer
//   - camera: the camera matrix buffer
//   - opts: a variadic list of DrawableOption functions
//
// Returns:
//   - *Drawable: the batch source, ready to add to the renderer
//   - error: an error if resource creation fails
func NewDrawable(r RendererAPI, m *Map, atlas *wgpu.TextureView, global, camera *wgpu.Buffer, opts ...DrawableOption) (*Drawable, error) {
	d := &Drawable{r: r, m: m}
	for _, opt := range opts {
		opt(d)
	}

	smp, err := r.AcquireSampler(sampler.PixelArt())
	if err != nil {
		return nil, fmt.Errorf("tilemap sampler: %w", err)
	}

	margin, err := r.CreateUniformBuffer(edgeMargin(m.desc.TileWidth(), m.desc.TileHeight()))
	if err != nil {
		return nil, fmt.Errorf("tilemap edge margin: %w", err)
	}

	res := binding.Resources{
		Global:          global,
		MaterialTexture: atlas,
		MaterialSampler: smp.Handle(),
		Camera:          camera,
		EdgeMargin:      margin,
	}

	if d.staticPipe, err = r.AcquirePipeline("tile_chunk"); err != nil {
		return nil, err
	}
	if d.staticSet, err = r.AcquireBoundSet(d.staticPipe, res); err != nil {
		return nil, err
	}
	if d.animPipe, err = r.AcquirePipeline("tile_anim"); err != nil {
		return nil, err
	}
	if d.animSet, err = r.AcquireBoundSet(d.animPipe, res); err != nil {
		return nil, err
	}

	d.chunks = make([]chunkGeometry, len(m.chunks))
	for i := range m.chunks {
		if err := d.uploadChunk(i); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// edgeMargin packs the uv_scale/uv_offset pair shrinking samples half a
// texel inward, so linear interpolation at tile borders never reads the
// neighboring atlas layer.
func edgeMargin(tileW, tileH uint32) []byte {
	data := []float32{
		(float32(tileW) - 1) / float32(tileW),
		(float32(tileH) - 1) / float32(tileH),
		0.5 / float32(tileW),
		0.5 / float32(tileH),
	}
	return common.SliceToBytes(data)
}

// uploadChunk builds and uploads one chunk's meshes, replacing whatever the
// slot held.
func (d *Drawable) uploadChunk(i int) error {
	meshes := BuildChunkMeshes(d.m, i)
	cg := chunkGeometry{}

	if !meshes.Static.Empty() {
		geo, err := d.r.CreateGeometry(meshes.Static.VertexBytes(), meshes.Static.IndexBytes(), meshes.Static.IndexCount())
		if err != nil {
			return fmt.Errorf("chunk %d static mesh: %w", i, err)
		}
		cg.static, cg.hasStatic = geo, true
	}

	// Deterministic draw order per chunk.
	types := make([]uint32, 0, len(meshes.Animated))
	for id := range meshes.Animated {
		types = append(types, id)
	}
	sort.Slice(types, func(a, b int) bool { return types[a] < types[b] })

	for _, id := range types {
		mesh := meshes.Animated[id]
		geo, err := d.r.CreateGeometry(mesh.VertexBytes(), mesh.IndexBytes(), mesh.IndexCount())
		if err != nil {
			return fmt.Errorf("chunk %d type %d mesh: %w", i, id, err)
		}
		cg.animated = append(cg.animated, animGeometry{typeID: id, geo: geo})
	}

	d.chunks[i] = cg
	return nil
}

// RebuildChunk re-uploads one chunk after its cells changed through SetTile.
// The previous meshes are destroyed; callers must not rebuild a chunk whose
// draws are still in flight.
//
// Parameters:
//   - chunkIndex: the index into the map's chunk partition
//
// Returns:
//   - error: an error if mesh upload fails
func (d *Drawable) RebuildChunk(chunkIndex int) error {
	if chunkIndex < 0 || chunkIndex >= len(d.chunks) {
		return fmt.Errorf("chunk index %d out of range", chunkIndex)
	}

	old := d.chunks[chunkIndex]
	if err := d.uploadChunk(chunkIndex); err != nil {
		return err
	}

	if old.hasStatic {
		d.r.DestroyGeometry(old.static)
	}
	for _, ag := range old.animated {
		d.r.DestroyGeometry(ag.geo)
	}
	return nil
}

// Map returns the map this drawable renders.
func (d *Drawable) Map() *Map { return d.m }

// AppendDraws advances the shared animation clock and emits draws for every
// chunk intersecting the frame's visible rect.
//
// Parameters:
//   - ctx: the frame context
//   - dst: the slice to append to
//
// Returns:
//   - []renderer.Draw: dst extended with the map's visible draws
func (d *Drawable) AppendDraws(ctx common.FrameContext, dst []renderer.Draw) []renderer.Draw {
	d.m.arena.Advance(ctx.DeltaTime)

	d.visible = d.m.VisibleChunks(ctx.VisibleRect, d.visible[:0])
	for _, i := range d.visible {
		bounds := d.m.chunks[i].Bounds
		cg := &d.chunks[i]

		if cg.hasStatic {
			dst = append(dst, renderer.Draw{
				Pipeline: d.staticPipe,
				Set:      d.staticSet,
				Geometry: cg.static,
				Payload:  renderer.ChunkPayload(bounds.X, bounds.Y, 0),
				Layer:    d.layer,
			})
		}
		for _, ag := range cg.animated {
			dst = append(dst, renderer.Draw{
				Pipeline: d.animPipe,
				Set:      d.animSet,
				Geometry: ag.geo,
				Payload:  renderer.TileAnimPayload(bounds.X, bounds.Y, 0, d.m.arena.CurrentFrame(ag.typeID)),
				Layer:    d.layer,
			})
		}
	}
	return dst
}
