package tilemap

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/shader"
)

// stubRenderer satisfies RendererAPI without a GPU: real pipeline and
// binding caches over fake construction functions, counters for geometry
// churn.
type stubRenderer struct {
	pipelines pipeline.Cache
	samplers  sampler.Cache
	binder    binding.Binder

	geometriesCreated   int
	geometriesDestroyed int
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{
		pipelines: pipeline.NewCache(func(pipeline.Config) (*wgpu.RenderPipeline, error) {
			return &wgpu.RenderPipeline{}, nil
		}, nil),
		samplers: sampler.NewCache(func(sampler.Config) (*wgpu.Sampler, error) {
			return &wgpu.Sampler{}, nil
		}, nil),
		binder: binding.NewBinder(func(pipeline.Config, binding.Resources) ([pipeline.SlotCount]*wgpu.BindGroup, error) {
			return [pipeline.SlotCount]*wgpu.BindGroup{}, nil
		}, nil),
	}
}

func (s *stubRenderer) CreateGeometry(vertexData, indexData []byte, indexCount uint32) (renderer.Geometry, error) {
	s.geometriesCreated++
	return renderer.Geometry{IndexCount: indexCount}, nil
}

func (s *stubRenderer) DestroyGeometry(renderer.Geometry) {
	s.geometriesDestroyed++
}

func (s *stubRenderer) CreateUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	return &wgpu.Buffer{}, nil
}

func (s *stubRenderer) AcquireSampler(config sampler.Config) (sampler.Sampler, error) {
	return s.samplers.Acquire(config)
}

func (s *stubRenderer) AcquirePipeline(shaderPair string, opts ...pipeline.Option) (pipeline.Pipeline, error) {
	config, err := shader.Config(shaderPair, opts...)
	if err != nil {
		return nil, err
	}
	return s.pipelines.Acquire(config)
}

func (s *stubRenderer) AcquireBoundSet(p pipeline.Pipeline, res binding.Resources) (binding.BoundSet, error) {
	return s.binder.Acquire(p, res)
}

// mixedMap builds a 2x2 map with one animated water tile, two static tiles
// and one empty cell, all in a single chunk.
func mixedMap(t *testing.T) *Map {
	t.Helper()
	m, err := NewMap(terrain(t), 2, 2, []int32{12, 0, EmptyTile, 7})
	require.NoError(t, err)
	require.Len(t, m.Chunks(), 1)
	return m
}

func newTestDrawable(t *testing.T, s *stubRenderer, m *Map, opts ...DrawableOption) *Drawable {
	t.Helper()
	d, err := NewDrawable(s, m, &wgpu.TextureView{}, &wgpu.Buffer{}, &wgpu.Buffer{}, opts...)
	require.NoError(t, err)
	return d
}

func visibleCtx(m *Map, deltaTime float32) common.FrameContext {
	return common.FrameContext{DeltaTime: deltaTime, VisibleRect: m.Bounds()}
}

func TestDrawableEmitsStaticAndAnimatedDraws(t *testing.T) {
	s := newStubRenderer()
	m := mixedMap(t)
	d := newTestDrawable(t, s, m, WithLayer(3))

	assert.Equal(t, 2, s.geometriesCreated, "one static mesh plus one water mesh")

	draws := d.AppendDraws(visibleCtx(m, 0), nil)
	require.Len(t, draws, 2)

	static, anim := draws[0], draws[1]
	assert.Equal(t, 3, static.Layer)
	assert.Equal(t, renderer.ChunkPayload(0, 0, 0), static.Payload)
	assert.NotEqual(t, static.Pipeline.Key(), anim.Pipeline.Key(), "chunk and animation variants are distinct pipelines")
	assert.Equal(t, float32(12), anim.Payload[4], "water shows its base frame at t=0")
}

func TestDrawableAdvancesSharedAnimationClock(t *testing.T) {
	s := newStubRenderer()
	m := mixedMap(t)
	d := newTestDrawable(t, s, m)

	draws := d.AppendDraws(visibleCtx(m, 1.05), nil)
	require.Len(t, draws, 2)
	assert.Equal(t, float32(13), draws[1].Payload[4], "1050ms into the water timeline")

	draws = d.AppendDraws(visibleCtx(m, 1.0), draws[:0])
	assert.Equal(t, float32(12), draws[1].Payload[4], "2050ms wraps the 2000ms timeline")
}

func TestDrawableCullsChunksOutsideVisibleRect(t *testing.T) {
	s := newStubRenderer()
	m, err := NewMap(terrain(t), 32, 32, uniformGrid(32, 32, 0), WithChunkSize(16))
	require.NoError(t, err)
	d := newTestDrawable(t, s, m)

	ctx := common.FrameContext{VisibleRect: common.NewRect(10, 10, 50, 50)}
	draws := d.AppendDraws(ctx, nil)
	assert.Len(t, draws, 1, "only the bottom-left chunk intersects")

	ctx.VisibleRect = common.NewRect(-900, -900, 10, 10)
	assert.Empty(t, d.AppendDraws(ctx, nil))
}

func TestDrawableSharesBindingsAcrossChunks(t *testing.T) {
	s := newStubRenderer()
	m, err := NewMap(terrain(t), 32, 32, uniformGrid(32, 32, 0), WithChunkSize(16))
	require.NoError(t, err)
	newTestDrawable(t, s, m)

	assert.Equal(t, 2, s.pipelines.Len(), "both variants resolve up front, once each")
	assert.Equal(t, 2, s.binder.Len(), "one bound set per pipeline variant, shared by every chunk")
	assert.Equal(t, 4, s.geometriesCreated)
}

func TestRebuildChunkReplacesGeometry(t *testing.T) {
	s := newStubRenderer()
	m := mixedMap(t)
	d := newTestDrawable(t, s, m)

	created := s.geometriesCreated

	// Turn the water tile into ground: the rebuilt chunk is all-static.
	m.SetTile(0, 0, 0)
	require.NoError(t, d.RebuildChunk(0))

	assert.Equal(t, created+1, s.geometriesCreated)
	assert.Equal(t, 2, s.geometriesDestroyed, "both previous meshes released")

	draws := d.AppendDraws(visibleCtx(m, 0), nil)
	assert.Len(t, draws, 1)

	assert.Error(t, d.RebuildChunk(7), "out-of-range chunk index")
}
