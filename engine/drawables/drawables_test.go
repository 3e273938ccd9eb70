package drawables

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
	"github.com/rxght/LuveHulgerUlle/engine/tilemap/tileset"
)

// recordingBackend implements the renderer backend against memory, keeping
// the draw payload stream and per-buffer uniform writes.
type recordingBackend struct {
	draws               []renderer.Payload
	uniformWrites       map[*wgpu.Buffer][][]byte
	geometriesDestroyed int
}

var _ renderer.RendererBackend = &recordingBackend{}

func (b *recordingBackend) CreatePipeline(pipeline.Config) (*wgpu.RenderPipeline, error) {
	return &wgpu.RenderPipeline{}, nil
}

func (b *recordingBackend) DestroyPipeline(*wgpu.RenderPipeline) {}

func (b *recordingBackend) CreateSampler(sampler.Config) (*wgpu.Sampler, error) {
	return &wgpu.Sampler{}, nil
}

func (b *recordingBackend) DestroySampler(*wgpu.Sampler) {}

func (b *recordingBackend) CreateBindGroups(pipeline.Config, binding.Resources) ([pipeline.SlotCount]*wgpu.BindGroup, error) {
	return [pipeline.SlotCount]*wgpu.BindGroup{}, nil
}

func (b *recordingBackend) DestroyBindGroups([pipeline.SlotCount]*wgpu.BindGroup) {}

func (b *recordingBackend) CreateGeometry(vertexData, indexData []byte, indexCount uint32) (renderer.Geometry, error) {
	return renderer.Geometry{
		VertexBuffer: &wgpu.Buffer{},
		IndexBuffer:  &wgpu.Buffer{},
		IndexCount:   indexCount,
	}, nil
}

func (b *recordingBackend) DestroyGeometry(renderer.Geometry) { b.geometriesDestroyed++ }

func (b *recordingBackend) CreateUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	buf := &wgpu.Buffer{}
	b.WriteUniform(buf, data)
	return buf, nil
}

func (b *recordingBackend) WriteUniform(buf *wgpu.Buffer, data []byte) {
	if b.uniformWrites == nil {
		b.uniformWrites = make(map[*wgpu.Buffer][][]byte)
	}
	b.uniformWrites[buf] = append(b.uniformWrites[buf], append([]byte(nil), data...))
}

func (b *recordingBackend) DestroyBuffer(*wgpu.Buffer) {}

func (b *recordingBackend) CreateTexture(common.TextureStagingData) (*wgpu.TextureView, error) {
	return &wgpu.TextureView{}, nil
}

func (b *recordingBackend) DestroyTexture(*wgpu.TextureView) {}

func (b *recordingBackend) BeginFrame() error { return nil }

func (b *recordingBackend) BindPipeline(*wgpu.RenderPipeline) {}

func (b *recordingBackend) BindGroups([pipeline.SlotCount]*wgpu.BindGroup) {}

func (b *recordingBackend) Draw(g renderer.Geometry, payload renderer.Payload) error {
	b.draws = append(b.draws, payload)
	return nil
}

func (b *recordingBackend) Flush() error { return nil }

func (b *recordingBackend) EndFrame() error { return nil }

func (b *recordingBackend) Resize(width, height int) {}

func (b *recordingBackend) Destroy() {}

func newTestRenderer(t *testing.T, rb *recordingBackend) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(nil, 0, 0, renderer.WithBackend(rb))
	require.NoError(t, err)
	return r
}

func dispatch(t *testing.T, r renderer.Renderer) {
	t.Helper()
	var ctx common.FrameContext
	common.Identity(ctx.View[:])
	common.Identity(ctx.CartesianToDevice[:])
	require.NoError(t, r.Dispatch(ctx))
}

func TestSquareDrawsWithItsPlacement(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	s, err := NewSquare(r, &wgpu.Buffer{}, &wgpu.Buffer{}, [4]float32{1, 0, 0, 1},
		WithPosition(10, 20), WithSize(3, 4), WithLayer(2))
	require.NoError(t, err)

	dispatch(t, r)
	require.Len(t, rb.draws, 1)
	assert.Equal(t, renderer.QuadPayload(10, 20, 0, 3, 4), rb.draws[0])

	s.SetPosition(-5, 7)
	dispatch(t, r)
	assert.Equal(t, renderer.QuadPayload(-5, 7, 0, 3, 4), rb.draws[1])
}

func TestSquareSetColorWritesUniform(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	s, err := NewSquare(r, &wgpu.Buffer{}, &wgpu.Buffer{}, [4]float32{1, 1, 1, 1})
	require.NoError(t, err)

	s.SetColor([4]float32{0, 0, 1, 1})
	writes := rb.uniformWrites[s.color]
	require.Len(t, writes, 2, "initial contents plus one update")
	assert.Equal(t, common.SliceToBytes([]float32{0, 0, 1, 1}), writes[1])
}

func TestAnimatedSpriteWritesOffsetOnlyOnFrameChange(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	s, err := NewAnimatedSprite(r, &wgpu.Buffer{}, &wgpu.Buffer{}, &wgpu.TextureView{},
		[]Frame{{Layer: 4, DurationMs: 100}, {Layer: 9, DurationMs: 100}})
	require.NoError(t, err)

	writes := func() int { return len(rb.uniformWrites[s.offset]) }
	require.Equal(t, 1, writes(), "initial offset uploaded at creation")

	s.Advance(0.05)
	assert.Equal(t, 0, s.CurrentFrame())
	assert.Equal(t, 1, writes(), "no upload while the frame holds")

	s.Advance(0.06)
	assert.Equal(t, 1, s.CurrentFrame())
	require.Equal(t, 2, writes())
	assert.Equal(t, frameOffsetData(9), rb.uniformWrites[s.offset][1])

	s.Advance(0.1)
	assert.Equal(t, 0, s.CurrentFrame(), "timeline wraps")
	assert.Equal(t, 3, writes())
}

func TestAnimatedSpriteRejectsBadTimelines(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	_, err := NewAnimatedSprite(r, &wgpu.Buffer{}, &wgpu.Buffer{}, &wgpu.TextureView{}, nil)
	assert.Error(t, err)

	_, err = NewAnimatedSprite(r, &wgpu.Buffer{}, &wgpu.Buffer{}, &wgpu.TextureView{},
		[]Frame{{Layer: 0, DurationMs: 0}})
	assert.Error(t, err)
}

func testDescriptor(t *testing.T) *tileset.Descriptor {
	t.Helper()
	d, err := tileset.Parse("test.json", []byte(`{
		"tileWidth": 16, "tileHeight": 16, "tileCount": 4, "columns": 2
	}`))
	require.NoError(t, err)
	return d
}

func TestDynamicTileShowsAndSwitchesTiles(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)
	desc := testDescriptor(t)

	d, err := NewDynamicTile(r, &wgpu.Buffer{}, &wgpu.Buffer{}, &wgpu.TextureView{}, desc, 2,
		WithPosition(100, 50))
	require.NoError(t, err)

	w, h := d.Size()
	assert.Equal(t, float32(16), w, "defaults to the tileset's tile size")
	assert.Equal(t, float32(16), h)
	assert.Equal(t, frameOffsetData(2), rb.uniformWrites[d.offset][0])

	require.NoError(t, d.SetTile(3))
	assert.Equal(t, frameOffsetData(3), rb.uniformWrites[d.offset][1])
	assert.Equal(t, uint32(3), d.Tile())

	require.NoError(t, d.SetTile(3))
	assert.Len(t, rb.uniformWrites[d.offset], 2, "same tile writes nothing")

	assert.Error(t, d.SetTile(4), "beyond the 4-tile set")
}

func TestDynamicTileRejectsOutOfRangeTile(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	_, err := NewDynamicTile(r, &wgpu.Buffer{}, &wgpu.Buffer{}, &wgpu.TextureView{}, testDescriptor(t), 9)
	assert.Error(t, err)
}

func TestUIImageKeepsAnchorAcrossResize(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	// Anchored to the top-right corner, inset by 10px, 64x64.
	u, err := NewUIImage(r, &wgpu.Buffer{}, &wgpu.TextureView{}, 800, 600,
		WithAnchor(1, 1), WithOffset(-74, -74), WithPixelSize(64, 64))
	require.NoError(t, err)

	dispatch(t, r)
	require.Len(t, rb.draws, 1)
	assert.Equal(t, renderer.QuadPayload(400-74, 300-74, 0, 64, 64), rb.draws[0])

	u.Resize(400, 300)
	dispatch(t, r)
	assert.Equal(t, renderer.QuadPayload(200-74, 150-74, 0, 64, 64), rb.draws[1])
}

func TestDestroyRemovesDrawable(t *testing.T) {
	rb := &recordingBackend{}
	r := newTestRenderer(t, rb)

	s, err := NewSquare(r, &wgpu.Buffer{}, &wgpu.Buffer{}, [4]float32{1, 1, 1, 1})
	require.NoError(t, err)

	dispatch(t, r)
	require.Len(t, rb.draws, 1)

	s.Destroy()
	dispatch(t, r)
	assert.Len(t, rb.draws, 1, "no draw after destroy")
	assert.Equal(t, 1, rb.geometriesDestroyed)
}
