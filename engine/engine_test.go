package engine

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/camera"
	"github.com/rxght/LuveHulgerUlle/engine/loader"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/pipeline"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
	"github.com/rxght/LuveHulgerUlle/engine/window"
)

// fakeWindow drives the frame loop a fixed number of iterations instead of
// pumping a real message queue.
type fakeWindow struct {
	frames int

	width, height int
	onUpdate      func()
	onResize      func(width, height int)

	closed int
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }

func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }

func (w *fakeWindow) SetScrollCallback(func(delta float32))      {}
func (w *fakeWindow) SetKeyDownCallback(func(keyCode uint32))    {}
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))      {}
func (w *fakeWindow) SetMouseDownCallback(func(x, y int32))      {}
func (w *fakeWindow) SetMouseUpCallback(func(x, y int32))        {}
func (w *fakeWindow) SetMouseMoveCallback(func(x, y int32))      {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

func (w *fakeWindow) IsRunning() bool { return w.frames > 0 }

func (w *fakeWindow) Close() error { w.closed++; return nil }

func (w *fakeWindow) ProcessMessages() {
	for w.frames > 0 {
		w.frames--
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *fakeWindow) Width() int  { return w.width }
func (w *fakeWindow) Height() int { return w.height }

// fakeLoader hands out one batch of results on the first drain.
type fakeLoader struct {
	results []loader.Result
	drains  int
}

var _ loader.Loader = &fakeLoader{}

func (l *fakeLoader) QueueTileset(name string, descriptor, image loader.Source) {}
func (l *fakeLoader) QueueTexture(name string, image loader.Source)             {}

func (l *fakeLoader) Drain() []loader.Result {
	l.drains++
	out := l.results
	l.results = nil
	return out
}

func (l *fakeLoader) Pending() int { return len(l.results) }

func (l *fakeLoader) Tileset(name string) (*loader.TilesetAsset, bool) { return nil, false }

func (l *fakeLoader) Texture(name string) (*loader.TextureAsset, bool) { return nil, false }

// countingBackend is the minimal backend the frame loop needs: it counts
// frames and resizes and accepts every resource request.
type countingBackend struct {
	framesBegun   int
	resizedWidth  int
	resizedHeight int
}

var _ renderer.RendererBackend = &countingBackend{}

func (b *countingBackend) CreatePipeline(pipeline.Config) (*wgpu.RenderPipeline, error) {
	return &wgpu.RenderPipeline{}, nil
}
func (b *countingBackend) DestroyPipeline(*wgpu.RenderPipeline) {}
func (b *countingBackend) CreateSampler(sampler.Config) (*wgpu.Sampler, error) {
	return &wgpu.Sampler{}, nil
}
func (b *countingBackend) DestroySampler(*wgpu.Sampler) {}
func (b *countingBackend) CreateBindGroups(pipeline.Config, binding.Resources) ([pipeline.SlotCount]*wgpu.BindGroup, error) {
	return [pipeline.SlotCount]*wgpu.BindGroup{}, nil
}
func (b *countingBackend) DestroyBindGroups([pipeline.SlotCount]*wgpu.BindGroup) {}
func (b *countingBackend) CreateGeometry(vertexData, indexData []byte, indexCount uint32) (renderer.Geometry, error) {
	return renderer.Geometry{VertexBuffer: &wgpu.Buffer{}, IndexBuffer: &wgpu.Buffer{}, IndexCount: indexCount}, nil
}
func (b *countingBackend) DestroyGeometry(renderer.Geometry) {}
func (b *countingBackend) CreateUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	return &wgpu.Buffer{}, nil
}
func (b *countingBackend) WriteUniform(*wgpu.Buffer, []byte) {}
func (b *countingBackend) DestroyBuffer(*wgpu.Buffer)        {}
func (b *countingBackend) CreateTexture(common.TextureStagingData) (*wgpu.TextureView, error) {
	return &wgpu.TextureView{}, nil
}
func (b *countingBackend) DestroyTexture(*wgpu.TextureView) {}

func (b *countingBackend) BeginFrame() error { b.framesBegun++; return nil }

func (b *countingBackend) BindPipeline(*wgpu.RenderPipeline)              {}
func (b *countingBackend) BindGroups([pipeline.SlotCount]*wgpu.BindGroup) {}
func (b *countingBackend) Draw(renderer.Geometry, renderer.Payload) error { return nil }
func (b *countingBackend) Flush() error                                   { return nil }
func (b *countingBackend) EndFrame() error                                { return nil }

func (b *countingBackend) Resize(width, height int) {
	b.resizedWidth, b.resizedHeight = width, height
}

func (b *countingBackend) Destroy() {}

func newTestEngine(t *testing.T, win *fakeWindow, bk *countingBackend, opts ...EngineBuilderOption) Engine {
	t.Helper()

	r, err := renderer.NewRenderer(nil, win.width, win.height, renderer.WithBackend(bk))
	require.NoError(t, err)

	cam := camera.NewCamera(win.width, win.height)
	prov, err := camera.NewProvider(r, cam)
	require.NoError(t, err)

	opts = append([]EngineBuilderOption{
		WithWindow(win),
		WithRenderer(r),
		WithCameraProvider(prov),
	}, opts...)
	return NewEngine(opts...)
}

func TestRunDispatchesOneFramePerIteration(t *testing.T) {
	win := &fakeWindow{frames: 3, width: 640, height: 480}
	bk := &countingBackend{}
	e := newTestEngine(t, win, bk)

	frameCalls := 0
	e.SetFrameCallback(func(deltaTime float32) { frameCalls++ })

	e.Run()

	assert.Equal(t, 3, bk.framesBegun)
	assert.Equal(t, 3, frameCalls)
	assert.Equal(t, uint64(3), e.Renderer().FrameIndex())
}

func TestUncappedTickRunsOncePerFrame(t *testing.T) {
	win := &fakeWindow{frames: 5, width: 640, height: 480}
	e := newTestEngine(t, win, &countingBackend{}, WithTickRate(0))

	ticks := 0
	e.SetTickCallback(func(deltaTime float32) { ticks++ })

	e.Run()
	assert.Equal(t, 5, ticks)
}

func TestAssetResultsReachTheCallbackOnce(t *testing.T) {
	win := &fakeWindow{frames: 3, width: 640, height: 480}
	ld := &fakeLoader{results: []loader.Result{
		{Name: "terrain"},
		{Name: "broken", Err: errors.New("decode failed")},
	}}
	e := newTestEngine(t, win, &countingBackend{}, WithLoader(ld))

	var delivered [][]loader.Result
	e.SetAssetCallback(func(results []loader.Result) {
		delivered = append(delivered, results)
	})

	e.Run()

	assert.Equal(t, 3, ld.drains, "drained every frame")
	require.Len(t, delivered, 1, "callback fires only when something finished")
	assert.Equal(t, "terrain", delivered[0][0].Name)
}

func TestResizePropagatesToRendererAndCamera(t *testing.T) {
	win := &fakeWindow{frames: 1, width: 640, height: 480}
	bk := &countingBackend{}
	e := newTestEngine(t, win, bk)

	var cbWidth, cbHeight int
	e.SetResizeCallback(func(width, height int) { cbWidth, cbHeight = width, height })

	e.Run()
	require.NotNil(t, win.onResize)

	win.onResize(800, 600)
	assert.Equal(t, 800, bk.resizedWidth)
	assert.Equal(t, 600, bk.resizedHeight)
	camW, camH := e.CameraProvider().Camera().SurfaceSize()
	assert.Equal(t, float32(800), camW)
	assert.Equal(t, float32(600), camH)
	assert.Equal(t, 800, cbWidth)
	assert.Equal(t, 600, cbHeight)

	win.onResize(0, 0)
	assert.Equal(t, 800, bk.resizedWidth, "zero-sized framebuffer is ignored")
}

func TestQuitClosesTheWindowOnce(t *testing.T) {
	win := &fakeWindow{frames: 0, width: 640, height: 480}
	e := newTestEngine(t, win, &countingBackend{})

	e.Quit()
	e.Quit()
	assert.Equal(t, 1, win.closed)
}

func TestNewEngineRequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
}
