package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
)

const terrainDescriptor = `{
	"name": "terrain",
	"image": "terrain.png",
	"tileWidth": 16,
	"tileHeight": 16,
	"tileCount": 4,
	"columns": 2
}`

// fakeUploader records uploads without a GPU.
type fakeUploader struct {
	uploads []common.TextureStagingData
	fail    error
}

func (f *fakeUploader) CreateTexture(data common.TextureStagingData) (*wgpu.TextureView, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.uploads = append(f.uploads, data)
	return &wgpu.TextureView{}, nil
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// drainAll polls Drain until n results arrive or the deadline passes.
func drainAll(t *testing.T, l Loader, n int) []Result {
	t.Helper()
	var results []Result
	require.Eventually(t, func() bool {
		results = append(results, l.Drain()...)
		return len(results) >= n
	}, 2*time.Second, time.Millisecond)
	return results
}

func TestLoaderDeliversTilesetOnDrain(t *testing.T) {
	gpu := &fakeUploader{}
	l := NewLoader(gpu, WithWorkerCount(2))

	l.QueueTileset("terrain",
		Source{Data: []byte(terrainDescriptor)},
		Source{Data: encodePNG(t, 32, 32)},
	)

	results := drainAll(t, l, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "terrain", results[0].Name)
	assert.Equal(t, 0, l.Pending())

	asset, ok := l.Tileset("terrain")
	require.True(t, ok)
	assert.Equal(t, uint32(4), asset.Descriptor.TileCount())
	assert.NotNil(t, asset.Atlas)

	// The 32x32 atlas decodes into four 16x16 array layers.
	require.Len(t, gpu.uploads, 1)
	assert.Equal(t, uint32(4), gpu.uploads[0].Layers)
	assert.Equal(t, uint32(16), gpu.uploads[0].Width)
}

func TestLoaderDeliversTextureOnDrain(t *testing.T) {
	gpu := &fakeUploader{}
	l := NewLoader(gpu, WithWorkerCount(1))

	l.QueueTexture("splash", Source{Data: encodePNG(t, 8, 4)})

	results := drainAll(t, l, 1)
	require.NoError(t, results[0].Err)

	tex, ok := l.Texture("splash")
	require.True(t, ok)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
}

func TestLoaderReportsDecodeFailuresWithoutCaching(t *testing.T) {
	gpu := &fakeUploader{}
	l := NewLoader(gpu, WithWorkerCount(1))

	l.QueueTileset("broken",
		Source{Data: []byte(`{"tileWidth":0}`)},
		Source{Data: encodePNG(t, 16, 16)},
	)

	results := drainAll(t, l, 1)
	require.Error(t, results[0].Err)

	_, ok := l.Tileset("broken")
	assert.False(t, ok)
	assert.Empty(t, gpu.uploads, "nothing reaches the GPU for a rejected asset")
}

func TestLoaderRejectsAtlasThatDoesNotDivide(t *testing.T) {
	gpu := &fakeUploader{}
	l := NewLoader(gpu, WithWorkerCount(1))

	// 20x20 pixels cannot split into 16x16 tiles.
	l.QueueTileset("ragged",
		Source{Data: []byte(terrainDescriptor)},
		Source{Data: encodePNG(t, 20, 20)},
	)

	results := drainAll(t, l, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "divide")
}

func TestDrainNeverBlocksOnEmptyQueue(t *testing.T) {
	l := NewLoader(&fakeUploader{})

	done := make(chan []Result, 1)
	go func() { done <- l.Drain() }()

	select {
	case results := <-done:
		assert.Empty(t, results)
	case <-time.After(time.Second):
		t.Fatal("Drain blocked on an empty ready queue")
	}
}
