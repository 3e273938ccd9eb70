package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxght/LuveHulgerUlle/common"
)

func TestViewMatrixCentersOnPosition(t *testing.T) {
	cam := NewCamera(800, 600, WithPosition(100, 50), WithZoom(2))

	view := cam.ViewMatrix()
	center := common.TransformPoint(view[:], 100, -50, 0, 1)
	assert.InDelta(t, 0, center[0], 1e-4)
	assert.InDelta(t, 0, center[1], 1e-4)
}

func TestCombinedTransformMatchesSequentialApplication(t *testing.T) {
	cam := NewCamera(800, 600, WithPosition(12, -7), WithZoom(1.5), WithRotation(30))

	view := cam.ViewMatrix()
	var c2d [16]float32
	common.CartesianToDevice(c2d[:], 800, 600)

	var combined [16]float32
	common.Mul4(combined[:], c2d[:], view[:])

	points := [][2]float32{{0, 0}, {64, 32}, {-250, 125}}
	for _, p := range points {
		direct := common.TransformPoint(combined[:], p[0], p[1], 0, 1)
		step := common.TransformPoint(view[:], p[0], p[1], 0, 1)
		step = common.TransformPoint(c2d[:], step[0], step[1], step[2], step[3])
		for i := range direct {
			assert.InDelta(t, step[i], direct[i], 1e-4)
		}
	}
}

func TestVisibleRectScalesWithZoom(t *testing.T) {
	cam := NewCamera(800, 600)

	full := cam.VisibleRect()
	assert.InDelta(t, 800, full.Width, 1e-3)
	assert.InDelta(t, 600, full.Height, 1e-3)

	cam.SetZoom(2)
	half := cam.VisibleRect()
	assert.InDelta(t, 400, half.Width, 1e-3)
	assert.InDelta(t, 300, half.Height, 1e-3)
}

func TestVisibleRectCoversRotatedScreen(t *testing.T) {
	cam := NewCamera(800, 600, WithRotation(90))

	r := cam.VisibleRect()
	assert.InDelta(t, 600, r.Width, 1e-2)
	assert.InDelta(t, 800, r.Height, 1e-2)

	// At 45 degrees the AABB must cover the screen diagonal in both axes.
	cam.SetRotation(45)
	r = cam.VisibleRect()
	want := (800 + 600) / (2 * math32.Sqrt2)
	assert.InDelta(t, 2*want, r.Width, 1e-2)
	assert.InDelta(t, 2*want, r.Height, 1e-2)
}

func TestVisibleRectFollowsPosition(t *testing.T) {
	cam := NewCamera(800, 600, WithPosition(1000, -400))

	r := cam.VisibleRect()
	assert.True(t, r.Contains(1000, -400))
	assert.InDelta(t, 1000, r.X+r.Width/2, 1e-3)
	assert.InDelta(t, -400, r.Y+r.Height/2, 1e-3)
}

// stubWriter records uniform writes for provider tests.
type stubWriter struct {
	created int
	writes  map[*wgpu.Buffer][][]byte
}

func (s *stubWriter) CreateUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	s.created++
	return &wgpu.Buffer{}, nil
}

func (s *stubWriter) WriteUniform(buf *wgpu.Buffer, data []byte) {
	if s.writes == nil {
		s.writes = make(map[*wgpu.Buffer][][]byte)
	}
	cp := append([]byte(nil), data...)
	s.writes[buf] = append(s.writes[buf], cp)
}

func TestProviderUploadsBothTransformsEachFrame(t *testing.T) {
	w := &stubWriter{}
	cam := NewCamera(640, 480, WithZoom(2))

	p, err := NewProvider(w, cam)
	require.NoError(t, err)
	assert.Equal(t, 2, w.created)

	ctx := p.BeginFrame(0.016)

	assert.Len(t, w.writes[p.GlobalBuffer()], 1)
	assert.Len(t, w.writes[p.CameraBuffer()], 1)
	assert.InDelta(t, 0.016, ctx.DeltaTime, 1e-6)
	assert.Equal(t, cam.ViewMatrix(), ctx.View)
	assert.InDelta(t, 2.0/640.0, ctx.CartesianToDevice[0], 1e-6)
	assert.InDelta(t, 2.0/480.0, ctx.CartesianToDevice[5], 1e-6)
	assert.Equal(t, cam.VisibleRect(), ctx.VisibleRect)

	cam.SetPosition(10, 10)
	p.BeginFrame(0.016)
	assert.Len(t, w.writes[p.CameraBuffer()], 2)
}
