package drawables

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
)

// Frame is one step of a sprite animation: the texture array layer to show
// and how long to show it.
type Frame struct {
	Layer      uint32
	DurationMs uint32
}

// AnimatedSprite is a textured quad cycling through texture array layers on
// a fixed timeline. The current layer travels in a small frame-offset
// uniform written only when the frame actually changes.
type AnimatedSprite struct {
	quad

	offset *wgpu.Buffer

	frames     []Frame
	cumulative []uint32
	totalMs    uint32
	elapsedMs  float64
	current    int
}

// NewAnimatedSprite registers an animated quad drawable.
//
// Parameters:
//   - r: the renderer
//   - global: the cartesian-to-device matrix buffer
//   - camera: the camera matrix buffer
//   - texture: the texture array view holding one layer per frame
//   - frames: the animation timeline; every duration must be positive
//   - opts: a variadic list of SpriteOption functions
//
// Returns:
//   - *AnimatedSprite: the registered drawable
//   - error: an error if the timeline is empty or resource creation fails
func NewAnimatedSprite(r renderer.Renderer, global, camera *wgpu.Buffer, texture *wgpu.TextureView, frames []Frame, opts ...SpriteOption) (*AnimatedSprite, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("animated sprite needs at least one frame")
	}

	cfg := spriteConfig{sampler: sampler.PixelArt()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &AnimatedSprite{
		quad:       quad{r: r, width: 1, height: 1},
		frames:     append([]Frame(nil), frames...),
		cumulative: make([]uint32, len(frames)),
	}
	for _, opt := range cfg.quadOpts {
		opt(&s.quad)
	}
	for i, f := range s.frames {
		if f.DurationMs == 0 {
			return nil, fmt.Errorf("animated sprite frame %d has zero duration", i)
		}
		s.totalMs += f.DurationMs
		s.cumulative[i] = s.totalMs
	}

	smp, err := r.AcquireSampler(cfg.sampler)
	if err != nil {
		return nil, err
	}

	s.offset, err = r.CreateUniformBuffer(frameOffsetData(s.frames[0].Layer))
	if err != nil {
		return nil, err
	}

	vertexData, indexData, indexCount := unitQuadPosUV()
	geo, err := r.CreateGeometry(vertexData, indexData, indexCount)
	if err != nil {
		return nil, err
	}
	s.geo = geo

	s.id, err = r.Register(renderer.DrawConfig{
		Shader: "animated_quad",
		Resources: binding.Resources{
			Global:          global,
			MaterialTexture: texture,
			MaterialSampler: smp.Handle(),
			Camera:          camera,
			FrameOffset:     s.offset,
		},
		Geometry: geo,
		Layer:    s.layer,
		Payload:  s.payload(),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Advance moves the animation clock and uploads the frame offset when the
// active frame changed.
//
// Parameters:
//   - deltaSeconds: seconds elapsed since the previous frame
func (s *AnimatedSprite) Advance(deltaSeconds float32) {
	s.elapsedMs += float64(deltaSeconds) * 1000

	phase := uint32(uint64(s.elapsedMs) % uint64(s.totalMs))
	frame := len(s.frames) - 1
	for i, cum := range s.cumulative {
		if phase < cum {
			frame = i
			break
		}
	}

	if frame != s.current {
		s.current = frame
		s.r.WriteUniform(s.offset, frameOffsetData(s.frames[frame].Layer))
	}
}

// CurrentFrame returns the index of the frame currently showing.
//
// Returns:
//   - int: the active frame index
func (s *AnimatedSprite) CurrentFrame() int {
	return s.current
}

// frameOffsetData packs the frame-offset uniform: uv shift in xy, the
// texture array layer in z.
func frameOffsetData(layer uint32) []byte {
	data := []float32{0, 0, float32(layer), 0}
	return common.SliceToBytes(data)
}
