package drawables

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
)

// Square is a flat-color quad. The color lives in a small uniform buffer
// bound through the material slot's color form.
type Square struct {
	quad

	color *wgpu.Buffer
}

// NewSquare registers a flat-color quad drawable.
//
// Parameters:
//   - r: the renderer
//   - global: the cartesian-to-device matrix buffer
//   - camera: the camera matrix buffer
//   - color: the RGBA color, each channel in [0, 1]
//   - opts: a variadic list of QuadOption functions
//
// Returns:
//   - *Square: the registered drawable
//   - error: an error if resource creation fails
func NewSquare(r renderer.Renderer, global, camera *wgpu.Buffer, color [4]float32, opts ...QuadOption) (*Square, error) {
	s := &Square{quad: quad{r: r, width: 1, height: 1}}
	for _, opt := range opts {
		opt(&s.quad)
	}

	vertexData, indexData, indexCount := unitQuadPos()
	geo, err := r.CreateGeometry(vertexData, indexData, indexCount)
	if err != nil {
		return nil, err
	}
	s.geo = geo

	s.color, err = r.CreateUniformBuffer(common.SliceToBytes(color[:]))
	if err != nil {
		return nil, err
	}

	s.id, err = r.Register(renderer.DrawConfig{
		Shader: "color_quad",
		Resources: binding.Resources{
			Global:        global,
			MaterialColor: s.color,
			Camera:        camera,
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

// SetColor replaces the square's color.
//
// Parameters:
//   - color: the new RGBA color
func (s *Square) SetColor(color [4]float32) {
	s.r.WriteUniform(s.color, common.SliceToBytes(color[:]))
}
