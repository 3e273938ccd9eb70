package drawables

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rxght/LuveHulgerUlle/engine/renderer"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/binding"
	"github.com/rxght/LuveHulgerUlle/engine/renderer/sampler"
)

// UIImage is a screen-anchored textured quad. It bypasses the camera:
// placement is an anchor in normalized surface coordinates plus a pixel
// offset, recomputed whenever the surface resizes so the element keeps its
// relative position.
type UIImage struct {
	quad

	anchorX, anchorY float32
	offsetX, offsetY float32

	surfaceW, surfaceH int
}

// UIImageOption is a functional option for configuring a UIImage.
type UIImageOption func(*UIImage)

// WithAnchor sets the normalized anchor, (0,0) the bottom-left of the
// surface and (1,1) the top-right.
//
// Parameters:
//   - x, y: the anchor in [0, 1]
//
// Returns:
//   - UIImageOption: a function that applies the anchor option
func WithAnchor(x, y float32) UIImageOption {
	return func(u *UIImage) {
		u.anchorX, u.anchorY = x, y
	}
}

// WithOffset sets the pixel offset applied after anchoring.
//
// Parameters:
//   - x, y: the offset in pixels
//
// Returns:
//   - UIImageOption: a function that applies the offset option
func WithOffset(x, y float32) UIImageOption {
	return func(u *UIImage) {
		u.offsetX, u.offsetY = x, y
	}
}

// WithPixelSize sets the element size in pixels.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - UIImageOption: a function that applies the size option
func WithPixelSize(width, height float32) UIImageOption {
	return func(u *UIImage) {
		u.width, u.height = width, height
	}
}

// WithUILayer sets the draw layer of the element.
//
// Parameters:
//   - layer: the layer; lower draws first
//
// Returns:
//   - UIImageOption: a function that applies the layer option
func WithUILayer(layer int) UIImageOption {
	return func(u *UIImage) {
		u.layer = layer
	}
}

// NewUIImage registers a screen-anchored image.
//
// Parameters:
//   - r: the renderer
//   - global: the cartesian-to-device matrix buffer
//   - texture: the texture array view to sample
//   - surfaceWidth, surfaceHeight: the current surface size in pixels
//   - opts: a variadic list of UIImageOption functions
//
// Returns:
//   - *UIImage: the registered element
//   - error: an error if resource creation fails
func NewUIImage(r renderer.Renderer, global *wgpu.Buffer, texture *wgpu.TextureView, surfaceWidth, surfaceHeight int, opts ...UIImageOption) (*UIImage, error) {
	u := &UIImage{
		quad:     quad{r: r, width: 1, height: 1},
		anchorX:  0.5,
		anchorY:  0.5,
		surfaceW: surfaceWidth,
		surfaceH: surfaceHeight,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.layout()

	smp, err := r.AcquireSampler(sampler.LinearRepeat())
	if err != nil {
		return nil, err
	}

	vertexData, indexData, indexCount := unitQuadPosUV()
	geo, err := r.CreateGeometry(vertexData, indexData, indexCount)
	if err != nil {
		return nil, err
	}
	u.geo = geo

	u.id, err = r.Register(renderer.DrawConfig{
		Shader: "ui_textured",
		Resources: binding.Resources{
			Global:          global,
			MaterialTexture: texture,
			MaterialSampler: smp.Handle(),
		},
		Geometry: geo,
		Layer:    u.layer,
		Payload:  u.payload(),
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Resize recomputes the element's screen placement for a new surface size.
//
// Parameters:
//   - surfaceWidth, surfaceHeight: the new surface size in pixels
func (u *UIImage) Resize(surfaceWidth, surfaceHeight int) {
	u.surfaceW, u.surfaceH = surfaceWidth, surfaceHeight
	u.layout()
	u.r.SetPayload(u.id, u.payload())
}

// SetAnchor moves the element's normalized anchor.
//
// Parameters:
//   - x, y: the anchor in [0, 1]
func (u *UIImage) SetAnchor(x, y float32) {
	u.anchorX, u.anchorY = x, y
	u.layout()
	u.r.SetPayload(u.id, u.payload())
}

// layout converts the anchor and offset into cartesian screen coordinates,
// origin at the surface center.
func (u *UIImage) layout() {
	u.x = (u.anchorX-0.5)*float32(u.surfaceW) + u.offsetX
	u.y = (u.anchorY-0.5)*float32(u.surfaceH) + u.offsetY
}
