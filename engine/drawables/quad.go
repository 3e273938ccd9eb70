// Package drawables provides ready-made quad drawables over the renderer's
// draw registry: flat-color squares, sprites, animated sprites, single-tile
// quads and screen-anchored UI images. Each drawable owns its registry entry
// and updates it through payload writes; nothing here touches bind groups or
// pipelines directly.
package drawables

import (
	"github.com/rxght/LuveHulgerUlle/common"
	"github.com/rxght/LuveHulgerUlle/engine/renderer"
)

// quad is the shared base of every drawable: a unit quad whose world
// placement travels entirely in the draw payload. Position is the quad's
// bottom-left corner; width and height scale the unit mesh.
type quad struct {
	r  renderer.Renderer
	id renderer.DrawID

	geo renderer.Geometry

	x, y, z       float32
	width, height float32
	layer         int
}

// unitQuadPos is the [0,1]^2 quad in the position-only vertex format.
func unitQuadPos() ([]byte, []byte, uint32) {
	vertices := []float32{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
	}
	return common.SliceToBytes(vertices), common.SliceToBytes(quadIndices()), 6
}

// unitQuadPosUV is the [0,1]^2 quad with texture coordinates, v running
// downward so the image's top row lands at the quad's top edge.
func unitQuadPosUV() ([]byte, []byte, uint32) {
	vertices := []float32{
		0, 0, 0, 1,
		1, 0, 1, 1,
		0, 1, 0, 0,
		1, 1, 1, 0,
	}
	return common.SliceToBytes(vertices), common.SliceToBytes(quadIndices()), 6
}

func quadIndices() []uint16 {
	return []uint16{0, 1, 2, 2, 1, 3}
}

func (q *quad) payload() renderer.Payload {
	return renderer.QuadPayload(q.x, q.y, q.z, q.width, q.height)
}

// SetPosition moves the quad's bottom-left corner in world space.
//
// Parameters:
//   - x, y: the new corner position
func (q *quad) SetPosition(x, y float32) {
	q.x, q.y = x, y
	q.r.SetPayload(q.id, q.payload())
}

// SetSize resizes the quad in world units.
//
// Parameters:
//   - width, height: the new extents
func (q *quad) SetSize(width, height float32) {
	q.width, q.height = width, height
	q.r.SetPayload(q.id, q.payload())
}

// SetLayer moves the quad to a different draw layer.
//
// Parameters:
//   - layer: the new layer; lower draws first
func (q *quad) SetLayer(layer int) {
	q.layer = layer
	q.r.SetLayer(q.id, layer)
}

// SetVisible toggles the quad without releasing its resources.
//
// Parameters:
//   - visible: whether the quad is drawn
func (q *quad) SetVisible(visible bool) {
	q.r.SetVisible(q.id, visible)
}

// Position returns the quad's bottom-left corner.
func (q *quad) Position() (x, y float32) { return q.x, q.y }

// Size returns the quad's extents.
func (q *quad) Size() (width, height float32) { return q.width, q.height }

// Destroy removes the quad from the registry and releases its mesh.
func (q *quad) Destroy() {
	q.r.Unregister(q.id)
	q.r.DestroyGeometry(q.geo)
}
