package drawables

// QuadOption is a functional option shared by the quad drawable constructors.
type QuadOption func(*quad)

// WithPosition sets the initial bottom-left corner in world space.
//
// Parameters:
//   - x, y: the corner position
//
// Returns:
//   - QuadOption: a function that applies the position option
func WithPosition(x, y float32) QuadOption {
	return func(q *quad) {
		q.x, q.y = x, y
	}
}

// WithSize sets the initial extents in world units.
//
// Parameters:
//   - width, height: the extents
//
// Returns:
//   - QuadOption: a function that applies the size option
func WithSize(width, height float32) QuadOption {
	return func(q *quad) {
		q.width, q.height = width, height
	}
}

// WithLayer sets the draw layer.
//
// Parameters:
//   - layer: the layer; lower draws first
//
// Returns:
//   - QuadOption: a function that applies the layer option
func WithLayer(layer int) QuadOption {
	return func(q *quad) {
		q.layer = layer
	}
}

// WithDepth sets the world-space z coordinate used for depth testing within
// a layer.
//
// Parameters:
//   - z: the depth value
//
// Returns:
//   - QuadOption: a function that applies the depth option
func WithDepth(z float32) QuadOption {
	return func(q *quad) {
		q.z = z
	}
}
