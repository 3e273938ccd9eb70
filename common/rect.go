package common

// Rect is an axis-aligned rectangle in world space. X and Y identify the
// bottom-left corner; Width and Height extend right and up.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// NewRect creates a rectangle from its bottom-left corner and size.
//
// Parameters:
//   - x, y: bottom-left corner
//   - width, height: extents (negative values are treated as empty)
//
// Returns:
//   - Rect: the rectangle
func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Empty reports whether the rectangle covers no area.
//
// Returns:
//   - bool: true if width or height is not positive
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// MaxX returns the right edge coordinate.
//
// Returns:
//   - float32: X + Width
func (r Rect) MaxX() float32 {
	return r.X + r.Width
}

// MaxY returns the top edge coordinate.
//
// Returns:
//   - float32: Y + Height
func (r Rect) MaxY() float32 {
	return r.Y + r.Height
}

// Intersects reports whether two rectangles overlap. Rectangles that only
// share an edge do not intersect.
//
// Parameters:
//   - other: the rectangle to test against
//
// Returns:
//   - bool: true if the rectangles overlap
func (r Rect) Intersects(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.MaxX() && other.X < r.MaxX() &&
		r.Y < other.MaxY() && other.Y < r.MaxY()
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the left/bottom edges are inside, right/top edges are not.
//
// Parameters:
//   - x, y: the point to test
//
// Returns:
//   - bool: true if the point is inside
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Union returns the smallest rectangle containing both r and other.
// An empty rectangle acts as the identity.
//
// Parameters:
//   - other: the rectangle to merge with
//
// Returns:
//   - Rect: the bounding rectangle of both inputs
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.MaxX(), other.MaxX())
	maxY := max(r.MaxY(), other.MaxY())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Area returns the covered area, or 0 for empty rectangles.
//
// Returns:
//   - float32: width * height
func (r Rect) Area() float32 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}
