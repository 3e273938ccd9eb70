// Package camera provides the 2D camera and the per-frame transform
// provider. The camera holds position, zoom and roll and derives the view
// matrix and the world-space rect visible through the surface; the provider
// owns the global and camera uniform buffers and assembles the frame
// context the dispatcher consumes.
package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/rxght/LuveHulgerUlle/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	posX, posY float32
	zoom       float32
	rotation   float32

	surfaceWidth  float32
	surfaceHeight float32
}

// Camera defines the interface for the 2D camera. Position is the
// world-space point at the center of the screen, zoom scales world units to
// cartesian pixels, rotation is a counter-clockwise roll in degrees.
type Camera interface {
	// Position returns the world-space point at the center of the screen.
	//
	// Returns:
	//   - x, y: the camera position
	Position() (x, y float32)

	// SetPosition moves the camera center to a world-space point.
	//
	// Parameters:
	//   - x, y: the new camera position
	SetPosition(x, y float32)

	// Zoom returns the current zoom factor.
	//
	// Returns:
	//   - float32: the zoom factor
	Zoom() float32

	// SetZoom sets the zoom factor. Values at or below zero are ignored.
	//
	// Parameters:
	//   - zoom: the new zoom factor
	SetZoom(zoom float32)

	// Rotation returns the camera roll in degrees.
	//
	// Returns:
	//   - float32: the roll in degrees, counter-clockwise
	Rotation() float32

	// SetRotation sets the camera roll in degrees.
	//
	// Parameters:
	//   - degrees: the new roll
	SetRotation(degrees float32)

	// SurfaceSize returns the surface size the camera projects onto.
	//
	// Returns:
	//   - width, height: the surface size in pixels
	SurfaceSize() (width, height float32)

	// Resize updates the surface size the camera projects onto.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// ViewMatrix computes the current view matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// VisibleRect computes the axis-aligned world-space rect covering
	// everything the surface can show at the current position, zoom and
	// rotation. Used for chunk culling.
	//
	// Returns:
	//   - common.Rect: the visible world rect
	VisibleRect() common.Rect
}

var _ Camera = &cameraImpl{}

func (c *cameraImpl) Position() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.posX, c.posY
}

func (c *cameraImpl) SetPosition(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posX, c.posY = x, y
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetZoom(zoom float32) {
	if zoom <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
}

func (c *cameraImpl) Rotation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

func (c *cameraImpl) SetRotation(degrees float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = degrees
}

func (c *cameraImpl) SurfaceSize() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaceWidth, c.surfaceHeight
}

func (c *cameraImpl) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width > 0 && height > 0 {
		c.surfaceWidth = float32(width)
		c.surfaceHeight = float32(height)
	}
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var m [16]float32
	// View2D centers the screen on (posX, -posY); negate so Position keeps
	// plain world-space semantics.
	common.View2D(m[:], c.posX, -c.posY, c.zoom, c.rotation)
	return m
}

func (c *cameraImpl) VisibleRect() common.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()

	rad := c.rotation * math32.Pi / 180.0
	cos := math32.Abs(math32.Cos(rad))
	sin := math32.Abs(math32.Sin(rad))

	// AABB of the rotated screen rect, scaled back to world units.
	halfW := (cos*c.surfaceWidth + sin*c.surfaceHeight) / (2 * c.zoom)
	halfH := (sin*c.surfaceWidth + cos*c.surfaceHeight) / (2 * c.zoom)

	return common.NewRect(c.posX-halfW, c.posY-halfH, 2*halfW, 2*halfH)
}
