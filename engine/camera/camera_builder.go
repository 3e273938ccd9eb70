package camera

import "sync"

// CameraBuilderOption is a functional option applied to a camera during construction via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the initial world-space camera position.
//
// Parameters:
//   - x, y: the camera position
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option to a camera
func WithPosition(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.posX, c.posY = x, y
	}
}

// WithZoom sets the initial zoom factor. Values at or below zero are ignored.
//
// Parameters:
//   - zoom: the zoom factor
//
// Returns:
//   - CameraBuilderOption: a function that applies the zoom option to a camera
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithRotation sets the initial camera roll in degrees.
//
// Parameters:
//   - degrees: the roll, counter-clockwise
//
// Returns:
//   - CameraBuilderOption: a function that applies the rotation option to a camera
func WithRotation(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotation = degrees
	}
}

// NewCamera creates a 2D camera for a surface size. The defaults are the
// origin, zoom 1 and no roll.
//
// Parameters:
//   - surfaceWidth: the surface width in pixels
//   - surfaceHeight: the surface height in pixels
//   - opts: a variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the configured camera
func NewCamera(surfaceWidth, surfaceHeight int, opts ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:            &sync.Mutex{},
		zoom:          1,
		surfaceWidth:  float32(surfaceWidth),
		surfaceHeight: float32(surfaceHeight),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
