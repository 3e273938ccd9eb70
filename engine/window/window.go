// Package window provides the platform window the renderer draws into and
// the input events the game reacts to. It is a thin collaborator surface:
// the engine only needs a surface descriptor, pixel dimensions, resize
// notifications and raw input callbacks.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is
	// resized, receiving pixel dimensions.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseDownCallback sets the callback for left mouse button press,
	// used for picking tiles and UI elements.
	//
	// Parameters:
	//   - callback: function receiving cursor x, y position in pixels
	SetMouseDownCallback(callback func(x, y int32))

	// SetMouseUpCallback sets the callback for left mouse button release.
	//
	// Parameters:
	//   - callback: function receiving cursor x, y position in pixels
	SetMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving cursor x, y position in pixels
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for
	// creating a WebGPU surface for this window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if the window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the close operation fails
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the window
	// is closed, calling the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// gameWindow is the implementation of the Window interface.
type gameWindow struct {
	title  string
	width  int
	height int

	// resizable controls whether the user may resize the window.
	resizable bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseDown func(x, y int32)
	onMouseUp   func(x, y int32)
	onMouseMove func(x, y int32)
}

var _ Window = &gameWindow{}

// NewWindow creates a new Window with the specified options. Applies default
// values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &gameWindow{
		title:     "LuveHulgerUlle",
		width:     1280,
		height:    720,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *gameWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *gameWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *gameWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *gameWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *gameWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *gameWindow) SetMouseDownCallback(callback func(x, y int32)) {
	w.onMouseDown = callback
}

func (w *gameWindow) SetMouseUpCallback(callback func(x, y int32)) {
	w.onMouseUp = callback
}

func (w *gameWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *gameWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *gameWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *gameWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *gameWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *gameWindow) Width() int {
	return w.width
}

func (w *gameWindow) Height() int {
	return w.height
}
