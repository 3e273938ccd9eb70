package window

// WindowBuilderOption is a functional option for configuring a gameWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *gameWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *gameWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *gameWindow) {
		w.width = width
		w.height = height
	}
}

// WithResizable controls whether the user may resize the window.
//
// Parameters:
//   - resizable: false to fix the window at its initial size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *gameWindow) {
		w.resizable = resizable
	}
}
