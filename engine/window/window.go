package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ClientAPI selects the graphics API the window's surface is created for.
type ClientAPI int

const (
	// ClientAPIOpenGL creates an OpenGL 4.1 core context and makes it current on the calling thread.
	ClientAPIOpenGL ClientAPI = iota

	// ClientAPINone creates a bare surface for WebGPU, which brings its own graphics API.
	ClientAPINone
)

// Window is the host surface the engine renders into. It owns the platform event queue
// and reports keyboard, mouse and resize events through callbacks.
// All methods must be called from the thread that created the window.
type Window interface {
	// Title returns the text shown in the title bar.
	Title() string

	// Show makes the window visible. Windows are created hidden.
	Show()

	// PollEvents processes pending platform events, invoking the registered callbacks.
	PollEvents()

	// ShouldClose reports whether the window has been asked to close.
	//
	// Returns:
	//   - bool: true once the user or SetShouldClose requested closing
	ShouldClose() bool

	// SetShouldClose sets or clears the close request.
	//
	// Parameters:
	//   - value: true to request closing
	SetShouldClose(value bool)

	// Present shows the frame just rendered. For an OpenGL window this swaps the buffers;
	// a WebGPU surface presents itself and Present does nothing.
	Present()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created or is already closed
	Close() error

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for scroll wheel and touchpad events.
	//
	// Parameters:
	//   - callback: function receiving the horizontal and vertical scroll offsets
	SetScrollCallback(callback func(x, y float64))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(key int))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyUpCallback(callback func(key int))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button index and whether it is now pressed
	SetMouseButtonCallback(callback func(button int, pressed bool))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in screen coordinates
	SetMouseMoveCallback(callback func(x, y float64))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// clientAPI selects between an OpenGL context and a bare WebGPU surface.
	clientAPI ClientAPI

	// vsync sets the swap interval to 1 on an OpenGL context.
	vsync bool

	// resizable lets the user resize the window.
	resizable bool

	// maximized starts the window maximized.
	maximized bool

	// logger receives window lifecycle events.
	logger *zap.Logger

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onResize      func(width, height int)
	onScroll      func(x, y float64)
	onKeyDown     func(key int)
	onKeyUp       func(key int)
	onMouseButton func(button int, pressed bool)
	onMouseMove   func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow creates a new hidden Window with the specified options.
// Applies default values first, then each option in order. The calling goroutine is locked to
// its OS thread, which every later window and GPU call must run on.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: error if the platform window or its context could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "CreeThor",
		width:     1920,
		height:    1080,
		clientAPI: ClientAPIOpenGL,
		vsync:     true,
		resizable: true,
		maximized: true,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.logger.Info("window created",
		zap.String("title", w.title),
		zap.Int("width", w.width),
		zap.Int("height", w.height),
	)
	return w, nil
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Show() {
	platformShow(w)
}

func (w *engineWindow) PollEvents() {
	platformPollEvents(w)
}

func (w *engineWindow) ShouldClose() bool {
	return platformShouldClose(w)
}

func (w *engineWindow) SetShouldClose(value bool) {
	platformSetShouldClose(w, value)
}

func (w *engineWindow) Present() {
	if w.clientAPI == ClientAPIOpenGL {
		platformSwapBuffers(w)
	}
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(x, y float64)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key int)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key int)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button int, pressed bool)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}
