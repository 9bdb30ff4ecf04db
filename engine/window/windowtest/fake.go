// Package windowtest provides an in-memory window.Window for tests that drive a host loop
// without a display.
package windowtest

import (
	"errors"

	"github.com/Carmen-Shannon/creethor/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrClosed is returned by Close on a window that is already closed.
var ErrClosed = errors.New("fake window already closed")

// Fake is a window.Window that records lifecycle calls and lets a test inject input events.
// It is not safe for concurrent use.
type Fake struct {
	// CloseAfter sets the close flag once PollEvents has been called this many times. Zero never closes.
	CloseAfter int

	// OnPoll runs at the start of every PollEvents with the 1-based poll number, before any callbacks fire.
	OnPoll func(poll int)

	title       string
	width       int
	height      int
	shown       bool
	closed      bool
	shouldClose bool
	polls       int
	presents    int

	onResize      func(width, height int)
	onScroll      func(x, y float64)
	onKeyDown     func(key int)
	onKeyUp       func(key int)
	onMouseButton func(button int, pressed bool)
	onMouseMove   func(x, y float64)
}

var _ window.Window = &Fake{}

// NewFake creates a hidden Fake window of the given size.
func NewFake(title string, width, height int) *Fake {
	return &Fake{title: title, width: width, height: height}
}

func (f *Fake) Title() string { return f.title }

func (f *Fake) Show() { f.shown = true }

func (f *Fake) PollEvents() {
	f.polls++
	if f.OnPoll != nil {
		f.OnPoll(f.polls)
	}
	if f.CloseAfter > 0 && f.polls >= f.CloseAfter {
		f.shouldClose = true
	}
}

func (f *Fake) ShouldClose() bool { return f.closed || f.shouldClose }

func (f *Fake) SetShouldClose(value bool) { f.shouldClose = value }

func (f *Fake) Present() { f.presents++ }

func (f *Fake) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	return nil
}

func (f *Fake) Width() int { return f.width }

func (f *Fake) Height() int { return f.height }

func (f *Fake) SetResizeCallback(callback func(width, height int)) { f.onResize = callback }

func (f *Fake) SetScrollCallback(callback func(x, y float64)) { f.onScroll = callback }

func (f *Fake) SetKeyDownCallback(callback func(key int)) { f.onKeyDown = callback }

func (f *Fake) SetKeyUpCallback(callback func(key int)) { f.onKeyUp = callback }

func (f *Fake) SetMouseButtonCallback(callback func(button int, pressed bool)) {
	f.onMouseButton = callback
}

func (f *Fake) SetMouseMoveCallback(callback func(x, y float64)) { f.onMouseMove = callback }

// SurfaceDescriptor returns nil; a Fake has no native surface.
func (f *Fake) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

// PressKey delivers a key press to the registered callback.
func (f *Fake) PressKey(key int) {
	if f.onKeyDown != nil {
		f.onKeyDown(key)
	}
}

// ReleaseKey delivers a key release to the registered callback.
func (f *Fake) ReleaseKey(key int) {
	if f.onKeyUp != nil {
		f.onKeyUp(key)
	}
}

// Button delivers a mouse button press or release to the registered callback.
func (f *Fake) Button(button int, pressed bool) {
	if f.onMouseButton != nil {
		f.onMouseButton(button, pressed)
	}
}

// Move delivers a cursor move to the registered callback.
func (f *Fake) Move(x, y float64) {
	if f.onMouseMove != nil {
		f.onMouseMove(x, y)
	}
}

// Scroll delivers a scroll event to the registered callback.
func (f *Fake) Scroll(x, y float64) {
	if f.onScroll != nil {
		f.onScroll(x, y)
	}
}

// Resize changes the size and delivers it to the registered callback.
func (f *Fake) Resize(width, height int) {
	f.width, f.height = width, height
	if f.onResize != nil {
		f.onResize(width, height)
	}
}

// Shown reports whether Show was called.
func (f *Fake) Shown() bool { return f.shown }

// Closed reports whether Close was called.
func (f *Fake) Closed() bool { return f.closed }

// Polls returns the number of PollEvents calls.
func (f *Fake) Polls() int { return f.polls }

// Presents returns the number of Present calls.
func (f *Fake) Presents() int { return f.presents }
