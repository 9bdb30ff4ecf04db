// Package input tracks keyboard and mouse state fed from window callbacks.
package input

import (
	"sync"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/window"
)

// State is the keyboard and mouse state of one window. Key codes outside [0, common.KeyCount)
// and buttons outside [0, common.MouseButtonCount) are ignored and reported as not pressed.
// Thread-safe for concurrent access.
type State struct {
	keys    [common.KeyCount]bool
	buttons [common.MouseButtonCount]bool

	x, y         float64
	lastX, lastY float64
	scrollX      float64
	scrollY      float64
	dragging     bool

	mu sync.RWMutex
}

// NewState creates an empty State with nothing pressed and the cursor at the origin.
func NewState() *State {
	return &State{}
}

// Attach creates a State and registers it as the key, mouse button, cursor and scroll
// callbacks of a window, replacing any callbacks set before.
//
// Parameters:
//   - win: the window to listen to
//
// Returns:
//   - *State: the state fed by the window
func Attach(win window.Window) *State {
	s := NewState()
	s.Attach(win)
	return s
}

// Attach registers the state as the key, mouse button, cursor and scroll callbacks of a window.
//
// Parameters:
//   - win: the window to listen to
func (s *State) Attach(win window.Window) {
	win.SetKeyDownCallback(s.KeyDown)
	win.SetKeyUpCallback(s.KeyUp)
	win.SetMouseButtonCallback(s.MouseButton)
	win.SetMouseMoveCallback(s.MouseMove)
	win.SetScrollCallback(s.Scrolled)
}

// KeyDown marks a key as pressed.
func (s *State) KeyDown(key int) {
	s.setKey(key, true)
}

// KeyUp marks a key as released.
func (s *State) KeyUp(key int) {
	s.setKey(key, false)
}

func (s *State) setKey(key int, pressed bool) {
	if key < 0 || key >= common.KeyCount {
		return
	}
	s.mu.Lock()
	s.keys[key] = pressed
	s.mu.Unlock()
}

// MouseButton records a button press or release. A release also ends any drag.
//
// Parameters:
//   - button: the button index (see common.MouseButton*)
//   - pressed: true for a press, false for a release
func (s *State) MouseButton(button int, pressed bool) {
	if button < 0 || button >= common.MouseButtonCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buttons[button] = pressed
	if !pressed {
		s.dragging = false
	}
}

// MouseMove moves the cursor, keeping the old position as the previous one. Moving while any
// button is held is a drag.
//
// Parameters:
//   - x: the new horizontal cursor position
//   - y: the new vertical cursor position
func (s *State) MouseMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastX, s.lastY = s.x, s.y
	s.x, s.y = x, y
	s.dragging = false
	for _, held := range s.buttons {
		if held {
			s.dragging = true
			break
		}
	}
}

// Scrolled records the scroll offsets of the current frame.
//
// Parameters:
//   - x: the horizontal scroll offset
//   - y: the vertical scroll offset
func (s *State) Scrolled(x, y float64) {
	s.mu.Lock()
	s.scrollX, s.scrollY = x, y
	s.mu.Unlock()
}

// EndFrame clears the scroll offsets and makes the current cursor position the previous one.
// The host calls it once per frame after the scene has been updated.
func (s *State) EndFrame() {
	s.mu.Lock()
	s.scrollX, s.scrollY = 0, 0
	s.lastX, s.lastY = s.x, s.y
	s.mu.Unlock()
}

// KeyPressed reports whether a key is held down.
//
// Parameters:
//   - key: the key code (see common.Key*)
//
// Returns:
//   - bool: true if the key is held, false for released or unknown keys
func (s *State) KeyPressed(key int) bool {
	if key < 0 || key >= common.KeyCount {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

// ButtonPressed reports whether a mouse button is held down.
//
// Parameters:
//   - button: the button index (see common.MouseButton*)
//
// Returns:
//   - bool: true if the button is held, false for released or unknown buttons
func (s *State) ButtonPressed(button int) bool {
	if button < 0 || button >= common.MouseButtonCount {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buttons[button]
}

// Cursor returns the current cursor position.
func (s *State) Cursor() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x, s.y
}

// Previous returns the cursor position before the last move, or at the end of the last frame.
func (s *State) Previous() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastX, s.lastY
}

// Delta returns the cursor movement from the previous position to the current one.
func (s *State) Delta() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x - s.lastX, s.y - s.lastY
}

// Scroll returns the scroll offsets received since the last EndFrame.
func (s *State) Scroll() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scrollX, s.scrollY
}

// Dragging reports whether the cursor moved while a button was held, and no button has been released since.
func (s *State) Dragging() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dragging
}
