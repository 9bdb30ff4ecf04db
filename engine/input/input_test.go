package input

import (
	"testing"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/window/windowtest"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	win := windowtest.NewFake("test", 100, 100)
	s := Attach(win)

	win.PressKey(common.KeySpace)
	assert.True(t, s.KeyPressed(common.KeySpace))
	assert.False(t, s.KeyPressed(common.KeyN))

	win.ReleaseKey(common.KeySpace)
	assert.False(t, s.KeyPressed(common.KeySpace))
}

func TestKeysOutsideTable(t *testing.T) {
	s := NewState()

	s.KeyDown(common.KeyCount)
	s.KeyDown(-1)

	assert.False(t, s.KeyPressed(common.KeyCount))
	assert.False(t, s.KeyPressed(1000))
	assert.False(t, s.KeyPressed(-1))
}

func TestDragging(t *testing.T) {
	win := windowtest.NewFake("test", 100, 100)
	s := Attach(win)

	win.Move(10, 20)
	assert.False(t, s.Dragging())

	win.Button(common.MouseButtonLeft, true)
	assert.True(t, s.ButtonPressed(common.MouseButtonLeft))
	win.Move(15, 18)
	assert.True(t, s.Dragging())

	x, y := s.Cursor()
	assert.Equal(t, 15.0, x)
	assert.Equal(t, 18.0, y)
	px, py := s.Previous()
	assert.Equal(t, 10.0, px)
	assert.Equal(t, 20.0, py)
	dx, dy := s.Delta()
	assert.Equal(t, 5.0, dx)
	assert.Equal(t, -2.0, dy)

	win.Button(common.MouseButtonLeft, false)
	assert.False(t, s.Dragging())
	assert.False(t, s.ButtonPressed(common.MouseButtonLeft))
	assert.False(t, s.ButtonPressed(7))
}

func TestEndFrame(t *testing.T) {
	win := windowtest.NewFake("test", 100, 100)
	s := Attach(win)

	win.Move(3, 4)
	win.Scroll(0, -1)
	sx, sy := s.Scroll()
	assert.Equal(t, 0.0, sx)
	assert.Equal(t, -1.0, sy)

	s.EndFrame()

	sx, sy = s.Scroll()
	assert.Zero(t, sx)
	assert.Zero(t, sy)
	dx, dy := s.Delta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}
