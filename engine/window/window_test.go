package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{logger: zap.NewNop()}
	for _, opt := range []WindowBuilderOption{
		WithTitle("editor"),
		WithWidth(800),
		WithHeight(600),
		WithClientAPI(ClientAPINone),
		WithVSync(false),
		WithResizable(false),
		WithMaximized(false),
		WithLogger(nil),
	} {
		opt(w)
	}

	assert.Equal(t, "editor", w.Title())
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, ClientAPINone, w.clientAPI)
	assert.False(t, w.vsync)
	assert.False(t, w.resizable)
	assert.False(t, w.maximized)
	assert.NotNil(t, w.logger)
}

func TestUncreatedWindow(t *testing.T) {
	w := &engineWindow{logger: zap.NewNop()}

	assert.True(t, w.ShouldClose())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.ErrorIs(t, w.Close(), errNotInitialized)

	w.Show()
	w.PollEvents()
	w.Present()
	w.SetShouldClose(true)
}
