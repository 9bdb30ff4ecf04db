package engine

import (
	"time"

	"github.com/Carmen-Shannon/creethor/engine/input"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the engine presents to and reads input from.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend sets the renderer backend every scene draws with. The engine releases it when Run returns.
//
// Parameters:
//   - b: the backend, created for the window's surface
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.Backend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithScenes sets the ordered scene list. Run starts with the first; Advance walks the list,
// creating a fresh scene from the factory each time.
//
// Parameters:
//   - factories: one factory per scene, in order
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScenes(factories ...SceneFactory) EngineBuilderOption {
	return func(e *engine) {
		e.factories = append(e.factories[:0], factories...)
	}
}

// WithClearColor sets the color every frame is cleared to. Defaults to white.
//
// Parameters:
//   - color: the RGBA clear color
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColor(color mgl32.Vec4) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = color
	}
}

// WithLogger sets the logger for lifecycle events and profiler output.
//
// Parameters:
//   - logger: the logger to use, nil keeps the no-op logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the time source frame deltas are measured with.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithAdvanceKey sets the key that swaps to the next scene. Defaults to space; a negative
// key disables advancing from the keyboard.
//
// Parameters:
//   - key: the key code (see common.Key*)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAdvanceKey(key int) EngineBuilderOption {
	return func(e *engine) {
		e.advanceKey = key
	}
}

// WithInput sets the input state the advance key is read from, instead of attaching a new one to the window.
//
// Parameters:
//   - state: the input state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInput(state *input.State) EngineBuilderOption {
	return func(e *engine) {
		e.input = state
	}
}
