package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/input"
	"github.com/Carmen-Shannon/creethor/engine/profiler"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/scene"
	"github.com/Carmen-Shannon/creethor/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrNoWindow is returned by Run when the engine was built without a window.
	ErrNoWindow = errors.New("engine has no window")

	// ErrNoBackend is returned by Run and Advance when the engine was built without a backend.
	ErrNoBackend = errors.New("engine has no renderer backend")

	// ErrNoScenes is returned by Run and Advance when there is no scene to run.
	ErrNoScenes = errors.New("engine has no scenes")

	// ErrNilScene is returned by Swap for a nil scene.
	ErrNilScene = errors.New("cannot swap to a nil scene")

	// ErrSceneNotUsable is returned by Swap for a scene that was released or failed to initialize.
	ErrSceneNotUsable = errors.New("scene cannot be made current")
)

// SceneFactory creates a fresh, uninitialized scene drawing with the given backend.
type SceneFactory func(backend renderer.Backend) scene.Scene

// engine implements the Engine interface.
// Runs the frame loop on the calling thread, which must be the thread that created the window.
type engine struct {
	window  window.Window
	backend renderer.Backend
	input   *input.State
	logger  *zap.Logger
	now     func() time.Time

	profiler         *profiler.Profiler
	profilingEnabled bool

	clearColor mgl32.Vec4

	// advanceKey moves to the next scene when pressed; negative disables it.
	advanceKey  int
	advanceHeld bool

	factories []SceneFactory
	index     int
	current   scene.Scene

	runtime time.Duration

	mu sync.RWMutex
}

// Engine is the scene host. It owns the window, the renderer backend and exactly one current
// scene, and drives the frame loop: poll events, begin a frame, update the scene, end the
// frame, present.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Backend returns the renderer backend scenes draw with.
	//
	// Returns:
	//   - renderer.Backend: the backend instance
	Backend() renderer.Backend

	// Input returns the keyboard and mouse state fed from the window.
	//
	// Returns:
	//   - *input.State: the input state, nil without a window
	Input() *input.State

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Current returns the active scene.
	//
	// Returns:
	//   - scene.Scene: the current scene, nil before Run or the first Swap
	Current() scene.Scene

	// Swap initializes next and makes it current. If next fails to initialize the current scene
	// stays active and untouched. On success the previous scene is released.
	//
	// Parameters:
	//   - next: the scene to switch to, initialized here if it is not already
	//
	// Returns:
	//   - error: ErrNilScene, ErrSceneNotUsable for a released or failed scene, or the error from next.Init
	Swap(next scene.Scene) error

	// Advance swaps to a fresh instance of the next scene in the configured list, wrapping at the end.
	//
	// Returns:
	//   - error: ErrNoScenes, ErrNoBackend, or the swap error
	Advance() error

	// Run initializes the first scene, shows the window and runs the frame loop until the window
	// is asked to close. On return the current scene, the backend and the window are released.
	//
	// Returns:
	//   - error: the first scene's init error, or the frame error that ended the loop
	Run() error

	// Quit asks the loop to end after the current frame.
	Quit()

	// Runtime returns how long the last Run loop lasted.
	Runtime() time.Duration
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Unless WithInput is given, an input state is attached to the window. Window resizes are
// forwarded to the backend.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:     zap.NewNop(),
		now:        time.Now,
		clearColor: mgl32.Vec4{1, 1, 1, 1},
		advanceKey: common.KeySpace,
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))

	if e.window != nil {
		if e.input == nil {
			e.input = input.Attach(e.window)
		}
		e.window.SetResizeCallback(func(width, height int) {
			if e.backend != nil {
				e.backend.Resize(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() renderer.Backend {
	return e.backend
}

func (e *engine) Input() *input.State {
	return e.input
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Current() scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

func (e *engine) Runtime() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runtime
}

func (e *engine) Swap(next scene.Scene) error {
	if next == nil {
		return ErrNilScene
	}

	e.mu.RLock()
	prev := e.current
	e.mu.RUnlock()
	if next == prev {
		return nil
	}

	switch state := next.State(); state {
	case scene.StateActive:
	case scene.StateUninitialized:
		if err := next.Init(); err != nil {
			e.logger.Warn("scene swap failed, keeping current scene",
				zap.String("next", next.Name()),
				zap.Error(err),
			)
			return fmt.Errorf("failed to swap to scene %q: %w", next.Name(), err)
		}
	default:
		e.logger.Warn("scene swap rejected, keeping current scene",
			zap.String("next", next.Name()),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("%w: scene %q is %s", ErrSceneNotUsable, next.Name(), state)
	}

	if prev != nil {
		if err := prev.Release(); err != nil {
			e.logger.Warn("failed to release scene", zap.String("scene", prev.Name()), zap.Error(err))
		}
	}

	e.mu.Lock()
	e.current = next
	e.mu.Unlock()

	fields := []zap.Field{zap.String("scene", next.Name())}
	if prev != nil {
		fields = append(fields, zap.String("previous", prev.Name()))
	}
	e.logger.Info("scene swapped", fields...)
	return nil
}

func (e *engine) Advance() error {
	if len(e.factories) == 0 {
		return ErrNoScenes
	}
	if e.backend == nil {
		return ErrNoBackend
	}

	e.mu.RLock()
	idx := (e.index + 1) % len(e.factories)
	e.mu.RUnlock()

	if err := e.Swap(e.factories[idx](e.backend)); err != nil {
		return err
	}

	e.mu.Lock()
	e.index = idx
	e.mu.Unlock()
	return nil
}

func (e *engine) Quit() {
	if e.window != nil {
		e.window.SetShouldClose(true)
	}
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	if e.backend == nil {
		return ErrNoBackend
	}

	if err := e.start(); err != nil {
		e.backend.Release()
		e.closeWindow()
		return err
	}

	e.window.Show()

	start := e.now()
	last := start
	var runErr error

	for !e.window.ShouldClose() {
		e.window.PollEvents()
		e.pollAdvance()

		now := e.now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if err := e.frame(dt); err != nil {
			runErr = err
			break
		}

		if e.input != nil {
			e.input.EndFrame()
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}
	}

	elapsed := e.now().Sub(start)
	e.mu.Lock()
	e.runtime = elapsed
	e.mu.Unlock()
	e.logger.Info(fmt.Sprintf("Loop of frame %q ended and lasted %.3f seconds.", e.window.Title(), elapsed.Seconds()),
		zap.String("window", e.window.Title()),
		zap.Duration("runtime", elapsed),
	)

	e.shutdown()
	return runErr
}

// start makes the first configured scene current unless a scene was swapped in before Run,
// and initializes it.
func (e *engine) start() error {
	e.mu.Lock()
	if e.current == nil {
		if len(e.factories) == 0 {
			e.mu.Unlock()
			return ErrNoScenes
		}
		e.index = 0
		e.current = e.factories[0](e.backend)
	}
	current := e.current
	e.mu.Unlock()

	if current.State() != scene.StateUninitialized {
		return nil
	}
	if err := current.Init(); err != nil {
		return err
	}
	return nil
}

// pollAdvance swaps to the next scene on the frame the advance key goes down.
func (e *engine) pollAdvance() {
	if e.input == nil || e.advanceKey < 0 {
		return
	}
	pressed := e.input.KeyPressed(e.advanceKey)
	if pressed && !e.advanceHeld {
		if err := e.Advance(); err != nil {
			e.logger.Warn("failed to advance scene", zap.Error(err))
		}
	}
	e.advanceHeld = pressed
}

// frame renders one frame. A frame the backend cannot begin, such as on a minimized or outdated
// surface, is skipped. A frame time the scene rejects skips its update but still ends the frame.
func (e *engine) frame(dt float32) error {
	if err := e.backend.BeginFrame(e.clearColor); err != nil {
		e.logger.Warn("skipped frame", zap.Error(err))
		return nil
	}

	current := e.Current()
	if err := current.Update(dt); err != nil {
		if !errors.Is(err, scene.ErrInvalidDelta) {
			_ = e.backend.EndFrame()
			e.logger.Error("scene update failed", zap.String("scene", current.Name()), zap.Error(err))
			return fmt.Errorf("failed to update scene %q: %w", current.Name(), err)
		}
		e.logger.Debug("skipped scene update", zap.Float32("dt", dt))
	}

	if err := e.backend.EndFrame(); err != nil {
		return fmt.Errorf("failed to end frame: %w", err)
	}
	e.window.Present()
	return nil
}

// shutdown releases the current scene, then the backend, then destroys the window.
func (e *engine) shutdown() {
	if current := e.Current(); current != nil {
		if err := current.Release(); err != nil {
			e.logger.Warn("failed to release scene", zap.String("scene", current.Name()), zap.Error(err))
		}
	}
	e.backend.Release()
	e.closeWindow()
}

func (e *engine) closeWindow() {
	if err := e.window.Close(); err != nil {
		e.logger.Warn("failed to close window", zap.Error(err))
	}
}
