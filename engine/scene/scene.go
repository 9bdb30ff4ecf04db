package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sync"

	"github.com/Carmen-Shannon/creethor/engine/geometry"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/renderer/shader"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyInitialized is returned by Init on a scene that has left the Uninitialized state.
	ErrAlreadyInitialized = errors.New("scene already initialized")

	// ErrNotActive is returned by Update on a scene that is not Active.
	ErrNotActive = errors.New("scene is not active")

	// ErrInvalidDelta is returned by Update for a frame time that is not a positive finite number.
	ErrInvalidDelta = errors.New("frame delta must be positive and finite")

	// ErrInitFailed wraps the cause of a failed Init.
	ErrInitFailed = errors.New("scene initialization failed")
)

// State is the lifecycle state of a Scene.
type State int

const (
	// StateUninitialized is the state of a freshly constructed scene.
	StateUninitialized State = iota

	// StateActive is the state of a scene whose GPU resources are live and which may be updated.
	StateActive

	// StateFailed is the state of a scene whose Init failed. It holds no GPU resources and cannot be initialized again.
	StateFailed

	// StateReleased is the terminal state after Release.
	StateReleased
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Scene is one self-contained unit of rendering: an optional shader program, an optional mesh
// and the GPU buffers the mesh was uploaded into. A scene is initialized once, updated every frame
// while it is current and released when it is swapped out.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// State returns the scene's lifecycle state.
	State() State

	// FPS returns the frame rate derived from the last successful Update, 0 before the first one.
	FPS() float32

	// Mesh returns the geometry the scene uploads on Init, or nil for a scene without geometry.
	Mesh() *geometry.Mesh

	// Program returns the scene's compiled shader program, or nil when the scene has none or is not Active.
	Program() shader.Program

	// Buffers returns the GPU buffers holding the scene's mesh, or nil when the scene has none or is not Active.
	Buffers() *renderer.BufferSet

	// Init resolves and compiles the shader, then uploads the mesh. On failure everything created
	// so far is released and the scene moves to StateFailed.
	//
	// Returns:
	//   - error: ErrAlreadyInitialized if the scene is not Uninitialized, or ErrInitFailed wrapping the cause
	Init() error

	// Update records the frame rate for the elapsed frame time and draws the scene.
	//
	// Parameters:
	//   - dt: the seconds elapsed since the previous frame
	//
	// Returns:
	//   - error: ErrNotActive, ErrInvalidDelta, or the backend's draw error
	Update(dt float32) error

	// Release frees the buffer set and then the program. Calling Release more than once is a no-op.
	//
	// Returns:
	//   - error: always nil, present for symmetry with Init
	Release() error
}

// scene is the implementation of the Scene interface.
type scene struct {
	// name is the scene's identifier.
	name string

	// backend creates and draws every GPU object the scene owns.
	backend renderer.Backend

	// logger receives lifecycle events.
	logger *zap.Logger

	// mesh is uploaded on Init; nil means the scene draws nothing.
	mesh *geometry.Mesh

	// source is the shader source compiled on Init, when given directly.
	source *shader.Source

	// shaderPath is read from disk, or from shaderFS when set, if source is nil.
	shaderPath string
	shaderFS   fs.FS

	// flattener interleaves the mesh on a worker pool; nil keeps the sequential path.
	flattener *geometry.Flattener

	state   State
	fps     float32
	program shader.Program
	buffers *renderer.BufferSet

	mu *sync.RWMutex
}

var _ Scene = &scene{}

// NewScene creates a new Scene in the Uninitialized state. No GPU call is made until Init.
//
// Parameters:
//   - name: the scene's identifier
//   - backend: the backend the scene's GPU objects are created on
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, backend renderer.Backend, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:    name,
		backend: backend,
		logger:  zap.NewNop(),
		state:   StateUninitialized,
		mu:      &sync.RWMutex{},
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *scene) FPS() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fps
}

func (s *scene) Mesh() *geometry.Mesh {
	return s.mesh
}

func (s *scene) Program() shader.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.program
}

func (s *scene) Buffers() *renderer.BufferSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffers
}

func (s *scene) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return fmt.Errorf("%w: scene %q is %s", ErrAlreadyInitialized, s.name, s.state)
	}

	if err := s.initResources(); err != nil {
		s.releaseResources()
		s.state = StateFailed
		s.logger.Error("scene initialization failed", zap.String("scene", s.name), zap.Error(err))
		return fmt.Errorf("%w: scene %q: %w", ErrInitFailed, s.name, err)
	}

	s.state = StateActive
	fields := []zap.Field{zap.String("scene", s.name)}
	if s.buffers != nil {
		fields = append(fields, zap.Int("indices", s.buffers.IndexCount()))
	}
	s.logger.Info("scene initialized", fields...)
	return nil
}

// initResources compiles the shader then uploads the mesh. Partially created objects are left
// in s.program and s.buffers for the caller to release.
func (s *scene) initResources() error {
	src, err := s.resolveSource()
	if err != nil {
		return err
	}
	if src != nil {
		s.program = shader.NewProgram(s.backend, src, shader.WithLogger(s.logger))
		if err := s.program.Compile(); err != nil {
			return err
		}
	}

	if s.mesh != nil {
		set, err := renderer.Upload(s.backend, s.mesh, renderer.WithFlattener(s.flattener))
		if err != nil {
			return err
		}
		s.buffers = set
	}
	return nil
}

func (s *scene) resolveSource() (*shader.Source, error) {
	switch {
	case s.source != nil:
		return s.source, nil
	case s.shaderPath == "":
		return nil, nil
	case s.shaderFS != nil:
		return shader.LoadFS(s.shaderFS, s.shaderPath)
	default:
		return shader.Load(s.shaderPath)
	}
}

func (s *scene) Update(dt float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("%w: scene %q is %s", ErrNotActive, s.name, s.state)
	}
	d := float64(dt)
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, dt)
	}
	s.fps = 1 / dt

	if s.program == nil || s.buffers == nil || s.buffers.IndexCount() == 0 {
		return nil
	}

	s.program.Use()
	err := renderer.Draw(s.backend, s.buffers)
	s.program.Detach()
	if err != nil {
		return fmt.Errorf("scene %q: %w", s.name, err)
	}
	return nil
}

func (s *scene) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReleased {
		return nil
	}
	wasActive := s.state == StateActive
	s.releaseResources()
	s.state = StateReleased
	if wasActive {
		s.logger.Info("scene released", zap.String("scene", s.name))
	}
	return nil
}

func (s *scene) releaseResources() {
	if s.buffers != nil {
		s.buffers.Release(s.backend)
		s.buffers = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
}
