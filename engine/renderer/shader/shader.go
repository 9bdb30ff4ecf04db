package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"go.uber.org/zap"
)

// State is the lifecycle position of a Program.
type State int

const (
	// StateNew is a program that has not been compiled yet.
	StateNew State = iota

	// StateCompiled is a linked program ready for Use.
	StateCompiled

	// StateFailed is a program whose compile or link failed. It holds no GPU objects.
	StateFailed

	// StateReleased is a program whose GPU objects have been freed.
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateCompiled:
		return "compiled"
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// program is the implementation of the Program interface.
type program struct {
	backend renderer.Backend
	source  *Source
	logger  *zap.Logger

	vertex   renderer.Handle
	fragment renderer.Handle
	handle   renderer.Handle
	state    State
}

// Program is a vertex and fragment shader pair linked into one GPU program.
//
// A Program is compiled once. Use and Detach bind and unbind it for draws, and Release frees the
// program and both stage objects.
type Program interface {
	// Source retrieves the parsed source this program compiles.
	//
	// Returns:
	//   - *Source: the shader source
	Source() *Source

	// Handle retrieves the linked program object.
	//
	// Returns:
	//   - renderer.Handle: the program handle, 0 before a successful Compile or after Release
	Handle() renderer.Handle

	// State retrieves the lifecycle state of the program.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Compile compiles the vertex section, then the fragment section, then links them.
	// On failure every object created so far is deleted and the program moves to StateFailed.
	//
	// Returns:
	//   - error: *CompileError for a failed stage or link, ErrAlreadyCompiled if Compile was
	//     already called, ErrReleased after Release
	Compile() error

	// Use makes this program current for subsequent draws. It does nothing unless the program is compiled.
	Use()

	// Detach makes no program current. It does nothing unless the program is compiled.
	Detach()

	// Release deletes the program and both stage objects. Calling it more than once is a no-op.
	Release()
}

var _ Program = &program{}

// NewProgram creates an uncompiled Program for a source on a backend.
//
// Parameters:
//   - backend: the backend that compiles and owns the GPU objects
//   - source: the parsed shader source
//   - options: functional options to configure the program
//
// Returns:
//   - Program: the new program in StateNew
func NewProgram(backend renderer.Backend, source *Source, options ...ProgramBuilderOption) Program {
	p := &program{
		backend: backend,
		source:  source,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *program) Source() *Source {
	return p.source
}

func (p *program) Handle() renderer.Handle {
	return p.handle
}

func (p *program) State() State {
	return p.state
}

func (p *program) Compile() error {
	switch p.state {
	case StateNew:
	case StateReleased:
		return ErrReleased
	default:
		return fmt.Errorf("%w (state %s)", ErrAlreadyCompiled, p.state)
	}

	vertex, err := p.backend.CompileShader(renderer.ShaderStageVertex, p.source.Vertex)
	if err != nil {
		return p.fail(renderer.ShaderStageVertex.String(), err)
	}
	p.vertex = vertex

	fragment, err := p.backend.CompileShader(renderer.ShaderStageFragment, p.source.Fragment)
	if err != nil {
		return p.fail(renderer.ShaderStageFragment.String(), err)
	}
	p.fragment = fragment

	handle, err := p.backend.LinkProgram(p.vertex, p.fragment)
	if err != nil {
		return p.fail("program link", err)
	}
	p.handle = handle
	p.state = StateCompiled

	p.logger.Debug("shader program linked", zap.String("file", p.source.Name), zap.Uint32("program", uint32(handle)))
	return nil
}

// fail deletes whatever Compile created, moves the program to StateFailed and builds the CompileError.
func (p *program) fail(unit string, err error) error {
	p.deleteObjects()
	p.state = StateFailed

	compileErr := &CompileError{File: p.source.Name, Unit: unit, Err: err}
	var driverErr *renderer.DriverError
	if errors.As(err, &driverErr) {
		compileErr.Log = driverErr.Log
	}
	p.logger.Error("failed to compile shader",
		zap.String("file", p.source.Name),
		zap.String("unit", unit),
		zap.String("log", compileErr.Log),
		zap.Error(err),
	)
	return compileErr
}

func (p *program) Use() {
	if p.state != StateCompiled {
		return
	}
	p.backend.UseProgram(p.handle)
}

func (p *program) Detach() {
	if p.state != StateCompiled {
		return
	}
	p.backend.UseProgram(0)
}

func (p *program) Release() {
	if p.state == StateReleased {
		return
	}
	p.deleteObjects()
	p.state = StateReleased
}

func (p *program) deleteObjects() {
	if p.handle != 0 {
		p.backend.DeleteProgram(p.handle)
		p.handle = 0
	}
	if p.vertex != 0 {
		p.backend.DeleteShader(p.vertex)
		p.vertex = 0
	}
	if p.fragment != 0 {
		p.backend.DeleteShader(p.fragment)
		p.fragment = 0
	}
}
