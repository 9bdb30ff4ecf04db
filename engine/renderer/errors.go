package renderer

import (
	"errors"
	"fmt"
)

// ErrNoBufferBound is returned when data is uploaded to a target with no buffer bound.
var ErrNoBufferBound = errors.New("no buffer bound to target")

// ErrNoFrame is returned when a draw is issued outside BeginFrame/EndFrame.
var ErrNoFrame = errors.New("no frame in progress")

// AllocationError reports a GPU object the driver failed to create.
type AllocationError struct {
	// Resource names the object kind, e.g. "vertex array" or "element buffer".
	Resource string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("failed to allocate %s", e.Resource)
}

// DriverError carries a diagnostic reported by the GPU driver or shader compiler.
type DriverError struct {
	// Op is the failed operation, e.g. "compile Vertex shader" or "link program".
	Op string
	// Log is the driver's diagnostic text.
	Log string
	// Err is the underlying error, if the backend reported one.
	Err error
}

func (e *DriverError) Error() string {
	if e.Log == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Log)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}
