package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCompiled is returned by Compile on a program that has already been compiled or failed to.
	ErrAlreadyCompiled = errors.New("shader program already compiled")

	// ErrReleased is returned by Compile on a released program.
	ErrReleased = errors.New("shader program released")
)

// IOError reports a shader file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("error reading shader file %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed shader file: an unknown or empty "#type" tag, a repeated
// section or a missing one.
type ParseError struct {
	File string
	// Tag is the offending identifier, empty when the tag had none or a section is missing.
	Tag string
	// Line is the 1-based line of the offending tag, 0 when a section is missing.
	Line int
	// Missing names the absent section ("vertex" or "fragment").
	Missing string
	// Duplicate is set when Tag appears twice.
	Duplicate bool
}

func (e *ParseError) Error() string {
	switch {
	case e.Missing != "":
		return fmt.Sprintf("shader %q: missing #type %s section", e.File, e.Missing)
	case e.Duplicate:
		return fmt.Sprintf("shader %q line %d: duplicate #type %s section", e.File, e.Line, e.Tag)
	case e.Tag == "":
		return fmt.Sprintf("shader %q line %d: #type tag without identifier", e.File, e.Line)
	default:
		return fmt.Sprintf("shader %q line %d: unexpected token '%s'", e.File, e.Line, e.Tag)
	}
}

// CompileError reports a shader stage that failed to compile or a program that failed to link.
type CompileError struct {
	File string
	// Unit is "Vertex", "Fragment" or "program link".
	Unit string
	// Log is the driver's diagnostic text.
	Log string
	Err error
}

func (e *CompileError) Error() string {
	if e.Log == "" && e.Err != nil {
		return fmt.Sprintf("shader %q: %s failed: %v", e.File, e.Unit, e.Err)
	}
	return fmt.Sprintf("shader %q: %s failed:\n%s", e.File, e.Unit, e.Log)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
