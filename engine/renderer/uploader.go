package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/geometry"
)

const (
	// PositionAttrib is the attribute location of the vertex position.
	PositionAttrib uint32 = 0

	// ColorAttrib is the attribute location of the vertex color.
	ColorAttrib uint32 = 1
)

// BufferSet is the GPU-resident form of a Mesh: a vertex array, its vertex buffer and element buffer,
// and the number of indices to draw.
type BufferSet struct {
	VertexArray   Handle
	VertexBuffer  Handle
	ElementBuffer Handle

	indexCount int
	released   bool
}

// IndexCount returns the number of indices uploaded to the element buffer.
func (s *BufferSet) IndexCount() int {
	return s.indexCount
}

// Release deletes the element buffer, the vertex buffer and the vertex array, in that order.
// Calling Release more than once is a no-op.
//
// Parameters:
//   - backend: the backend that created the objects
func (s *BufferSet) Release(backend Backend) {
	if s == nil || s.released {
		return
	}
	s.released = true
	backend.DeleteBuffer(s.ElementBuffer)
	backend.DeleteBuffer(s.VertexBuffer)
	backend.DeleteVertexArray(s.VertexArray)
}

// UploadOption is a functional option applied to a single Upload call.
type UploadOption func(*uploadConfig)

type uploadConfig struct {
	flattener *geometry.Flattener
}

// WithFlattener interleaves the vertex data on the given Flattener's worker pool instead of the calling goroutine.
// The workers finish before the first GPU call.
//
// Parameters:
//   - f: the flattener to use, nil keeps the sequential path
//
// Returns:
//   - UploadOption: a function that applies the flattener option
func WithFlattener(f *geometry.Flattener) UploadOption {
	return func(c *uploadConfig) {
		c.flattener = f
	}
}

// Upload validates a mesh, flattens it and uploads it as a vertex array with interleaved
// position/color attributes and a uint32 element buffer. The vertex array is unbound on return.
//
// Parameters:
//   - backend: the backend to create the GPU objects with
//   - mesh: the geometry to upload
//   - options: functional options for this upload
//
// Returns:
//   - *BufferSet: the created objects and the index count
//   - error: *geometry.BoundsError or geometry.ErrEmptyMesh before any GPU call,
//     *AllocationError if an object could not be created, or the backend's upload error
func Upload(backend Backend, mesh *geometry.Mesh, options ...UploadOption) (*BufferSet, error) {
	cfg := &uploadConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mesh: %w", err)
	}

	var vertices []float32
	if cfg.flattener != nil {
		vertices = cfg.flattener.Interleave(mesh.Vertices())
	} else {
		vertices = geometry.Interleave(mesh.Vertices())
	}
	indices := geometry.FlattenIndices(mesh.Fragments())

	set := &BufferSet{indexCount: len(indices)}
	fail := func(err error) (*BufferSet, error) {
		backend.BindVertexArray(0)
		set.Release(backend)
		return nil, err
	}

	set.VertexArray = backend.CreateVertexArray()
	if set.VertexArray == 0 {
		return fail(&AllocationError{Resource: "vertex array"})
	}
	backend.BindVertexArray(set.VertexArray)

	set.VertexBuffer = backend.CreateBuffer()
	if set.VertexBuffer == 0 {
		return fail(&AllocationError{Resource: "vertex buffer"})
	}
	backend.BindBuffer(BufferTargetArray, set.VertexBuffer)
	if err := backend.BufferData(BufferTargetArray, common.SliceToBytes(vertices), UsageStaticDraw); err != nil {
		return fail(fmt.Errorf("failed to upload vertex data: %w", err))
	}

	set.ElementBuffer = backend.CreateBuffer()
	if set.ElementBuffer == 0 {
		return fail(&AllocationError{Resource: "element buffer"})
	}
	backend.BindBuffer(BufferTargetElementArray, set.ElementBuffer)
	if err := backend.BufferData(BufferTargetElementArray, common.SliceToBytes(indices), UsageStaticDraw); err != nil {
		return fail(fmt.Errorf("failed to upload index data: %w", err))
	}

	backend.VertexAttribPointer(PositionAttrib, geometry.PositionComponents, geometry.StrideBytes, geometry.PositionOffset)
	backend.EnableVertexAttrib(PositionAttrib)
	backend.VertexAttribPointer(ColorAttrib, geometry.ColorComponents, geometry.StrideBytes, geometry.ColorOffset)
	backend.EnableVertexAttrib(ColorAttrib)

	backend.BindVertexArray(0)
	return set, nil
}

// Draw issues one indexed triangle draw of a buffer set with the program currently in use. It binds
// the vertex array, enables the position and color attributes, draws every index, then disables
// the attributes and unbinds the vertex array. A set with no indices draws nothing.
//
// Parameters:
//   - backend: the backend to draw with
//   - set: the uploaded geometry
//
// Returns:
//   - error: the backend's draw error, if any
func Draw(backend Backend, set *BufferSet) error {
	if set == nil || set.indexCount == 0 {
		return nil
	}

	backend.BindVertexArray(set.VertexArray)
	backend.EnableVertexAttrib(PositionAttrib)
	backend.EnableVertexAttrib(ColorAttrib)

	err := backend.DrawElements(int32(set.indexCount))

	backend.DisableVertexAttrib(PositionAttrib)
	backend.DisableVertexAttrib(ColorAttrib)
	backend.BindVertexArray(0)

	if err != nil {
		return fmt.Errorf("failed to draw %d indices: %w", set.indexCount, err)
	}
	return nil
}
