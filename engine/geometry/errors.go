package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeOutOfRange is returned when a Fragment node is addressed past its length.
	ErrNodeOutOfRange = errors.New("fragment node out of range")

	// ErrEmptyMesh is returned when a mesh has indices but no vertices to index.
	ErrEmptyMesh = errors.New("mesh has indices but no vertices")

	// ErrMalformedData is returned when interleaved data is not a whole number of records.
	ErrMalformedData = errors.New("interleaved data is not a multiple of the vertex stride")

	// ErrNilVertex is returned when a mesh's vertex list holds a nil entry.
	ErrNilVertex = errors.New("mesh has a nil vertex")
)

// AppendError reports vertex data that does not form whole position/color records.
type AppendError struct {
	Positions int
	Colors    int
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("vertex data mismatch: %d position floats (need a multiple of %d) and %d color floats (need a multiple of %d, one color per position)",
		e.Positions, PositionComponents, e.Colors, ColorComponents)
}

// BoundsError reports a Fragment index that addresses past the vertex count.
type BoundsError struct {
	// Fragment is the index of the offending Fragment within its collection.
	Fragment int
	// Position is the node position within the Fragment.
	Position int
	// Index is the out-of-range vertex index.
	Index uint32
	// VertexCount is the number of vertex records in the mesh.
	VertexCount int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("fragment %d node %d: index %d out of bounds for %d vertices",
		e.Fragment, e.Position, e.Index, e.VertexCount)
}
