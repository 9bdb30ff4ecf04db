package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// PositionComponents is the number of floats in one vertex position (x, y, z).
	PositionComponents = 3

	// ColorComponents is the number of floats in one vertex color (r, g, b, a).
	ColorComponents = 4

	// Stride is the number of floats in one interleaved vertex record.
	Stride = PositionComponents + ColorComponents

	// FloatSize is the size of a float32 in bytes.
	FloatSize = 4

	// StrideBytes is the byte distance between two consecutive interleaved vertex records.
	StrideBytes = Stride * FloatSize

	// PositionOffset is the byte offset of the position within an interleaved record.
	PositionOffset = 0

	// ColorOffset is the byte offset of the color within an interleaved record.
	ColorOffset = PositionComponents * FloatSize
)

// Vertex defines positions on the screen together with the color of each position.
// A Vertex holds one or more records: every 3 position floats pair with the 4 color floats
// at the same record index.
type Vertex struct {
	positions []float32
	colors    []float32
}

// NewVertex creates a Vertex from flat position and color arrays.
//
// Parameters:
//   - positions: position floats, a multiple of 3
//   - colors: RGBA color floats, a multiple of 4, one color per position
//
// Returns:
//   - *Vertex: the vertex
//   - error: *AppendError if the arrays do not describe whole, paired records
func NewVertex(positions, colors []float32) (*Vertex, error) {
	if !pairedRecords(positions, colors) {
		return nil, &AppendError{Positions: len(positions), Colors: len(colors)}
	}
	return &Vertex{positions: positions, colors: colors}, nil
}

// MustVertex is like NewVertex but panics on malformed input. It is meant for geometry
// declared as literals in code.
//
// Parameters:
//   - positions: position floats, a multiple of 3
//   - colors: RGBA color floats, a multiple of 4
//
// Returns:
//   - *Vertex: the vertex
func MustVertex(positions, colors []float32) *Vertex {
	v, err := NewVertex(positions, colors)
	if err != nil {
		panic(err)
	}
	return v
}

// Positions returns the flat position array.
func (v *Vertex) Positions() []float32 {
	return v.positions
}

// Colors returns the flat color array.
func (v *Vertex) Colors() []float32 {
	return v.colors
}

// Count returns the number of records held by this Vertex.
func (v *Vertex) Count() int {
	return len(v.positions) / PositionComponents
}

// Position returns the position of the i-th record.
func (v *Vertex) Position(i int) mgl32.Vec3 {
	p := v.positions[i*PositionComponents:]
	return mgl32.Vec3{p[0], p[1], p[2]}
}

// Color returns the color of the i-th record.
func (v *Vertex) Color(i int) mgl32.Vec4 {
	c := v.colors[i*ColorComponents:]
	return mgl32.Vec4{c[0], c[1], c[2], c[3]}
}

// Append concatenates new position and color data onto this Vertex.
// The data is appended only when it forms whole records: len(positions) % 3 == 0,
// len(colors) % 4 == 0 and one color per position. Otherwise the current arrays are returned
// unchanged together with an *AppendError.
//
// Parameters:
//   - positions: the position floats to append
//   - colors: the color floats to append
//
// Returns:
//   - []float32: the positions of this Vertex after the call
//   - []float32: the colors of this Vertex after the call
//   - error: *AppendError if the data was rejected
func (v *Vertex) Append(positions, colors []float32) ([]float32, []float32, error) {
	if !pairedRecords(positions, colors) {
		return v.positions, v.colors, &AppendError{Positions: len(positions), Colors: len(colors)}
	}
	if len(positions) == 0 {
		return v.positions, v.colors, nil
	}

	p := make([]float32, 0, len(v.positions)+len(positions))
	p = append(append(p, v.positions...), positions...)
	c := make([]float32, 0, len(v.colors)+len(colors))
	c = append(append(c, v.colors...), colors...)

	v.positions, v.colors = p, c
	return v.positions, v.colors, nil
}

func (v *Vertex) String() string {
	return fmt.Sprintf("Vertex{positions: %v, colors: %v}", v.positions, v.colors)
}

func pairedRecords(positions, colors []float32) bool {
	return len(positions)%PositionComponents == 0 &&
		len(colors)%ColorComponents == 0 &&
		len(positions)/PositionComponents == len(colors)/ColorComponents
}
