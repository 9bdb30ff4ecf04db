package geometry

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad(t *testing.T) *Mesh {
	t.Helper()
	vertices := []*Vertex{
		MustVertex([]float32{0.5, -0.5, 0}, []float32{1, 0, 0, 1}),
		MustVertex([]float32{-0.5, 0.5, 0}, []float32{0, 1, 0, 1}),
		MustVertex([]float32{0.5, 0.5, 0}, []float32{0, 0, 1, 1}),
		MustVertex([]float32{-0.5, -0.5, 0}, []float32{1, 1, 0, 1}),
	}
	return NewMesh(vertices, NewFragmentCollection(
		NewFragment(2, 1, 0),
		NewFragment(0, 1, 3),
	))
}

func TestNewVertexRejectsPartialRecords(t *testing.T) {
	_, err := NewVertex([]float32{1, 2}, []float32{1, 1, 1, 1})
	var appendErr *AppendError
	require.ErrorAs(t, err, &appendErr)
	assert.Equal(t, 2, appendErr.Positions)

	_, err = NewVertex([]float32{1, 2, 3}, []float32{1, 1, 1, 1, 1, 1, 1, 1})
	assert.ErrorAs(t, err, &appendErr)
}

func TestVertexAppend(t *testing.T) {
	v := MustVertex([]float32{0, 0, 0}, []float32{1, 1, 1, 1})

	p, c, err := v.Append([]float32{1, 2, 3}, []float32{0.5, 0.5, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 2, 3}, p)
	assert.Equal(t, []float32{1, 1, 1, 1, 0.5, 0.5, 0.5, 1}, c)
	assert.Equal(t, 2, v.Count())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, v.Position(1))
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0.5, 1}, v.Color(1))

	// Two records in one call.
	p, _, err = v.Append([]float32{4, 5, 6, 7, 8, 9}, []float32{0, 0, 0, 1, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Len(t, p, 12)
	assert.Equal(t, 4, v.Count())
}

func TestVertexAppendMismatchLeavesDataUnchanged(t *testing.T) {
	v := MustVertex([]float32{0, 0, 0}, []float32{1, 1, 1, 1})

	p, c, err := v.Append([]float32{1}, []float32{1, 1, 1, 1})
	var appendErr *AppendError
	require.ErrorAs(t, err, &appendErr)
	assert.Equal(t, []float32{0, 0, 0}, p)
	assert.Equal(t, []float32{1, 1, 1, 1}, c)
	assert.Equal(t, 1, v.Count())

	p, _, err = v.Append(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, p)
}

func TestFragmentNode(t *testing.T) {
	f := NewFragment(2, 1, 0)

	n, err := f.Node(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)

	_, err = f.Node(3)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)
	_, err = f.Node(-1)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)
}

func TestFragmentCollectionAmount(t *testing.T) {
	tests := []struct {
		name      string
		fragments []*Fragment
		want      int
	}{
		{name: "empty", want: 0},
		{name: "one", fragments: []*Fragment{NewFragment(0, 1, 2)}, want: 3},
		{name: "many", fragments: []*Fragment{NewFragment(0, 1, 2), NewFragment(2, 3), NewFragment()}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFragmentCollection(tt.fragments...)
			assert.Equal(t, tt.want, c.Amount())
			assert.Len(t, FlattenIndices(c), tt.want)
		})
	}

	var nilCollection *FragmentCollection
	assert.Equal(t, 0, nilCollection.Amount())
}

func TestInterleaveLayout(t *testing.T) {
	m := quad(t)
	data := Interleave(m.Vertices())

	require.Len(t, data, 4*Stride)
	assert.Equal(t, []float32{0.5, -0.5, 0, 1, 0, 0, 1}, data[:Stride])
	assert.Equal(t, []float32{-0.5, -0.5, 0, 1, 1, 0, 1}, data[3*Stride:])
	assert.Equal(t, 28, StrideBytes)
	assert.Equal(t, 12, ColorOffset)
}

func TestFlattenIndicesOrder(t *testing.T) {
	m := quad(t)
	assert.Equal(t, []uint32{2, 1, 0, 0, 1, 3}, FlattenIndices(m.Fragments()))
	assert.Equal(t, 6, m.IndexCount())
}

func TestInterleaveRoundTrip(t *testing.T) {
	m := quad(t)

	got, err := Regroup(Interleave(m.Vertices()))
	require.NoError(t, err)
	require.Len(t, got, len(m.Vertices()))
	for i, v := range m.Vertices() {
		assert.Equal(t, v.Positions(), got[i].Positions(), "vertex %d", i)
		assert.Equal(t, v.Colors(), got[i].Colors(), "vertex %d", i)
	}

	_, err = Regroup(make([]float32, Stride+1))
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestFlattenerMatchesInterleave(t *testing.T) {
	var vertices []*Vertex
	for i := range 97 {
		f := float32(i)
		v := MustVertex([]float32{f, f + 1, f + 2}, []float32{f / 100, 0, 1, 1})
		if i%10 == 0 {
			_, _, err := v.Append([]float32{-f, -f, -f}, []float32{0, 0, 0, 1})
			require.NoError(t, err)
		}
		vertices = append(vertices, v)
	}

	want := Interleave(vertices)
	for _, workers := range []int{0, 1, 3, 8} {
		f := NewFlattener(workers)
		assert.Equal(t, want, f.Interleave(vertices), "workers=%d", workers)
	}
}

func TestMeshValidate(t *testing.T) {
	require.NoError(t, quad(t).Validate())

	m := NewMesh(quad(t).Vertices(), NewFragmentCollection(NewFragment(0, 1, 2), NewFragment(3, 4, 0)))
	err := m.Validate()
	var boundsErr *BoundsError
	require.ErrorAs(t, err, &boundsErr)
	assert.Equal(t, 1, boundsErr.Fragment)
	assert.Equal(t, 1, boundsErr.Position)
	assert.Equal(t, uint32(4), boundsErr.Index)
	assert.Equal(t, 4, boundsErr.VertexCount)

	empty := NewMesh(nil, NewFragmentCollection(NewFragment(0)))
	assert.True(t, errors.Is(empty.Validate(), ErrEmptyMesh))

	assert.NoError(t, NewMesh(nil, nil).Validate())
}

func TestMeshValidateRejectsNilVertex(t *testing.T) {
	vertices := append(quad(t).Vertices(), nil)
	m := NewMesh(vertices, NewFragmentCollection(NewFragment(0, 1, 2)))

	assert.Equal(t, 4, m.VertexCount())
	err := m.Validate()
	require.ErrorIs(t, err, ErrNilVertex)
	assert.Contains(t, err.Error(), "position 4")

	assert.ErrorIs(t, NewMesh([]*Vertex{nil}, nil).Validate(), ErrNilVertex)
}
