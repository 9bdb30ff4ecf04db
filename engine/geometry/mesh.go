package geometry

import "fmt"

// Mesh is the declarative geometry of a scene: an ordered vertex list and the fragments
// indexing into it.
type Mesh struct {
	vertices  []*Vertex
	fragments *FragmentCollection
}

// NewMesh creates a Mesh from vertices and a fragment collection.
// A nil collection is treated as empty.
//
// Parameters:
//   - vertices: the vertices in declaration order
//   - fragments: the triangle index groups
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(vertices []*Vertex, fragments *FragmentCollection) *Mesh {
	if fragments == nil {
		fragments = NewFragmentCollection()
	}
	return &Mesh{vertices: vertices, fragments: fragments}
}

// Vertices returns the vertex list.
func (m *Mesh) Vertices() []*Vertex {
	return m.vertices
}

// Fragments returns the fragment collection.
func (m *Mesh) Fragments() *FragmentCollection {
	return m.fragments
}

// VertexCount returns the number of vertex records, which is the number of stride-7 records
// produced by Interleave.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, v := range m.vertices {
		if v != nil {
			n += v.Count()
		}
	}
	return n
}

// IndexCount returns the number of indices produced by FlattenIndices.
func (m *Mesh) IndexCount() int {
	return m.fragments.Amount()
}

// Validate checks that every fragment index addresses an existing vertex record.
//
// Returns:
//   - error: ErrNilVertex, ErrEmptyMesh, a *BoundsError for the first offending index, or nil
func (m *Mesh) Validate() error {
	for i, v := range m.vertices {
		if v == nil {
			return fmt.Errorf("%w at position %d", ErrNilVertex, i)
		}
	}
	count := m.VertexCount()
	if count == 0 && m.IndexCount() > 0 {
		return ErrEmptyMesh
	}
	for fi, f := range m.fragments.Fragments() {
		for ni, idx := range f.Nodes() {
			if int(idx) >= count {
				return &BoundsError{Fragment: fi, Position: ni, Index: idx, VertexCount: count}
			}
		}
	}
	return nil
}
