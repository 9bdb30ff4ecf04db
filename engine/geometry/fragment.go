package geometry

import (
	"fmt"
)

// Fragment is an ordered group of indices into the flattened vertex list.
// A triangle is described by a Fragment of 3 nodes.
type Fragment struct {
	nodes []uint32
}

// NewFragment creates a Fragment from the given vertex indices.
func NewFragment(nodes ...uint32) *Fragment {
	return &Fragment{nodes: nodes}
}

// Nodes returns the indices of this Fragment.
func (f *Fragment) Nodes() []uint32 {
	return f.nodes
}

// Len returns the number of indices in this Fragment.
func (f *Fragment) Len() int {
	return len(f.nodes)
}

// Node returns the index-th node of the Fragment.
//
// Parameters:
//   - index: the position of the node within the Fragment
//
// Returns:
//   - uint32: the vertex index stored at that position
//   - error: ErrNodeOutOfRange if index is negative or not below Len()
func (f *Fragment) Node(index int) (uint32, error) {
	if index < 0 || index >= len(f.nodes) {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrNodeOutOfRange, index, len(f.nodes))
	}
	return f.nodes[index], nil
}

// FragmentCollection is an ordered collection of Fragments.
type FragmentCollection struct {
	fragments []*Fragment
}

// NewFragmentCollection creates a collection holding the given fragments in order.
func NewFragmentCollection(fragments ...*Fragment) *FragmentCollection {
	return &FragmentCollection{fragments: fragments}
}

// Add appends fragments to the collection.
func (c *FragmentCollection) Add(fragments ...*Fragment) {
	c.fragments = append(c.fragments, fragments...)
}

// Fragments returns the fragments of the collection in order.
func (c *FragmentCollection) Fragments() []*Fragment {
	if c == nil {
		return nil
	}
	return c.fragments
}

// Amount counts the nodes of every Fragment in the collection.
// It sizes the GPU index buffer.
//
// Returns:
//   - int: the total node count, 0 for an empty or nil collection
func (c *FragmentCollection) Amount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, f := range c.fragments {
		n += f.Len()
	}
	return n
}
