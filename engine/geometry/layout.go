package geometry

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Interleave flattens vertices into one contiguous float sequence. For each record, in
// declaration order, it emits the 3 position floats followed by the 4 color floats.
// The downstream vertex attribute configuration (stride 28, offsets 0 and 12) depends on
// this exact layout.
//
// Parameters:
//   - vertices: the vertices to flatten
//
// Returns:
//   - []float32: the interleaved data, Stride floats per record
func Interleave(vertices []*Vertex) []float32 {
	data := make([]float32, recordCount(vertices)*Stride)
	record := 0
	for _, v := range vertices {
		record = writeRecords(data, record, v, 0, v.Count())
	}
	return data
}

// FlattenIndices concatenates the nodes of every Fragment, in collection order, into one
// index sequence of length c.Amount().
//
// Parameters:
//   - c: the fragment collection
//
// Returns:
//   - []uint32: the index data
func FlattenIndices(c *FragmentCollection) []uint32 {
	data := make([]uint32, 0, c.Amount())
	for _, f := range c.Fragments() {
		data = append(data, f.Nodes()...)
	}
	return data
}

// Regroup rebuilds single-record vertices from interleaved data. It is the inverse of
// Interleave for vertices holding one record each.
//
// Parameters:
//   - data: interleaved data, Stride floats per record
//
// Returns:
//   - []*Vertex: one Vertex per record
//   - error: ErrMalformedData if len(data) is not a multiple of Stride
func Regroup(data []float32) ([]*Vertex, error) {
	if len(data)%Stride != 0 {
		return nil, fmt.Errorf("%w: %d floats", ErrMalformedData, len(data))
	}
	vertices := make([]*Vertex, 0, len(data)/Stride)
	for off := 0; off < len(data); off += Stride {
		p := make([]float32, PositionComponents)
		c := make([]float32, ColorComponents)
		copy(p, data[off:off+PositionComponents])
		copy(c, data[off+PositionComponents:off+Stride])
		vertices = append(vertices, &Vertex{positions: p, colors: c})
	}
	return vertices, nil
}

// Flattener interleaves vertex data on a pool of worker goroutines. Each task writes a
// disjoint range of records, so the output is identical to Interleave.
type Flattener struct {
	workers int
	pool    worker.DynamicWorkerPool
}

// NewFlattener creates a Flattener backed by a worker pool of the given size.
// Values below 1 are treated as 1.
//
// Parameters:
//   - workers: the number of worker goroutines
//
// Returns:
//   - *Flattener: the flattener
func NewFlattener(workers int) *Flattener {
	if workers < 1 {
		workers = 1
	}
	return &Flattener{
		workers: workers,
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

// Workers returns the size of the worker pool.
func (f *Flattener) Workers() int {
	return f.workers
}

// Interleave flattens vertices like the package-level Interleave, splitting the records into
// one contiguous chunk per worker.
//
// Parameters:
//   - vertices: the vertices to flatten
//
// Returns:
//   - []float32: the interleaved data
func (f *Flattener) Interleave(vertices []*Vertex) []float32 {
	total := recordCount(vertices)
	if f.workers == 1 || total < 2 {
		return Interleave(vertices)
	}

	data := make([]float32, total*Stride)
	chunk := (total + f.workers - 1) / f.workers

	// Record offset of each vertex, so a chunk can start in the middle of a vertex.
	starts := make([]int, len(vertices))
	n := 0
	for i, v := range vertices {
		starts[i] = n
		n += v.Count()
	}

	var wg sync.WaitGroup
	for id, first := 0, 0; first < total; id, first = id+1, first+chunk {
		last := min(first+chunk, total)
		wg.Add(1)
		lo, hi := first, last
		f.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i, v := range vertices {
					vLo, vHi := starts[i], starts[i]+v.Count()
					if vHi <= lo || vLo >= hi {
						continue
					}
					from := max(lo, vLo) - vLo
					to := min(hi, vHi) - vLo
					writeRecords(data, vLo+from, v, from, to)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return data
}

// writeRecords writes records [from, to) of v into data starting at record index at.
// It returns the record index following the last one written.
func writeRecords(data []float32, at int, v *Vertex, from, to int) int {
	for r := from; r < to; r++ {
		off := at * Stride
		copy(data[off:off+PositionComponents], v.positions[r*PositionComponents:(r+1)*PositionComponents])
		copy(data[off+PositionComponents:off+Stride], v.colors[r*ColorComponents:(r+1)*ColorComponents])
		at++
	}
	return at
}

func recordCount(vertices []*Vertex) int {
	n := 0
	for _, v := range vertices {
		n += v.Count()
	}
	return n
}
