// Package rendertest provides an in-memory renderer.Backend that records every call,
// for testing code that drives the GPU without a graphics context.
package rendertest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded backend invocation.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// Attrib is the recorded configuration of one vertex attribute.
type Attrib struct {
	Size    int32
	Stride  int32
	Offset  int
	Buffer  renderer.Handle
	Enabled bool
}

// Draw is one recorded DrawElements call together with the state it drew with.
type Draw struct {
	Program     renderer.Handle
	VertexArray renderer.Handle
	Count       int32
	// Enabled lists the attribute locations enabled at draw time.
	Enabled []uint32
}

type vertexArray struct {
	attribs map[uint32]*Attrib
	element renderer.Handle
}

// Recorder is a renderer.Backend that keeps all state in memory. It mirrors the OpenGL binding
// model: the element buffer binding belongs to the bound vertex array.
//
// Failures can be scripted through the exported Fail* fields before the call under test.
type Recorder struct {
	mu sync.Mutex

	// FailCompile makes CompileShader fail for the stage, returning the value as the driver log.
	FailCompile map[renderer.ShaderStage]string
	// FailLink makes LinkProgram fail with this driver log when non-empty.
	FailLink string
	// FailVertexArray makes CreateVertexArray return 0.
	FailVertexArray bool
	// FailBufferAt makes the n-th CreateBuffer call (1-based, counted over the Recorder's life) return 0.
	FailBufferAt int
	// FailDraw makes DrawElements return this error when non-nil.
	FailDraw error
	// FailBeginFrame makes BeginFrame return this error when non-nil. No frame is started.
	FailBeginFrame error

	calls   []Call
	next    renderer.Handle
	buffers int

	shaders  map[renderer.Handle]renderer.ShaderStage
	sources  map[renderer.Handle]string
	programs map[renderer.Handle][2]renderer.Handle
	arrays   map[renderer.Handle]*vertexArray
	data     map[renderer.Handle][]byte

	currentProgram renderer.Handle
	currentArray   renderer.Handle
	arrayBinding   renderer.Handle
	looseElement   renderer.Handle

	inFrame  bool
	frames   int
	clear    mgl32.Vec4
	draws    []Draw
	released bool
}

var _ renderer.Backend = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		FailCompile: make(map[renderer.ShaderStage]string),
		shaders:     make(map[renderer.Handle]renderer.ShaderStage),
		sources:     make(map[renderer.Handle]string),
		programs:    make(map[renderer.Handle][2]renderer.Handle),
		arrays:      make(map[renderer.Handle]*vertexArray),
		data:        make(map[renderer.Handle][]byte),
	}
}

func (r *Recorder) record(op string, args ...any) {
	r.calls = append(r.calls, Call{Op: op, Args: args})
}

func (r *Recorder) allocate() renderer.Handle {
	r.next++
	return r.next
}

func (r *Recorder) Type() renderer.BackendType {
	return renderer.BackendTypeGL
}

func (r *Recorder) CompileShader(stage renderer.ShaderStage, source string) (renderer.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("CompileShader", stage)
	if log, ok := r.FailCompile[stage]; ok {
		return 0, &renderer.DriverError{Op: "compile " + stage.String() + " shader", Log: log}
	}
	h := r.allocate()
	r.shaders[h] = stage
	r.sources[h] = source
	return h, nil
}

func (r *Recorder) LinkProgram(vertex, fragment renderer.Handle) (renderer.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("LinkProgram", vertex, fragment)
	if r.FailLink != "" {
		return 0, &renderer.DriverError{Op: "link program", Log: r.FailLink}
	}
	vs, vok := r.shaders[vertex]
	fs, fok := r.shaders[fragment]
	if !vok || !fok || vs != renderer.ShaderStageVertex || fs != renderer.ShaderStageFragment {
		return 0, &renderer.DriverError{Op: "link program", Log: "mismatched shader stages"}
	}
	h := r.allocate()
	r.programs[h] = [2]renderer.Handle{vertex, fragment}
	return h, nil
}

func (r *Recorder) UseProgram(program renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("UseProgram", program)
	r.currentProgram = program
}

func (r *Recorder) DeleteShader(shader renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("DeleteShader", shader)
	delete(r.shaders, shader)
	delete(r.sources, shader)
}

func (r *Recorder) DeleteProgram(program renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("DeleteProgram", program)
	delete(r.programs, program)
	if r.currentProgram == program {
		r.currentProgram = 0
	}
}

func (r *Recorder) CreateVertexArray() renderer.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("CreateVertexArray")
	if r.FailVertexArray {
		return 0
	}
	h := r.allocate()
	r.arrays[h] = &vertexArray{attribs: make(map[uint32]*Attrib)}
	return h
}

func (r *Recorder) BindVertexArray(vao renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("BindVertexArray", vao)
	r.currentArray = vao
}

func (r *Recorder) DeleteVertexArray(vao renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("DeleteVertexArray", vao)
	delete(r.arrays, vao)
	if r.currentArray == vao {
		r.currentArray = 0
	}
}

func (r *Recorder) CreateBuffer() renderer.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("CreateBuffer")
	r.buffers++
	if r.FailBufferAt == r.buffers {
		return 0
	}
	h := r.allocate()
	r.data[h] = nil
	return h
}

func (r *Recorder) BindBuffer(target renderer.BufferTarget, buffer renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("BindBuffer", target, buffer)
	if target == renderer.BufferTargetArray {
		r.arrayBinding = buffer
		return
	}
	if vao, ok := r.arrays[r.currentArray]; ok {
		vao.element = buffer
		return
	}
	r.looseElement = buffer
}

func (r *Recorder) BufferData(target renderer.BufferTarget, data []byte, usage renderer.BufferUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("BufferData", target, len(data), usage)
	h := r.binding(target)
	if _, ok := r.data[h]; !ok {
		return renderer.ErrNoBufferBound
	}
	r.data[h] = append([]byte(nil), data...)
	return nil
}

func (r *Recorder) DeleteBuffer(buffer renderer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("DeleteBuffer", buffer)
	delete(r.data, buffer)
	if r.arrayBinding == buffer {
		r.arrayBinding = 0
	}
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("VertexAttribPointer", index, size, stride, offset)
	if vao, ok := r.arrays[r.currentArray]; ok {
		a := r.attrib(vao, index)
		a.Size, a.Stride, a.Offset, a.Buffer = size, stride, offset, r.arrayBinding
	}
}

func (r *Recorder) EnableVertexAttrib(index uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("EnableVertexAttrib", index)
	if vao, ok := r.arrays[r.currentArray]; ok {
		r.attrib(vao, index).Enabled = true
	}
}

func (r *Recorder) DisableVertexAttrib(index uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("DisableVertexAttrib", index)
	if vao, ok := r.arrays[r.currentArray]; ok {
		r.attrib(vao, index).Enabled = false
	}
}

func (r *Recorder) DrawElements(count int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("DrawElements", count)
	if r.FailDraw != nil {
		return r.FailDraw
	}
	d := Draw{Program: r.currentProgram, VertexArray: r.currentArray, Count: count}
	if vao, ok := r.arrays[r.currentArray]; ok {
		for loc := uint32(0); loc < 16; loc++ {
			if a, ok := vao.attribs[loc]; ok && a.Enabled {
				d.Enabled = append(d.Enabled, loc)
			}
		}
	}
	r.draws = append(r.draws, d)
	return nil
}

func (r *Recorder) BeginFrame(clear mgl32.Vec4) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("BeginFrame", clear)
	if r.FailBeginFrame != nil {
		return r.FailBeginFrame
	}
	if r.inFrame {
		return fmt.Errorf("frame already in progress")
	}
	r.inFrame = true
	r.clear = clear
	return nil
}

func (r *Recorder) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("EndFrame")
	if !r.inFrame {
		return renderer.ErrNoFrame
	}
	r.inFrame = false
	r.frames++
	return nil
}

func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("Resize", width, height)
}

func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("Release")
	r.released = true
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the operation names of every recorded call in order.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets the recorded calls and draws but keeps every live object.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
	r.draws = nil
}

// Bytes returns a copy of the contents of a buffer, and false if the buffer does not exist.
func (r *Recorder) Bytes(buffer renderer.Handle) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.data[buffer]
	return append([]byte(nil), b...), ok
}

// Floats returns the contents of a buffer read as float32 values.
func (r *Recorder) Floats(buffer renderer.Handle) []float32 {
	b, _ := r.Bytes(buffer)
	return common.BytesToSlice[float32](b)
}

// Indices returns the contents of a buffer read as uint32 values.
func (r *Recorder) Indices(buffer renderer.Handle) []uint32 {
	b, _ := r.Bytes(buffer)
	return common.BytesToSlice[uint32](b)
}

// ShaderSource returns the source a live shader was compiled from.
func (r *Recorder) ShaderSource(shader renderer.Handle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sources[shader]
	return s, ok
}

// Attrib returns the recorded configuration of an attribute of a vertex array.
func (r *Recorder) Attrib(vao renderer.Handle, index uint32) (Attrib, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.arrays[vao]
	if !ok {
		return Attrib{}, false
	}
	a, ok := v.attribs[index]
	if !ok {
		return Attrib{}, false
	}
	return *a, true
}

// ElementBinding returns the element buffer recorded in a vertex array.
func (r *Recorder) ElementBinding(vao renderer.Handle) renderer.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.arrays[vao]; ok {
		return v.element
	}
	return 0
}

// CurrentProgram returns the program in use.
func (r *Recorder) CurrentProgram() renderer.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentProgram
}

// CurrentVertexArray returns the bound vertex array.
func (r *Recorder) CurrentVertexArray() renderer.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentArray
}

// Draws returns every recorded draw in order.
func (r *Recorder) Draws() []Draw {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Draw(nil), r.draws...)
}

// Frames returns the number of completed frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// ClearColor returns the clear color of the most recent frame.
func (r *Recorder) ClearColor() mgl32.Vec4 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clear
}

// Released reports whether Release was called.
func (r *Recorder) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Live returns the number of shaders, programs, vertex arrays and buffers that have not been deleted.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shaders) + len(r.programs) + len(r.arrays) + len(r.data)
}

// IsLive reports whether a handle names an object that has not been deleted.
func (r *Recorder) IsLive(h renderer.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shaders[h]; ok {
		return true
	}
	if _, ok := r.programs[h]; ok {
		return true
	}
	if _, ok := r.arrays[h]; ok {
		return true
	}
	_, ok := r.data[h]
	return ok
}

func (r *Recorder) binding(target renderer.BufferTarget) renderer.Handle {
	if target == renderer.BufferTargetArray {
		return r.arrayBinding
	}
	if vao, ok := r.arrays[r.currentArray]; ok {
		return vao.element
	}
	return r.looseElement
}

func (r *Recorder) attrib(vao *vertexArray, index uint32) *Attrib {
	a, ok := vao.attribs[index]
	if !ok {
		a = &Attrib{}
		vao.attribs[index] = a
	}
	return a
}
