package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BackendType identifies the GPU API implementation behind a Backend.
type BackendType int

const (
	// BackendTypeGL selects the OpenGL 4.1 core backend. The window must make a GL context current.
	BackendTypeGL BackendType = iota

	// BackendTypeWGPU selects the WebGPU backend. The window must be created without a client API.
	BackendTypeWGPU
)

// String returns the configuration name of the backend type.
func (t BackendType) String() string {
	switch t {
	case BackendTypeGL:
		return "gl"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return "unknown"
	}
}

// ParseBackendType maps a configuration name ("gl" or "wgpu") to a BackendType.
//
// Parameters:
//   - name: the backend name
//
// Returns:
//   - BackendType: the matching type
//   - bool: false if the name is not recognized
func ParseBackendType(name string) (BackendType, bool) {
	switch name {
	case "gl", "opengl":
		return BackendTypeGL, true
	case "wgpu", "webgpu":
		return BackendTypeWGPU, true
	default:
		return 0, false
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Handle names a GPU object created through a Backend. The zero Handle is never a valid object.
type Handle uint32

// ShaderStage identifies the pipeline stage a shader object is compiled for.
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "Vertex"
	case ShaderStageFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// BufferTarget is the binding point a buffer is bound to.
type BufferTarget int

const (
	// BufferTargetArray holds per-vertex attribute data.
	BufferTargetArray BufferTarget = iota

	// BufferTargetElementArray holds the index sequence. Its binding is recorded in the bound vertex array.
	BufferTargetElementArray
)

// BufferUsage is the expected update pattern of a buffer's contents.
type BufferUsage int

const (
	// UsageStaticDraw marks data that is written once and drawn many times.
	UsageStaticDraw BufferUsage = iota

	// UsageDynamicDraw marks data that is rewritten often.
	UsageDynamicDraw
)

// Backend is the GPU command surface used by shader programs, the buffer uploader and scenes.
// It follows the bind-then-operate model of OpenGL: buffer uploads and attribute configuration
// apply to whatever object is currently bound.
//
// Every method must be called from the thread that owns the graphics context.
type Backend interface {
	// Type returns the GPU API implemented by this backend.
	//
	// Returns:
	//   - BackendType: the backend type
	Type() BackendType

	// CompileShader creates a shader object for the given stage and compiles source into it.
	//
	// Parameters:
	//   - stage: the pipeline stage the source targets
	//   - source: the shader source text
	//
	// Returns:
	//   - Handle: the compiled shader object
	//   - error: *DriverError carrying the driver's diagnostic log if compilation fails,
	//     *AllocationError if no shader object could be created
	CompileShader(stage ShaderStage, source string) (Handle, error)

	// LinkProgram attaches a vertex and a fragment shader to a new program object and links it.
	//
	// Parameters:
	//   - vertex: the compiled vertex shader
	//   - fragment: the compiled fragment shader
	//
	// Returns:
	//   - Handle: the linked program
	//   - error: *DriverError carrying the link log if linking fails,
	//     *AllocationError if no program object could be created
	LinkProgram(vertex, fragment Handle) (Handle, error)

	// UseProgram makes a program current for subsequent draws. Handle 0 detaches the current program.
	//
	// Parameters:
	//   - program: the linked program, or 0
	UseProgram(program Handle)

	// DeleteShader frees a shader object. Deleting 0 or an unknown handle is a no-op.
	//
	// Parameters:
	//   - shader: the shader object to delete
	DeleteShader(shader Handle)

	// DeleteProgram frees a program object. Deleting 0 or an unknown handle is a no-op.
	//
	// Parameters:
	//   - program: the program object to delete
	DeleteProgram(program Handle)

	// CreateVertexArray creates a vertex array object which records attribute layout and the
	// element buffer binding.
	//
	// Returns:
	//   - Handle: the new vertex array, or 0 if allocation failed
	CreateVertexArray() Handle

	// BindVertexArray makes a vertex array current. Handle 0 unbinds.
	//
	// Parameters:
	//   - vao: the vertex array to bind, or 0
	BindVertexArray(vao Handle)

	// DeleteVertexArray frees a vertex array object. Deleting 0 is a no-op.
	//
	// Parameters:
	//   - vao: the vertex array to delete
	DeleteVertexArray(vao Handle)

	// CreateBuffer creates an empty buffer object.
	//
	// Returns:
	//   - Handle: the new buffer, or 0 if allocation failed
	CreateBuffer() Handle

	// BindBuffer binds a buffer to a target. Handle 0 unbinds the target.
	//
	// Parameters:
	//   - target: the binding point
	//   - buffer: the buffer to bind, or 0
	BindBuffer(target BufferTarget, buffer Handle)

	// BufferData replaces the contents of the buffer bound to target with data.
	//
	// Parameters:
	//   - target: the binding point whose buffer receives the data
	//   - data: the raw bytes to upload
	//   - usage: the expected update pattern
	//
	// Returns:
	//   - error: an error if no buffer is bound to target or the upload fails
	BufferData(target BufferTarget, data []byte, usage BufferUsage) error

	// DeleteBuffer frees a buffer object. Deleting 0 is a no-op.
	//
	// Parameters:
	//   - buffer: the buffer to delete
	DeleteBuffer(buffer Handle)

	// VertexAttribPointer describes one float attribute of the buffer bound to BufferTargetArray
	// and records it in the bound vertex array.
	//
	// Parameters:
	//   - index: the attribute location
	//   - size: the number of float components (1 to 4)
	//   - stride: the byte distance between consecutive records
	//   - offset: the byte offset of the attribute within a record
	VertexAttribPointer(index uint32, size int32, stride int32, offset int)

	// EnableVertexAttrib enables an attribute location of the bound vertex array.
	//
	// Parameters:
	//   - index: the attribute location
	EnableVertexAttrib(index uint32)

	// DisableVertexAttrib disables an attribute location of the bound vertex array.
	//
	// Parameters:
	//   - index: the attribute location
	DisableVertexAttrib(index uint32)

	// DrawElements draws indexed triangles from the bound vertex array with the current program,
	// reading count unsigned 32-bit indices from the element buffer starting at index 0.
	//
	// Parameters:
	//   - count: the number of indices to draw
	//
	// Returns:
	//   - error: an error if the draw could not be issued
	DrawElements(count int32) error

	// BeginFrame starts a frame and clears the color target.
	//
	// Parameters:
	//   - clear: the RGBA clear color
	//
	// Returns:
	//   - error: an error if the frame target could not be acquired
	BeginFrame(clear mgl32.Vec4) error

	// EndFrame finishes the frame's commands and submits them to the GPU.
	// Presenting the result is the window's job for OpenGL and the backend's job for WebGPU.
	//
	// Returns:
	//   - error: an error if submission fails
	EndFrame() error

	// Resize adapts the frame target to a new surface size in pixels.
	//
	// Parameters:
	//   - width: the new width
	//   - height: the new height
	Resize(width, height int)

	// Release frees every object still owned by the backend and the backend itself.
	Release()
}
