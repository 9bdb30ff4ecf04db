package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// glRendererBackendImpl issues commands straight to the OpenGL context current on the calling thread.
type glRendererBackendImpl struct {
	logger *zap.Logger

	// Live objects, freed by Release.
	shaders  map[Handle]struct{}
	programs map[Handle]struct{}
	arrays   map[Handle]struct{}
	buffers  map[Handle]struct{}
}

var _ Backend = &glRendererBackendImpl{}

func newGLRendererBackend(cfg *backendConfig) (Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	b := &glRendererBackendImpl{
		logger:   cfg.logger,
		shaders:  make(map[Handle]struct{}),
		programs: make(map[Handle]struct{}),
		arrays:   make(map[Handle]struct{}),
		buffers:  make(map[Handle]struct{}),
	}
	gl.Viewport(0, 0, int32(cfg.width), int32(cfg.height))

	b.logger.Info("OpenGL backend initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return b, nil
}

func (b *glRendererBackendImpl) Type() BackendType {
	return BackendTypeGL
}

func (b *glRendererBackendImpl) CompileShader(stage ShaderStage, source string) (Handle, error) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == ShaderStageFragment {
		shaderType = gl.FRAGMENT_SHADER
	}

	shader := gl.CreateShader(shaderType)
	if shader == 0 {
		return 0, &AllocationError{Resource: stage.String() + " shader"}
	}
	cSources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, &DriverError{Op: "compile " + stage.String() + " shader", Log: strings.TrimRight(log, "\x00")}
	}

	h := Handle(shader)
	b.shaders[h] = struct{}{}
	return h, nil
}

func (b *glRendererBackendImpl) LinkProgram(vertex, fragment Handle) (Handle, error) {
	program := gl.CreateProgram()
	if program == 0 {
		return 0, &AllocationError{Resource: "program"}
	}
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, &DriverError{Op: "link program", Log: strings.TrimRight(log, "\x00")}
	}

	h := Handle(program)
	b.programs[h] = struct{}{}
	return h, nil
}

func (b *glRendererBackendImpl) UseProgram(program Handle) {
	gl.UseProgram(uint32(program))
}

func (b *glRendererBackendImpl) DeleteShader(shader Handle) {
	if _, ok := b.shaders[shader]; !ok {
		return
	}
	gl.DeleteShader(uint32(shader))
	delete(b.shaders, shader)
}

func (b *glRendererBackendImpl) DeleteProgram(program Handle) {
	if _, ok := b.programs[program]; !ok {
		return
	}
	gl.DeleteProgram(uint32(program))
	delete(b.programs, program)
}

func (b *glRendererBackendImpl) CreateVertexArray() Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao != 0 {
		b.arrays[Handle(vao)] = struct{}{}
	}
	return Handle(vao)
}

func (b *glRendererBackendImpl) BindVertexArray(vao Handle) {
	gl.BindVertexArray(uint32(vao))
}

func (b *glRendererBackendImpl) DeleteVertexArray(vao Handle) {
	if _, ok := b.arrays[vao]; !ok {
		return
	}
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
	delete(b.arrays, vao)
}

func (b *glRendererBackendImpl) CreateBuffer() Handle {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf != 0 {
		b.buffers[Handle(buf)] = struct{}{}
	}
	return Handle(buf)
}

func (b *glRendererBackendImpl) BindBuffer(target BufferTarget, buffer Handle) {
	gl.BindBuffer(glTarget(target), uint32(buffer))
}

func (b *glRendererBackendImpl) BufferData(target BufferTarget, data []byte, usage BufferUsage) error {
	t := glTarget(target)
	var bound int32
	binding := uint32(gl.ARRAY_BUFFER_BINDING)
	if t == gl.ELEMENT_ARRAY_BUFFER {
		binding = gl.ELEMENT_ARRAY_BUFFER_BINDING
	}
	gl.GetIntegerv(binding, &bound)
	if bound == 0 {
		return ErrNoBufferBound
	}

	glUsage := uint32(gl.STATIC_DRAW)
	if usage == UsageDynamicDraw {
		glUsage = gl.DYNAMIC_DRAW
	}
	if len(data) == 0 {
		gl.BufferData(t, 0, nil, glUsage)
	} else {
		gl.BufferData(t, len(data), gl.Ptr(data), glUsage)
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &DriverError{Op: "buffer data", Log: fmt.Sprintf("GL error 0x%x", code)}
	}
	return nil
}

func (b *glRendererBackendImpl) DeleteBuffer(buffer Handle) {
	if _, ok := b.buffers[buffer]; !ok {
		return
	}
	id := uint32(buffer)
	gl.DeleteBuffers(1, &id)
	delete(b.buffers, buffer)
}

func (b *glRendererBackendImpl) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (b *glRendererBackendImpl) EnableVertexAttrib(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (b *glRendererBackendImpl) DisableVertexAttrib(index uint32) {
	gl.DisableVertexAttribArray(index)
}

func (b *glRendererBackendImpl) DrawElements(count int32) error {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &DriverError{Op: "draw elements", Log: fmt.Sprintf("GL error 0x%x", code)}
	}
	return nil
}

func (b *glRendererBackendImpl) BeginFrame(clear mgl32.Vec4) error {
	gl.ClearColor(clear.X(), clear.Y(), clear.Z(), clear.W())
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return nil
}

func (b *glRendererBackendImpl) EndFrame() error {
	gl.Flush()
	return nil
}

func (b *glRendererBackendImpl) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *glRendererBackendImpl) Release() {
	for h := range b.buffers {
		b.DeleteBuffer(h)
	}
	for h := range b.arrays {
		b.DeleteVertexArray(h)
	}
	for h := range b.programs {
		b.DeleteProgram(h)
	}
	for h := range b.shaders {
		b.DeleteShader(h)
	}
}

func glTarget(target BufferTarget) uint32 {
	if target == BufferTargetElementArray {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}
