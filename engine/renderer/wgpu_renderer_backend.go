package renderer

import (
	"fmt"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/naga"
	"go.uber.org/zap"
)

var (
	wgslVertexEntry   = regexp.MustCompile(`@vertex\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`)
	wgslFragmentEntry = regexp.MustCompile(`@fragment\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`)
	wgslComment       = regexp.MustCompile(`(?s)//[^\n]*|/\*.*?\*/`)
)

// wgpuVertexFormats maps a float attribute component count to its vertex format.
var wgpuVertexFormats = map[int32]wgpu.VertexFormat{
	1: wgpu.VertexFormatFloat32,
	2: wgpu.VertexFormatFloat32x2,
	3: wgpu.VertexFormatFloat32x3,
	4: wgpu.VertexFormatFloat32x4,
}

type wgpuShader struct {
	stage  ShaderStage
	module *wgpu.ShaderModule
	entry  string
}

type wgpuProgram struct {
	vertex   *wgpuShader
	fragment *wgpuShader
}

type wgpuAttrib struct {
	size    int32
	stride  int32
	offset  int
	buffer  Handle
	enabled bool
}

// wgpuVertexArray records what a GL vertex array object would: attribute layout and the element buffer.
type wgpuVertexArray struct {
	attribs map[uint32]*wgpuAttrib
	element Handle
}

type wgpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

// wgpuRendererBackendImpl emulates the bind-then-operate Backend model on top of WebGPU.
// Render pipelines are built on first draw for each program and vertex layout pair and cached.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	next     Handle
	shaders  map[Handle]*wgpuShader
	programs map[Handle]*wgpuProgram
	arrays   map[Handle]*wgpuVertexArray
	buffers  map[Handle]*wgpuBuffer

	pipelines map[string]*wgpu.RenderPipeline

	currentProgram Handle
	currentArray   Handle
	arrayBinding   Handle
	// Element binding used while no vertex array is bound.
	looseElement Handle

	// Frame state for the single render pass of a frame.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ Backend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(cfg *backendConfig) (Backend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      cfg.logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		shaders:     make(map[Handle]*wgpuShader),
		programs:    make(map[Handle]*wgpuProgram),
		arrays:      make(map[Handle]*wgpuVertexArray),
		buffers:     make(map[Handle]*wgpuBuffer),
		pipelines:   make(map[string]*wgpu.RenderPipeline),
	}
	if cfg.presentMode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}
	b.surface = b.instance.CreateSurface(cfg.surface)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.configureSurface(cfg.width, cfg.height)
	b.logger.Info("WebGPU backend initialized", zap.Int("width", cfg.width), zap.Int("height", cfg.height))
	return b, nil
}

func (b *wgpuRendererBackendImpl) configureSurface(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) Type() BackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) CompileShader(stage ShaderStage, source string) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	op := "compile " + stage.String() + " shader"

	// wgpu-native only reports WGSL errors through the uncaptured error callback,
	// so the source is compiled with naga first to get a diagnostic back.
	if _, err := naga.Compile(source); err != nil {
		return 0, &DriverError{Op: op, Log: err.Error(), Err: err}
	}

	pattern := wgslVertexEntry
	if stage == ShaderStageFragment {
		pattern = wgslFragmentEntry
	}
	m := pattern.FindStringSubmatch(wgslComment.ReplaceAllString(source, ""))
	if m == nil {
		return 0, &DriverError{Op: op, Log: fmt.Sprintf("no @%s entry point", strings.ToLower(stage.String()))}
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: stage.String() + " " + m[1],
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return 0, &DriverError{Op: op, Err: err}
	}

	h := b.allocate()
	b.shaders[h] = &wgpuShader{stage: stage, module: module, entry: m[1]}
	return h, nil
}

func (b *wgpuRendererBackendImpl) LinkProgram(vertex, fragment Handle) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vs, ok := b.shaders[vertex]
	if !ok || vs.stage != ShaderStageVertex {
		return 0, &DriverError{Op: "link program", Log: fmt.Sprintf("handle %d is not a vertex shader", vertex)}
	}
	fs, ok := b.shaders[fragment]
	if !ok || fs.stage != ShaderStageFragment {
		return 0, &DriverError{Op: "link program", Log: fmt.Sprintf("handle %d is not a fragment shader", fragment)}
	}

	h := b.allocate()
	b.programs[h] = &wgpuProgram{vertex: vs, fragment: fs}
	return h, nil
}

func (b *wgpuRendererBackendImpl) UseProgram(program Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentProgram = program
}

func (b *wgpuRendererBackendImpl) DeleteShader(shader Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteShader(shader)
}

func (b *wgpuRendererBackendImpl) deleteShader(shader Handle) {
	s, ok := b.shaders[shader]
	if !ok {
		return
	}
	delete(b.shaders, shader)
	b.releaseModuleIfUnused(s)
}

// releaseModuleIfUnused frees a shader module once neither a live shader handle nor a program refers to it.
func (b *wgpuRendererBackendImpl) releaseModuleIfUnused(s *wgpuShader) {
	for _, other := range b.shaders {
		if other == s {
			return
		}
	}
	for _, p := range b.programs {
		if p.vertex == s || p.fragment == s {
			return
		}
	}
	s.module.Release()
}

func (b *wgpuRendererBackendImpl) DeleteProgram(program Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteProgram(program)
}

func (b *wgpuRendererBackendImpl) deleteProgram(program Handle) {
	p, ok := b.programs[program]
	if !ok {
		return
	}
	prefix := fmt.Sprintf("%d|", program)
	for key, pipeline := range b.pipelines {
		if strings.HasPrefix(key, prefix) {
			pipeline.Release()
			delete(b.pipelines, key)
		}
	}
	delete(b.programs, program)
	b.releaseModuleIfUnused(p.vertex)
	b.releaseModuleIfUnused(p.fragment)
	if b.currentProgram == program {
		b.currentProgram = 0
	}
}

func (b *wgpuRendererBackendImpl) CreateVertexArray() Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocate()
	b.arrays[h] = &wgpuVertexArray{attribs: make(map[uint32]*wgpuAttrib)}
	return h
}

func (b *wgpuRendererBackendImpl) BindVertexArray(vao Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentArray = vao
}

func (b *wgpuRendererBackendImpl) DeleteVertexArray(vao Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.arrays, vao)
	if b.currentArray == vao {
		b.currentArray = 0
	}
}

func (b *wgpuRendererBackendImpl) CreateBuffer() Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocate()
	b.buffers[h] = &wgpuBuffer{}
	return h
}

func (b *wgpuRendererBackendImpl) BindBuffer(target BufferTarget, buffer Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target == BufferTargetArray {
		b.arrayBinding = buffer
		return
	}
	if vao, ok := b.arrays[b.currentArray]; ok {
		vao.element = buffer
		return
	}
	b.looseElement = buffer
}

func (b *wgpuRendererBackendImpl) BufferData(target BufferTarget, data []byte, usage BufferUsage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.binding(target)
	buf, ok := b.buffers[h]
	if !ok {
		return ErrNoBufferBound
	}
	if buf.buf != nil {
		buf.buf.Release()
		buf.buf, buf.size = nil, 0
	}
	if len(data) == 0 {
		return nil
	}

	gpuUsage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	label := "Vertex Buffer"
	if target == BufferTargetElementArray {
		gpuUsage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
		label = "Index Buffer"
	}

	// Queue writes must be a multiple of 4 bytes.
	if pad := len(data) % 4; pad != 0 {
		data = append(slices.Clone(data), make([]byte, 4-pad)...)
	}

	created, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            gpuUsage,
		MappedAtCreation: false,
	})
	if err != nil {
		return &DriverError{Op: "buffer data", Err: err}
	}
	if err := b.queue.WriteBuffer(created, 0, data); err != nil {
		created.Release()
		return &DriverError{Op: "buffer data", Err: err}
	}
	buf.buf, buf.size = created, uint64(len(data))
	return nil
}

func (b *wgpuRendererBackendImpl) DeleteBuffer(buffer Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteBuffer(buffer)
}

func (b *wgpuRendererBackendImpl) deleteBuffer(buffer Handle) {
	buf, ok := b.buffers[buffer]
	if !ok {
		return
	}
	if buf.buf != nil {
		buf.buf.Release()
	}
	delete(b.buffers, buffer)
	if b.arrayBinding == buffer {
		b.arrayBinding = 0
	}
}

func (b *wgpuRendererBackendImpl) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vao, ok := b.arrays[b.currentArray]
	if !ok {
		return
	}
	a := b.attrib(vao, index)
	a.size, a.stride, a.offset, a.buffer = size, stride, offset, b.arrayBinding
}

func (b *wgpuRendererBackendImpl) EnableVertexAttrib(index uint32) {
	b.setAttribEnabled(index, true)
}

func (b *wgpuRendererBackendImpl) DisableVertexAttrib(index uint32) {
	b.setAttribEnabled(index, false)
}

func (b *wgpuRendererBackendImpl) setAttribEnabled(index uint32, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if vao, ok := b.arrays[b.currentArray]; ok {
		b.attrib(vao, index).enabled = enabled
	}
}

func (b *wgpuRendererBackendImpl) DrawElements(count int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	program, ok := b.programs[b.currentProgram]
	if !ok {
		return fmt.Errorf("draw elements: no program in use")
	}
	vao, ok := b.arrays[b.currentArray]
	if !ok {
		return fmt.Errorf("draw elements: no vertex array bound")
	}
	index, ok := b.buffers[vao.element]
	if !ok || index.buf == nil {
		return fmt.Errorf("draw elements: vertex array has no element buffer")
	}

	slots, layouts, err := vertexLayouts(vao)
	if err != nil {
		return err
	}
	pipeline, err := b.renderPipeline(b.currentProgram, program, layouts)
	if err != nil {
		return err
	}

	b.framePass.SetPipeline(pipeline)
	for i, h := range slots {
		vb, ok := b.buffers[h]
		if !ok || vb.buf == nil {
			return fmt.Errorf("draw elements: attribute buffer %d has no data", h)
		}
		b.framePass.SetVertexBuffer(uint32(i), vb.buf, 0, wgpu.WholeSize)
	}
	b.framePass.SetIndexBuffer(index.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	return nil
}

// renderPipeline returns the cached pipeline for a program and vertex layout, creating it on first use.
func (b *wgpuRendererBackendImpl) renderPipeline(h Handle, p *wgpuProgram, layouts []wgpu.VertexBufferLayout) (*wgpu.RenderPipeline, error) {
	key := fmt.Sprintf("%d|%v", h, layouts)
	if cached, ok := b.pipelines[key]; ok {
		return cached, nil
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: fmt.Sprintf("Program %d Layout", h),
	})
	if err != nil {
		return nil, &DriverError{Op: "create pipeline layout", Err: err}
	}
	defer layout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Program %d Render Pipeline", h),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex.module,
			EntryPoint: p.vertex.entry,
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragment.module,
			EntryPoint: p.fragment.entry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, &DriverError{Op: "create render pipeline", Err: err}
	}

	b.pipelines[key] = created
	return created, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear mgl32.Vec4) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(clear.X()), G: float64(clear.Y()), B: float64(clear.Z()), A: float64(clear.W()),
				},
			},
		},
	})

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return &DriverError{Op: "finish frame", Err: err}
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.surface.Present()
	b.releaseFrameSurface()
	return nil
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.configureSurface(width, height)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	clear(b.pipelines)
	for h := range b.buffers {
		b.deleteBuffer(h)
	}
	clear(b.arrays)
	for h := range b.shaders {
		b.deleteShader(h)
	}
	for h := range b.programs {
		b.deleteProgram(h)
	}

	b.surface.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

func (b *wgpuRendererBackendImpl) allocate() Handle {
	b.next++
	return b.next
}

func (b *wgpuRendererBackendImpl) binding(target BufferTarget) Handle {
	if target == BufferTargetArray {
		return b.arrayBinding
	}
	if vao, ok := b.arrays[b.currentArray]; ok {
		return vao.element
	}
	return b.looseElement
}

func (b *wgpuRendererBackendImpl) attrib(vao *wgpuVertexArray, index uint32) *wgpuAttrib {
	a, ok := vao.attribs[index]
	if !ok {
		a = &wgpuAttrib{}
		vao.attribs[index] = a
	}
	return a
}

// vertexLayouts groups the enabled attributes of a vertex array into one buffer layout per source buffer.
// It returns the buffer bound to each slot alongside the layouts.
func vertexLayouts(vao *wgpuVertexArray) ([]Handle, []wgpu.VertexBufferLayout, error) {
	locations := make([]uint32, 0, len(vao.attribs))
	for loc, a := range vao.attribs {
		if a.enabled {
			locations = append(locations, loc)
		}
	}
	slices.Sort(locations)

	var slots []Handle
	var layouts []wgpu.VertexBufferLayout
	for _, loc := range locations {
		a := vao.attribs[loc]
		format, ok := wgpuVertexFormats[a.size]
		if !ok {
			return nil, nil, fmt.Errorf("attribute %d: unsupported component count %d", loc, a.size)
		}
		slot := slices.Index(slots, a.buffer)
		if slot < 0 {
			slots = append(slots, a.buffer)
			layouts = append(layouts, wgpu.VertexBufferLayout{
				ArrayStride: uint64(a.stride),
				StepMode:    wgpu.VertexStepModeVertex,
			})
			slot = len(slots) - 1
		}
		if layouts[slot].ArrayStride != uint64(a.stride) {
			return nil, nil, fmt.Errorf("attribute %d: stride %d differs from stride %d of its buffer", loc, a.stride, layouts[slot].ArrayStride)
		}
		layouts[slot].Attributes = append(layouts[slot].Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.offset),
			ShaderLocation: loc,
		})
	}
	return slots, layouts, nil
}
