package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// backendConfig is the pre-creation configuration collected from builder options.
type backendConfig struct {
	presentMode          PresentMode
	forceFallbackAdapter bool
	surface              *wgpu.SurfaceDescriptor
	width                int
	height               int
	logger               *zap.Logger
}

// NewBackend creates the Backend implementation for the given GPU API.
//
// For BackendTypeGL the caller must have made an OpenGL 4.1 core context current on this thread.
// For BackendTypeWGPU a surface must be provided with WithSurface.
//
// Parameters:
//   - backendType: the GPU API to use
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the created backend
//   - error: an error if the GPU API could not be initialized
func NewBackend(backendType BackendType, options ...BackendBuilderOption) (Backend, error) {
	cfg := &backendConfig{
		presentMode: PresentModeVSync,
		width:       1280,
		height:      720,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(cfg)
	}

	switch backendType {
	case BackendTypeGL:
		return newGLRendererBackend(cfg)
	case BackendTypeWGPU:
		if cfg.surface == nil {
			return nil, fmt.Errorf("wgpu backend requires a surface descriptor")
		}
		return newWGPURendererBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type %d", backendType)
	}
}
