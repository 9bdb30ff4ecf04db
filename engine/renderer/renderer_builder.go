package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// BackendBuilderOption is a functional option applied to the backend configuration during
// construction via NewBackend.
type BackendBuilderOption func(*backendConfig)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// Only the WebGPU backend reads it; the OpenGL backend presents through the window's swap interval.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(c *backendConfig) {
		c.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - BackendBuilderOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) BackendBuilderOption {
	return func(c *backendConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithSurface sets the surface the WebGPU backend renders into. It is required for BackendTypeWGPU.
//
// Parameters:
//   - descriptor: the platform surface descriptor, usually from window.Window.SurfaceDescriptor
//
// Returns:
//   - BackendBuilderOption: a function that applies the surface option
func WithSurface(descriptor *wgpu.SurfaceDescriptor) BackendBuilderOption {
	return func(c *backendConfig) {
		c.surface = descriptor
	}
}

// WithSurfaceSize sets the initial frame target size in pixels.
//
// Parameters:
//   - width: the framebuffer width
//   - height: the framebuffer height
//
// Returns:
//   - BackendBuilderOption: a function that applies the size option
func WithSurfaceSize(width, height int) BackendBuilderOption {
	return func(c *backendConfig) {
		c.width = width
		c.height = height
	}
}

// WithLogger sets the logger used for driver diagnostics.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - BackendBuilderOption: a function that applies the logger option
func WithLogger(logger *zap.Logger) BackendBuilderOption {
	return func(c *backendConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
