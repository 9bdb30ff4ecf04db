// Package assets embeds the files shipped inside the binary.
package assets

import (
	"embed"
	"io/fs"

	"github.com/Carmen-Shannon/creethor/engine/renderer"
)

// FS holds every embedded asset, rooted at the assets directory.
//
//go:embed shaders/*.glsl shaders/*.wgsl
var FS embed.FS

const (
	// DefaultGLSL is the GLSL 330 core position/color shader for the OpenGL backend.
	DefaultGLSL = "shaders/default.glsl"

	// DefaultWGSL is the WGSL position/color shader for the WebGPU backend.
	DefaultWGSL = "shaders/default.wgsl"
)

// DefaultShader returns the path within FS of the default shader for a backend.
//
// Parameters:
//   - backendType: the backend the shader will be compiled by
//
// Returns:
//   - string: the path of the shader within FS
func DefaultShader(backendType renderer.BackendType) string {
	if backendType == renderer.BackendTypeWGPU {
		return DefaultWGSL
	}
	return DefaultGLSL
}

// Shaders returns the shader directory as its own file system.
func Shaders() fs.FS {
	sub, err := fs.Sub(FS, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}
