package scene

import (
	"io/fs"

	"github.com/Carmen-Shannon/creethor/engine/geometry"
	"github.com/Carmen-Shannon/creethor/engine/renderer/shader"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithMesh sets the geometry uploaded on Init. A scene without a mesh draws nothing.
//
// Parameters:
//   - mesh: the geometry to upload
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMesh(mesh *geometry.Mesh) SceneBuilderOption {
	return func(s *scene) {
		s.mesh = mesh
	}
}

// WithShaderSource sets an already parsed shader source. It takes precedence over WithShaderPath.
//
// Parameters:
//   - source: the parsed vertex and fragment sections
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderSource(source *shader.Source) SceneBuilderOption {
	return func(s *scene) {
		s.source = source
	}
}

// WithShaderPath sets a shader file read from disk and parsed on Init.
//
// Parameters:
//   - path: the path of a file in the #type format
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderPath(path string) SceneBuilderOption {
	return func(s *scene) {
		s.shaderPath = path
		s.shaderFS = nil
	}
}

// WithShaderFS sets a shader file read from a file system, such as the embedded assets, on Init.
//
// Parameters:
//   - fsys: the file system holding the shader
//   - path: the path of the shader within fsys
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderFS(fsys fs.FS, path string) SceneBuilderOption {
	return func(s *scene) {
		s.shaderFS = fsys
		s.shaderPath = path
	}
}

// WithFlattenWorkers interleaves the mesh across n worker goroutines before upload.
// Values below 2 keep the sequential path.
//
// Parameters:
//   - n: the number of flatten workers
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFlattenWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 2 {
			s.flattener = nil
			return
		}
		s.flattener = geometry.NewFlattener(n)
	}
}

// WithLogger sets the logger for lifecycle events and shader diagnostics.
//
// Parameters:
//   - logger: the logger to use, nil keeps the no-op logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
