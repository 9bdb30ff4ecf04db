package scene

import (
	"github.com/Carmen-Shannon/creethor/assets"
	"github.com/Carmen-Shannon/creethor/engine/geometry"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
)

const (
	// LevelEditorName is the name of the scene built by NewLevelEditorScene.
	LevelEditorName = "level-editor"

	// LevelName is the name of the scene built by NewLevelScene.
	LevelName = "level"
)

// QuadMesh returns a colored quad made of two triangles sharing the 0-1 edge.
//
// Returns:
//   - *geometry.Mesh: four vertices and the fragments {2,1,0} and {0,1,3}
func QuadMesh() *geometry.Mesh {
	return geometry.NewMesh([]*geometry.Vertex{
		geometry.MustVertex([]float32{0.5, -0.5, 0}, []float32{1, 0, 0, 1}),
		geometry.MustVertex([]float32{-0.5, 0.5, 0}, []float32{0, 1, 0, 1}),
		geometry.MustVertex([]float32{0.5, 0.5, 0}, []float32{0, 0, 1, 1}),
		geometry.MustVertex([]float32{-0.5, -0.5, 0}, []float32{1, 1, 0, 1}),
	}, geometry.NewFragmentCollection(
		geometry.NewFragment(2, 1, 0),
		geometry.NewFragment(0, 1, 3),
	))
}

// NewLevelEditorScene creates the editing scene: the quad drawn with the embedded default shader
// for the backend's type. Options are applied after the defaults and may replace the mesh or shader.
//
// Parameters:
//   - backend: the backend the scene draws with
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewLevelEditorScene(backend renderer.Backend, options ...SceneBuilderOption) Scene {
	defaults := []SceneBuilderOption{
		WithMesh(QuadMesh()),
		WithShaderFS(assets.FS, assets.DefaultShader(backend.Type())),
	}
	return NewScene(LevelEditorName, backend, append(defaults, options...)...)
}

// NewLevelScene creates the play scene, which has no geometry yet and only tracks the frame rate.
//
// Parameters:
//   - backend: the backend the scene draws with
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewLevelScene(backend renderer.Backend, options ...SceneBuilderOption) Scene {
	return NewScene(LevelName, backend, options...)
}
