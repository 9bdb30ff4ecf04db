package scene_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/creethor/engine/geometry"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/creethor/engine/renderer/shader"
	"github.com/Carmen-Shannon/creethor/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelEditorInitUploadsQuad(t *testing.T) {
	rec := rendertest.NewRecorder()
	s := scene.NewLevelEditorScene(rec)

	require.NoError(t, s.Init())
	assert.Equal(t, scene.StateActive, s.State())
	assert.Equal(t, scene.LevelEditorName, s.Name())

	require.NotNil(t, s.Program())
	assert.Equal(t, shader.StateCompiled, s.Program().State())

	set := s.Buffers()
	require.NotNil(t, set)
	assert.Equal(t, []uint32{2, 1, 0, 0, 1, 3}, rec.Indices(set.ElementBuffer))
	assert.Len(t, rec.Floats(set.VertexBuffer), 28)
}

func TestInitTwice(t *testing.T) {
	s := scene.NewLevelEditorScene(rendertest.NewRecorder())
	require.NoError(t, s.Init())
	assert.ErrorIs(t, s.Init(), scene.ErrAlreadyInitialized)
}

func TestUpdateComputesFPSAndDraws(t *testing.T) {
	rec := rendertest.NewRecorder()
	s := scene.NewLevelEditorScene(rec)
	require.NoError(t, s.Init())
	rec.Reset()

	require.NoError(t, s.Update(0.02))
	assert.InDelta(t, 50, s.FPS(), 1e-3)

	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, s.Program().Handle(), draws[0].Program)
	assert.Equal(t, s.Buffers().VertexArray, draws[0].VertexArray)
	assert.Equal(t, int32(6), draws[0].Count)
	assert.Equal(t, []uint32{renderer.PositionAttrib, renderer.ColorAttrib}, draws[0].Enabled)

	assert.Equal(t, renderer.Handle(0), rec.CurrentProgram())
	assert.Equal(t, renderer.Handle(0), rec.CurrentVertexArray())
}

func TestUpdateRejectsInvalidDelta(t *testing.T) {
	s := scene.NewLevelEditorScene(rendertest.NewRecorder())
	require.NoError(t, s.Init())
	require.NoError(t, s.Update(0.02))

	for _, dt := range []float32{0, -0.5, float32(math.NaN()), float32(math.Inf(1))} {
		assert.ErrorIs(t, s.Update(dt), scene.ErrInvalidDelta, "dt=%v", dt)
	}
	assert.InDelta(t, 50, s.FPS(), 1e-3)
}

func TestUpdateRequiresActive(t *testing.T) {
	s := scene.NewLevelScene(rendertest.NewRecorder())
	assert.ErrorIs(t, s.Update(0.016), scene.ErrNotActive)

	require.NoError(t, s.Init())
	require.NoError(t, s.Release())
	assert.ErrorIs(t, s.Update(0.016), scene.ErrNotActive)
}

func TestLevelSceneOnlyTracksFPS(t *testing.T) {
	rec := rendertest.NewRecorder()
	s := scene.NewLevelScene(rec)
	require.NoError(t, s.Init())

	require.NoError(t, s.Update(0.25))
	assert.InDelta(t, 4, s.FPS(), 1e-6)
	assert.Nil(t, s.Program())
	assert.Nil(t, s.Buffers())
	assert.Empty(t, rec.Calls())
}

func TestInitFailureReleasesEverything(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*rendertest.Recorder)
		as    func(error) bool
	}{
		{
			name:  "fragment compile",
			setup: func(r *rendertest.Recorder) { r.FailCompile[renderer.ShaderStageFragment] = "bad" },
			as: func(err error) bool {
				var target *shader.CompileError
				return errors.As(err, &target)
			},
		},
		{
			name:  "element buffer",
			setup: func(r *rendertest.Recorder) { r.FailBufferAt = 2 },
			as: func(err error) bool {
				var target *renderer.AllocationError
				return errors.As(err, &target)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := rendertest.NewRecorder()
			tt.setup(rec)
			s := scene.NewLevelEditorScene(rec)

			err := s.Init()

			assert.ErrorIs(t, err, scene.ErrInitFailed)
			assert.True(t, tt.as(err))
			assert.Equal(t, scene.StateFailed, s.State())
			assert.Zero(t, rec.Live())
			assert.Nil(t, s.Program())
			assert.Nil(t, s.Buffers())
			assert.ErrorIs(t, s.Init(), scene.ErrAlreadyInitialized)
		})
	}
}

func TestInitRejectsOutOfRangeMeshBeforeGPU(t *testing.T) {
	rec := rendertest.NewRecorder()
	mesh := geometry.NewMesh(scene.QuadMesh().Vertices(), geometry.NewFragmentCollection(geometry.NewFragment(0, 1, 4)))
	s := scene.NewScene("bad", rec, scene.WithMesh(mesh))

	err := s.Init()

	var boundsErr *geometry.BoundsError
	require.ErrorAs(t, err, &boundsErr)
	assert.Empty(t, rec.Calls())
}

func TestInitMissingShaderFile(t *testing.T) {
	rec := rendertest.NewRecorder()
	s := scene.NewScene("missing", rec, scene.WithShaderPath(t.TempDir()+"/nope.glsl"), scene.WithMesh(scene.QuadMesh()))

	err := s.Init()

	var ioErr *shader.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, scene.ErrInitFailed)
	assert.Empty(t, rec.Calls())
}

func TestReleaseOrderAndIdempotence(t *testing.T) {
	rec := rendertest.NewRecorder()
	s := scene.NewLevelEditorScene(rec)
	require.NoError(t, s.Init())
	rec.Reset()

	require.NoError(t, s.Release())
	require.NoError(t, s.Release())

	assert.Equal(t, []string{
		"DeleteBuffer", "DeleteBuffer", "DeleteVertexArray",
		"DeleteProgram", "DeleteShader", "DeleteShader",
	}, rec.Ops())
	assert.Equal(t, scene.StateReleased, s.State())
	assert.Zero(t, rec.Live())
}

func TestFlattenWorkersMatchSequentialUpload(t *testing.T) {
	seq := rendertest.NewRecorder()
	par := rendertest.NewRecorder()
	a := scene.NewLevelEditorScene(seq)
	b := scene.NewLevelEditorScene(par, scene.WithFlattenWorkers(3))
	require.NoError(t, a.Init())
	require.NoError(t, b.Init())

	assert.Equal(t, seq.Floats(a.Buffers().VertexBuffer), par.Floats(b.Buffers().VertexBuffer))
}
