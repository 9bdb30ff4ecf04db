package shader_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/creethor/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexBody = `#version 330 core
layout (location=0) in vec3 aPos;
layout (location=1) in vec4 aColor;
out vec4 fColor;
void main() {
    fColor = aColor;
    gl_Position = vec4(aPos, 1.0);
}
`

const fragmentBody = `#version 330 core
in vec4 fColor;
out vec4 color;
void main() {
    color = fColor;
}
`

func TestParseSectionsInEitherOrder(t *testing.T) {
	vf, err := shader.Parse("vf.glsl", "#type vertex\n"+vertexBody+"#type fragment\n"+fragmentBody)
	require.NoError(t, err)
	fv, err := shader.Parse("fv.glsl", "#type fragment\n"+fragmentBody+"#type vertex\n"+vertexBody)
	require.NoError(t, err)

	assert.Equal(t, vertexBody, vf.Vertex)
	assert.Equal(t, fragmentBody, vf.Fragment)
	assert.Equal(t, vf.Vertex, fv.Vertex)
	assert.Equal(t, vf.Fragment, fv.Fragment)
	assert.Equal(t, vertexBody, vf.Section(renderer.ShaderStageVertex))
}

func TestParseCRLF(t *testing.T) {
	src, err := shader.Parse("crlf.glsl", "#type vertex\r\nvoid main() {}\r\n#type fragment\r\nvoid main() {}\r\n")
	require.NoError(t, err)
	assert.Equal(t, "void main() {}\r\n", src.Vertex)
	assert.Equal(t, "void main() {}\r\n", src.Fragment)
}

func TestParseIgnoresPreamble(t *testing.T) {
	src, err := shader.Parse("pre.glsl", "// default shader\n#type vertex\nv\n#type fragment\nf")
	require.NoError(t, err)
	assert.Equal(t, "v\n", src.Vertex)
	assert.Equal(t, "f", src.Fragment)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want shader.ParseError
	}{
		{
			name: "unknown tag",
			text: "#type vertex\nv\n#type geometry\ng\n",
			want: shader.ParseError{File: "bad.glsl", Tag: "geometry", Line: 3},
		},
		{
			name: "missing fragment",
			text: "#type vertex\nv\n",
			want: shader.ParseError{File: "bad.glsl", Missing: "fragment"},
		},
		{
			name: "missing both",
			text: "void main() {}\n",
			want: shader.ParseError{File: "bad.glsl", Missing: "vertex"},
		},
		{
			name: "duplicate",
			text: "#type vertex\nv\n#type vertex\nv\n#type fragment\nf\n",
			want: shader.ParseError{File: "bad.glsl", Tag: "vertex", Line: 3, Duplicate: true},
		},
		{
			name: "empty tag",
			text: "#type\nv\n",
			want: shader.ParseError{File: "bad.glsl", Line: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shader.Parse("bad.glsl", tt.text)
			var parseErr *shader.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.want, *parseErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.glsl")
	require.NoError(t, os.WriteFile(path, []byte("#type vertex\n"+vertexBody+"#type fragment\n"+fragmentBody), 0o644))

	src, err := shader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name)
	assert.Equal(t, vertexBody, src.Vertex)

	_, err = shader.Load(filepath.Join(t.TempDir(), "missing.glsl"))
	var ioErr *shader.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/default.glsl": {Data: []byte("#type fragment\n" + fragmentBody + "#type vertex\n" + vertexBody)},
	}

	src, err := shader.LoadFS(fsys, "shaders/default.glsl")
	require.NoError(t, err)
	assert.Equal(t, fragmentBody, src.Fragment)

	_, err = shader.LoadFS(fsys, "shaders/nope.glsl")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMissingTagMakesNoBackendCalls(t *testing.T) {
	rec := rendertest.NewRecorder()

	src, err := shader.Parse("bad.glsl", "#type vertex\n"+vertexBody)
	if err == nil {
		err = shader.NewProgram(rec, src).Compile()
	}

	var parseErr *shader.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, rec.Calls())
}

func defaultSource(t *testing.T) *shader.Source {
	t.Helper()
	src, err := shader.Parse("default.glsl", "#type vertex\n"+vertexBody+"#type fragment\n"+fragmentBody)
	require.NoError(t, err)
	return src
}

func TestProgramCompile(t *testing.T) {
	rec := rendertest.NewRecorder()
	p := shader.NewProgram(rec, defaultSource(t))

	require.NoError(t, p.Compile())
	assert.Equal(t, shader.StateCompiled, p.State())
	assert.NotZero(t, p.Handle())
	assert.Equal(t, []string{"CompileShader", "CompileShader", "LinkProgram"}, rec.Ops())

	calls := rec.Calls()
	assert.Equal(t, renderer.ShaderStageVertex, calls[0].Args[0])
	assert.Equal(t, renderer.ShaderStageFragment, calls[1].Args[0])

	err := p.Compile()
	assert.ErrorIs(t, err, shader.ErrAlreadyCompiled)
}

func TestProgramCompileFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*rendertest.Recorder)
		unit  string
		log   string
	}{
		{
			name:  "vertex",
			setup: func(r *rendertest.Recorder) { r.FailCompile[renderer.ShaderStageVertex] = "0:3: syntax error" },
			unit:  "Vertex",
			log:   "0:3: syntax error",
		},
		{
			name:  "fragment",
			setup: func(r *rendertest.Recorder) { r.FailCompile[renderer.ShaderStageFragment] = "undeclared fColor" },
			unit:  "Fragment",
			log:   "undeclared fColor",
		},
		{
			name:  "link",
			setup: func(r *rendertest.Recorder) { r.FailLink = "varying mismatch" },
			unit:  "program link",
			log:   "varying mismatch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := rendertest.NewRecorder()
			tt.setup(rec)
			p := shader.NewProgram(rec, defaultSource(t))

			err := p.Compile()

			var compileErr *shader.CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.unit, compileErr.Unit)
			assert.Equal(t, tt.log, compileErr.Log)
			assert.Equal(t, "default.glsl", compileErr.File)

			var driverErr *renderer.DriverError
			assert.True(t, errors.As(err, &driverErr))

			assert.Equal(t, shader.StateFailed, p.State())
			assert.Zero(t, p.Handle())
			assert.Zero(t, rec.Live(), "no partial GPU state may survive a failed compile")
		})
	}
}

func TestProgramUseDetach(t *testing.T) {
	rec := rendertest.NewRecorder()
	p := shader.NewProgram(rec, defaultSource(t))

	p.Use()
	assert.Empty(t, rec.Calls(), "Use before Compile is a no-op")

	require.NoError(t, p.Compile())
	p.Use()
	p.Use()
	assert.Equal(t, p.Handle(), rec.CurrentProgram())

	p.Detach()
	p.Detach()
	assert.Equal(t, renderer.Handle(0), rec.CurrentProgram())
}

func TestProgramRelease(t *testing.T) {
	rec := rendertest.NewRecorder()
	p := shader.NewProgram(rec, defaultSource(t))
	require.NoError(t, p.Compile())
	handle := p.Handle()

	p.Release()
	p.Release()

	assert.Equal(t, shader.StateReleased, p.State())
	assert.False(t, rec.IsLive(handle))
	assert.Zero(t, rec.Live())
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
	assert.Equal(t, 2, rec.Count("DeleteShader"))
	assert.ErrorIs(t, p.Compile(), shader.ErrReleased)
}
