package engine_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/creethor/engine/scene"
	"github.com/Carmen-Shannon/creethor/engine/window/windowtest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stepClock advances by a fixed step on every call.
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	t := time.Unix(1000, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(step)
		return t
	}
}

// tracker records every scene its factories create.
type tracker struct {
	created []scene.Scene
}

func (tr *tracker) editor(b renderer.Backend) scene.Scene {
	s := scene.NewLevelEditorScene(b)
	tr.created = append(tr.created, s)
	return s
}

func (tr *tracker) level(b renderer.Backend) scene.Scene {
	s := scene.NewLevelScene(b)
	tr.created = append(tr.created, s)
	return s
}

func TestRunDrawsUntilClosed(t *testing.T) {
	rec := rendertest.NewRecorder()
	win := windowtest.NewFake("CreeThor", 1920, 1080)
	win.CloseAfter = 3
	tr := &tracker{}
	core, logs := observer.New(zap.InfoLevel)

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(rec),
		engine.WithScenes(tr.editor),
		engine.WithClearColor(mgl32.Vec4{0.2, 0.3, 0.4, 1}),
		engine.WithClock(stepClock(20*time.Millisecond)),
		engine.WithLogger(zap.New(core)),
	)

	require.NoError(t, e.Run())

	require.Len(t, tr.created, 1)
	s := tr.created[0]
	assert.InDelta(t, 50, s.FPS(), 1e-3)
	assert.Equal(t, scene.StateReleased, s.State())

	assert.Equal(t, 3, rec.Frames())
	assert.Len(t, rec.Draws(), 3)
	assert.Equal(t, mgl32.Vec4{0.2, 0.3, 0.4, 1}, rec.ClearColor())
	assert.True(t, rec.Released())
	assert.Zero(t, rec.Live())

	assert.True(t, win.Shown())
	assert.True(t, win.Closed())
	assert.Equal(t, 3, win.Presents())

	assert.Equal(t, 80*time.Millisecond, e.Runtime())
	ended := logs.FilterField(zap.String("window", "CreeThor")).All()
	require.Len(t, ended, 1)
	assert.Equal(t, `Loop of frame "CreeThor" ended and lasted 0.080 seconds.`, ended[0].Message)
}

func TestRunInitFailureAborts(t *testing.T) {
	rec := rendertest.NewRecorder()
	rec.FailCompile[renderer.ShaderStageVertex] = "0:1: syntax error"
	win := windowtest.NewFake("CreeThor", 640, 480)

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(rec),
		engine.WithScenes((&tracker{}).editor),
	)

	err := e.Run()

	assert.ErrorIs(t, err, scene.ErrInitFailed)
	assert.False(t, win.Shown())
	assert.True(t, win.Closed())
	assert.True(t, rec.Released())
	assert.Zero(t, rec.Frames())
	assert.Zero(t, rec.Live())
}

func TestRunRequiresCollaborators(t *testing.T) {
	assert.ErrorIs(t, engine.NewEngine().Run(), engine.ErrNoWindow)

	win := windowtest.NewFake("CreeThor", 640, 480)
	assert.ErrorIs(t, engine.NewEngine(engine.WithWindow(win)).Run(), engine.ErrNoBackend)

	rec := rendertest.NewRecorder()
	err := engine.NewEngine(engine.WithWindow(win), engine.WithBackend(rec)).Run()
	assert.ErrorIs(t, err, engine.ErrNoScenes)
	assert.True(t, win.Closed())
}

func TestSwapKeepsCurrentSceneOnFailure(t *testing.T) {
	rec := rendertest.NewRecorder()
	e := engine.NewEngine(engine.WithBackend(rec))

	a := scene.NewLevelEditorScene(rec)
	require.NoError(t, e.Swap(a))
	aSet := *a.Buffers()
	aVertices, _ := rec.Bytes(aSet.VertexBuffer)
	aIndices, _ := rec.Bytes(aSet.ElementBuffer)

	rec.FailBufferAt = 4 // b's element buffer
	b := scene.NewLevelEditorScene(rec)
	err := e.Swap(b)

	assert.ErrorIs(t, err, scene.ErrInitFailed)
	assert.Same(t, a, e.Current())
	assert.Equal(t, scene.StateActive, a.State())
	assert.Equal(t, aSet, *a.Buffers())
	vertices, _ := rec.Bytes(aSet.VertexBuffer)
	indices, _ := rec.Bytes(aSet.ElementBuffer)
	assert.Equal(t, aVertices, vertices)
	assert.Equal(t, aIndices, indices)
	require.NoError(t, a.Update(0.016))
}

func TestSwapInitializesBeforeReleasing(t *testing.T) {
	rec := rendertest.NewRecorder()
	e := engine.NewEngine(engine.WithBackend(rec))

	a := scene.NewLevelEditorScene(rec)
	require.NoError(t, e.Swap(a))
	aSet := *a.Buffers()
	rec.Reset()

	b := scene.NewLevelEditorScene(rec)
	require.NoError(t, e.Swap(b))

	assert.Same(t, b, e.Current())
	assert.Equal(t, scene.StateReleased, a.State())
	assert.Equal(t, scene.StateActive, b.State())
	assert.NotEqual(t, aSet.VertexBuffer, b.Buffers().VertexBuffer)
	assert.False(t, rec.IsLive(aSet.VertexBuffer))

	ops := rec.Ops()
	lastUpload, firstDelete := -1, -1
	for i, op := range ops {
		switch op {
		case "BufferData":
			lastUpload = i
		case "DeleteBuffer":
			if firstDelete < 0 {
				firstDelete = i
			}
		}
	}
	require.GreaterOrEqual(t, lastUpload, 0)
	assert.Less(t, lastUpload, firstDelete, "the new scene uploads before the old one is released")

	assert.NoError(t, e.Swap(b))
	assert.ErrorIs(t, e.Swap(nil), engine.ErrNilScene)
}

func TestSwapRejectsReleasedAndFailedScenes(t *testing.T) {
	rec := rendertest.NewRecorder()
	e := engine.NewEngine(engine.WithBackend(rec))

	a := scene.NewLevelEditorScene(rec)
	b := scene.NewLevelEditorScene(rec)
	require.NoError(t, e.Swap(a))
	require.NoError(t, e.Swap(b))
	require.Equal(t, scene.StateReleased, a.State())

	err := e.Swap(a)
	assert.ErrorIs(t, err, engine.ErrSceneNotUsable)
	assert.Contains(t, err.Error(), "released")
	assert.Same(t, b, e.Current())
	assert.Equal(t, scene.StateActive, b.State())
	require.NoError(t, b.Update(0.016))

	rec.FailCompile[renderer.ShaderStageFragment] = "0:3: undeclared identifier"
	failed := scene.NewLevelEditorScene(rec)
	assert.ErrorIs(t, e.Swap(failed), scene.ErrInitFailed)
	require.Equal(t, scene.StateFailed, failed.State())
	delete(rec.FailCompile, renderer.ShaderStageFragment)

	err = e.Swap(failed)
	assert.ErrorIs(t, err, engine.ErrSceneNotUsable)
	assert.Same(t, b, e.Current())
	assert.Equal(t, scene.StateActive, b.State())
	assert.NoError(t, b.Update(0.016))
}

func TestAdvanceKeyWalksScenesAndWraps(t *testing.T) {
	rec := rendertest.NewRecorder()
	win := windowtest.NewFake("CreeThor", 640, 480)
	win.CloseAfter = 6
	win.OnPoll = func(poll int) {
		switch poll {
		case 2, 4:
			win.PressKey(common.KeySpace)
		case 3:
			win.ReleaseKey(common.KeySpace)
		}
	}
	tr := &tracker{}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(rec),
		engine.WithScenes(tr.editor, tr.level),
		engine.WithClock(stepClock(10*time.Millisecond)),
	)

	require.NoError(t, e.Run())

	require.Len(t, tr.created, 3, "press at poll 2 and 4; the hold at 5 and 6 does not repeat")
	assert.Equal(t, scene.LevelEditorName, tr.created[0].Name())
	assert.Equal(t, scene.LevelName, tr.created[1].Name())
	assert.Equal(t, scene.LevelEditorName, tr.created[2].Name())
	assert.NotSame(t, tr.created[0], tr.created[2])
	for _, s := range tr.created {
		assert.Equal(t, scene.StateReleased, s.State())
	}
	assert.Zero(t, rec.Live())
	assert.Equal(t, 6, rec.Frames())
}

func TestUpdateErrorEndsLoop(t *testing.T) {
	rec := rendertest.NewRecorder()
	win := windowtest.NewFake("CreeThor", 640, 480)
	boom := errors.New("device lost")
	win.OnPoll = func(poll int) {
		if poll == 2 {
			rec.FailDraw = boom
		}
	}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(rec),
		engine.WithScenes((&tracker{}).editor),
		engine.WithClock(stepClock(10*time.Millisecond)),
	)

	err := e.Run()

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, win.Polls())
	assert.Equal(t, 1, win.Presents())
	assert.True(t, win.Closed())
	assert.True(t, rec.Released())
	assert.Zero(t, rec.Live())
}

func TestBeginFrameFailureSkipsFrame(t *testing.T) {
	rec := rendertest.NewRecorder()
	win := windowtest.NewFake("CreeThor", 640, 480)
	win.CloseAfter = 5
	outdated := errors.New("surface outdated")
	win.OnPoll = func(poll int) {
		switch poll {
		case 2:
			rec.FailBeginFrame = outdated
		case 3:
			rec.FailBeginFrame = nil
		}
	}
	tr := &tracker{}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(rec),
		engine.WithScenes(tr.editor),
		engine.WithClock(stepClock(10*time.Millisecond)),
	)

	require.NoError(t, e.Run())
	assert.Equal(t, 5, win.Polls())
	assert.Equal(t, 4, win.Presents())
	assert.Equal(t, 4, rec.Frames())
	assert.Len(t, rec.Draws(), 4)
	require.Len(t, tr.created, 1)
	assert.Equal(t, scene.StateReleased, tr.created[0].State())
	assert.Zero(t, rec.Live())
}

func TestQuit(t *testing.T) {
	rec := rendertest.NewRecorder()
	win := windowtest.NewFake("CreeThor", 640, 480)
	var e engine.Engine
	win.OnPoll = func(int) { e.Quit() }

	e = engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(rec),
		engine.WithScenes((&tracker{}).level),
		engine.WithClock(stepClock(10*time.Millisecond)),
	)

	require.NoError(t, e.Run())
	assert.Equal(t, 1, rec.Frames())
}

func TestResizeReachesBackend(t *testing.T) {
	rec := rendertest.NewRecorder()
	win := windowtest.NewFake("CreeThor", 640, 480)
	engine.NewEngine(engine.WithWindow(win), engine.WithBackend(rec))

	win.Resize(800, 600)

	require.Equal(t, []string{"Resize"}, rec.Ops())
	assert.Equal(t, []any{800, 600}, rec.Calls()[0].Args)
}

func TestAdvanceWithoutScenes(t *testing.T) {
	e := engine.NewEngine(engine.WithBackend(rendertest.NewRecorder()))
	assert.ErrorIs(t, e.Advance(), engine.ErrNoScenes)
}
