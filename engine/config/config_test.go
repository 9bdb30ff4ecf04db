package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "CreeThor", cfg.Window.Title)
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, 1080, cfg.Window.Height)
	assert.Equal(t, renderer.BackendTypeGL, cfg.BackendType())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, cfg.ClearColor())
	assert.Equal(t, common.KeySpace, cfg.AdvanceKey())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "engine.yaml", `
window:
  title: Editor
  width: 800
  height: 600
  vsync: false
renderer:
  backend: wgpu
  clear_color: [0.1, 0.2, 0.3, 1]
  flatten_workers: 4
scene:
  advance_key: right
log:
  level: debug
  development: true
profiling: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Editor", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.False(t, cfg.Window.VSync)
	assert.True(t, cfg.Window.Maximized, "unset keys keep their defaults")
	assert.Equal(t, renderer.BackendTypeWGPU, cfg.BackendType())
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.Renderer.ClearColor)
	assert.Equal(t, 4, cfg.Renderer.FlattenWorkers)
	assert.Equal(t, common.KeyRight, cfg.AdvanceKey())
	assert.True(t, cfg.Log.Development)
	assert.True(t, cfg.Profiling)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "engine.toml", `
profiling = true

[window]
title = ""
height = 720

[renderer]
backend = "opengl"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "CreeThor", cfg.Window.Title)
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, renderer.BackendTypeGL, cfg.BackendType())
	assert.True(t, cfg.Profiling)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "unknown extension", file: "engine.json", body: "{}"},
		{name: "unknown yaml key", file: "engine.yaml", body: "window:\n  colour: red\n"},
		{name: "unknown toml key", file: "engine.toml", body: "[window]\ncolour = \"red\"\n"},
		{name: "bad backend", file: "engine.yaml", body: "renderer:\n  backend: vulkan\n"},
		{name: "bad clear color", file: "engine.yaml", body: "renderer:\n  clear_color: [2, 0, 0, 1]\n"},
		{name: "bad advance key", file: "engine.yaml", body: "scene:\n  advance_key: hyper\n"},
		{name: "negative size", file: "engine.toml", body: "[window]\nwidth = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "engine.ini", ""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Renderer.Backend = "metal"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "metal")
	assert.Contains(t, err.Error(), "log level")
}
