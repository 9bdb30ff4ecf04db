// Package config loads the engine configuration from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/creethor/common"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for a file extension other than .yaml, .yml or .toml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the complete engine configuration.
type Config struct {
	Window    WindowConfig   `yaml:"window" toml:"window"`
	Renderer  RendererConfig `yaml:"renderer" toml:"renderer"`
	Scene     SceneConfig    `yaml:"scene" toml:"scene"`
	Log       LogConfig      `yaml:"log" toml:"log"`
	Profiling bool           `yaml:"profiling" toml:"profiling"`
}

// WindowConfig configures the host window.
type WindowConfig struct {
	Title     string `yaml:"title" toml:"title"`
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	VSync     bool   `yaml:"vsync" toml:"vsync"`
	Resizable bool   `yaml:"resizable" toml:"resizable"`
	Maximized bool   `yaml:"maximized" toml:"maximized"`
}

// RendererConfig selects and configures the GPU backend.
type RendererConfig struct {
	// Backend is "gl" or "wgpu".
	Backend string `yaml:"backend" toml:"backend"`

	// ClearColor is the RGBA color every frame starts from, each component in [0, 1].
	ClearColor [4]float32 `yaml:"clear_color" toml:"clear_color"`

	// FlattenWorkers interleaves meshes on this many goroutines; below 2 is sequential.
	FlattenWorkers int `yaml:"flatten_workers" toml:"flatten_workers"`
}

// SceneConfig configures the scenes the host runs.
type SceneConfig struct {
	// ShaderPath replaces the embedded default shader when set.
	ShaderPath string `yaml:"shader_path" toml:"shader_path"`

	// AdvanceKey names the key that moves to the next scene, see common.KeyByName.
	AdvanceKey string `yaml:"advance_key" toml:"advance_key"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

// Default returns the configuration used when no file is given: a 1920x1080 maximized,
// resizable "CreeThor" window with v-sync, the OpenGL backend clearing to white, space
// as the advance key and info logging.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "CreeThor",
			Width:     1920,
			Height:    1080,
			VSync:     true,
			Resizable: true,
			Maximized: true,
		},
		Renderer: RendererConfig{
			Backend:    renderer.BackendTypeGL.String(),
			ClearColor: [4]float32{1, 1, 1, 1},
		},
		Scene: SceneConfig{
			AdvanceKey: "space",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file over the defaults. The format is chosen by extension.
// Unknown keys are rejected.
//
// Parameters:
//   - path: the path of a .yaml, .yml or .toml file
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: ErrUnsupportedFormat, a read or decode error, or a validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for values a file explicitly emptied.
func (c *Config) fillDefaults() {
	d := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)
	c.Renderer.Backend = common.Coalesce(c.Renderer.Backend, d.Renderer.Backend)
	c.Scene.AdvanceKey = common.Coalesce(c.Scene.AdvanceKey, d.Scene.AdvanceKey)
	c.Log.Level = common.Coalesce(c.Log.Level, d.Log.Level)
}

// Validate checks every field for a usable value.
//
// Returns:
//   - error: a joined error listing every invalid field, or nil
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, ok := renderer.ParseBackendType(c.Renderer.Backend); !ok {
		errs = append(errs, fmt.Errorf("unknown renderer backend %q", c.Renderer.Backend))
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear color component %d is %v, want [0, 1]", i, v))
		}
	}
	if c.Renderer.FlattenWorkers < 0 {
		errs = append(errs, fmt.Errorf("flatten workers %d must not be negative", c.Renderer.FlattenWorkers))
	}
	if _, ok := common.KeyByName(c.Scene.AdvanceKey); !ok {
		errs = append(errs, fmt.Errorf("unknown advance key %q", c.Scene.AdvanceKey))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// BackendType returns the parsed renderer backend. Call Validate first.
func (c *Config) BackendType() renderer.BackendType {
	bt, _ := renderer.ParseBackendType(c.Renderer.Backend)
	return bt
}

// ClearColor returns the clear color as a vector.
func (c *Config) ClearColor() mgl32.Vec4 {
	return mgl32.Vec4(c.Renderer.ClearColor)
}

// AdvanceKey returns the key code of the advance key. Call Validate first.
func (c *Config) AdvanceKey() int {
	code, _ := common.KeyByName(c.Scene.AdvanceKey)
	return code
}
