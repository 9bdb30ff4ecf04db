// Command creethor opens the editor window and runs the scene loop until the window is closed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/creethor/engine"
	"github.com/Carmen-Shannon/creethor/engine/config"
	"github.com/Carmen-Shannon/creethor/engine/logger"
	"github.com/Carmen-Shannon/creethor/engine/renderer"
	"github.com/Carmen-Shannon/creethor/engine/scene"
	"github.com/Carmen-Shannon/creethor/engine/window"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml configuration file")
	backend := flag.String("backend", "", "renderer backend, gl or wgpu (overrides the configuration)")
	profile := flag.Bool("profile", false, "log frame rate and memory statistics every second")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *backend, *profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creethor: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creethor: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("creethor exited with an error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func loadConfig(path, backend string, profile bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if backend != "" {
		cfg.Renderer.Backend = backend
	}
	if profile {
		cfg.Profiling = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	backendType := cfg.BackendType()

	api := window.ClientAPIOpenGL
	if backendType == renderer.BackendTypeWGPU {
		api = window.ClientAPINone
	}
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithClientAPI(api),
		window.WithVSync(cfg.Window.VSync),
		window.WithResizable(cfg.Window.Resizable),
		window.WithMaximized(cfg.Window.Maximized),
		window.WithLogger(log),
	)
	if err != nil {
		return err
	}

	backendOpts := []renderer.BackendBuilderOption{
		renderer.WithSurfaceSize(win.Width(), win.Height()),
		renderer.WithLogger(log),
	}
	if !cfg.Window.VSync {
		backendOpts = append(backendOpts, renderer.WithPresentMode(renderer.PresentModeUncapped))
	}
	if backendType == renderer.BackendTypeWGPU {
		backendOpts = append(backendOpts, renderer.WithSurface(win.SurfaceDescriptor()))
	}
	backend, err := renderer.NewBackend(backendType, backendOpts...)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("failed to create %s backend: %w", backendType, err)
	}

	sceneOpts := []scene.SceneBuilderOption{
		scene.WithFlattenWorkers(cfg.Renderer.FlattenWorkers),
		scene.WithLogger(log),
	}
	editorOpts := sceneOpts
	if cfg.Scene.ShaderPath != "" {
		editorOpts = append(editorOpts[:len(editorOpts):len(editorOpts)], scene.WithShaderPath(cfg.Scene.ShaderPath))
	}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(backend),
		engine.WithScenes(
			func(b renderer.Backend) scene.Scene { return scene.NewLevelEditorScene(b, editorOpts...) },
			func(b renderer.Backend) scene.Scene { return scene.NewLevelScene(b, sceneOpts...) },
		),
		engine.WithClearColor(cfg.ClearColor()),
		engine.WithAdvanceKey(cfg.AdvanceKey()),
		engine.WithProfiling(cfg.Profiling),
		engine.WithLogger(log),
	)
	return e.Run()
}
