// Package viewer implements the interactive tileset viewer loop.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/terratile/internal/assets"
	"github.com/Faultbox/terratile/internal/config"
	"github.com/Faultbox/terratile/internal/engine/camera"
	"github.com/Faultbox/terratile/internal/engine/debug"
	"github.com/Faultbox/terratile/internal/engine/input"
	"github.com/Faultbox/terratile/internal/engine/renderer"
	"github.com/Faultbox/terratile/internal/engine/scene"
	"github.com/Faultbox/terratile/internal/engine/window"
	"github.com/Faultbox/terratile/internal/logger"
	"github.com/Faultbox/terratile/internal/tile"
	"github.com/Faultbox/terratile/internal/tileset"
	"github.com/Faultbox/terratile/pkg/math"
)

const title = "terratile"

// sharedCamera guards the camera the render loop moves and the loader reads.
type sharedCamera struct {
	mu  sync.Mutex
	cam *camera.OrbitCamera
}

func (s *sharedCamera) VerticalFOV() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam.VerticalFOV()
}

func (s *sharedCamera) ViewportSize() (width, height float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam.ViewportSize()
}

func (s *sharedCamera) Position() math.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam.Position()
}

func (s *sharedCamera) with(fn func(*camera.OrbitCamera)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cam)
}

// Viewer owns the window, the scene and the tileset load.
type Viewer struct {
	cfg      *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *sharedCamera
	graph    *scene.Graph
	orch     *tile.Orchestrator
	shots    *debug.ScreenshotCapture

	framed     bool
	screenshot bool
}

// New opens the window and prepares the tileset load.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("info", cfg.Tileset.Info),
	)

	v := &Viewer{cfg: cfg}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.DrawableSize()

	// Create renderer (AFTER window, since OpenGL context must exist)
	v.renderer, err = renderer.New(renderer.Config{
		Width:     width,
		Height:    height,
		Wireframe: cfg.Graphics.Wireframe,

		SunAzimuth:   cfg.Graphics.SunAzimuth,
		SunElevation: cfg.Graphics.SunElevation,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()

	cam := camera.NewOrbitCamera()
	cam.FovY = cfg.Camera.FOV
	cam.Near = cfg.Camera.Near
	cam.Far = cfg.Camera.Far
	cam.SetViewport(width, height)
	v.camera = &sharedCamera{cam: cam}

	v.graph = scene.NewGraph()
	v.shots = debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "terratile")

	source := assets.NewSource(cfg.Network.RequestTimeout)
	v.orch = tile.New(
		tile.OptionsFromConfig(cfg.Tileset),
		tileset.NewFetcher(source),
		assets.NewLoader(source),
		v.graph,
		v.camera,
	)

	logger.Info("viewer initialized")
	return v, nil
}

// Run loads the tileset in the background and renders until the window closes.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loadDone := make(chan error, 1)
	go func() {
		loadDone <- v.orch.Load(ctx)
	}()

	v.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.handleMovement(dt)

		// 2. Track the load
		select {
		case err := <-loadDone:
			v.onLoaded(err)
		case <-ctx.Done():
			v.running = false
		default:
		}
		if !v.framed && v.orch.Metadata() != nil {
			v.frame()
			v.framed = true
		}

		// 3. Reselect LOD variants for this frame's camera
		v.orch.Update()

		// 4. Render
		v.renderer.Begin()
		var cam camera.OrbitCamera
		v.camera.with(func(c *camera.OrbitCamera) { cam = *c })
		v.renderer.Render(v.graph.Objects(), &cam)
		if v.screenshot {
			v.capture()
			v.screenshot = false
		}

		// 5. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.updateTitle(frameCount)
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			width, height := v.window.DrawableSize()
			v.renderer.Resize(width, height)
			v.camera.with(func(c *camera.OrbitCamera) { c.SetViewport(width, height) })
		case input.EventMouseMove:
			if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
				dx, dy := float32(event.DeltaX), float32(event.DeltaY)
				v.camera.with(func(c *camera.OrbitCamera) { c.HandleDrag(dx, dy) })
			}
		case input.EventMouseWheel:
			delta := float32(event.DeltaY)
			v.camera.with(func(c *camera.OrbitCamera) { c.HandleZoom(delta) })
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_F:
				v.renderer.SetWireframe(!v.renderer.Wireframe())
			case sdl.SCANCODE_R:
				v.frame()
			case sdl.SCANCODE_P:
				v.screenshot = true
			}
		}
	}
}

func (v *Viewer) handleMovement(dt float32) {
	var forward, right float32
	if v.input.IsKeyDown(sdl.SCANCODE_W) {
		forward++
	}
	if v.input.IsKeyDown(sdl.SCANCODE_S) {
		forward--
	}
	if v.input.IsKeyDown(sdl.SCANCODE_D) {
		right++
	}
	if v.input.IsKeyDown(sdl.SCANCODE_A) {
		right--
	}
	if forward == 0 && right == 0 {
		return
	}
	// HandleMovement steps are tuned for 60 fps.
	scale := dt * 60
	v.camera.with(func(c *camera.OrbitCamera) { c.HandleMovement(forward*scale, right*scale) })
}

func (v *Viewer) onLoaded(err error) {
	if err != nil {
		// Already logged by the orchestrator; the scene stays as it is.
		if !errors.Is(err, context.Canceled) {
			v.window.SetTitle(fmt.Sprintf("%s - load failed", title))
		}
		return
	}
	logger.Info("tileset displayed", zap.Int("tiles", len(v.graph.Objects())))
}

// capture saves the frame just rendered, before the buffers swap.
func (v *Viewer) capture() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// frame points the camera at the whole tileset.
func (v *Viewer) frame() {
	meta := v.orch.Metadata()
	if meta == nil {
		return
	}
	bound := meta.Bound()
	var top float32
	for _, lod := range v.orch.LODs() {
		top = max(top, lod.Bounds().Max[2])
	}
	v.camera.with(func(c *camera.OrbitCamera) {
		c.FitToBounds(float32(bound.Min[0]), float32(bound.Min[1]), float32(bound.Max[0]), float32(bound.Max[1]), top)
	})
}

func (v *Viewer) updateTitle(fps int) {
	state := v.orch.State()
	if state == tile.Failed {
		return
	}
	text := fmt.Sprintf("%s - %s - %d fps", title, state, fps)
	if i := v.orch.TileIndex(); i >= 0 {
		if meta := v.orch.Metadata(); meta != nil {
			text = fmt.Sprintf("%s - %s %d/%d - %d fps", title, state, i+1, len(meta.Tiles), fps)
		}
	}
	v.window.SetTitle(text)
}

// Close tears down the scene, renderer and window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.orch != nil {
		v.orch.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
