// Package renderer draws the terrain scene with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terratile/internal/engine/camera"
	"github.com/Faultbox/terratile/internal/engine/lighting"
	"github.com/Faultbox/terratile/internal/engine/terrain"
	"github.com/Faultbox/terratile/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool

	SunAzimuth   float32 // degrees
	SunElevation float32 // degrees
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	terrain *TerrainRenderer

	// Light direction (normalized, pointing towards the light)
	LightDir [3]float32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.53, 0.68, 0.85, 1.0) // Sky blue

	tr, err := NewTerrainRenderer()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		config:   cfg,
		terrain:  tr,
		LightDir: lighting.SunDirection(cfg.SunAzimuth, cfg.SunElevation),
	}
	r.Resize(cfg.Width, cfg.Height)
	r.SetWireframe(cfg.Wireframe)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.terrain != nil {
		r.terrain.Destroy()
		r.terrain = nil
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetWireframe toggles polygon line mode.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Wireframe reports whether polygon line mode is on.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// ReadPixels reads the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Render uploads scene changes and draws every object from the camera's point of view.
func (r *Renderer) Render(objects []*terrain.LOD, cam *camera.OrbitCamera) {
	r.terrain.Sync(objects)
	viewProj := cam.ProjectionMatrix().Mul(cam.ViewMatrix())
	r.terrain.Render(objects, viewProj, r.LightDir)
}
