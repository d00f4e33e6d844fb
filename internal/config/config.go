// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	Tileset  TilesetConfig  `yaml:"tileset"`
	Camera   CameraConfig   `yaml:"camera"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Network  NetworkConfig  `yaml:"network"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TilesetConfig locates the tileset resources.
type TilesetConfig struct {
	Info        string            `yaml:"info"`         // Metadata JSON path or URL
	Texture     string            `yaml:"texture"`      // Base path of the material images
	HeightMap   string            `yaml:"height_map"`   // Base path of the per-tile height-maps
	HeightScale HeightScale       `yaml:"height_scale"` // Displacement per level
	Materials   map[string]string `yaml:"materials"`    // Material name -> file name override
}

// CameraConfig holds projection settings.
type CameraConfig struct {
	FOV  float32 `yaml:"fov"` // Vertical, degrees
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Wireframe  bool `yaml:"wireframe"`

	SunAzimuth    float32 `yaml:"sun_azimuth"`   // Degrees clockwise from +Y
	SunElevation  float32 `yaml:"sun_elevation"` // Degrees above the ground plane
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// NetworkConfig holds fetch settings.
type NetworkConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// HeightScale is a flat displacement scale or one scale per LOD level.
// In YAML it is written either as a number or as a sequence of numbers.
type HeightScale []float32

// UnmarshalYAML accepts a scalar or a sequence.
func (h *HeightScale) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float32
		if err := node.Decode(&v); err != nil {
			return err
		}
		*h = HeightScale{v}
		return nil
	case yaml.SequenceNode:
		var vs []float32
		if err := node.Decode(&vs); err != nil {
			return err
		}
		*h = vs
		return nil
	default:
		return fmt.Errorf("line %d: height_scale must be a number or a list of numbers", node.Line)
	}
}

// MarshalYAML writes a single scale as a plain number.
func (h HeightScale) MarshalYAML() (interface{}, error) {
	if len(h) == 1 {
		return h[0], nil
	}
	return []float32(h), nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tileset: TilesetConfig{
			Info:        "tiles/info.json",
			Texture:     "tiles/textures",
			HeightMap:   "tiles/heightmaps",
			HeightScale: HeightScale{100},
		},
		Camera: CameraConfig{
			FOV:  45,
			Near: 1,
			Far:  100000,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,

			SunAzimuth:    135,
			SunElevation:  50,
			ScreenshotDir: "screenshots",
		},
		Network: NetworkConfig{
			RequestTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would otherwise fail deep inside a load.
func (c *Config) Validate() error {
	var errs []error
	if c.Tileset.Info == "" {
		errs = append(errs, errors.New("tileset.info is required"))
	}
	if c.Tileset.Texture == "" {
		errs = append(errs, errors.New("tileset.texture is required"))
	}
	if c.Tileset.HeightMap == "" {
		errs = append(errs, errors.New("tileset.height_map is required"))
	}
	if len(c.Tileset.HeightScale) == 0 {
		errs = append(errs, errors.New("tileset.height_scale is required"))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov %v out of range (0, 180)", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera near/far %v/%v invalid", c.Camera.Near, c.Camera.Far))
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics size %dx%d invalid", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.SunElevation < 0 || c.Graphics.SunElevation > 90 {
		errs = append(errs, fmt.Errorf("graphics.sun_elevation %v out of range [0, 90]", c.Graphics.SunElevation))
	}
	if c.Network.RequestTimeout < 0 {
		errs = append(errs, errors.New("network.request_timeout must not be negative"))
	}
	return errors.Join(errs...)
}
