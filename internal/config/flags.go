package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagInfo        = flag.String("info", "", "Tileset metadata path or URL")
	flagTexture     = flag.String("texture", "", "Base path of the material textures")
	flagHeightMap   = flag.String("heightmap", "", "Base path of the tile height-maps")
	flagHeightScale = flag.String("height-scale", "", "Height scale, a number or comma-separated list per level")
	flagWindowed    = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagInfo != "" {
		cfg.Tileset.Info = *flagInfo
	}
	if *flagTexture != "" {
		cfg.Tileset.Texture = *flagTexture
	}
	if *flagHeightMap != "" {
		cfg.Tileset.HeightMap = *flagHeightMap
	}
	if *flagHeightScale != "" {
		scale, err := parseHeightScale(*flagHeightScale)
		if err != nil {
			return err
		}
		cfg.Tileset.HeightScale = scale
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	return nil
}

// parseHeightScale parses "80" or "80,40,20".
func parseHeightScale(s string) (HeightScale, error) {
	parts := strings.Split(s, ",")
	scale := make(HeightScale, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("height-scale %q: %w", s, err)
		}
		scale = append(scale, float32(v))
	}
	return scale, nil
}
