package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Camera.FOV != 45 {
		t.Errorf("expected fov 45, got %v", cfg.Camera.FOV)
	}
	if !slices.Equal(cfg.Tileset.HeightScale, HeightScale{100}) {
		t.Errorf("expected height scale [100], got %v", cfg.Tileset.HeightScale)
	}
	if cfg.Network.RequestTimeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Network.RequestTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
tileset:
  info: "https://tiles.example.com/info.json"
  texture: "https://tiles.example.com/textures"
  height_map: "https://tiles.example.com/heightmaps"
  height_scale: [120, 60, 30]
  materials:
    rocky: "rock_01"

camera:
  fov: 60
  near: 0.5
  far: 50000

graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  wireframe: true

network:
  request_timeout: 5s

logging:
  level: "debug"
  log_file: "terratile.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tileset.Info != "https://tiles.example.com/info.json" {
		t.Errorf("unexpected info %s", cfg.Tileset.Info)
	}
	if cfg.Tileset.HeightMap != "https://tiles.example.com/heightmaps" {
		t.Errorf("unexpected height_map %s", cfg.Tileset.HeightMap)
	}
	if !slices.Equal(cfg.Tileset.HeightScale, HeightScale{120, 60, 30}) {
		t.Errorf("expected height scale [120 60 30], got %v", cfg.Tileset.HeightScale)
	}
	if cfg.Tileset.Materials["rocky"] != "rock_01" {
		t.Errorf("expected rocky override rock_01, got %q", cfg.Tileset.Materials["rocky"])
	}
	if cfg.Camera.FOV != 60 || cfg.Camera.Near != 0.5 || cfg.Camera.Far != 50000 {
		t.Errorf("unexpected camera %+v", cfg.Camera)
	}
	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("unexpected size %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen || cfg.Graphics.VSync || !cfg.Graphics.Wireframe {
		t.Errorf("unexpected graphics flags %+v", cfg.Graphics)
	}
	if cfg.Network.RequestTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Network.RequestTimeout)
	}
	if cfg.Logging.LogFile != "terratile.log" {
		t.Errorf("expected log file 'terratile.log', got %s", cfg.Logging.LogFile)
	}
}

func TestHeightScaleYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    HeightScale
		wantErr bool
	}{
		{"scalar", "tileset:\n  height_scale: 80\n", HeightScale{80}, false},
		{"list", "tileset:\n  height_scale: [80, 40]\n", HeightScale{80, 40}, false},
		{"block list", "tileset:\n  height_scale:\n    - 1.5\n    - 0.75\n", HeightScale{1.5, 0.75}, false},
		{"mapping", "tileset:\n  height_scale:\n    a: 1\n", nil, true},
		{"not a number", "tileset:\n  height_scale: tall\n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := Default()
			err := loadFromFile(cfg, path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadFromFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(cfg.Tileset.HeightScale, tt.want) {
				t.Errorf("HeightScale = %v, want %v", cfg.Tileset.HeightScale, tt.want)
			}
		})
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing info", func(c *Config) { c.Tileset.Info = "" }},
		{"missing texture", func(c *Config) { c.Tileset.Texture = "" }},
		{"missing height map", func(c *Config) { c.Tileset.HeightMap = "" }},
		{"empty height scale", func(c *Config) { c.Tileset.HeightScale = nil }},
		{"zero fov", func(c *Config) { c.Camera.FOV = 0 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.5 }},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"negative timeout", func(c *Config) { c.Network.RequestTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" && filepath.Dir(path) == "." {
		t.Errorf("expected no config in empty directory, got %s", path)
	}

	if err := os.WriteFile("config.yaml", []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path != "./config.yaml" {
		t.Errorf("expected ./config.yaml, got %q", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "tileset flags",
			setup: func() {
				*flagInfo = "http://localhost:8080/info.json"
				*flagTexture = "http://localhost:8080/textures"
				*flagHeightMap = "http://localhost:8080/heightmaps"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tileset.Info != "http://localhost:8080/info.json" {
					t.Errorf("unexpected info %s", cfg.Tileset.Info)
				}
				if cfg.Tileset.Texture != "http://localhost:8080/textures" {
					t.Errorf("unexpected texture %s", cfg.Tileset.Texture)
				}
				if cfg.Tileset.HeightMap != "http://localhost:8080/heightmaps" {
					t.Errorf("unexpected height map %s", cfg.Tileset.HeightMap)
				}
			},
			teardown: func() {
				*flagInfo = ""
				*flagTexture = ""
				*flagHeightMap = ""
			},
		},
		{
			name:  "height scale list",
			setup: func() { *flagHeightScale = "90, 45,20" },
			verify: func(t *testing.T, cfg *Config) {
				if !slices.Equal(cfg.Tileset.HeightScale, HeightScale{90, 45, 20}) {
					t.Errorf("expected [90 45 20], got %v", cfg.Tileset.HeightScale)
				}
			},
			teardown: func() { *flagHeightScale = "" },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags() error = %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsBadHeightScale(t *testing.T) {
	*flagHeightScale = "80,high"
	defer func() { *flagHeightScale = "" }()

	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for malformed height-scale flag")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Tileset.HeightScale = HeightScale{64, 32}
	cfg.Tileset.Materials = map[string]string{"snowy": "snow_hd"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if !slices.Equal(loaded.Tileset.HeightScale, cfg.Tileset.HeightScale) {
		t.Errorf("HeightScale = %v, want %v", loaded.Tileset.HeightScale, cfg.Tileset.HeightScale)
	}
	if loaded.Tileset.Materials["snowy"] != "snow_hd" {
		t.Errorf("materials not saved: %v", loaded.Tileset.Materials)
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("camera:\n  fov: 200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject fov 200")
	}
}
