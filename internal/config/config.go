package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"property-explorer/internal/property"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file path, relative to the process working directory.
const DefaultPath = "config/explorer.yaml"

// APIKeyEnv overrides imagery.api_key when set.
const APIKeyEnv = "GOOGLE_MAPS_API_KEY"

// Config is the explorer configuration. Every section has defaults, so a missing file or
// a file that sets only a few keys is fine.
type Config struct {
	Scene       Scene            `yaml:"scene"`
	Imagery     Imagery          `yaml:"imagery"`
	Switcher    Switcher         `yaml:"switcher"`
	Interaction Interaction      `yaml:"interaction"`
	Window      Window           `yaml:"window"`
	Logging     Logging          `yaml:"logging"`
	Debug       Debug            `yaml:"debug"`
	Weights     property.Weights `yaml:"weights,omitempty"`
}

// Scene sizes. house_size is width, thickness, depth.
type Scene struct {
	MaxHeight    float32    `yaml:"max_height"`
	HouseSize    [3]float32 `yaml:"house_size,flow"`
	RodRadius    float32    `yaml:"rod_radius"`
	LabelOffset  float32    `yaml:"label_offset"`
	LayoutRadius float32    `yaml:"layout_radius"`
	GridVisible  bool       `yaml:"grid_visible"`
	// Bob is how far boxes showing imagery float above their rods; 0 turns it off.
	Bob float32 `yaml:"bob"`
}

type Imagery struct {
	APIKey         string        `yaml:"api_key,omitempty"`
	StreetViewURL  string        `yaml:"street_view_url"`
	StaticMapURL   string        `yaml:"static_map_url"`
	GroundLevel    GroundLevel   `yaml:"ground_level"`
	Overhead       Overhead      `yaml:"overhead"`
	Timeout        time.Duration `yaml:"timeout"`
	CacheDir       string        `yaml:"cache_dir,omitempty"`
	MaxTextureSize int           `yaml:"max_texture_size"`
}

// GroundLevel holds Street View request parameters.
type GroundLevel struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	FOV     float64 `yaml:"fov"`
	Heading float64 `yaml:"heading"`
	Pitch   float64 `yaml:"pitch"`
}

// Overhead holds Static Maps request parameters.
type Overhead struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Zoom   int `yaml:"zoom"`
}

type Switcher struct {
	OverheadPitchDeg float32 `yaml:"overhead_pitch_deg"`
	HysteresisDeg    float32 `yaml:"hysteresis_deg"`
}

type Interaction struct {
	ExplodeDuration time.Duration `yaml:"explode_duration"`
	CameraOffset    [3]float32    `yaml:"camera_offset,flow"`
}

type Window struct {
	Fullscreen bool   `yaml:"fullscreen"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TargetFPS  int    `yaml:"target_fps"`
	Title      string `yaml:"title"`
	// Font is a font family looked up under assets/fonts; empty uses raylib's font.
	Font string `yaml:"font,omitempty"`
}

type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Debug toggles the on-screen overlays.
type Debug struct {
	ShowFPS      bool `yaml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc"`
	ShowStats    bool `yaml:"show_stats"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scene: Scene{
			MaxHeight:    20,
			HouseSize:    [3]float32{5.6, 0.8, 4.0},
			RodRadius:    0.25,
			LabelOffset:  1.5,
			LayoutRadius: 40,
			GridVisible:  true,
			Bob:          0.15,
		},
		Imagery: Imagery{
			StreetViewURL:  "https://maps.googleapis.com/maps/api/streetview",
			StaticMapURL:   "https://maps.googleapis.com/maps/api/staticmap",
			GroundLevel:    GroundLevel{Width: 1600, Height: 1200, FOV: 90, Heading: 0, Pitch: 10},
			Overhead:       Overhead{Width: 1600, Height: 1200, Zoom: 19},
			Timeout:        15 * time.Second,
			CacheDir:       "cache/imagery",
			MaxTextureSize: 1024,
		},
		Switcher: Switcher{OverheadPitchDeg: -30},
		Interaction: Interaction{
			ExplodeDuration: 400 * time.Millisecond,
			CameraOffset:    [3]float32{30, 20, 30},
		},
		Window: Window{
			Width:     1600,
			Height:    900,
			TargetFPS: 60,
			Title:     "Property Explorer",
			Font:      "Inter",
		},
		Logging: Logging{Level: "info", File: "logs/explorer.log"},
	}
}

// Load reads the YAML config at path over the defaults, then loads .env from the working
// directory and applies environment overrides. A missing config file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: .env: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv copies environment overrides into cfg.
func (c *Config) ApplyEnv() {
	if key := os.Getenv(APIKeyEnv); key != "" {
		c.Imagery.APIKey = key
	}
}

// Validate rejects values the scene cannot work with.
func (c Config) Validate() error {
	if c.Scene.MaxHeight <= 0 {
		return fmt.Errorf("config: scene.max_height must be positive, got %v", c.Scene.MaxHeight)
	}
	for i, v := range c.Scene.HouseSize {
		if v <= 0 {
			return fmt.Errorf("config: scene.house_size[%d] must be positive, got %v", i, v)
		}
	}
	if c.Scene.Bob < 0 {
		return fmt.Errorf("config: scene.bob must not be negative, got %v", c.Scene.Bob)
	}
	if c.Switcher.HysteresisDeg < 0 {
		return fmt.Errorf("config: switcher.hysteresis_deg must not be negative, got %v", c.Switcher.HysteresisDeg)
	}
	if c.Switcher.OverheadPitchDeg <= -90 || c.Switcher.OverheadPitchDeg >= 90 {
		return fmt.Errorf("config: switcher.overhead_pitch_deg must be within (-90, 90), got %v", c.Switcher.OverheadPitchDeg)
	}
	for name, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("config: weights.%s must not be negative, got %v", name, w)
		}
	}
	return nil
}

// Save writes cfg to path as YAML, creating the directory if needed. The API key is not
// written so keys stay in the environment.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.Imagery.APIKey = ""
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
