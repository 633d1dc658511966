// Package config loads handwheel settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Accepted values for the kind settings.
var (
	Injectors = []string{"robotgo", "plugin", "log"}
	Detectors = []string{"mediapipe", "mock"}
	LogLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the complete handwheel configuration.
type Config struct {
	Camera   CameraConfig   `toml:"camera"`
	Steering SteeringConfig `toml:"steering"`
	Keys     KeysConfig     `toml:"keys"`
	Detector DetectorConfig `toml:"detector"`
	Display  DisplayConfig  `toml:"display"`
	Tray     TrayConfig     `toml:"tray"`
	Log      LogConfig      `toml:"log"`
}

type CameraConfig struct {
	Device int `toml:"device"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
	FPS    int `toml:"fps"`
}

// SteeringConfig is the part of the configuration that can be reloaded
// while running.
type SteeringConfig struct {
	Radius       float64 `toml:"radius"`
	ThresholdDeg float64 `toml:"threshold_deg"`
}

type KeysConfig struct {
	Injector  string `toml:"injector"`
	PluginDir string `toml:"plugin_dir"`
	Plugin    string `toml:"plugin"`
}

type DetectorConfig struct {
	Kind                  string  `toml:"kind"`
	MaxHands              int     `toml:"max_hands"`
	MinConfidence         float64 `toml:"min_confidence"`
	MinTrackingConfidence float64 `toml:"min_tracking_confidence"`
}

type DisplayConfig struct {
	Window bool `toml:"window"`
	Mirror bool `toml:"mirror"`
}

type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{Device: 0, Width: 1280, Height: 720, FPS: 30},
		Steering: SteeringConfig{
			Radius:       150,
			ThresholdDeg: 30,
		},
		Keys: KeysConfig{
			Injector:  "robotgo",
			PluginDir: defaultPluginDir(),
			Plugin:    "keyboard",
		},
		Detector: DetectorConfig{
			Kind:                  "mediapipe",
			MaxHands:              2,
			MinConfidence:         0.5,
			MinTrackingConfidence: 0.5,
		},
		Display: DisplayConfig{Window: true, Mirror: true},
		Tray:    TrayConfig{Enabled: false},
		Log:     LogConfig{Level: "info"},
	}
}

// Dir returns ~/.handwheel.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".handwheel"), nil
}

// DefaultPath returns ~/.handwheel/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func defaultPluginDir() string {
	dir, err := Dir()
	if err != nil {
		return "plugins"
	}
	return filepath.Join(dir, "plugins")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result. Keys absent
// from data keep their current values.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg.Validate()
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := c.Steering.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		fail("camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		fail("camera.fps %d must be positive", c.Camera.FPS)
	}
	if !slices.Contains(Injectors, c.Keys.Injector) {
		fail("keys.injector %q (want one of %v)", c.Keys.Injector, Injectors)
	}
	if !slices.Contains(Detectors, c.Detector.Kind) {
		fail("detector.kind %q (want one of %v)", c.Detector.Kind, Detectors)
	}
	if c.Detector.MaxHands < 2 {
		fail("detector.max_hands %d must be at least 2", c.Detector.MaxHands)
	}
	if !unit(c.Detector.MinConfidence) || !unit(c.Detector.MinTrackingConfidence) {
		fail("detector confidences must be within [0, 1]")
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.Log.Level)) {
		fail("log.level %q (want one of %v)", c.Log.Level, LogLevels)
	}
	return errors.Join(errs...)
}

// Validate checks the steering section on its own, for live reloads.
func (s SteeringConfig) Validate() error {
	var errs []error
	if math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) || s.Radius <= 0 {
		errs = append(errs, fmt.Errorf("%w: steering.radius %v must be positive", ErrInvalid, s.Radius))
	}
	if !(s.ThresholdDeg > 0 && s.ThresholdDeg < 90) {
		errs = append(errs, fmt.Errorf("%w: steering.threshold_deg %v must be within (0, 90)", ErrInvalid, s.ThresholdDeg))
	}
	return errors.Join(errs...)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
