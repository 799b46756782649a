// Package config загружает настройки игры из YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the game configuration. Zero fields in a file keep the defaults.
type Config struct {
	// Step is the fixed simulation step, e.g. "33ms".
	Step time.Duration `yaml:"step"`
	// FrameInterval paces frontend frames.
	FrameInterval time.Duration `yaml:"frame_interval"`
	TimeScale     float64       `yaml:"time_scale"`
	Seed          int64         `yaml:"seed"`

	// Catalog is an optional YAML file overlaying the built-in tables.
	Catalog string `yaml:"catalog"`

	Storage StorageConfig `yaml:"storage"`
	GRPC    GRPCConfig    `yaml:"grpc"`
	Log     LogConfig     `yaml:"log"`
	Plugins PluginsConfig `yaml:"plugins"`
	Start   StartConfig   `yaml:"start"`
}

type StorageConfig struct {
	Dir       string `yaml:"dir"`
	WorldName string `yaml:"world_name"`
	Disabled  bool   `yaml:"disabled"`
	// Autosave is the interval between automatic saves; zero disables them.
	Autosave time.Duration `yaml:"autosave"`
}

type GRPCConfig struct {
	Address    string `yaml:"address"`
	Reflection bool   `yaml:"reflection"`
	Disabled   bool   `yaml:"disabled"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	// File receives the log when the terminal viewer owns the screen.
	File string `yaml:"file"`
}

type PluginsConfig struct {
	Dir string `yaml:"dir"`
}

// StartConfig describes the initial scene.
type StartConfig struct {
	Hour    int        `yaml:"hour"`
	Minute  int        `yaml:"minute"`
	Weather string     `yaml:"weather"`
	Player  [3]float32 `yaml:"player"`
	// Intro starts the introductory mission script.
	Intro    bool          `yaml:"intro"`
	Traffic  bool          `yaml:"traffic"`
	Vehicles []SpawnConfig `yaml:"vehicles"`
	Pickups  []SpawnConfig `yaml:"pickups"`
}

// SpawnConfig places a vehicle model or a weapon pickup.
type SpawnConfig struct {
	Model    string     `yaml:"model"`
	Position [3]float32 `yaml:"position"`
	Heading  float32    `yaml:"heading"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Step:          time.Second / 30,
		FrameInterval: time.Second / 60,
		TimeScale:     1,
		Storage: StorageConfig{
			Dir:       "/tmp/rwsim",
			WorldName: "liberty",
			Autosave:  5 * time.Minute,
		},
		GRPC: GRPCConfig{
			Address:    ":50051",
			Reflection: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "rwsim.log",
		},
		Plugins: PluginsConfig{Dir: "./plugins"},
		Start: StartConfig{
			Hour:    12,
			Weather: "sunny",
			Intro:   true,
			Traffic: true,
			Vehicles: []SpawnConfig{
				{Model: "landstal", Position: [3]float32{5, 4, 0}},
			},
			Pickups: []SpawnConfig{
				{Model: "grenade", Position: [3]float32{-4, 6, 0}},
			},
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Step <= 0 {
		errs = append(errs, fmt.Errorf("step must be positive, got %s", c.Step))
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval must be positive, got %s", c.FrameInterval))
	}
	if c.TimeScale <= 0 {
		errs = append(errs, fmt.Errorf("time_scale must be positive, got %v", c.TimeScale))
	}
	if c.Start.Hour < 0 || c.Start.Hour > 23 || c.Start.Minute < 0 || c.Start.Minute > 59 {
		errs = append(errs, fmt.Errorf("start time %02d:%02d out of range", c.Start.Hour, c.Start.Minute))
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// Logger builds the zap logger described by the log section.
func (c *Config) Logger(outputs ...string) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	if len(outputs) > 0 {
		zc.OutputPaths = outputs
		zc.ErrorOutputPaths = outputs
	}
	return zc.Build()
}
