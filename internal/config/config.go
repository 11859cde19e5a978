package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hypercastle/internal/logging"
)

// DefaultPath is where commands look for the project config.
const DefaultPath = "hypercastle.yaml"

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Sources  SourcesConfig  `yaml:"sources"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Stream   StreamConfig   `yaml:"stream"`
	Log      LogConfig      `yaml:"log"`
}

type SourcesConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type EngineConfig struct {
	GlyphInterval time.Duration `yaml:"glyph_interval"`
	FrameRate     int           `yaml:"frame_rate"`
	// RandomSeed seeds the font-size draws. Zero picks a random seed per run.
	RandomSeed uint64 `yaml:"random_seed"`
}

type StreamConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default is the config used when no file exists. Loaded files are decoded on
// top of it, so omitted keys keep these values.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Project: "hypercastle",
		Version: 1,
		Sources: SourcesConfig{Paths: []string{"."}},
		Engine: EngineConfig{
			GlyphInterval: 500 * time.Millisecond,
			FrameRate:     30,
		},
		Stream: StreamConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "warn"},
	}
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*ProjectConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadProjectConfig(path)
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if len(cfg.Sources.Paths) == 0 {
		return fmt.Errorf("at least one source path is required")
	}
	for i, path := range cfg.Sources.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("source path %d is empty", i)
		}
	}
	if cfg.Engine.GlyphInterval <= 0 {
		return fmt.Errorf("engine glyph_interval must be positive, got %s", cfg.Engine.GlyphInterval)
	}
	if cfg.Engine.FrameRate < 1 || cfg.Engine.FrameRate > 240 {
		return fmt.Errorf("engine frame_rate must be between 1 and 240, got %d", cfg.Engine.FrameRate)
	}
	if strings.TrimSpace(cfg.Stream.Addr) == "" {
		return fmt.Errorf("stream addr is required")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// FrameInterval is the wall-clock time between two frames at FrameRate.
func (c EngineConfig) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FrameRate)
}
