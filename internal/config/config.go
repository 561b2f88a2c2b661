// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration file.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EngineConfig configures the software engine.
type EngineConfig struct {
	SampleRate int `yaml:"sample_rate"`
	// BufferMillis is the speaker buffer length used by play.
	BufferMillis int `yaml:"buffer_ms"`
}

// AnalysisConfig configures the transport's analyser.
type AnalysisConfig struct {
	WindowSize int     `yaml:"window_size"`
	Smoothing  float64 `yaml:"smoothing"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given. Fields
// missing from a file keep these values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			SampleRate:   44100,
			BufferMillis: 100,
		},
		Analysis: AnalysisConfig{
			WindowSize: 1024,
			Smoothing:  0.3,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (e *EngineConfig) Validate() error {
	if e.SampleRate < 8000 || e.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", e.SampleRate)
	}

	if e.BufferMillis < 10 || e.BufferMillis > 1000 {
		return fmt.Errorf("buffer_ms must be between 10 and 1000, got %d", e.BufferMillis)
	}

	return nil
}

func (a *AnalysisConfig) Validate() error {
	n := a.WindowSize
	if n < 32 || n > 32768 || n&(n-1) != 0 {
		return fmt.Errorf("window_size must be a power of two between 32 and 32768, got %d", n)
	}

	if math.IsNaN(a.Smoothing) || a.Smoothing < 0 || a.Smoothing > 1 {
		return fmt.Errorf("smoothing must be between 0 and 1, got %f", a.Smoothing)
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}
