// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/framecast/pkg/backend"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Config represents the full configuration for framecast.
type Config struct {
	// Backend selection
	Backend  string `yaml:"backend"`
	DataType string `yaml:"data_type"`

	// Encoding
	Codec   string `yaml:"codec"`
	GopSize int    `yaml:"gop_size"`
	Bitrate int64  `yaml:"bitrate"`
	Threads int    `yaml:"threads"`

	// Synthetic source
	Synth SynthConfig `yaml:"synth"`

	// Logging
	LogLevel string `yaml:"log_level"`
	Quiet    bool   `yaml:"quiet"`
}

// SynthConfig controls the synthetic frame source.
type SynthConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
	Frames int     `yaml:"frames"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Backend:  "cpu",
		DataType: "uint8",

		Codec:   "libx264",
		GopSize: 12,
		Threads: 0,

		Synth: SynthConfig{
			Width:  640,
			Height: 360,
			FPS:    30.0,
			Frames: 120,
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ParseBackend resolves the configured backend name.
func (c Config) ParseBackend() (backend.Backend, error) {
	return backend.Parse(c.Backend)
}

// ParseDataType resolves the configured sample type name.
func (c Config) ParseDataType() (pixbuf.DataType, error) {
	return pixbuf.ParseDataType(c.DataType)
}

// ParseLogLevel resolves the configured log level name. Unknown names
// fall back to the info level.
func (c Config) ParseLogLevel() ports.LogLevel {
	if c.Quiet {
		return ports.LevelQuiet
	}
	return ports.ParseLogLevel(c.LogLevel)
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if _, err := c.ParseBackend(); err != nil {
		return err
	}
	if _, err := c.ParseDataType(); err != nil {
		return err
	}
	if c.GopSize < 0 {
		return fmt.Errorf("gop_size must not be negative: %d", c.GopSize)
	}
	if c.Bitrate < 0 {
		return fmt.Errorf("bitrate must not be negative: %d", c.Bitrate)
	}
	if c.Synth.Width <= 0 || c.Synth.Height <= 0 {
		return fmt.Errorf("synth dimensions must be positive: %dx%d", c.Synth.Width, c.Synth.Height)
	}
	if c.Synth.FPS <= 0 {
		return fmt.Errorf("synth fps must be positive: %f", c.Synth.FPS)
	}
	return nil
}

// EncoderOptions converts the encoding settings to encoder options.
func (c Config) EncoderOptions() ports.EncoderOptions {
	return ports.EncoderOptions{
		GopSize:     c.GopSize,
		BitRate:     c.Bitrate,
		ThreadCount: c.Threads,
	}
}
