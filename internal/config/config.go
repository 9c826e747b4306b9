// Package config loads the fsmlab application configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then FSMLAB_*
// environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/enetx/fsmlab/internal/logging"
	"github.com/enetx/fsmlab/neuron"
	"github.com/enetx/fsmlab/washer"
)

// Config is the application configuration.
type Config struct {
	LogLevel string `yaml:"log_level" env:"FSMLAB_LOG_LEVEL"`
	// Seed makes neuron damage reproducible; zero uses an unseeded source.
	Seed uint64 `yaml:"seed" env:"FSMLAB_SEED"`
	// Pace is the cosmetic delay between two polls of a demonstration scenario.
	Pace    time.Duration `yaml:"pace" env:"FSMLAB_PACE"`
	Metrics bool          `yaml:"metrics" env:"FSMLAB_METRICS"`

	Washer washer.Config `yaml:"washer"`
	Neuron neuron.Config `yaml:"neuron"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		LogLevel: "info",
		Washer:   washer.DefaultConfig(),
		Neuron:   neuron.DefaultConfig(),
	}
}

// Load reads the YAML file at path, if path is not empty, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}

		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.Pace < 0 {
		return fmt.Errorf("config: pace must not be negative, got %s", c.Pace)
	}

	if err := c.Washer.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := c.Neuron.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}
