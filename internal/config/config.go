// Package config holds the tunables of the training and inference commands.
//
// Defaults reproduce the fixed values the tools have always used. A YAML
// file can override any subset of them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/discochess/movequality/internal/errkind"
)

// Config is the full configuration.
type Config struct {
	Seed         int64   `yaml:"seed"`
	TestFraction float64 `yaml:"test_fraction"`

	Outcome OutcomeConfig `yaml:"outcome"`
	Moves   MovesConfig   `yaml:"moves"`
	Quality QualityConfig `yaml:"quality"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutcomeConfig configures train-outcome.
type OutcomeConfig struct {
	Games          string  `yaml:"games"`
	ForestSize     int     `yaml:"forest_size"`
	ForestFeatures int     `yaml:"forest_features"`
	Prune          float64 `yaml:"prune"`
}

// NetworkConfig holds the shared neural network settings.
type NetworkConfig struct {
	Hidden          []int   `yaml:"hidden"`
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	ValidationSplit float64 `yaml:"validation_split"`
	LearningRate    float64 `yaml:"learning_rate"`
}

// MovesConfig configures train-moves.
type MovesConfig struct {
	Games         string `yaml:"games"`
	NetworkConfig `yaml:",inline"`
	// Save is an optional artifact location. Empty means the network is
	// discarded after evaluation.
	Save string `yaml:"save"`
}

// QualityConfig configures train-quality and predict.
type QualityConfig struct {
	Games         string `yaml:"games"`
	NetworkConfig `yaml:",inline"`
	Artifact      string `yaml:"artifact"`
	Report        string `yaml:"report"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default paths.
const (
	DefaultGames          = "data/games.json"
	DefaultCheckmateGames = "data/games_checkmate.json"
	DefaultArtifact       = "model_move_quality.zst"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Seed:         42,
		TestFraction: 0.2,
		Outcome: OutcomeConfig{
			Games:          DefaultGames,
			ForestSize:     100,
			ForestFeatures: 1,
		},
		Moves: MovesConfig{
			Games: DefaultGames,
			NetworkConfig: NetworkConfig{
				Hidden:          []int{256, 128},
				Epochs:          10,
				BatchSize:       64,
				ValidationSplit: 0.1,
				LearningRate:    0.001,
			},
		},
		Quality: QualityConfig{
			Games: DefaultCheckmateGames,
			NetworkConfig: NetworkConfig{
				Hidden:          []int{128, 64},
				Epochs:          10,
				BatchSize:       64,
				ValidationSplit: 0.1,
				LearningRate:    0.001,
			},
			Artifact: DefaultArtifact,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ErrInvalid is returned for configuration values out of range.
var ErrInvalid = fmt.Errorf("config: invalid configuration: %w", errkind.ErrMalformedInput)

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("'%s': %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("'%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("%w: test_fraction %v must be in (0, 1)", ErrInvalid, c.TestFraction)
	}
	if c.Outcome.ForestSize <= 0 {
		return fmt.Errorf("%w: outcome.forest_size must be positive", ErrInvalid)
	}
	if err := c.Moves.NetworkConfig.validate("moves"); err != nil {
		return err
	}
	if err := c.Quality.NetworkConfig.validate("quality"); err != nil {
		return err
	}
	if c.Quality.Artifact == "" {
		return fmt.Errorf("%w: quality.artifact is empty", ErrInvalid)
	}
	return nil
}

func (n NetworkConfig) validate(section string) error {
	if n.Epochs <= 0 || n.BatchSize <= 0 {
		return fmt.Errorf("%w: %s.epochs and %s.batch_size must be positive", ErrInvalid, section, section)
	}
	if n.ValidationSplit < 0 || n.ValidationSplit >= 1 {
		return fmt.Errorf("%w: %s.validation_split must be in [0, 1)", ErrInvalid, section)
	}
	if n.LearningRate <= 0 {
		return fmt.Errorf("%w: %s.learning_rate must be positive", ErrInvalid, section)
	}
	for _, h := range n.Hidden {
		if h <= 0 {
			return fmt.Errorf("%w: %s.hidden sizes must be positive", ErrInvalid, section)
		}
	}
	return nil
}

// Write encodes c as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
