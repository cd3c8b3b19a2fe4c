// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the structure for all application configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Training  TrainingConfig  `yaml:"training"`
	Feed      FeedConfig      `yaml:"feed"`
}

// ServerConfig holds the dashboard HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SimulatorConfig configures the synthetic air-quality generator.
type SimulatorConfig struct {
	Seed        int64    `yaml:"seed"` // 0 means time-seeded
	DatasetSize int      `yaml:"dataset_size"`
	Cities      []string `yaml:"cities"`
}

// TrainingConfig configures the retraining pipeline around the classifier.
type TrainingConfig struct {
	SplitRatio      float64       `yaml:"split_ratio"`
	Parallel        FlexBool      `yaml:"parallel"`
	RetrainInterval time.Duration `yaml:"retrain_interval"`
	WindowSize      int           `yaml:"window_size"`
	MinAccuracy     float64       `yaml:"min_accuracy"` // alert threshold
	TrendAlpha      float64       `yaml:"trend_alpha"`  // weight of the newest accuracy in the moving average
}

// FeedConfig configures the scheduled simulator feed into the pipeline.
type FeedConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	BufferSize int           `yaml:"buffer_size"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server:   ServerConfig{Addr: ":8080"},
		Simulator: SimulatorConfig{
			DatasetSize: 2000,
		},
		Training: TrainingConfig{
			SplitRatio:      0.8,
			Parallel:        true,
			RetrainInterval: 10 * time.Minute,
			WindowSize:      5000,
			MinAccuracy:     0.3,
			TrendAlpha:      0.3,
		},
		Feed: FeedConfig{
			Interval:   5 * time.Second,
			BatchSize:  10,
			BufferSize: 1024,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv loads overrides from environment variables.
func applyEnv(cfg *Config) error {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if addr := os.Getenv("DASHBOARD_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if seed := os.Getenv("SIMULATOR_SEED"); seed != "" {
		v, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SIMULATOR_SEED %q: %w", seed, err)
		}
		cfg.Simulator.Seed = v
	}
	return nil
}

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the values the rest of the application relies on.
func (c *Config) Validate() error {
	if c.Training.SplitRatio <= 0 || c.Training.SplitRatio >= 1 {
		return fmt.Errorf("%w: training.split_ratio must be in (0, 1), got %v", ErrInvalidConfig, c.Training.SplitRatio)
	}
	if c.Simulator.DatasetSize <= 0 {
		return fmt.Errorf("%w: simulator.dataset_size must be positive, got %d", ErrInvalidConfig, c.Simulator.DatasetSize)
	}
	if c.Training.WindowSize < c.Simulator.DatasetSize {
		return fmt.Errorf("%w: training.window_size (%d) smaller than simulator.dataset_size (%d)",
			ErrInvalidConfig, c.Training.WindowSize, c.Simulator.DatasetSize)
	}
	if c.Training.TrendAlpha <= 0 || c.Training.TrendAlpha > 1 {
		return fmt.Errorf("%w: training.trend_alpha must be in (0, 1], got %v", ErrInvalidConfig, c.Training.TrendAlpha)
	}
	if c.Training.RetrainInterval <= 0 {
		return fmt.Errorf("%w: training.retrain_interval must be positive", ErrInvalidConfig)
	}
	if c.Feed.Interval <= 0 || c.Feed.BatchSize < 0 || c.Feed.BufferSize <= 0 {
		return fmt.Errorf("%w: feed interval and buffer_size must be positive", ErrInvalidConfig)
	}
	return nil
}
