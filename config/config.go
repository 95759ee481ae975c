// Package config loads the runtime configuration injected into the
// coordination core: model selection, review tuning and logging. Values are
// plain structured data; the core never reads the environment or flags
// itself.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pablof7z/tenex-sub006/core"
)

// ModelConfig selects and tunes the language model.
type ModelConfig struct {
	Provider        string  `yaml:"provider"` // "anthropic", "openai", "mock"
	Name            string  `yaml:"name"`
	APIKey          string  `yaml:"api_key,omitempty"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	ContextWindow   int     `yaml:"context_window"`
	ResponseReserve int     `yaml:"response_reserve"`
}

// ReviewConfig tunes the review coordinator.
type ReviewConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	MaxReviewers    int           `yaml:"max_reviewers"`
	ContextMessages int           `yaml:"context_messages"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Config is the full runtime configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Review  ReviewConfig  `yaml:"review"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the baseline configuration used when no file is supplied.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Provider:        "anthropic",
			Temperature:     0.7,
			MaxTokens:       4096,
			ContextWindow:   200000,
			ResponseReserve: 8192,
		},
		Review: ReviewConfig{
			Timeout:         5 * time.Minute,
			MaxReviewers:    3,
			ContextMessages: 10,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file and unmarshals it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the core cannot work with.
func (c Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("config: model.provider is required")
	}
	if c.Model.ContextWindow > 0 && c.Model.ResponseReserve >= c.Model.ContextWindow {
		return fmt.Errorf("config: response_reserve (%d) must be smaller than context_window (%d)", c.Model.ResponseReserve, c.Model.ContextWindow)
	}
	if c.Review.Timeout < 0 {
		return fmt.Errorf("config: review.timeout must not be negative")
	}
	if c.Review.MaxReviewers < 0 {
		return fmt.Errorf("config: review.max_reviewers must not be negative")
	}
	return nil
}

// GenerationConfig converts the model section into the value passed to
// provider calls.
func (c Config) GenerationConfig() core.GenerationConfig {
	return core.GenerationConfig{
		Model:           c.Model.Name,
		Temperature:     c.Model.Temperature,
		MaxTokens:       c.Model.MaxTokens,
		ContextWindow:   c.Model.ContextWindow,
		ResponseReserve: c.Model.ResponseReserve,
	}
}
