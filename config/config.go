// Package config handles configuration loading for the simulation core.
// It supports an optional simcore.yaml file, environment variables with the
// SIMCORE_ prefix, and built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for the orchestrator and CLI.
type Config struct {
	// DefaultModel is the reasoning engine model used when a request carries
	// no model specification.
	DefaultModel string `mapstructure:"default_model"`
	// DefaultTemperature applies when a request carries no temperature.
	DefaultTemperature float64 `mapstructure:"default_temperature"`
	// DefaultMaxDepth applies when a request carries no max depth.
	DefaultMaxDepth int `mapstructure:"default_max_depth"`
	// MaxDepthCeiling is the hard safety ceiling for recursion depth.
	MaxDepthCeiling int `mapstructure:"max_depth_ceiling"`
	// DefaultTeamSize is the team size used for recursive sub-invocations.
	DefaultTeamSize int `mapstructure:"default_team_size"`
	// MaxConcurrentExecutions bounds concurrent agent executions per
	// orchestration call. Zero means unbounded.
	MaxConcurrentExecutions int `mapstructure:"max_concurrent_executions"`

	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration with the following precedence (highest first):
// environment variables (SIMCORE_*), simcore.yaml in the working directory,
// built-in defaults.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path. An empty path
// searches for simcore.yaml in the working directory; a missing file is not
// an error, defaults and environment still apply.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("simcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SIMCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configured limits for internal consistency.
func (c *Config) Validate() error {
	if c.DefaultMaxDepth < 1 {
		return fmt.Errorf("default_max_depth must be >= 1, got %d", c.DefaultMaxDepth)
	}
	if c.MaxDepthCeiling < c.DefaultMaxDepth {
		return fmt.Errorf("max_depth_ceiling %d is below default_max_depth %d", c.MaxDepthCeiling, c.DefaultMaxDepth)
	}
	if c.DefaultTeamSize < 1 {
		return fmt.Errorf("default_team_size must be >= 1, got %d", c.DefaultTeamSize)
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 2 {
		return fmt.Errorf("default_temperature must be in [0, 2], got %g", c.DefaultTemperature)
	}
	if c.MaxConcurrentExecutions < 0 {
		return fmt.Errorf("max_concurrent_executions must be >= 0, got %d", c.MaxConcurrentExecutions)
	}
	return nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("default_model", "claude-3-5-sonnet-20241022")
	v.SetDefault("default_temperature", 0.7)
	v.SetDefault("default_max_depth", 1)
	v.SetDefault("max_depth_ceiling", 10)
	v.SetDefault("default_team_size", 3)
	v.SetDefault("max_concurrent_executions", 4)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("openai.api_key", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DefaultModel:            "claude-3-5-sonnet-20241022",
		DefaultTemperature:      0.7,
		DefaultMaxDepth:         1,
		MaxDepthCeiling:         10,
		DefaultTeamSize:         3,
		MaxConcurrentExecutions: 4,
		Logging:                 LoggingConfig{Level: "info", Format: "json"},
	}
}
