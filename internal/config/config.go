// Package config provides configuration management with hot-reload support.
// It uses fsnotify to watch for file changes and atomic pointer swaps for
// zero-downtime updates. The model catalog defined here is the closed set
// of chat models the system accepts.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Bluenot3/ZENGEN/internal/provider"
)

// Config represents the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Models   []ModelConfig  `yaml:"models"`
	Image    ImageConfig    `yaml:"image"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// DefaultsConfig holds the settings new bots start with.
type DefaultsConfig struct {
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	MaxMemoryTokens int     `yaml:"max_memory_tokens"`
}

// ModelConfig defines one entry of the supported model catalog. An ID with
// a trailing "*" is a pricing-only rate pattern: it prices matching models
// but cannot be selected or serve as the default, and needs no provider or
// endpoint.
type ModelConfig struct {
	ID        string  `yaml:"id"`
	Provider  string  `yaml:"provider"`
	Endpoint  string  `yaml:"endpoint"`
	CostPer1K float64 `yaml:"cost_per_1k"`
}

// ImageConfig contains image generation settings.
type ImageConfig struct {
	Styles       map[string]string `yaml:"styles"` // style name -> replicate version
	PollInterval time.Duration     `yaml:"poll_interval"`
	PollTimeout  time.Duration     `yaml:"poll_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults, including
// the built-in model catalog.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Defaults: DefaultsConfig{
			Model:           "gpt-3.5-turbo",
			Temperature:     0.7,
			MaxTokens:       2000,
			MaxMemoryTokens: 10000,
		},
		Models: []ModelConfig{
			{ID: "gpt-3.5-turbo", Provider: "openai", CostPer1K: 0.002},
			{ID: "gpt-4", Provider: "openai", CostPer1K: 0.03},
			{ID: "claude-3.5-sonnet", Provider: "anthropic", CostPer1K: 0.015},
			{ID: "claude-3.5-haiku", Provider: "anthropic", CostPer1K: 0.0025},
			{ID: "cohere-command", Provider: "cohere", CostPer1K: 0.0015},
			{ID: "mistral-medium", Provider: "openrouter", CostPer1K: 0.002},
		},
		Image: ImageConfig{
			Styles: map[string]string{
				"realistic": "stability-ai/sdxl:39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b",
				"artistic":  "stability-ai/stable-diffusion:ac732df83cea7fff18b8472768c88ad041fa750ff7682a21affe81863cbe77e4",
				"anime":     "cjwbw/anything-v4.0:42a996d39a96aedc57b2e0aa8105dea39c9c89d9d266caf6bb4327a1c172674d",
				"3d":        "prompthero/openjourney:9936c2001faa2194a261c01381f90e65261879985476014a0a37a334593a05eb",
			},
			PollInterval: time.Second,
			PollTimeout:  30 * time.Second,
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

var validProviders = map[string]provider.Kind{
	"openai":     provider.KindOpenAI,
	"anthropic":  provider.KindAnthropic,
	"cohere":     provider.KindCohere,
	"openrouter": provider.KindOpenRouter,
}

var defaultEndpoints = map[provider.Kind]string{
	provider.KindOpenAI:     "https://api.openai.com/v1/chat/completions",
	provider.KindAnthropic:  "https://api.anthropic.com/v1/messages",
	provider.KindCohere:     "https://api.cohere.ai/v1/chat",
	provider.KindOpenRouter: "https://openrouter.ai/api/v1/chat/completions",
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}

	seen := make(map[string]bool, len(c.Models))
	resolvable := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" {
			return fmt.Errorf("model %d: missing id", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("model %s: duplicate entry", m.ID)
		}
		seen[m.ID] = true
		if m.CostPer1K < 0 {
			return fmt.Errorf("model %s: negative cost", m.ID)
		}
		if strings.HasSuffix(m.ID, "*") {
			continue
		}
		if _, ok := validProviders[m.Provider]; !ok {
			return fmt.Errorf("model %s: unknown provider %q", m.ID, m.Provider)
		}
		resolvable[m.ID] = true
	}

	if !resolvable[c.Defaults.Model] {
		return fmt.Errorf("default model %s is not in the model catalog", c.Defaults.Model)
	}
	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		return fmt.Errorf("default temperature must be between 0 and 2, got %v", c.Defaults.Temperature)
	}
	if c.Defaults.MaxTokens <= 0 {
		return fmt.Errorf("default max_tokens must be positive, got %d", c.Defaults.MaxTokens)
	}
	if c.Defaults.MaxMemoryTokens <= 0 {
		return fmt.Errorf("default max_memory_tokens must be positive, got %d", c.Defaults.MaxMemoryTokens)
	}

	if c.Image.PollInterval <= 0 {
		return fmt.Errorf("image poll_interval must be positive")
	}
	if c.Image.PollTimeout <= 0 {
		return fmt.Errorf("image poll_timeout must be positive")
	}

	return nil
}

// Profiles converts the model catalog into provider registry profiles.
// Entries without an explicit endpoint get the provider default.
func (c *Config) Profiles() []provider.Profile {
	profiles := make([]provider.Profile, 0, len(c.Models))
	for _, m := range c.Models {
		kind := validProviders[m.Provider]
		endpoint := m.Endpoint
		if endpoint == "" {
			endpoint = defaultEndpoints[kind]
		}
		profiles = append(profiles, provider.Profile{
			ModelID:   m.ID,
			Endpoint:  endpoint,
			Kind:      kind,
			CostPer1K: m.CostPer1K,
		})
	}
	return profiles
}
