// Package config loads and validates service configuration and the
// versioned scoring weights document.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Aliserag/Dometrics-sub001/internal/scoring"
)

// Config represents the complete application configuration
type Config struct {
	Registry  RegistryConfig  `mapstructure:"registry"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// RegistryConfig holds the tokenized-domain registry gateway configuration
type RegistryConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	TLDs           []string      `mapstructure:"tlds"`
	Limit          int           `mapstructure:"limit"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ValuationConfig holds the optional external valuation collaborator
// configuration; when disabled the deterministic estimator is used alone.
type ValuationConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TrackerConfig holds offer-spike tracking behavior configuration
type TrackerConfig struct {
	OfferDelta         int `mapstructure:"offer_delta"`
	TopK               int `mapstructure:"top_k"`
	CooldownMultiplier int `mapstructure:"cooldown_multiplier"`
	CheckpointInterval int `mapstructure:"checkpoint_interval"`
	Concurrency        int `mapstructure:"concurrency"`
}

// ScoringConfig points at the weights document; an empty path selects the
// built-in defaults.
type ScoringConfig struct {
	WeightsPath string `mapstructure:"weights_path"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds storage and persistence configuration
type StorageConfig struct {
	MaxDomains int    `mapstructure:"max_domains"`
	DBPath     string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("DOMETRICS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWeights reads the scoring weights document. An empty path returns the
// documented built-in defaults; a named file must parse cleanly. Field
// validation happens when the engine is constructed.
func LoadWeights(path string) (*scoring.Weights, error) {
	if path == "" {
		return scoring.DefaultWeights(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}

	// Start from defaults so a partial document overrides rather than zeroes.
	w := scoring.DefaultWeights()
	if err := v.Unmarshal(w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return w, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("registry.api_url", "https://api.doma.dev/v1")
	v.SetDefault("registry.poll_interval", "5m")
	v.SetDefault("registry.limit", 200)
	v.SetDefault("registry.timeout", "30s")
	v.SetDefault("registry.max_retries", 3)
	v.SetDefault("registry.retry_delay_base", "1s")

	v.SetDefault("valuation.enabled", false)
	v.SetDefault("valuation.timeout", "10s")

	v.SetDefault("tracker.offer_delta", 1)
	v.SetDefault("tracker.top_k", 10)
	v.SetDefault("tracker.cooldown_multiplier", 5)
	v.SetDefault("tracker.checkpoint_interval", 12)
	v.SetDefault("tracker.concurrency", 8)

	v.SetDefault("scoring.weights_path", "")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("storage.max_domains", 1000)
	v.SetDefault("storage.db_path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Registry.APIURL == "" {
		return fmt.Errorf("registry.api_url is required")
	}
	if c.Registry.PollInterval < 1*time.Minute {
		return fmt.Errorf("registry.poll_interval must be at least 1 minute")
	}
	if c.Registry.Limit < 1 || c.Registry.Limit > 1000 {
		return fmt.Errorf("registry.limit must be between 1 and 1000")
	}
	if c.Registry.MaxRetries < 1 {
		return fmt.Errorf("registry.max_retries must be at least 1")
	}

	if c.Valuation.Enabled {
		if c.Valuation.APIURL == "" {
			return fmt.Errorf("valuation.api_url is required when valuation is enabled")
		}
		if c.Valuation.Timeout < 1*time.Second {
			return fmt.Errorf("valuation.timeout must be at least 1 second")
		}
	}

	if c.Tracker.OfferDelta < 1 {
		return fmt.Errorf("tracker.offer_delta must be at least 1")
	}
	if c.Tracker.TopK < 1 {
		return fmt.Errorf("tracker.top_k must be at least 1")
	}
	if c.Tracker.CooldownMultiplier < 1 {
		return fmt.Errorf("tracker.cooldown_multiplier must be at least 1")
	}
	if c.Tracker.CheckpointInterval < 1 {
		return fmt.Errorf("tracker.checkpoint_interval must be at least 1")
	}
	if c.Tracker.Concurrency < 1 {
		return fmt.Errorf("tracker.concurrency must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.MaxDomains < 1 {
		return fmt.Errorf("storage.max_domains must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console")
	}

	return nil
}
