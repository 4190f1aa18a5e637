package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/scoring"
)

func writeTempFile(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoadAndValidate(t *testing.T) {
	content := `
registry:
  api_url: "https://registry.example.com/v1"
  poll_interval: 5m
  tlds:
    - com
    - defi
  limit: 200

tracker:
  offer_delta: 2
  top_k: 5
  cooldown_multiplier: 5
  checkpoint_interval: 12
  concurrency: 4

telegram:
  bot_token: "test_token"
  chat_id: "test_chat_id"
  enabled: true

storage:
  max_domains: 1000
  db_path: "./data/test.db"

logging:
  level: "info"
  format: "json"
`
	path := writeTempFile(t, "config-*.yaml", content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Registry.PollInterval != 5*time.Minute {
		t.Errorf("Unexpected poll interval: %v", cfg.Registry.PollInterval)
	}
	if len(cfg.Registry.TLDs) != 2 {
		t.Errorf("Expected 2 TLDs, got %d", len(cfg.Registry.TLDs))
	}
	if cfg.Tracker.OfferDelta != 2 {
		t.Errorf("Unexpected offer delta: %d", cfg.Tracker.OfferDelta)
	}
	if cfg.Tracker.TopK != 5 {
		t.Errorf("Unexpected top_k: %d", cfg.Tracker.TopK)
	}

	// Defaults fill in omitted sections.
	if cfg.Registry.Timeout != 30*time.Second {
		t.Errorf("Unexpected default timeout: %v", cfg.Registry.Timeout)
	}
	if cfg.Valuation.Enabled {
		t.Error("valuation should default to disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Registry: RegistryConfig{
				APIURL:       "https://registry.example.com/v1",
				PollInterval: 5 * time.Minute,
				Limit:        200,
				MaxRetries:   3,
			},
			Tracker: TrackerConfig{
				OfferDelta:         1,
				TopK:               10,
				CooldownMultiplier: 5,
				CheckpointInterval: 12,
				Concurrency:        8,
			},
			Storage: StorageConfig{MaxDomains: 1000},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{
			name:   "missing registry url",
			mutate: func(c *Config) { c.Registry.APIURL = "" },
		},
		{
			name:   "poll interval too short",
			mutate: func(c *Config) { c.Registry.PollInterval = 10 * time.Second },
		},
		{
			name:   "limit out of range",
			mutate: func(c *Config) { c.Registry.Limit = 5000 },
		},
		{
			name:   "missing telegram token when enabled",
			mutate: func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = "123" },
		},
		{
			name:   "missing valuation url when enabled",
			mutate: func(c *Config) { c.Valuation.Enabled = true; c.Valuation.Timeout = 10 * time.Second },
		},
		{
			name:   "zero offer delta",
			mutate: func(c *Config) { c.Tracker.OfferDelta = 0 },
		},
		{
			name:   "zero concurrency",
			mutate: func(c *Config) { c.Tracker.Concurrency = 0 },
		},
		{
			name:   "invalid log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:   "invalid log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("baseline config should validate: %v", err)
	}
}

func TestLoadWeightsDefaults(t *testing.T) {
	w, err := LoadWeights("")
	if err != nil {
		t.Fatalf("LoadWeights(\"\"): %v", err)
	}
	if w.Version != "1" {
		t.Errorf("expected default weights version 1, got %q", w.Version)
	}
	if err := w.Validate(); err != nil {
		t.Errorf("default weights should validate: %v", err)
	}
}

func TestLoadWeightsPartialOverride(t *testing.T) {
	content := `
version: "2"
risk:
  lock_adjustment: 20
`
	path := writeTempFile(t, "weights-*.yaml", content)

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if w.Version != "2" {
		t.Errorf("version = %q, want 2", w.Version)
	}
	if w.Risk.LockAdjustment != 20 {
		t.Errorf("lock adjustment = %v, want 20", w.Risk.LockAdjustment)
	}
	// Untouched fields keep their defaults.
	if w.Risk.Expiry != scoring.DefaultWeights().Risk.Expiry {
		t.Errorf("expiry weight = %v, want default", w.Risk.Expiry)
	}
	if len(w.Tables.DictionaryWords) == 0 {
		t.Error("dictionary words should keep defaults")
	}
	if err := w.Validate(); err != nil {
		t.Errorf("merged weights should validate: %v", err)
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	_, err := LoadWeights("/nonexistent/weights.yaml")
	if err == nil {
		t.Error("expected error for missing weights file")
	}
	// The engine rejects a malformed document at construction time.
	w := scoring.DefaultWeights()
	w.Version = ""
	if _, err := scoring.New(w); !errors.Is(err, scoring.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
