package shared

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./likesync.db" {
			t.Errorf("expected database path ./likesync.db, got %s", config.Database.Path)
		}
		if config.API.BaseURL != "https://api.spotify.com/v1" {
			t.Errorf("expected spotify base URL, got %s", config.API.BaseURL)
		}
		if config.API.Market != "US" {
			t.Errorf("expected market US, got %s", config.API.Market)
		}
		if config.Transfer.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.Transfer.PageSize)
		}
		if config.Transfer.DeleteBatchSize != 50 {
			t.Errorf("expected delete batch size 50, got %d", config.Transfer.DeleteBatchSize)
		}
		if config.Transfer.DelayDuration() != 200*time.Millisecond {
			t.Errorf("expected delay 200ms, got %v", config.Transfer.DelayDuration())
		}
		if config.Transfer.Testing {
			t.Error("expected testing to default to false")
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[credentials]
source_token = "src"
destination_token = "dst"

[transfer]
delay = 1.5
testing = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.SourceToken != "src" || config.Credentials.DestinationToken != "dst" {
			t.Errorf("unexpected credentials: %+v", config.Credentials)
		}
		if config.Transfer.DelayDuration() != 1500*time.Millisecond {
			t.Errorf("expected 1.5s delay, got %v", config.Transfer.DelayDuration())
		}
		if !config.Transfer.Testing {
			t.Error("expected testing flag to be set")
		}
		if config.Transfer.PageSize != 50 {
			t.Errorf("expected missing keys to keep defaults, got page size %d", config.Transfer.PageSize)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.SourceToken = "saved"
		config.Transfer.DeleteBatchSize = 20

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.Credentials.SourceToken != "saved" {
			t.Errorf("expected saved token, got %q", loaded.Credentials.SourceToken)
		}
		if loaded.Transfer.DeleteBatchSize != 20 {
			t.Errorf("expected batch size 20, got %d", loaded.Transfer.DeleteBatchSize)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("LIKESYNC_SOURCE_TOKEN", " env-src ")
		t.Setenv("LIKESYNC_DESTINATION_TOKEN", "")

		config := DefaultConfig()
		config.Credentials.DestinationToken = "file-dst"
		config.ApplyEnv()

		if config.Credentials.SourceToken != "env-src" {
			t.Errorf("expected env source token, got %q", config.Credentials.SourceToken)
		}
		if config.Credentials.DestinationToken != "file-dst" {
			t.Errorf("empty env var should not override, got %q", config.Credentials.DestinationToken)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = "" }},
		{name: "page size zero", mutate: func(c *Config) { c.Transfer.PageSize = 0 }},
		{name: "page size too large", mutate: func(c *Config) { c.Transfer.PageSize = 51 }},
		{name: "delete batch too large", mutate: func(c *Config) { c.Transfer.DeleteBatchSize = 100 }},
		{name: "negative delay", mutate: func(c *Config) { c.Transfer.Delay = -1 }},
		{name: "NaN delay", mutate: func(c *Config) { c.Transfer.Delay = math.NaN() }},
		{name: "infinite delay", mutate: func(c *Config) { c.Transfer.Delay = math.Inf(1) }},
		{name: "delay overflows", mutate: func(c *Config) { c.Transfer.Delay = 1e10 }},
		{name: "NaN rate limit", mutate: func(c *Config) { c.Transfer.RateLimit = math.NaN() }},
		{name: "negative rate limit", mutate: func(c *Config) { c.Transfer.RateLimit = -0.5 }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDurationFromSeconds(t *testing.T) {
	tc := []struct {
		name string
		in   float64
		want time.Duration
		ok   bool
	}{
		{name: "zero", in: 0, want: 0, ok: true},
		{name: "fraction", in: 0.2, want: 200 * time.Millisecond, ok: true},
		{name: "whole", in: 3, want: 3 * time.Second, ok: true},
		{name: "a day", in: 86400, want: 24 * time.Hour, ok: true},
		{name: "negative", in: -2},
		{name: "NaN", in: math.NaN()},
		{name: "positive infinity", in: math.Inf(1)},
		{name: "negative infinity", in: math.Inf(-1)},
		{name: "past max duration", in: 1e10},
		{name: "huge", in: 1e300},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DurationFromSeconds(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("DurationFromSeconds(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDelayDuration(t *testing.T) {
	t.Run("embedded default matches DefaultDelay", func(t *testing.T) {
		if got := DefaultConfig().Transfer.DelayDuration(); got != DefaultDelay {
			t.Errorf("DelayDuration() = %v, want %v", got, DefaultDelay)
		}
	})

	t.Run("out of range falls back to DefaultDelay", func(t *testing.T) {
		cfg := TransferConfig{Delay: math.Inf(1)}
		if got := cfg.DelayDuration(); got != DefaultDelay {
			t.Errorf("DelayDuration() = %v, want %v", got, DefaultDelay)
		}
	})
}
