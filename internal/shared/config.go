package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// MaxBatchSize is the most ids the library endpoints accept per call.
	MaxBatchSize = 50
	// DefaultDelay is the pause between adds; it matches transfer.delay in the embedded config.
	DefaultDelay = 200 * time.Millisecond

	envSourceToken      = "LIKESYNC_SOURCE_TOKEN"
	envDestinationToken = "LIKESYNC_DESTINATION_TOKEN"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Transfer    TransferConfig    `toml:"transfer"`
	Export      ExportConfig      `toml:"export"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig holds the two pre-obtained bearer tokens.
type CredentialsConfig struct {
	SourceToken      string `toml:"source_token"`
	DestinationToken string `toml:"destination_token"`
}

// APIConfig contains the library endpoint location.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Market  string `toml:"market"`
}

// TransferConfig contains fetch and replay tuning.
type TransferConfig struct {
	PageSize        int     `toml:"page_size"`
	DeleteBatchSize int     `toml:"delete_batch_size"`
	Delay           float64 `toml:"delay"` // seconds
	RateLimit       float64 `toml:"rate_limit"`
	Testing         bool    `toml:"testing"`
}

// ExportConfig contains export file settings.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DelayDuration returns the configured inter-batch delay, or [DefaultDelay] when transfer.delay is out of range.
func (t TransferConfig) DelayDuration() time.Duration {
	d, ok := DurationFromSeconds(t.Delay)
	if !ok {
		return DefaultDelay
	}
	return d
}

// DurationFromSeconds converts fractional seconds to a [time.Duration].
//
// ok is false for negative, NaN or infinite input and for values a Duration cannot hold.
func DurationFromSeconds(s float64) (d time.Duration, ok bool) {
	ns := s * float64(time.Second)
	if math.IsNaN(ns) || ns < 0 || ns >= math.MaxInt64 {
		return 0, false
	}
	return time.Duration(ns), true
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides the tokens with LIKESYNC_SOURCE_TOKEN and LIKESYNC_DESTINATION_TOKEN when set.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(envSourceToken)); v != "" {
		c.Credentials.SourceToken = v
	}
	if v := strings.TrimSpace(os.Getenv(envDestinationToken)); v != "" {
		c.Credentials.DestinationToken = v
	}
}

// Validate checks transfer settings. Tokens are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}
	if c.Transfer.PageSize < 1 || c.Transfer.PageSize > MaxBatchSize {
		return fmt.Errorf("%w: transfer.page_size must be between 1 and %d", ErrInvalidConfig, MaxBatchSize)
	}
	if c.Transfer.DeleteBatchSize < 1 || c.Transfer.DeleteBatchSize > MaxBatchSize {
		return fmt.Errorf("%w: transfer.delete_batch_size must be between 1 and %d", ErrInvalidConfig, MaxBatchSize)
	}
	if _, ok := DurationFromSeconds(c.Transfer.Delay); !ok {
		return fmt.Errorf("%w: transfer.delay must be a non-negative number of seconds", ErrInvalidConfig)
	}
	if c.Transfer.RateLimit < 0 || math.IsNaN(c.Transfer.RateLimit) {
		return fmt.Errorf("%w: transfer.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
