package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leadsend/replytag/internal/classifier"
	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 8080
	defaultRateLimit     = 120
	defaultRateWindowSec = 60
	defaultMaxBatch      = 100
)

type Config struct {
	Corpus     CorpusConfig          `yaml:"corpus"`
	Thresholds classifier.Thresholds `yaml:"thresholds"`
	Server     ServerConfig          `yaml:"server"`
	Log        logging.Config        `yaml:"log"`
}

// CorpusConfig picks where training examples come from. Path wins over
// SQLitePath; with neither set the embedded corpus is used.
type CorpusConfig struct {
	Path       string `yaml:"path,omitempty"`        // YAML file of {text, label} examples
	SQLitePath string `yaml:"sqlite_path,omitempty"` // read-only SQLite database
	Query      string `yaml:"query,omitempty"`       // must return (text, label) rows
}

type ServerConfig struct {
	Port          int  `yaml:"port"`
	RateLimit     int  `yaml:"rate_limit"`      // requests per window per client IP; 0 disables
	RateWindowSec int  `yaml:"rate_window_sec"` // rate limit window
	MaxBatch      int  `yaml:"max_batch"`       // texts per batch request
	TrustProxy    bool `yaml:"trust_proxy"`     // rate limit by X-Forwarded-For
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".replytag", "config.yaml")
}

// Default is the configuration used when no file exists
func Default() *Config {
	return &Config{
		Corpus:     CorpusConfig{Query: corpus.DefaultQuery},
		Thresholds: classifier.DefaultThresholds(),
		Server: ServerConfig{
			Port:          defaultPort,
			RateLimit:     defaultRateLimit,
			RateWindowSec: defaultRateWindowSec,
			MaxBatch:      defaultMaxBatch,
		},
		Log: logging.Config{Level: "info"},
	}
}

// Load decodes path over Default, so a partial file only overrides what it
// names. Explicit zero values are kept: rate_limit: 0 disables limiting.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server: rate_limit must be >= 0")
	}
	if c.Server.RateWindowSec < 1 {
		return fmt.Errorf("server: rate_window_sec must be >= 1")
	}
	if c.Server.MaxBatch < 1 {
		return fmt.Errorf("server: max_batch must be >= 1")
	}
	if c.Corpus.Path != "" && c.Corpus.SQLitePath != "" {
		return fmt.Errorf("corpus: set either path or sqlite_path, not both")
	}
	return nil
}
