package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leadsend/replytag/internal/classifier"
	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  similarity_min: 0.4
server:
  port: 9090
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Thresholds.SimilarityMin)
	assert.Equal(t, 1.0, cfg.Thresholds.BayesMargin)
	assert.Equal(t, label.NotInterested, cfg.Thresholds.DefaultLabel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, defaultRateLimit, cfg.Server.RateLimit)
	assert.Equal(t, defaultMaxBatch, cfg.Server.MaxBatch)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, corpus.DefaultQuery, cfg.Corpus.Query)
	assert.NoError(t, cfg.Validate())
}

func TestLoadKeepsExplicitZero(t *testing.T) {
	path := writeConfig(t, "server:\n  rate_limit: 0\n  trust_proxy: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Corpus.Path = "/data/corpus.yaml"
	cfg.Thresholds.DefaultLabel = label.Lost
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad threshold", func(c *Config) { c.Thresholds.BayesMaxConfidence = 2 }},
		{"bad label", func(c *Config) { c.Thresholds.EmptyLabel = "maybe" }},
		{"zero similarity", func(c *Config) { c.Thresholds.SimilarityMin = 0 }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"rate window", func(c *Config) { c.Server.RateWindowSec = 0 }},
		{"batch", func(c *Config) { c.Server.MaxBatch = 0 }},
		{"two corpora", func(c *Config) {
			c.Corpus.Path = "a.yaml"
			c.Corpus.SQLitePath = "a.db"
		}},
	}

	assert.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultThresholdsMatchClassifier(t *testing.T) {
	assert.Equal(t, classifier.DefaultThresholds(), Default().Thresholds)
}
