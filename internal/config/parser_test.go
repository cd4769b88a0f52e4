package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	raw := []byte(`{
		"rod": {"headless": true, "user_data_dir": "data/rod", "page_pool_size": 3},
		"chromedp": {"user_data_dir": "data/chromedp", "query_timeout": 5},
		"colly": {"user_agent": "behave", "delay": 1},
		"elasticsearch": {"enabled": true, "address": "http://localhost:9200"},
		"behavior": {"driver": "chromedp", "click": true, "scroll": true, "duration": 30, "scroll_for": 10, "parallelism": 2}
	}`)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)

	assert.True(t, cfg.Rod.Headless)
	assert.True(t, filepath.IsAbs(cfg.Rod.UserDataDir))
	assert.True(t, filepath.IsAbs(cfg.Chromedp.UserDataDir))
	assert.Equal(t, 3, cfg.Rod.PagePoolSize)
	assert.Equal(t, "chromedp", cfg.Behavior.Driver)
	assert.Equal(t, 30, cfg.Behavior.Duration)
	assert.Equal(t, "http://localhost:9200", cfg.Elasticsearch.Address)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "rod", cfg.Behavior.Driver)
	assert.Equal(t, 1, cfg.Behavior.Parallelism)
	assert.Equal(t, 1, cfg.Rod.PagePoolSize)
	assert.Empty(t, cfg.Rod.UserDataDir)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig([]byte(`{"rod": `))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"behavior": {"parallelism": 4}}`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Behavior.Parallelism)
	assert.Equal(t, 4, cfg.Rod.PagePoolSize)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
