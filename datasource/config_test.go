package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"wunderground-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("json file", func(t *testing.T) {
		path := writeConfig(t, "config.json", `{
			"api_key": "devkey",
			"timeout": "5s",
			"rate_limit": {"enabled": true, "rps": 2, "burst": 4},
			"locations": ["84111", "CA/San_Francisco"],
			"features": ["conditions", "forecast"],
			"schedule": "0 0 * * * *"
		}`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "devkey", cfg.APIKey)
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, 2.0, cfg.RateLimit.RPS)
		assert.Equal(t, 4, cfg.RateLimit.Burst)
		assert.Equal(t, []string{"84111", "CA/San_Francisco"}, cfg.Locations)
		assert.Equal(t, "0 0 * * * *", cfg.Schedule)

		resources, err := cfg.Resources()
		require.NoError(t, err)
		assert.Equal(t, []models.Resource{models.Conditions, models.Forecast}, resources)
	})

	t.Run("yaml file with simulation", func(t *testing.T) {
		path := writeConfig(t, "config.yaml", `
simulate: true
simulation:
  seed: 42
log:
  level: debug
  env: production
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.True(t, cfg.Simulate)
		assert.Equal(t, int64(42), cfg.Simulation.Seed)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "production", cfg.Log.Env)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("environment overrides", func(t *testing.T) {
		path := writeConfig(t, "config.json", `{"api_key": "from-file"}`)
		t.Setenv("WUNDERGROUND_API_KEY", "from-env")
		t.Setenv("WUNDERGROUND_RATE_LIMIT_BURST", "7")
		t.Setenv("WUNDERGROUND_PORT", "9090")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.APIKey)
		assert.Equal(t, 7, cfg.RateLimit.Burst)
		assert.Equal(t, 9090, cfg.Port)
	})

	t.Run("missing file falls back to env and defaults", func(t *testing.T) {
		t.Setenv("WUNDERGROUND_SIMULATE", "true")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)

		assert.True(t, cfg.Simulate)
		assert.Equal(t, []string{"conditions"}, cfg.Features)
	})

	t.Run("key required for live mode", func(t *testing.T) {
		path := writeConfig(t, "config.json", `{"simulate": false}`)

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "api_key is required")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "config.json", `{"api_key": `)

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "failed to read config file")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.APIKey = "key"
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults with key", func(c *Config) {}, ""},
		{"simulate without key", func(c *Config) { c.APIKey = ""; c.Simulate = true }, ""},
		{"no key", func(c *Config) { c.APIKey = "" }, "api_key"},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, "base_url"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"short coefficient table", func(c *Config) { c.Simulation.Coefficients = make([]float64, 23) }, "got 23"},
		{"full coefficient table", func(c *Config) { c.Simulation.Coefficients = make([]float64, 24) }, ""},
		{"bad rate limit", func(c *Config) { c.RateLimit.RPS = 0 }, "rate_limit"},
		{"rate limit disabled", func(c *Config) { c.RateLimit = RateLimitConfig{} }, ""},
		{"unknown feature", func(c *Config) { c.Features = []string{"tides"} }, "unknown resource"},
		{"undated history feature", func(c *Config) { c.Features = []string{"conditions", "history"} }, "needs a date"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

func TestConfig_NewTransport(t *testing.T) {
	cfg := DefaultConfig()
	assert.IsType(t, &RateLimitedTransport{}, cfg.NewTransport())

	cfg.RateLimit.Enabled = false
	assert.IsType(t, &HTTPTransport{}, cfg.NewTransport())
}
