package datasource

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wunderground-service/models"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the Weather Underground API root
const DefaultBaseURL = "http://api.wunderground.com/api"

// Config represents the application configuration
type Config struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Simulate bool          `mapstructure:"simulate"`

	Simulation SimulationConfig `mapstructure:"simulation"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`

	// Locations polled by the collector, e.g. postal codes or "CA/San_Francisco"
	Locations []string `mapstructure:"locations"`
	// Features requested for every location, by name ("conditions", "forecast", ...)
	Features []string `mapstructure:"features"`
	// Schedule is a cron expression with a seconds field
	Schedule string `mapstructure:"schedule"`
	Port     int    `mapstructure:"port"`
}

type SimulationConfig struct {
	// Seed for the random source; zero seeds from the wall clock
	Seed int64 `mapstructure:"seed"`
	// Coefficients overrides the 24 hourly temperature multipliers
	Coefficients []float64 `mapstructure:"coefficients"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// LoadConfig loads configuration from a JSON or YAML file, overridden by
// WUNDERGROUND_* environment variables (WUNDERGROUND_API_KEY,
// WUNDERGROUND_RATE_LIMIT_RPS, ...). A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WUNDERGROUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			v.SetConfigFile(filename)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", filename, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     0.15,
			Burst:   3,
		},
		Log: LogConfig{
			Level: "info",
			Env:   "development",
		},
		Locations: []string{"84111", "CA/San_Francisco", "NY/New_York"},
		Features:  []string{"conditions"},
		Schedule:  "0 */15 * * * *",
		Port:      8080,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("simulate", d.Simulate)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.coefficients", []float64{})
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.env", d.Log.Env)
	v.SetDefault("locations", d.Locations)
	v.SetDefault("features", d.Features)
	v.SetDefault("schedule", d.Schedule)
	v.SetDefault("port", d.Port)
}

// Validate checks the settings that would otherwise fail at request time
func (c *Config) Validate() error {
	if !c.Simulate && c.APIKey == "" {
		return errors.New("api_key is required unless simulate is enabled")
	}
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if n := len(c.Simulation.Coefficients); n != 0 && n != 24 {
		return fmt.Errorf("simulation.coefficients needs 24 hourly values, got %d", n)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return errors.New("rate_limit needs a positive rps and a burst of at least 1")
	}
	if _, err := c.Resources(); err != nil {
		return err
	}
	return nil
}

// Resources parses the configured feature names
func (c *Config) Resources() ([]models.Resource, error) {
	resources := make([]models.Resource, 0, len(c.Features))
	for _, name := range c.Features {
		r, err := models.ParseResource(name)
		if err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, nil
}

// NewTransport builds the HTTP transport described by the config
func (c *Config) NewTransport() Transport {
	var transport Transport = NewHTTPTransport(c.Timeout)
	if c.RateLimit.Enabled {
		transport = NewRateLimitedTransport(transport, c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return transport
}
