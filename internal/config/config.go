// Package config handles configuration loading for treasurycurve.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Data    DataConfig    `mapstructure:"data"    yaml:"data" json:"data"`
	Cache   CacheConfig   `mapstructure:"cache"   yaml:"cache" json:"cache"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news" json:"news"`
	API     APIConfig     `mapstructure:"api"     yaml:"api" json:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// DataConfig selects the yield data provider and the history window.
type DataConfig struct {
	Provider          string `mapstructure:"provider"            yaml:"provider" json:"provider"` // "fred", "treasury" or "federal_reserve"
	WindowYears       int    `mapstructure:"window_years"        yaml:"window_years" json:"window_years"`
	FREDAPIKey        string `mapstructure:"fred_api_key"        yaml:"fred_api_key" json:"fred_api_key"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec" json:"request_timeout_sec"`
}

// CacheConfig holds panel cache settings.
type CacheConfig struct {
	TTLSec   int    `mapstructure:"ttl_sec"   yaml:"ttl_sec" json:"ttl_sec"`
	WarmCron string `mapstructure:"warm_cron" yaml:"warm_cron" json:"warm_cron"` // 6-field cron spec, "" disables
}

// FeedConfig is one headline feed.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url"  yaml:"url" json:"url"`
}

// NewsConfig holds headline panel settings.
type NewsConfig struct {
	Enabled bool         `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Feeds   []FeedConfig `mapstructure:"feeds"   yaml:"feeds" json:"feeds"`
	Limit   int          `mapstructure:"limit"   yaml:"limit" json:"limit"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "plain"
}

// CacheTTL returns the panel cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// RequestTimeout returns the outbound HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Data.RequestTimeoutSec) * time.Second
}

// Addr returns the host:port the API server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// Redacted returns a copy safe to expose over the API: the FRED key is
// masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Data.FREDAPIKey != "" {
		out.Data.FREDAPIKey = maskKey(out.Data.FREDAPIKey)
	}
	out.News.Feeds = append([]FeedConfig(nil), c.News.Feeds...)
	out.API.CORSOrigins = append([]string(nil), c.API.CORSOrigins...)
	return &out
}

// ConfigFilePath returns the config file Load would read, or "" when none
// of the search paths has one.
func ConfigFilePath() string {
	for _, dir := range searchPaths() {
		p := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func searchPaths() []string {
	return []string{"./config", filepath.Join(homeDir(), ".treasurycurve"), "/etc/treasurycurve"}
}

// Validate reports settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.Data.Provider {
	case "fred", "treasury", "federal_reserve":
	default:
		return fmt.Errorf("data.provider must be fred, treasury or federal_reserve, got %q", c.Data.Provider)
	}
	if c.Data.WindowYears <= 0 {
		return fmt.Errorf("data.window_years must be positive, got %d", c.Data.WindowYears)
	}
	if c.Data.RequestTimeoutSec <= 0 {
		return fmt.Errorf("data.request_timeout_sec must be positive, got %d", c.Data.RequestTimeoutSec)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.treasurycurve/config.yaml (home directory)
//  3. /etc/treasurycurve/config.yaml (system)
//
// Environment variables override config file values.
// Format: TREASURYCURVE_<SECTION>_<KEY>, e.g., TREASURYCURVE_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range searchPaths() {
		v.AddConfigPath(dir)
	}

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TREASURYCURVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data.provider", "fred")
	v.SetDefault("data.window_years", 5)
	v.SetDefault("data.fred_api_key", "")
	v.SetDefault("data.request_timeout_sec", 30)

	v.SetDefault("cache.ttl_sec", 720) // 12 minutes
	v.SetDefault("cache.warm_cron", "")

	v.SetDefault("news.enabled", true)
	v.SetDefault("news.limit", 8)
	v.SetDefault("news.feeds", []map[string]any{
		{"name": "Federal Reserve", "url": "https://www.federalreserve.gov/feeds/press_monetary.xml"},
	})

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The prefixed variable wins over the conventional FRED_API_KEY.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Data.FREDAPIKey = key
	}
	if key := os.Getenv("TREASURYCURVE_DATA_FRED_API_KEY"); key != "" {
		cfg.Data.FREDAPIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
