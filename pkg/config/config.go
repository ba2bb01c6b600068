package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/user/playlist-scraper/internal/extractor"
)

// ErrInvalidInput is returned when the crawl input fails validation.
var ErrInvalidInput = errors.New("invalid input")

// Config holds the crawl input and the runtime configuration.
type Config struct {
	// Crawl input.
	SearchQuery             string   `mapstructure:"search_query"`
	MaxPlaylists            int      `mapstructure:"max_playlists"`
	IncludePrivatePlaylists bool     `mapstructure:"include_private_playlists"`
	EmailRegex              string   `mapstructure:"email_regex"`
	DebugMode               bool     `mapstructure:"debug_mode"`
	ProxyURLs               []string `mapstructure:"proxy_urls"`

	// Runtime.
	BaseURL           string        `mapstructure:"base_url"`
	Concurrency       int           `mapstructure:"concurrency"`
	Headless          bool          `mapstructure:"headless"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout"`
	SettleTimeout     time.Duration `mapstructure:"settle_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	PostgresURL   string `mapstructure:"postgres_url"`
	DatasetPath   string `mapstructure:"dataset_path"`

	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`
}

// SetDefaults registers every configuration key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("search_query", "")
	v.SetDefault("max_playlists", 50)
	v.SetDefault("include_private_playlists", false)
	v.SetDefault("email_regex", extractor.DefaultEmailPattern)
	v.SetDefault("debug_mode", false)
	v.SetDefault("proxy_urls", []string{})

	v.SetDefault("base_url", "https://open.spotify.com")
	v.SetDefault("concurrency", 4)
	v.SetDefault("headless", true)
	v.SetDefault("max_attempts", 3)
	v.SetDefault("request_timeout", 120*time.Second)
	v.SetDefault("wait_timeout", 30*time.Second)
	v.SetDefault("settle_timeout", 10*time.Second)
	v.SetDefault("requests_per_second", 0.0)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("postgres_url", "")
	v.SetDefault("dataset_path", "./storage/dataset.db")

	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", "")
}

// Load reads the configuration with Read and validates it.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	cfg, err := Read(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from configFile (if set), a .env file and
// environment variables, in increasing order of precedence. Flags bound to v
// take precedence over all of them.
func Read(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		// A missing .env is fine: production config comes from the environment.
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the crawl input. It runs before any crawl activity.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SearchQuery) == "" {
		return fmt.Errorf("%w: search query is required, provide a search term for playlists", ErrInvalidInput)
	}
	if c.MaxPlaylists <= 0 {
		return fmt.Errorf("%w: max_playlists must be positive, got %d", ErrInvalidInput, c.MaxPlaylists)
	}
	if _, err := c.EmailPattern(); err != nil {
		return err
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidInput, c.Concurrency)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max_attempts must be positive, got %d", ErrInvalidInput, c.MaxAttempts)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidInput)
	}
	return nil
}

// EmailPattern compiles EmailRegex, or the default pattern when it is empty.
func (c *Config) EmailPattern() (*regexp.Regexp, error) {
	pattern := c.EmailRegex
	if pattern == "" {
		pattern = extractor.DefaultEmailPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: email_regex: %v", ErrInvalidInput, err)
	}
	return re, nil
}

// MaxRequests is the run-wide cap on enqueued requests, leaving room for pagination.
func (c *Config) MaxRequests() int {
	return c.MaxPlaylists * 2
}
