package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/user/playlist-scraper/pkg/config"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"query":               "search_query",
	"max-playlists":       "max_playlists",
	"include-private":     "include_private_playlists",
	"email-regex":         "email_regex",
	"debug":               "debug_mode",
	"proxy":               "proxy_urls",
	"base-url":            "base_url",
	"concurrency":         "concurrency",
	"headless":            "headless",
	"max-attempts":        "max_attempts",
	"requests-per-second": "requests_per_second",
	"request-timeout":     "request_timeout",
	"wait-timeout":        "wait_timeout",
	"settle-timeout":      "settle_timeout",
	"redis-addr":          "redis_addr",
	"postgres-url":        "postgres_url",
	"dataset":             "dataset_path",
	"http-addr":           "http_addr",
	"log-level":           "log_level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig builds the validated crawl configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, configFile, err := newViper(cmd)
	if err != nil {
		return nil, err
	}
	return config.Load(v, configFile)
}

// readConfig builds the configuration for cmd without requiring crawl input.
func readConfig(cmd *cobra.Command) (*config.Config, error) {
	v, configFile, err := newViper(cmd)
	if err != nil {
		return nil, err
	}
	return config.Read(v, configFile)
}

func newViper(cmd *cobra.Command) (*viper.Viper, string, error) {
	v := viper.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, "", err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}
	return v, configFile, nil
}
