// Package config provides configuration management for the maguard client.
// It handles loading and parsing YAML configuration files, and provides
// structured access to application settings including the provider base
// addresses, the account storage directory, proxy configuration, and logging
// behavior.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
// The provider base addresses are resolved here once at startup and handed to
// the web client explicitly; nothing else in the program reads them.
type Config struct {
	// CommunityURL is the base address of the provider's web community origin.
	// Login and cookie state are scoped to this origin.
	CommunityURL string `yaml:"community-url" json:"community-url"`

	// APIURL is the base address of the provider's web API origin
	// (ITwoFactorService).
	APIURL string `yaml:"api-url" json:"api-url"`

	// StoreURL is the base address of the provider's store origin, which hosts
	// the phone validation endpoints.
	StoreURL string `yaml:"store-url" json:"store-url"`

	// ProxyURL is the URL of an optional proxy server to use for outbound
	// requests.
	ProxyURL string `yaml:"proxy-url" json:"proxy-url"`

	// AuthDir is the directory account files and the manifest are stored in.
	AuthDir string `yaml:"auth-dir" json:"auth-dir"`

	// RequestTimeoutSeconds bounds each outbound request. <= 0 means no
	// client-side timeout; the client itself never enforces one.
	RequestTimeoutSeconds int `yaml:"request-timeout-seconds,omitempty" json:"request-timeout-seconds,omitempty"`

	// LoggingToFile mirrors log output into rotated files under LogDir.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogDir is the directory rotated log files are written to when
	// LoggingToFile is enabled.
	LogDir string `yaml:"log-dir,omitempty" json:"log-dir,omitempty"`

	// Debug enables trace-level logging, including raw response bodies on
	// decode failures.
	Debug bool `yaml:"debug" json:"debug"`
}

// DefaultConfig returns a configuration pointing at the production provider
// origins with storage under ~/.maguard. The leading "~" in AuthDir is left
// for the caller to expand.
func DefaultConfig() *Config {
	return &Config{
		CommunityURL:          "https://steamcommunity.com",
		APIURL:                "https://api.steampowered.com",
		StoreURL:              "https://store.steampowered.com",
		AuthDir:               "~/.maguard",
		RequestTimeoutSeconds: 30,
	}
}

// LoadConfig reads and parses a YAML configuration file. Omitted fields keep
// their defaults.
func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: read file failed: %w", err)
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigOptional behaves like LoadConfig but falls back to defaults when
// the file does not exist and optional is true.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}
