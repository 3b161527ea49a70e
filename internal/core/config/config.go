// Package config handles configuration loading and validation for jangteo.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// APIBaseURL is the root URL of the marketplace REST API.
	APIBaseURL string `yaml:"api_base_url"`
	// WSURL is the push-channel endpoint. Derived from APIBaseURL when empty.
	WSURL string `yaml:"ws_url"`
	// PageSize is the page size for listing fetches (posts, auctions).
	PageSize int `yaml:"page_size"`
	// BidPageSize is the fixed page size of the auction bid history. The
	// live view truncates to this size when a pushed bid is spliced in.
	BidPageSize int `yaml:"bid_page_size"`
	// ReconnectDelay is the fixed backoff between push reconnect attempts.
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	DataDir string `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:8080",
		PageSize:       20,
		BidPageSize:    10,
		ReconnectDelay: 5 * time.Second,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir. JANGTEO_API_URL and JANGTEO_WS_URL environment
// variables override the file values.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if v := os.Getenv("JANGTEO_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("JANGTEO_WS_URL"); v != "" {
		cfg.WSURL = v
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaults.APIBaseURL
	}
	if c.PageSize == 0 {
		c.PageSize = defaults.PageSize
	}
	if c.BidPageSize == 0 {
		c.BidPageSize = defaults.BidPageSize
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = defaults.ReconnectDelay
	}
	if c.WSURL == "" {
		c.WSURL = deriveWSURL(c.APIBaseURL)
	}
}

// deriveWSURL maps an http(s) base URL to the conventional websocket
// endpoint on the same host.
func deriveWSURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}

// CredentialsFile returns the path to the persisted credentials file.
func (c *Config) CredentialsFile() string {
	return filepath.Join(c.DataDir, "credentials.json")
}
