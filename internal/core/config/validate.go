package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validateURL(c.APIBaseURL, "http", "https"); err != nil {
		return fmt.Errorf("api_base_url: %w", err)
	}
	if err := validateURL(c.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("ws_url: %w", err)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.BidPageSize < 1 {
		return fmt.Errorf("bid_page_size must be positive, got %d", c.BidPageSize)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect_delay must be positive, got %s", c.ReconnectDelay)
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("url %q must use scheme %v", raw, schemes)
}
