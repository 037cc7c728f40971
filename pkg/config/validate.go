package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. The API base URL is optional
// so offline commands work without one; RequireAPI checks it on demand.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
			return err
		}
	}
	if err := validateURL("youtube.base_url", c.YouTube.BaseURL); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	return nil
}

// RequireAPI reports an error when the management API is not configured.
func (c *Config) RequireAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required for this command")
	}
	return nil
}

func validateURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL (got %q)", key, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", key)
	}
	return nil
}
