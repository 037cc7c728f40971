package config

import (
	"os"
	"strings"
)

// Environment variables that override secrets from the file.
const (
	EnvAPIToken      = "FORMSYNC_API_TOKEN"
	EnvYouTubeAPIKey = "YOUTUBE_API_KEY"
)

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.Token = strings.TrimSpace(c.API.Token)
	if value, ok := os.LookupEnv(EnvAPIToken); ok && strings.TrimSpace(value) != "" {
		c.API.Token = strings.TrimSpace(value)
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}

	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if value, ok := os.LookupEnv(EnvYouTubeAPIKey); ok && strings.TrimSpace(value) != "" {
		c.YouTube.APIKey = strings.TrimSpace(value)
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}
