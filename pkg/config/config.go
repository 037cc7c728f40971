package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// API configures the management API client.
type API struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// Timeout returns the request timeout as a duration.
func (a API) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// YouTube configures the metadata provider.
type YouTube struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Log configures logger construction.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full CLI configuration.
type Config struct {
	API     API     `yaml:"api"`
	YouTube YouTube `yaml:"youtube"`
	Log     Log     `yaml:"log"`
}

// DefaultConfigPath returns the expanded per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads configuration from path, or from the first existing default
// location when path is empty. A missing file is not an error; defaults and
// environment overrides still apply. It returns the resolved path and whether
// a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		return statConfig(expanded)
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if resolved, exists, err := statConfig(defaultPath); err != nil || exists {
		return resolved, exists, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	if resolved, exists, err := statConfig(projectPath); err != nil || exists {
		return resolved, exists, err
	}
	return defaultPath, false, nil
}

func statConfig(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", path)
	}
	return path, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue, "~"))
	}
	return filepath.Clean(pathValue), nil
}
