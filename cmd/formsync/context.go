package main

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/config"
	"github.com/goliatone/go-formsync/pkg/logging"
	"github.com/goliatone/go-formsync/pkg/metadata"
	"github.com/goliatone/go-formsync/pkg/metadata/youtube"
	"github.com/goliatone/go-formsync/pkg/prompt"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/session"
)

type commandContext struct {
	configPath string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger

	// driver is replaced in tests.
	driver prompt.Driver
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *zap.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = zap.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Log.Level,
			Development: cfg.Log.Development,
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			c.logger = zap.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) sync() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *commandContext) recordsClient() (*records.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAPI(); err != nil {
		return nil, err
	}
	return records.New(cfg.API.BaseURL,
		records.WithToken(cfg.API.Token),
		records.WithTimeout(cfg.API.Timeout()),
		records.WithLogger(c.log()),
	)
}

// metadataFetcher returns nil when no provider key is configured; sessions
// then leave derived fields for the user to fill in.
func (c *commandContext) metadataFetcher() (session.MetadataFetcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.YouTube.APIKey == "" {
		c.log().Info("youtube.api_key not set; metadata lookup disabled")
		return nil, nil
	}
	client, err := youtube.New(cfg.YouTube.APIKey, youtube.WithBaseURL(cfg.YouTube.BaseURL))
	if err != nil {
		return nil, err
	}
	return metadata.NewFetcher(client, metadata.WithLogger(c.log())), nil
}

func (c *commandContext) promptDriver() prompt.Driver {
	if c.driver != nil {
		return c.driver
	}
	return prompt.NewSurveyDriver(nil)
}
