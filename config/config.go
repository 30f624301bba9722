// Package config loads and validates the service configuration from YAML,
// .env files, and environment variables.
package config

import (
	"fmt"

	"github.com/scribely/scribely/auth"
	"github.com/scribely/scribely/database"
	"github.com/scribely/scribely/logger"
	"github.com/scribely/scribely/observability"
	"github.com/scribely/scribely/server"
	"github.com/scribely/scribely/storage/local"
	"github.com/scribely/scribely/transcription/whisper"
)

// Config is the full service configuration.
type Config struct {
	Name          string               `mapstructure:"name"`
	Environment   string               `mapstructure:"environment"`
	Logging       logger.Config        `mapstructure:"logging"`
	Server        server.Config        `mapstructure:"server"`
	Auth          auth.Config          `mapstructure:"auth"`
	Database      database.Config      `mapstructure:"database"`
	Storage       local.Config         `mapstructure:"storage"`
	Transcription whisper.Config       `mapstructure:"transcription"`
	Observability observability.Config `mapstructure:"observability"`
}

// ApplyDefaults cascades defaults through every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scribely"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. Configuration problems fail startup rather
// than the first request that exercises them.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads the configuration for the named service, applies defaults, and
// validates it.
func Load(serviceName string) (*Config, error) {
	cfg := &Config{}
	if err := loadInto(serviceName, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
