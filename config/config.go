// Package config loads the application configuration from config.yml,
// .env files and STOCKWATCH_-prefixed environment variables. Every section
// owns its own ApplyDefaults/Validate; Load runs both so a returned Config
// is always complete and checked.
package config

import (
	"fmt"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/jobs"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/mailer"
	"github.com/stockwatch/stockwatch/market"
	"github.com/stockwatch/stockwatch/observability"
	"github.com/stockwatch/stockwatch/server"
)

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Version     string `yaml:"version" mapstructure:"version"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "stockwatch"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// Config is the root application configuration.
type Config struct {
	App           AppConfig            `yaml:"app" mapstructure:"app"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Market        market.Config        `yaml:"market" mapstructure:"market"`
	Mail          mailer.Config        `yaml:"mail" mapstructure:"mail"`
	Jobs          jobs.Config          `yaml:"jobs" mapstructure:"jobs"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults cascades defaults into every section.
func (c *Config) ApplyDefaults() {
	c.App.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Market.ApplyDefaults()
	c.Mail.ApplyDefaults()
	c.Jobs.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. The first failure is returned; a missing
// or short JWT secret is a startup-time error, never a per-request one.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"logging", c.Logging.Validate},
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"auth", c.Auth.Validate},
		{"market", c.Market.Validate},
		{"mail", c.Mail.Validate},
		{"jobs", c.Jobs.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("config section %s: %w", check.name, err)
		}
	}
	return nil
}
