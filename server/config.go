package server

import (
	"fmt"

	"github.com/stockwatch/stockwatch/server/middleware"
)

// Config holds the HTTP server settings.
type Config struct {
	// Host is the address to bind to. Empty means all interfaces.
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the TCP port to listen on.
	Port int `yaml:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading a request, in seconds.
	ReadTimeout int `yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response, in seconds.
	WriteTimeout int `yaml:"write_timeout" mapstructure:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit, in seconds.
	IdleTimeout int `yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// CORS configures cross-origin request handling.
	CORS middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// ApplyDefaults fills in zero values with sane defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	c.CORS.ApplyDefaults()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// Addr returns the host:port string the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
