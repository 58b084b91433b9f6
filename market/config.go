package market

import (
	"fmt"
	"time"
)

// Config holds the market-data API settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.twelvedata.com".
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates requests. Required for live quotes.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Interval is the candle interval requested (default "1min").
	Interval string `yaml:"interval" mapstructure:"interval"`

	// Timezone is sent with time-series requests (optional).
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// Exchange scopes the stock listing endpoint (default "NASDAQ").
	Exchange string `yaml:"exchange" mapstructure:"exchange"`

	// Timeout bounds each HTTP request (default 10s).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retry attempts per call (default 3).
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.twelvedata.com"
	}
	if c.Interval == "" {
		c.Interval = "1min"
	}
	if c.Exchange == "" {
		c.Exchange = "NASDAQ"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
}

// Validate checks the base URL.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("market base_url is required")
	}
	return nil
}
