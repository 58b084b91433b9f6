package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Config holds the cron schedules.
type Config struct {
	// RefreshCron schedules the stock refresh (default midnight).
	RefreshCron string `yaml:"refresh_cron" mapstructure:"refresh_cron"`

	// DigestCron schedules the email digest (default 08:00).
	DigestCron string `yaml:"digest_cron" mapstructure:"digest_cron"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.RefreshCron == "" {
		c.RefreshCron = "0 0 * * *"
	}
	if c.DigestCron == "" {
		c.DigestCron = "0 8 * * *"
	}
}

// Validate parses both cron expressions.
func (c *Config) Validate() error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.RefreshCron); err != nil {
		return fmt.Errorf("invalid refresh_cron %q: %w", c.RefreshCron, err)
	}
	if _, err := parser.Parse(c.DigestCron); err != nil {
		return fmt.Errorf("invalid digest_cron %q: %w", c.DigestCron, err)
	}
	return nil
}
