package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRemote() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	parsed, err := url.Parse(c.Remote.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("remote.base_url %q is not an absolute URL", c.Remote.BaseURL)
	}
	if c.Remote.RetryDelayMS < 0 {
		return fmt.Errorf("remote.retry_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if c.Watcher.PollIntervalSeconds < 0 {
		return fmt.Errorf("watcher.poll_interval_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.PassingScore < 0 || c.Server.PassingScore > 100 {
		return fmt.Errorf("server.passing_score must be between 0 and 100, got %d", c.Server.PassingScore)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
