package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnv lets ROADMAP_* variables (typically from .env) override the file.
func (c *Config) applyEnv() {
	if v, ok := lookupEnv("ROADMAP_CANDIDATE_ID"); ok {
		c.Identity.CandidateID = v
	}
	if v, ok := lookupEnv("ROADMAP_CACHE_PATH"); ok {
		c.Cache.Path = v
	}
	if v, ok := lookupEnv("ROADMAP_REMOTE_URL"); ok {
		c.Remote.BaseURL = v
	}
	if v, ok := lookupEnv("ROADMAP_SERVER_BIND"); ok {
		c.Server.Bind = v
	}
	if v, ok := lookupEnv("ROADMAP_SERVER_DB"); ok {
		c.Server.DBPath = v
	}
	if v, ok := lookupEnv("ROADMAP_PASSING_SCORE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.PassingScore = n
		}
	}
	if v, ok := lookupEnv("ROADMAP_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv("ROADMAP_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
}

func (c *Config) normalize() error {
	c.Identity.CandidateID = strings.TrimSpace(c.Identity.CandidateID)

	var err error
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if strings.TrimSpace(c.Server.DBPath) != "" {
		if c.Server.DBPath, err = expandPath(strings.TrimSpace(c.Server.DBPath)); err != nil {
			return fmt.Errorf("server.db_path: %w", err)
		}
	}

	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeout
	}
	if c.Remote.QueueSize <= 0 {
		c.Remote.QueueSize = defaultRemoteQueueSize
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// RemoteTimeout returns the per-request timeout for backend calls.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// RetryDelay returns the pause before the single retry of a failed remote write.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Remote.RetryDelayMS) * time.Millisecond
}

// PollInterval returns the completion polling interval; zero disables ticking.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watcher.PollIntervalSeconds) * time.Second
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
