package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/cache"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/config"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/remote"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/services"
)

var errNoCandidate = errors.New("no candidate id: set identity.candidate_id, ROADMAP_CANDIDATE_ID or --candidate")

type commandContext struct {
	configFlag    *string
	candidateFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// pollInterval overrides watcher.poll_interval_seconds when set.
	pollInterval time.Duration
}

func newCommandContext(configFlag, candidateFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		candidateFlag: candidateFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) candidateID() (string, error) {
	if c.candidateFlag != nil {
		if v := strings.TrimSpace(*c.candidateFlag); v != "" {
			return v, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Identity.CandidateID == "" {
		return "", errNoCandidate
	}
	return cfg.Identity.CandidateID, nil
}

func (c *commandContext) logger(w io.Writer) *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: w})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) remoteClient(logger *slog.Logger) (*remote.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return remote.NewClient(cfg.Remote.BaseURL, cfg.RemoteTimeout(), remote.WithLogger(logger)), nil
}

// withCache opens the local cache for the duration of fn.
func (c *commandContext) withCache(logger *slog.Logger, fn func(*cache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := cache.Open(cfg.Cache.Path, logger)
	if err != nil {
		return err
	}
	fnErr := fn(store)
	closeErr := store.Close()
	return errors.Join(fnErr, closeErr)
}

// withSession opens roadmapID and runs fn. Queued remote writes are flushed
// before the cache is released.
func (c *commandContext) withSession(ctx context.Context, logger *slog.Logger, roadmapID string, fn func(*services.Session) error) error {
	candidateID, err := c.candidateID()
	if err != nil {
		return err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, err := c.remoteClient(logger)
	if err != nil {
		return err
	}

	pollInterval := cfg.PollInterval()
	if c.pollInterval > 0 {
		pollInterval = c.pollInterval
	}

	return c.withCache(logger, func(store *cache.Store) error {
		engine := services.NewEngine(store, client, services.EngineOptions{
			RetryDelay:   cfg.RetryDelay(),
			QueueSize:    cfg.Remote.QueueSize,
			PollInterval: pollInterval,
		}, logger)
		defer engine.Close()

		session, err := engine.OpenRoadmap(ctx, roadmapID, candidateID)
		if err != nil {
			return err
		}
		defer session.Close()
		return fn(session)
	})
}
