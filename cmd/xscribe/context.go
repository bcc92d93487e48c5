package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"xscribe/internal/config"
	"xscribe/internal/logging"
	"xscribe/internal/modelconfig"
	"xscribe/internal/queue"
	"xscribe/internal/recognition"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared logger writing to the configured log
// directory, keeping stdout free for command output.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "xscribe.log")},
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// withLock guards worker commands with the single-instance lock so two
// processes never share the recognition engine or staging directory.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another xscribe instance is already running (lock %s)", cfg.LockPath())
	}
	defer lock.Unlock()
	return fn()
}

// engineCache builds the recognition engine cache backed by the
// configured CLI binary.
func (c *commandContext) engineCache(logger *slog.Logger) (*recognition.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	factory := func(tier modelconfig.Tier) (recognition.Engine, error) {
		engine, err := recognition.NewCLIEngine(cfg.Tools.WhisperBinary, tier, cfg.Paths.StagingDir)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	return recognition.NewCache(factory, logger), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
