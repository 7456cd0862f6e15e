package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"bayesaudit/internal/config"
	"bayesaudit/internal/logging"
)

// commandContext is the lazily-initialized state shared by every
// subcommand: a set of flag pointers plus a sync.Once-guarded config
// load, so every command pays for config resolution exactly once,
// regardless of which subcommand ends up needing it.
type commandContext struct {
	configFlag *string
	logLevel   *string
	logFormat  *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevel, logFormat *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
		logFormat:  logFormat,
		verbose:    verbose,
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

func (c *commandContext) resolvedLogLevel(cfg *config.Config) string {
	if c != nil && c.logLevel != nil {
		if trimmed := strings.TrimSpace(*c.logLevel); trimmed != "" {
			return trimmed
		}
	}
	if c != nil && c.verbose != nil && *c.verbose {
		return "debug"
	}
	if cfg != nil && cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return "info"
}

func (c *commandContext) resolvedLogFormat(cfg *config.Config) string {
	if c != nil && c.logFormat != nil {
		if trimmed := strings.TrimSpace(*c.logFormat); trimmed != "" {
			return trimmed
		}
	}
	if cfg != nil && cfg.LogFormat != "" {
		return cfg.LogFormat
	}
	return "console"
}

// newCLILogger builds the root slog.Logger for a command invocation.
func (c *commandContext) newCLILogger(cfg *config.Config) (*slog.Logger, error) {
	opts := logging.Options{
		Level:       c.resolvedLogLevel(cfg),
		Format:      c.resolvedLogFormat(cfg),
		OutputPaths: []string{"stdout"},
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(annotations map[string]string) bool {
	return annotations != nil && annotations["skipConfigLoad"] == "true"
}
