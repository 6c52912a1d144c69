package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"twisty/internal/config"
	"twisty/internal/export"
	"twisty/internal/job"
	"twisty/internal/logging"
	"twisty/internal/notifications"
	"twisty/internal/options"
	"twisty/internal/preflight"
	"twisty/internal/services"
)

// dotEnvFile supplies twisty_* option overrides without exporting them in
// the shell. Variables already set in the environment win.
const dotEnvFile = ".env"

// jobRunner exports one resolved job.
type jobRunner interface {
	Run(ctx context.Context, j job.ExportJob) (export.Result, error)
}

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// Swapped in tests.
	newRunner func(cfg *config.Config, recorder export.Recorder, logger *slog.Logger) jobRunner
	preflight func(ctx context.Context, cfg *config.Config) error
	notifier  func(cfg *config.Config) notifications.Service
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		newRunner: func(cfg *config.Config, recorder export.Recorder, logger *slog.Logger) jobRunner {
			return export.NewFromConfig(cfg, recorder, logger)
		},
		preflight: func(ctx context.Context, cfg *config.Config) error {
			return preflight.AsError(preflight.RunAll(ctx, cfg))
		},
		notifier: notifications.NewService,
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
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
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

func (c *commandContext) verboseEnabled() bool {
	return c.verbose != nil && *c.verbose
}

// logger writes to the command's stderr so stdout stays clean for output.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.verboseEnabled() {
		level = "debug"
	}
	w := cmd.ErrOrStderr()
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Writer: w,
		File:   cfg.Logging.File,
		Color:  shouldColorize(w),
	})
}

// notify delivers a notification; failures are logged and never fail the command.
func (c *commandContext) notify(ctx context.Context, cfg *config.Config, logger *slog.Logger, send func(context.Context, notifications.Service) error) {
	if c.notifier == nil {
		return
	}
	if err := send(context.WithoutCancel(ctx), c.notifier(cfg)); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "result was not announced"),
		)
	}
}

func (c *commandContext) parseOptions(cfg *config.Config, tokens []string) options.Set {
	var opts []options.Option
	if prefix := strings.TrimSpace(cfg.Options.EnvPrefix); prefix != "" {
		opts = append(opts, options.WithEnvPrefix(prefix))
	}
	return options.Parse(tokens, opts...)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
