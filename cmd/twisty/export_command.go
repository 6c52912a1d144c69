package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"twisty/internal/config"
	"twisty/internal/export"
	"twisty/internal/history"
	"twisty/internal/job"
	"twisty/internal/logging"
	"twisty/internal/notifications"
)

const exportUsage = `Usage:
  twisty export [alg tokens...] [--option value...]

Options:
  --alg <moves>        move sequence (tokens before the first option also work)
  --name <text>        title shown in the video
  --notation <moves>   displayed notation, defaults to the alg
  --puzzle <id>        puzzle type (default 3x3x3)
  --speedFast <x>      fast phase speed multiplier (default 2.6)
  --speedSlow <x>      slow phase speed multiplier (default 0.65)
  --repeats <n>        repetitions of the alg (default 3)
  --bg <colour>        background colour (default #0e0f12)
  --bgImage <path>     background image
  --bgVideo <path>     background video
  --out <path>         output MP4 (default out/export.mp4)
  --trimStart <s|auto> seconds to cut from the start, or auto-detect
  --tailPad <ms>       hold the final frame this long (default 3000)
  --show               run a visible browser window
  --headless=false     same as --show

Every option can also come from the environment as twisty_<option>.
Global flags --config/-c and --verbose/-v are accepted anywhere.
`

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:                "export [alg tokens] [--option value...]",
		Short:              "Render one algorithm to an MP4",
		DisableFlagParsing: true,
		Annotations:        map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, globals := splitGlobalFlags(args)
			if globals.help {
				fmt.Fprint(cmd.OutOrStdout(), exportUsage)
				return nil
			}
			globals.apply(ctx)

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			j := job.Resolve(ctx.parseOptions(cfg, tokens), job.DefaultsFromConfig(cfg), logger)
			if err := j.Validate(); err != nil {
				return err
			}

			return ctx.withCapture(cmd.Context(), cfg, logger, func(runner jobRunner) error {
				res, err := runner.Run(cmd.Context(), j)
				if err != nil {
					ctx.notify(cmd.Context(), cfg, logger, func(nctx context.Context, svc notifications.Service) error {
						return svc.NotifyError(nctx, err, "export "+j.Name)
					})
					return err
				}
				ctx.notify(cmd.Context(), cfg, logger, func(nctx context.Context, svc notifications.Service) error {
					return svc.NotifyExportCompleted(nctx, j.Name, res.Output, res.TrimSeconds)
				})
				fmt.Fprintf(cmd.OutOrStdout(), "Export OK: %s\n", res.Output)
				return nil
			})
		},
	}
}

// withCapture holds the capture lock, runs preflight, and hands fn a runner
// wired to the history ledger.
func (c *commandContext) withCapture(ctx context.Context, cfg *config.Config, logger *slog.Logger, fn func(jobRunner) error) error {
	lock, err := export.AcquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("release capture lock", logging.Error(err))
		}
	}()

	if err := c.preflight(ctx, cfg); err != nil {
		return err
	}

	var recorder export.Recorder
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history ledger unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "runs will not be recorded"),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
		)
	} else {
		defer store.Close()
		recorder = store
	}

	return fn(c.newRunner(cfg, recorder, logger))
}

type globalFlags struct {
	configPath string
	hasConfig  bool
	verbose    bool
	help       bool
}

func (g globalFlags) apply(ctx *commandContext) {
	if g.hasConfig && ctx.configFlag != nil {
		*ctx.configFlag = g.configPath
	}
	if g.verbose && ctx.verbose != nil {
		*ctx.verbose = true
	}
}

// splitGlobalFlags removes root flags from raw export tokens, since flag
// parsing is disabled for that command.
func splitGlobalFlags(args []string) ([]string, globalFlags) {
	var g globalFlags
	tokens := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				g.configPath, g.hasConfig = args[i+1], true
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			g.configPath, g.hasConfig = strings.TrimPrefix(arg, "--config="), true
		case arg == "--verbose" || arg == "-v":
			g.verbose = true
		case arg == "--help" || arg == "-h":
			g.help = true
		default:
			tokens = append(tokens, arg)
		}
	}
	return tokens, g
}
