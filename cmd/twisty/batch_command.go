package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"twisty/internal/batch"
	"twisty/internal/job"
	"twisty/internal/logging"
	"twisty/internal/notifications"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "batch <table.csv>",
		Short: "Export every row of a CSV table, stopping at the first failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			rows, err := batch.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch file: %s\n", args[0])
			fmt.Fprintf(out, "Exports: %d\n", len(rows))
			if len(rows) == 0 {
				return nil
			}

			defaults := job.DefaultsFromConfig(cfg)
			if dryRun {
				for i, row := range rows {
					fmt.Fprintf(out, "[%d/%d] %s\n  %s\n", i+1, len(rows), row.Name(), strings.Join(row.Tokens(defaults), " "))
				}
				return nil
			}

			return ctx.withCapture(cmd.Context(), cfg, logger, func(runner jobRunner) error {
				driver := batch.NewDriver(func(runCtx context.Context, row batch.Row, tokens []string) error {
					j := job.Resolve(ctx.parseOptions(cfg, tokens), defaults, logger)
					res, err := runner.Run(runCtx, j)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "[%s] Export OK: %s\n", row.Name(), res.Output)
					return nil
				}, defaults, logger)

				summary, err := driver.Run(cmd.Context(), rows)
				if err != nil {
					logging.ErrorWithContext(logger, "batch stopped", "batch_failed",
						logging.Int("completed", summary.Completed),
						logging.Int("total", summary.Total),
						logging.Error(err),
					)
					ctx.notify(cmd.Context(), cfg, logger, func(nctx context.Context, svc notifications.Service) error {
						return svc.NotifyError(nctx, err, "batch "+args[0])
					})
					return err
				}
				ctx.notify(cmd.Context(), cfg, logger, func(nctx context.Context, svc notifications.Service) error {
					return svc.NotifyBatchCompleted(nctx, summary.Completed, summary.Elapsed)
				})
				fmt.Fprintf(out, "Batch complete: %d exports in %s\n", summary.Completed, summary.Elapsed.Round(time.Second))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the options each row resolves to without exporting")
	return cmd
}
