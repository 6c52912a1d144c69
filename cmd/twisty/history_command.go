package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"twisty/internal/history"
	"twisty/internal/job"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent export runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No exports recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	columns := []column{
		{title: "Started"},
		{title: "Name", maxWidth: 28},
		{title: "Status"},
		{title: "Trim", right: true},
		{title: "Duration", right: true},
		{title: "Output", maxWidth: 48},
	}
	failed := 0
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		if run.Status == history.StatusFailed {
			failed++
		}
		status := string(run.Status)
		if run.FailureKind != "" {
			status = fmt.Sprintf("%s (%s)", status, run.FailureKind)
		}
		name := run.Name
		if strings.TrimSpace(name) == "" {
			name = truncate(run.Alg, 24)
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			name,
			status,
			job.FormatFloat(run.TrimSeconds) + "s",
			formatDuration(run.Duration()),
			run.Output,
		})
	}
	return renderTable(columns, rows, fmt.Sprintf("%d runs, %d failed", len(runs), failed))
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func truncate(value string, max int) string {
	r := []rune(value)
	if len(r) <= max {
		return value
	}
	return string(r[:max-1]) + "…"
}
