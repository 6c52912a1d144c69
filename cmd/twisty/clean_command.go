package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"twisty/internal/job"
	"twisty/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var outDir string
	var list bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove raw captures left behind by failed exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			tmpDir := captureDir(cfg.Defaults.Output, outDir)
			out := cmd.OutOrStdout()

			if list {
				captures, err := staging.List(tmpDir)
				if err != nil {
					return err
				}
				if len(captures) == 0 {
					fmt.Fprintf(out, "No raw captures in %s\n", tmpDir)
					return nil
				}
				fmt.Fprintln(out, renderCaptureTable(captures))
				return nil
			}

			result := staging.CleanStale(cmd.Context(), tmpDir, olderThan, logger)
			fmt.Fprintf(out, "Removed %d raw captures (%s) from %s\n", len(result.Removed), humanize.IBytes(uint64(result.Bytes)), tmpDir)
			if len(result.Errors) > 0 {
				paths := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					paths = append(paths, e.Path)
				}
				return fmt.Errorf("failed to remove %d entries: %s", len(result.Errors), strings.Join(paths, ", "))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", staging.DefaultMaxAge, "Only remove captures older than this")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory whose tmp folder is cleaned (default: directory of defaults.out)")
	cmd.Flags().BoolVar(&list, "list", false, "List raw captures instead of removing them")
	return cmd
}

// captureDir returns the tmp directory raw captures are written to.
func captureDir(defaultOutput, outDir string) string {
	if dir := strings.TrimSpace(outDir); dir != "" {
		return filepath.Join(dir, "tmp")
	}
	_, tmpDir := job.ExportJob{Output: defaultOutput}.Directories()
	return tmpDir
}

func renderCaptureTable(captures []staging.Capture) string {
	columns := []column{{title: "Name"}, {title: "Size", right: true}, {title: "Modified"}}
	rows := make([][]string, 0, len(captures))
	var total int64
	for _, c := range captures {
		total += c.Size
		rows = append(rows, []string{
			c.Name,
			humanize.IBytes(uint64(c.Size)),
			humanize.Time(c.ModTime),
		})
	}
	return renderTable(columns, rows, fmt.Sprintf("%d captures, %s", len(captures), humanize.IBytes(uint64(total))))
}
