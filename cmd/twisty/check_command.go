package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"twisty/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, the renderer page, and the state directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			failed := 0
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				kind, msg := statusOK, status.Summary()
				if !status.Available {
					kind = statusError
					if status.Optional {
						kind = statusWarn
					} else {
						failed++
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, msg, colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Environment", colorize))
			results := []preflight.Result{
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckRenderer(cmd.Context(), cfg.Renderer.BaseURL),
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if failed > 0 {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
