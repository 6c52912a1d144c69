package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"twisty/internal/browser"
)

func newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "setup",
		Short:       "Download the Chromium build used for recording",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := browser.Install(); err != nil {
				return fmt.Errorf("install chromium: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chromium installed")
			return nil
		},
	}
}
