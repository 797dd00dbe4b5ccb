package cli

import (
	"time"

	"github.com/spf13/cobra"

	"sensor-extremes/internal/app"
)

var (
	simulateSource  string
	simulateSpacing time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate value...",
	Short: "Run raw readings through a fresh engine and print the report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SimulateOptions{
			SourceID: simulateSource,
			Values:   args,
			Spacing:  simulateSpacing,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSource, "source", "", "Source id (defaults to first configured source)")
	simulateCmd.Flags().DurationVar(&simulateSpacing, "spacing", time.Minute, "Spacing between simulated readings")
}
