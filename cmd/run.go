package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full pipeline: fetch, then brief",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Fail before any network work if either stage is misconfigured.
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		if err := cfg.Validate("brief"); err != nil {
			return err
		}

		report, err := runFetch(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("run: fetch stage complete",
			zap.Int("new", report.NewCount),
			zap.Int("duplicates", report.DuplicateCount))

		return runBrief(ctx, cmd)
	},
}
