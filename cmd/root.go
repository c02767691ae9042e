package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hermes-sec/hermes-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hermes-cli",
	Short: "Daily cybersecurity news digest pipeline",
	Long: `hermes-cli polls security news feeds, filters out articles already
recorded in the historical ledger, and appends the day's new findings as a
dated ledger entry. A separate brief stage ranks the entry with an LLM and
delivers the resulting briefing as HTML email, JSON artifact, and RSS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return config.InitLogger(cfg.Log)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
