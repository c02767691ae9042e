package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the historical article ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entry dates, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lgr, err := initLedger(ctx)
		if err != nil {
			return err
		}
		defer lgr.Close()

		dates, err := lgr.Dates(ctx)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger is empty")
			return nil
		}
		for _, d := range dates {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		return nil
	},
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Print the articles recorded for a ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lgr, err := initLedger(ctx)
		if err != nil {
			return err
		}
		defer lgr.Close()

		articles, err := lgr.Read(ctx, args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(articles, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
}
