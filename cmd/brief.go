package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hermes-sec/hermes-cli/internal/digest"
	"github.com/hermes-sec/hermes-cli/internal/ledger"
	"github.com/hermes-sec/hermes-cli/internal/model"
)

var (
	briefDate   string
	briefNoMail bool
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Rank the day's ledger entry with an LLM and deliver the briefing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runBrief(ctx, cmd)
	},
}

func init() {
	briefCmd.Flags().StringVar(&briefDate, "date", "", "ledger entry date to brief (default: today, UTC)")
	briefCmd.Flags().BoolVar(&briefNoMail, "no-mail", false, "skip email delivery")
}

// runBrief ranks one ledger entry and writes the briefing artifact, then
// delivers the rendered HTML by email unless --no-mail is set. A missing or
// empty entry means the fetch stage found nothing new and is not an error.
func runBrief(ctx context.Context, cmd *cobra.Command) error {
	if err := cfg.Validate("brief"); err != nil {
		return err
	}

	lgr, err := initLedger(ctx)
	if err != nil {
		return err
	}
	defer lgr.Close()

	date := briefDate
	if date == "" {
		date = model.RunDate(time.Now())
	}

	articles, err := lgr.Read(ctx, date)
	switch {
	case errors.Is(err, ledger.ErrNoEntry):
		// Entry absence is the fetch stage's "nothing new today" signal.
		zap.L().Info("brief: no ledger entry", zap.String("date", date))
		fmt.Fprintf(cmd.OutOrStdout(), "no new articles for %s, nothing to brief\n", date)
		return nil
	case err != nil:
		// A corrupt or unreadable entry is not an empty day.
		return err
	}
	if len(articles) == 0 {
		zap.L().Info("brief: ledger entry is empty", zap.String("date", date))
		fmt.Fprintf(cmd.OutOrStdout(), "no new articles for %s, nothing to brief\n", date)
		return nil
	}

	ranker, err := initRanker()
	if err != nil {
		return err
	}

	zap.L().Info("brief: ranking articles",
		zap.String("date", date),
		zap.String("provider", cfg.LLM.Provider),
		zap.Int("articles", len(articles)))

	briefing, err := ranker.Rank(ctx, date, articles)
	if err != nil {
		return err
	}

	path, err := digest.WriteArtifact(briefing, cfg.Brief.OutputDir)
	if err != nil {
		return err
	}
	zap.L().Info("brief: artifact written", zap.String("path", path))

	html, err := digest.RenderHTML(briefing)
	if err != nil {
		return err
	}

	if briefNoMail {
		fmt.Fprintf(cmd.OutOrStdout(), "briefing for %s written to %s (mail skipped)\n", date, path)
		return nil
	}

	subject := fmt.Sprintf("Hermes Daily Security Briefing %s", date)
	if err := digest.NewMailer(cfg.Mail).Send(ctx, subject, html); err != nil {
		return err
	}
	zap.L().Info("brief: briefing delivered", zap.String("date", date), zap.Strings("to", cfg.Mail.To))
	fmt.Fprintf(cmd.OutOrStdout(), "briefing for %s delivered\n", date)
	return nil
}
