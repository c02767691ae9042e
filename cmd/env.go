package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hermes-sec/hermes-cli/internal/digest"
	"github.com/hermes-sec/hermes-cli/internal/ingest"
	"github.com/hermes-sec/hermes-cli/internal/ledger"
	"github.com/hermes-sec/hermes-cli/pkg/anthropic"
	"github.com/hermes-sec/hermes-cli/pkg/azureopenai"
)

// initLedger opens the configured ledger backend and applies migrations.
// The caller owns the returned ledger and must Close it.
func initLedger(ctx context.Context) (ledger.Ledger, error) {
	var (
		lgr ledger.Ledger
		err error
	)
	switch cfg.Ledger.Driver {
	case "fs", "":
		lgr, err = ledger.NewFS(cfg.Ledger.Path)
	case "sqlite":
		lgr, err = ledger.NewSQLite(cfg.Ledger.Path)
	case "postgres":
		lgr, err = ledger.NewPostgres(ctx, cfg.Ledger.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown ledger driver %q", cfg.Ledger.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := lgr.Migrate(ctx); err != nil {
		_ = lgr.Close()
		return nil, err
	}
	zap.L().Debug("ledger ready", zap.String("driver", cfg.Ledger.Driver))
	return lgr, nil
}

func initFetcher() *ingest.FeedFetcher {
	return ingest.NewFeedFetcher(ingest.FetchOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		PerHostRate:  rate.Limit(cfg.Fetch.PerHostRate),
		PerHostBurst: cfg.Fetch.PerHostBurst,
	})
}

// initRanker builds the LLM ranker for the configured provider.
func initRanker() (digest.Ranker, error) {
	switch cfg.LLM.Provider {
	case "azure":
		client := azureopenai.NewClient(
			cfg.LLM.Azure.Endpoint,
			cfg.LLM.Azure.Key,
			azureopenai.WithDeployment(cfg.LLM.Azure.Deployment),
		)
		return digest.NewAzureRanker(client, cfg.LLM.MaxTokens), nil
	case "anthropic":
		client := anthropic.NewClient(cfg.LLM.Anthropic.Key)
		return digest.NewAnthropicRanker(client, cfg.LLM.Anthropic.Model, int64(cfg.LLM.MaxTokens)), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
