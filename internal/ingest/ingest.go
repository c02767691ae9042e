package ingest

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hermes-sec/hermes-cli/internal/ledger"
	"github.com/hermes-sec/hermes-cli/internal/model"
)

// Result is the outcome of one ingestion pass. Counts are reported even when
// some sources failed.
type Result struct {
	Admitted       []model.Article
	NewCount       int
	DuplicateCount int
	SkippedCount   int
	SourcesScanned int
	SourcesFailed  int
}

// Ingestor fetches feed sources and admits only articles whose fingerprint
// has not been seen before.
type Ingestor struct {
	fetcher       SourceFetcher
	maxConcurrent int
}

// New creates an Ingestor. maxConcurrent bounds parallel source fetches;
// values below 1 disable concurrency.
func New(fetcher SourceFetcher, maxConcurrent int) *Ingestor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Ingestor{fetcher: fetcher, maxConcurrent: maxConcurrent}
}

// Ingest fetches every source and filters its entries against seen, growing
// seen as articles are admitted so the same article appearing in a later
// source within the run is caught as a duplicate.
//
// Fetches may run concurrently, but filtering runs serially in source order:
// two fetches can never both pass the seen check for the same article, and
// output order stays source-then-entry order. A failing source is logged and
// skipped; it never prevents ingestion of the others.
func (ing *Ingestor) Ingest(ctx context.Context, sources []string, seen *ledger.SeenSet) Result {
	type fetched struct {
		entries []RawEntry
		err     error
	}
	results := make([]fetched, len(sources))

	var g errgroup.Group
	g.SetLimit(ing.maxConcurrent)
	for i, feedURL := range sources {
		g.Go(func() error {
			entries, err := ing.fetcher.FetchEntries(ctx, feedURL)
			results[i] = fetched{entries: entries, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for i, feedURL := range sources {
		res.SourcesScanned++
		if results[i].err != nil {
			res.SourcesFailed++
			zap.L().Warn("ingest: source failed, continuing with remaining sources",
				zap.String("url", feedURL),
				zap.Error(results[i].err),
			)
			continue
		}

		zap.L().Debug("ingest: fetched source",
			zap.String("url", feedURL),
			zap.Int("entries", len(results[i].entries)),
		)

		for _, raw := range results[i].entries {
			article := raw.Article()
			if !article.Identifiable() {
				res.SkippedCount++
				continue
			}

			fp := article.Fingerprint()
			if seen.Contains(fp) {
				res.DuplicateCount++
				continue
			}
			seen.Add(fp)
			res.Admitted = append(res.Admitted, article)
			res.NewCount++
		}
	}
	return res
}
