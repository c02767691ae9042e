// Package ledger persists the append-only history of admitted articles, one
// immutable entry per run date. The ledger is the single source of truth for
// "what has been seen"; the in-memory SeenSet is a derived index rebuilt from
// it at the start of every run.
package ledger

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// ErrNoEntry is returned by Read when no entry exists for the date. Callers
// use it to tell "no new articles that day" apart from a corrupt or
// unreadable entry.
var ErrNoEntry = eris.New("ledger: no entry for date")

// Ledger enumerates and stores dated entries of admitted articles. A missing
// entry for a date means "no new articles that day" and is treated the same
// as an entry that exists but is empty. Read errors are per-key: one corrupt
// entry never breaks enumeration or reads of the others.
type Ledger interface {
	// Dates lists all entry dates, most recent first.
	Dates(ctx context.Context) ([]string, error)
	// Read returns the articles of the entry for date, or an error wrapping
	// ErrNoEntry when no entry exists.
	Read(ctx context.Context, date string) ([]model.Article, error)
	// Write persists articles as the entry for date, replacing any existing
	// entry for the same date.
	Write(ctx context.Context, date string, articles []model.Article) error
	// Migrate prepares backing storage. A no-op for backends without schema.
	Migrate(ctx context.Context) error
	Close() error
}

// SeenSet is the set of fingerprints already admitted across all prior runs.
// It is created empty at run start, populated by LoadSeen, grown (never
// shrunk) by the ingestion filter, and discarded at run end. A SeenSet is
// owned by a single run and is not safe for concurrent use.
type SeenSet struct {
	fps map[string]struct{}
}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{fps: make(map[string]struct{})}
}

// Add inserts fp and reports whether it was absent before the call.
func (s *SeenSet) Add(fp string) bool {
	if _, ok := s.fps[fp]; ok {
		return false
	}
	s.fps[fp] = struct{}{}
	return true
}

// Contains reports whether fp is in the set.
func (s *SeenSet) Contains(fp string) bool {
	_, ok := s.fps[fp]
	return ok
}

// Len returns the number of fingerprints in the set.
func (s *SeenSet) Len() int {
	return len(s.fps)
}

// Stats reports what a ledger replay recovered.
type Stats struct {
	Fingerprints   int
	EntriesScanned int
}

// LoadSeen replays every ledger entry and folds the fingerprints of all
// identifiable articles into a fresh SeenSet. The entry for exclude, if
// non-empty, is skipped so a run never reads its own in-progress entry.
// Unreadable entries are logged and skipped: partial historical recall is
// preferred over aborting the run, so LoadSeen never fails. A ledger that
// cannot be enumerated at all yields an empty set.
func LoadSeen(ctx context.Context, lgr Ledger, exclude string) (*SeenSet, Stats) {
	seen := NewSeenSet()
	var stats Stats

	dates, err := lgr.Dates(ctx)
	if err != nil {
		zap.L().Warn("ledger: listing entries failed, starting with empty seen-set", zap.Error(err))
		return seen, stats
	}

	for _, date := range dates {
		if exclude != "" && date == exclude {
			continue
		}
		articles, err := lgr.Read(ctx, date)
		if err != nil {
			zap.L().Warn("ledger: skipping unreadable entry",
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}
		stats.EntriesScanned++
		for _, a := range articles {
			if !a.Identifiable() {
				continue
			}
			seen.Add(a.Fingerprint())
		}
	}

	stats.Fingerprints = seen.Len()
	return seen, stats
}

// WriteEntry persists the run's admitted articles as the entry for runDate
// and returns the entry identifier. An empty run writes nothing and returns
// an empty identifier: the absence of an entry is the documented "no new
// articles that day" signal. An existing same-date entry is replaced so a
// same-day re-run stays idempotent. Write failure is fatal for the run.
func WriteEntry(ctx context.Context, lgr Ledger, articles []model.Article, runDate string) (string, error) {
	if len(articles) == 0 {
		return "", nil
	}
	if err := lgr.Write(ctx, runDate, articles); err != nil {
		return "", eris.Wrapf(err, "ledger: write entry %s", runDate)
	}
	return runDate, nil
}
