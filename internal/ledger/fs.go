package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// Entry files keep the naming and layout of the signal files written by
// earlier pipeline versions so an existing ledger directory stays readable.
const (
	entryFilePrefix = "hermes_signal_"
	entryFileSuffix = ".json"
)

// FSLedger stores one JSON file per run date in a single directory. This is
// the default backend and the on-disk format the ledger history was
// accumulated in.
type FSLedger struct {
	dir string
}

// NewFS opens (creating if needed) a filesystem ledger rooted at dir.
func NewFS(dir string) (*FSLedger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "ledger: create dir %s", dir)
	}
	return &FSLedger{dir: dir}, nil
}

func (l *FSLedger) path(date string) string {
	return filepath.Join(l.dir, entryFilePrefix+date+entryFileSuffix)
}

// Dates lists entry dates, most recent first. ISO calendar dates sort
// lexically, so a reverse string sort is a reverse chronological sort.
func (l *FSLedger) Dates(_ context.Context) ([]string, error) {
	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: read dir %s", l.dir)
	}

	var dates []string
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, entryFilePrefix) || !strings.HasSuffix(name, entryFileSuffix) {
			continue
		}
		dates = append(dates, strings.TrimSuffix(strings.TrimPrefix(name, entryFilePrefix), entryFileSuffix))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (l *FSLedger) Read(_ context.Context, date string) ([]model.Article, error) {
	b, err := os.ReadFile(l.path(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNoEntry, "ledger: read entry %s", date)
		}
		return nil, eris.Wrapf(err, "ledger: read entry %s", date)
	}
	var articles []model.Article
	if err := json.Unmarshal(b, &articles); err != nil {
		return nil, eris.Wrapf(err, "ledger: decode entry %s", date)
	}
	return articles, nil
}

// Write replaces the entry for date atomically (write to a temp file in the
// same directory, then rename) so a crash mid-write never leaves a corrupt
// entry under the final name.
func (l *FSLedger) Write(_ context.Context, date string, articles []model.Article) error {
	b, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "ledger: encode entry %s", date)
	}

	tmp := l.path(date) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return eris.Wrapf(err, "ledger: write entry %s", date)
	}
	if err := os.Rename(tmp, l.path(date)); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "ledger: commit entry %s", date)
	}
	return nil
}

func (l *FSLedger) Migrate(_ context.Context) error { return nil }

func (l *FSLedger) Close() error { return nil }
