package ledger

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// fakeLedger serves canned entries and records writes.
type fakeLedger struct {
	dates    []string
	entries  map[string][]model.Article
	readErr  map[string]error
	datesErr error
	writeErr error
	written  map[string][]model.Article
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		entries: make(map[string][]model.Article),
		readErr: make(map[string]error),
		written: make(map[string][]model.Article),
	}
}

func (f *fakeLedger) Dates(context.Context) ([]string, error) {
	return f.dates, f.datesErr
}

func (f *fakeLedger) Read(_ context.Context, date string) ([]model.Article, error) {
	if err := f.readErr[date]; err != nil {
		return nil, err
	}
	return f.entries[date], nil
}

func (f *fakeLedger) Write(_ context.Context, date string, articles []model.Article) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written[date] = articles
	return nil
}

func (f *fakeLedger) Migrate(context.Context) error { return nil }
func (f *fakeLedger) Close() error                  { return nil }

func TestSeenSet(t *testing.T) {
	s := NewSeenSet()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("a"))

	assert.True(t, s.Add("a"), "first insert reports absent-before")
	assert.False(t, s.Add("a"), "second insert reports already present")
	assert.True(t, s.Contains("a"))
	assert.Equal(t, 1, s.Len())

	assert.True(t, s.Add("b"))
	assert.Equal(t, 2, s.Len())
}

func TestLoadSeenFoldsAllEntries(t *testing.T) {
	f := newFakeLedger()
	f.dates = []string{"2026-01-03", "2026-01-02", "2026-01-01"}
	f.entries["2026-01-01"] = []model.Article{{Title: "a", Link: "1"}}
	f.entries["2026-01-02"] = []model.Article{{Title: "b", Link: "2"}}
	f.entries["2026-01-03"] = []model.Article{
		{Title: "c", Link: "3"},
		{Title: "a", Link: "1"}, // repeat across entries collapses to one fingerprint
	}

	seen, stats := LoadSeen(context.Background(), f, "")
	assert.Equal(t, 3, stats.EntriesScanned)
	assert.Equal(t, 3, stats.Fingerprints)
	assert.Equal(t, 3, seen.Len())
	assert.True(t, seen.Contains(model.Fingerprint("a", "1")))
	assert.True(t, seen.Contains(model.Fingerprint("b", "2")))
	assert.True(t, seen.Contains(model.Fingerprint("c", "3")))
}

func TestLoadSeenExcludesRunDate(t *testing.T) {
	f := newFakeLedger()
	f.dates = []string{"2026-01-02", "2026-01-01"}
	f.entries["2026-01-01"] = []model.Article{{Title: "old", Link: "1"}}
	f.entries["2026-01-02"] = []model.Article{{Title: "today", Link: "2"}}

	seen, stats := LoadSeen(context.Background(), f, "2026-01-02")
	assert.Equal(t, 1, stats.EntriesScanned)
	assert.True(t, seen.Contains(model.Fingerprint("old", "1")))
	assert.False(t, seen.Contains(model.Fingerprint("today", "2")),
		"the run's own entry must not be replayed")
}

func TestLoadSeenSkipsUnreadableEntries(t *testing.T) {
	f := newFakeLedger()
	f.dates = []string{"2026-01-03", "2026-01-02", "2026-01-01"}
	f.entries["2026-01-01"] = []model.Article{{Title: "a", Link: "1"}}
	f.readErr["2026-01-02"] = eris.New("corrupt")
	f.entries["2026-01-03"] = []model.Article{{Title: "c", Link: "3"}}

	seen, stats := LoadSeen(context.Background(), f, "")
	assert.Equal(t, 2, stats.EntriesScanned)
	assert.Equal(t, 2, seen.Len())
	assert.True(t, seen.Contains(model.Fingerprint("a", "1")))
	assert.True(t, seen.Contains(model.Fingerprint("c", "3")))
}

func TestLoadSeenIgnoresUnidentifiableArticles(t *testing.T) {
	f := newFakeLedger()
	f.dates = []string{"2026-01-01"}
	f.entries["2026-01-01"] = []model.Article{
		{Title: "ok", Link: "1"},
		{Title: "", Link: "2"},
		{Title: "3", Link: "   "},
	}

	seen, _ := LoadSeen(context.Background(), f, "")
	assert.Equal(t, 1, seen.Len())
}

func TestLoadSeenEnumerationFailureYieldsEmptySet(t *testing.T) {
	f := newFakeLedger()
	f.datesErr = eris.New("storage down")

	seen, stats := LoadSeen(context.Background(), f, "")
	assert.Equal(t, 0, seen.Len())
	assert.Equal(t, Stats{}, stats)
}

func TestWriteEntry(t *testing.T) {
	f := newFakeLedger()
	articles := []model.Article{{Title: "a", Link: "1"}}

	entryID, err := WriteEntry(context.Background(), f, articles, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", entryID)
	assert.Equal(t, articles, f.written["2026-01-05"])
}

func TestWriteEntryEmptyRunWritesNothing(t *testing.T) {
	f := newFakeLedger()

	entryID, err := WriteEntry(context.Background(), f, nil, "2026-01-05")
	require.NoError(t, err)
	assert.Empty(t, entryID)
	assert.Empty(t, f.written, "an empty run must not touch the ledger")
}

func TestWriteEntryFailureIsFatal(t *testing.T) {
	f := newFakeLedger()
	f.writeErr = eris.New("disk full")

	_, err := WriteEntry(context.Background(), f, []model.Article{{Title: "a", Link: "1"}}, "2026-01-05")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write entry 2026-01-05")
}
