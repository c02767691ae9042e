package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// SQLiteLedger implements Ledger using modernc.org/sqlite. Entries live in a
// single table keyed by run date, articles serialized as a JSON column.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteLedger{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	run_date   TEXT PRIMARY KEY,
	articles   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (l *SQLiteLedger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) Dates(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_date FROM ledger_entries ORDER BY run_date DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entries")
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry date")
		}
		dates = append(dates, date)
	}
	return dates, eris.Wrap(rows.Err(), "sqlite: iterate entry dates")
}

func (l *SQLiteLedger) Read(ctx context.Context, date string) ([]model.Article, error) {
	var raw string
	err := l.db.QueryRowContext(ctx,
		`SELECT articles FROM ledger_entries WHERE run_date = ?`,
		date,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNoEntry, "sqlite: read entry %s", date)
		}
		return nil, eris.Wrapf(err, "sqlite: read entry %s", date)
	}

	var articles []model.Article
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return nil, eris.Wrapf(err, "sqlite: decode entry %s", date)
	}
	return articles, nil
}

func (l *SQLiteLedger) Write(ctx context.Context, date string, articles []model.Article) error {
	raw, err := json.Marshal(articles)
	if err != nil {
		return eris.Wrapf(err, "sqlite: encode entry %s", date)
	}

	now := time.Now().UTC()
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (run_date, articles, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(run_date) DO UPDATE SET articles = excluded.articles, updated_at = excluded.updated_at`,
		date, string(raw), now, now,
	)
	return eris.Wrapf(err, "sqlite: write entry %s", date)
}
