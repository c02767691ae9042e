package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the ledger uses. It is satisfied by
// both *pgxpool.Pool and pgxmock's pool, which keeps the backend unit-testable
// without a live database.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresLedger implements Ledger using pgxpool.
type PostgresLedger struct {
	pool pgxPool
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"list_entries": `SELECT run_date FROM ledger_entries ORDER BY run_date DESC`,
	"read_entry":   `SELECT articles FROM ledger_entries WHERE run_date = $1`,
	"write_entry": `INSERT INTO ledger_entries (run_date, articles, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_date) DO UPDATE SET articles = EXCLUDED.articles, updated_at = EXCLUDED.updated_at`,
}

// NewPostgres creates a PostgresLedger with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresLedger, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresLedger{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	run_date   TEXT PRIMARY KEY,
	articles   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (l *PostgresLedger) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (l *PostgresLedger) Close() error {
	l.pool.Close()
	return nil
}

func (l *PostgresLedger) Dates(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT run_date FROM ledger_entries ORDER BY run_date DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list entries")
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry date")
		}
		dates = append(dates, date)
	}
	return dates, eris.Wrap(rows.Err(), "postgres: iterate entry dates")
}

func (l *PostgresLedger) Read(ctx context.Context, date string) ([]model.Article, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx,
		`SELECT articles FROM ledger_entries WHERE run_date = $1`,
		date,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNoEntry, "postgres: read entry %s", date)
		}
		return nil, eris.Wrapf(err, "postgres: read entry %s", date)
	}

	var articles []model.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, eris.Wrapf(err, "postgres: decode entry %s", date)
	}
	return articles, nil
}

func (l *PostgresLedger) Write(ctx context.Context, date string, articles []model.Article) error {
	raw, err := json.Marshal(articles)
	if err != nil {
		return eris.Wrapf(err, "postgres: encode entry %s", date)
	}

	now := time.Now().UTC()
	_, err = l.pool.Exec(ctx,
		`INSERT INTO ledger_entries (run_date, articles, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_date) DO UPDATE SET articles = EXCLUDED.articles, updated_at = EXCLUDED.updated_at`,
		date, raw, now, now,
	)
	return eris.Wrapf(err, "postgres: write entry %s", date)
}
