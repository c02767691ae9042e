package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// newMockPostgresLedger creates a PostgresLedger backed by pgxmock for unit testing.
func newMockPostgresLedger(t *testing.T) (*PostgresLedger, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresLedger{pool: mock}, mock
}

func TestPostgresLedger_Dates(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`SELECT run_date FROM ledger_entries ORDER BY run_date DESC`).
		WillReturnRows(pgxmock.NewRows([]string{"run_date"}).
			AddRow("2026-01-03").
			AddRow("2026-01-02").
			AddRow("2026-01-01"))

	dates, err := l.Dates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-03", "2026-01-02", "2026-01-01"}, dates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Read(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	articles := []model.Article{{Title: "a", Link: "http://a"}}
	raw, err := json.Marshal(articles)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT articles FROM ledger_entries WHERE run_date = \$1`).
		WithArgs("2026-01-05").
		WillReturnRows(pgxmock.NewRows([]string{"articles"}).AddRow(raw))

	got, err := l.Read(context.Background(), "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, articles, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Read_NotFound(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`SELECT articles FROM ledger_entries WHERE run_date = \$1`).
		WithArgs("1999-01-01").
		WillReturnError(pgx.ErrNoRows)

	_, err := l.Read(context.Background(), "1999-01-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntry)
	assert.Contains(t, err.Error(), "read entry 1999-01-01")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Write_Upsert(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectExec(`ON CONFLICT \(run_date\) DO UPDATE`).
		WithArgs("2026-01-05", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := l.Write(context.Background(), "2026-01-05", []model.Article{{Title: "a", Link: "1"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Migrate(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS ledger_entries`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, l.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
