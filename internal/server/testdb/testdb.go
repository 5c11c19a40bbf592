// Package testdb opens migrated SQLite pools for tests.
package testdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// DSN returns a file-backed SQLite DSN in a per-test temp dir, with foreign
// keys enforced.
func DSN(t testing.TB) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "capstone.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// New opens a pool of the given size over a fresh migrated database. The
// pool is closed when the test ends.
func New(t testing.TB, size int) *dbx.Pool {
	t.Helper()
	p, err := dbx.Open("sqlite", DSN(t), size, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	provider, err := goose.NewProvider(goose.DialectSQLite3, p.DB(), migrations.Migrations)
	require.NoError(t, err)
	_, err = provider.Up(context.Background())
	require.NoError(t, err)
	return p
}

// Tx begins a transaction that is rolled back at cleanup unless the test
// ended it.
func Tx(t testing.TB, p *dbx.Pool) *dbx.Tx {
	t.Helper()
	tx, err := p.Begin(context.Background(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		if tx.State() == dbx.TxActive {
			_ = tx.Rollback(context.Background())
		}
	})
	return tx
}
