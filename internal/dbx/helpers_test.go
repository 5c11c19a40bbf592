package dbx

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "dbx.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	p, err := Open("sqlite", dsn, size, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	_, err = p.DB().Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	return p
}

func valueOf(t *testing.T, db DBTX, id int) (string, bool) {
	t.Helper()
	var v string
	err := db.QueryRowContext(context.Background(), `SELECT v FROM t WHERE id = $1`, id).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

func countRows(t *testing.T, db DBTX) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}
