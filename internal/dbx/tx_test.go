package dbx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPool(db, 1, logging.Discard()), mock
}

func TestCommit_VisibleToLaterTransactions(t *testing.T) {
	p := newTestPool(t, 2)
	ctx := context.Background()

	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, TxActive, tx.State())

	_, err = tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES ($1, $2)`, 1, "a")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, TxDestroyed, tx.State())
	assert.Equal(t, TxCommitted, tx.Outcome())
	assert.Equal(t, 0, p.Stats().InUse)

	tx2, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	v, ok := valueOf(t, tx2, 1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestRollback_DiscardsWrites(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (1, 'x')`)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))
	assert.Equal(t, TxRolledBack, tx.Outcome())

	assert.Equal(t, 0, countRows(t, p.DB()))
}

func TestTx_UseAfterEnd(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	_, err = tx.ExecContext(ctx, `SELECT 1`)
	require.ErrorIs(t, err, common.ErrTxNotActive)
	_, err = tx.QueryContext(ctx, `SELECT 1`)
	require.ErrorIs(t, err, common.ErrTxNotActive)
	require.ErrorIs(t, tx.Commit(ctx), common.ErrTxNotActive)
	require.ErrorIs(t, tx.Rollback(ctx), common.ErrTxNotActive)
	require.ErrorIs(t, tx.PushCheckpoint(ctx), common.ErrTxNotActive)
}

func TestTx_StorageErrorsAreWrapped(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.ExecContext(ctx, `INSERT INTO missing_table VALUES (1)`)
	require.ErrorIs(t, err, common.ErrStorage)

	_, err = tx.QueryContext(ctx, `SELECT nope FROM t`)
	require.ErrorIs(t, err, common.ErrStorage)
}

func TestBegin_TimeoutWhenPoolExhausted(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = p.Begin(ctx, 20*time.Millisecond)
	require.ErrorIs(t, err, common.ErrConnectionTimeout)
}

func TestBegin_FailureReleasesConnection(t *testing.T) {
	p, mock := newMockPool(t)
	mock.ExpectBegin().WillReturnError(errors.New("db down"))

	_, err := p.Begin(context.Background(), time.Second)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, 0, p.Stats().InUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_FailureStillReleases(t *testing.T) {
	p, mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	ctx := context.Background()
	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)

	err = tx.Commit(ctx)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, TxDestroyed, tx.State())
	assert.Equal(t, TxRolledBack, tx.Outcome())
	assert.Equal(t, 0, p.Stats().InUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollback_FailureStillReleases(t *testing.T) {
	p, mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("conn reset"))

	ctx := context.Background()
	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)

	require.ErrorIs(t, tx.Rollback(ctx), common.ErrStorage)
	assert.Equal(t, 0, p.Stats().InUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxState_String(t *testing.T) {
	assert.Equal(t, "idle", TxIdle.String())
	assert.Equal(t, "rolled_back", TxRolledBack.String())
	assert.Equal(t, "TxState(42)", TxState(42).String())
}

func TestTx_SurvivesCallerCancel(t *testing.T) {
	p := newTestPool(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES ($1, $2)`, 1, "a")
	require.NoError(t, err)

	cancel()

	require.NoError(t, tx.PushCheckpoint(ctx))
	_, err = tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES ($1, $2)`, 2, "b")
	require.NoError(t, err)
	require.NoError(t, tx.PopCheckpoint(ctx))
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, TxCommitted, tx.Outcome())

	assert.Equal(t, 2, countRows(t, p.DB()))
}
