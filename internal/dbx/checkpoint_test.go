package dbx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func begin(t *testing.T, p *Pool) (*Tx, context.Context) {
	t.Helper()
	ctx := context.Background()
	tx, err := p.Begin(ctx, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		if tx.State() == TxActive {
			_ = tx.Rollback(ctx)
		}
	})
	return tx, ctx
}

func TestCheckpoint_StatementSequence(t *testing.T) {
	p, mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT sp_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT sp_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RELEASE SAVEPOINT sp_2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT sp_3").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, ctx := begin(t, p)
	require.NoError(t, tx.PushCheckpoint(ctx))
	require.NoError(t, tx.PushCheckpoint(ctx))
	require.NoError(t, tx.RestoreCheckpoint(ctx))
	require.NoError(t, tx.PopCheckpoint(ctx))
	assert.Equal(t, 1, tx.Depth())
	// names are never reused within a transaction
	require.NoError(t, tx.PushCheckpoint(ctx))
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 0, tx.Depth())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckpoint_RestoreIsIdempotent(t *testing.T) {
	p := newTestPool(t, 1)
	tx, ctx := begin(t, p)

	_, err := tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (1, 'base')`)
	require.NoError(t, err)

	require.NoError(t, tx.PushCheckpoint(ctx))
	_, err = tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (2, 'w')`)
	require.NoError(t, err)

	require.NoError(t, tx.RestoreCheckpoint(ctx))
	assert.Equal(t, 1, countRows(t, tx))
	require.NoError(t, tx.RestoreCheckpoint(ctx))
	assert.Equal(t, 1, countRows(t, tx))
	assert.Equal(t, 1, tx.Depth())

	// still usable after restore: write, restore again, gone again
	_, err = tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (3, 'w2')`)
	require.NoError(t, err)
	require.NoError(t, tx.RestoreCheckpoint(ctx))
	_, ok := valueOf(t, tx, 3)
	assert.False(t, ok)

	require.NoError(t, tx.PopCheckpoint(ctx))
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 1, countRows(t, p.DB()))
}

func TestCheckpoint_NestedPopsKeepWrites(t *testing.T) {
	p := newTestPool(t, 1)
	tx, ctx := begin(t, p)

	require.NoError(t, tx.PushCheckpoint(ctx))
	_, err := tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (1, 'inserted')`)
	require.NoError(t, err)

	require.NoError(t, tx.PushCheckpoint(ctx))
	_, err = tx.ExecContext(ctx, `UPDATE t SET v = 'altered' WHERE id = 1`)
	require.NoError(t, err)

	require.NoError(t, tx.PopCheckpoint(ctx))
	require.NoError(t, tx.PopCheckpoint(ctx))
	require.NoError(t, tx.Commit(ctx))

	v, ok := valueOf(t, p.DB(), 1)
	require.True(t, ok)
	assert.Equal(t, "altered", v)
}

func TestCheckpoint_EmptyStackIsMisuse(t *testing.T) {
	p := newTestPool(t, 1)
	tx, ctx := begin(t, p)

	require.ErrorIs(t, tx.PopCheckpoint(ctx), common.ErrCheckpointMisuse)
	require.ErrorIs(t, tx.RestoreCheckpoint(ctx), common.ErrCheckpointMisuse)

	require.NoError(t, tx.PushCheckpoint(ctx))
	require.NoError(t, tx.PopCheckpoint(ctx))
	require.ErrorIs(t, tx.PopCheckpoint(ctx), common.ErrCheckpointMisuse)
	assert.False(t, errors.Is(tx.PopCheckpoint(ctx), common.ErrStorage))
}

func TestNested_RestoresOnError(t *testing.T) {
	p := newTestPool(t, 1)
	tx, ctx := begin(t, p)

	_, err := tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (1, 'keep')`)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.Nested(ctx, func(ctx context.Context) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (2, 'drop')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, tx.Depth())

	err = tx.Nested(ctx, func(ctx context.Context) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t (id, v) VALUES (3, 'also keep')`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 2, countRows(t, p.DB()))
	_, ok := valueOf(t, p.DB(), 2)
	assert.False(t, ok)
}
