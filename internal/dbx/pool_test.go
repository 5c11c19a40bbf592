package dbx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsNonPositiveSize(t *testing.T) {
	_, err := Open("sqlite", "file::memory:", 0, nil)
	require.Error(t, err)
}

func TestAcquire_TimesOutWhenExhausted(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	c, err := p.Acquire(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, Stats{Size: 1, InUse: 1}, p.Stats())

	start := time.Now()
	_, err = p.Acquire(ctx, 50*time.Millisecond)
	require.ErrorIs(t, err, common.ErrConnectionTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	require.NoError(t, p.Release(c))
	assert.Equal(t, 0, p.Stats().InUse)

	c2, err := p.Acquire(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, p.Release(c2))
}

func TestAcquire_WaitForeverUnblocksOnRelease(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	held, err := p.Acquire(ctx, time.Second)
	require.NoError(t, err)

	got := make(chan *Conn, 1)
	go func() {
		c, err := p.Acquire(ctx, common.WaitForever)
		if err != nil {
			got <- nil
			return
		}
		got <- c
	}()

	select {
	case <-got:
		t.Fatal("acquire must block while the pool is exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, p.Release(held))

	select {
	case c := <-got:
		require.NotNil(t, c)
		require.NoError(t, p.Release(c))
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by release")
	}
}

func TestAcquire_WaitForeverHonoursContext(t *testing.T) {
	p := newTestPool(t, 1)

	held, err := p.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	defer p.Release(held)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = p.Acquire(ctx, common.WaitForever)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, common.ErrConnectionTimeout))
	assert.Equal(t, 1, p.Stats().InUse)
}

func TestRelease_Twice(t *testing.T) {
	p := newTestPool(t, 2)

	c, err := p.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	require.NoError(t, p.Release(c))
	require.ErrorIs(t, p.Release(c), common.ErrConnReleased)
	require.ErrorIs(t, p.Release(nil), common.ErrConnReleased)
	assert.Equal(t, 0, p.Stats().InUse)
}

func TestPing(t *testing.T) {
	p := newTestPool(t, 1)
	require.NoError(t, p.Ping(context.Background()))
}

func TestPing_SaturatedPool(t *testing.T) {
	p := newTestPool(t, 1)
	c, err := p.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Release(c)) }()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Ping(ctx))
}
