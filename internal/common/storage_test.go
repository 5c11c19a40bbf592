package common

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageError_NilPassesThrough(t *testing.T) {
	assert.NoError(t, NewStorageError("exec", nil))
}

func TestStorageError_MatchesSentinelAndCause(t *testing.T) {
	err := NewStorageError("query", sql.ErrConnDone)
	wrapped := fmt.Errorf("load project: %w", err)

	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.True(t, errors.Is(wrapped, sql.ErrConnDone))
	assert.False(t, errors.Is(wrapped, ErrorNotFound))

	var se *StorageError
	require.True(t, errors.As(wrapped, &se))
	assert.Equal(t, "query", se.Op)
	assert.Equal(t, "storage: query: sql: connection is already closed", se.Error())
}

func TestStorageError_NotMatchedByProgrammerErrors(t *testing.T) {
	assert.False(t, errors.Is(ErrCheckpointMisuse, ErrStorage))
	assert.False(t, errors.Is(ErrInvariantViolation, ErrStorage))
}
