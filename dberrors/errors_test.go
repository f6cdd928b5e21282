package dberrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf_DirectError(t *testing.T) {
	err := New(NotFound, "Catalog.SchemaOf", "table 7 not registered")
	require.Equal(t, NotFound, KindOf(err))
}

func TestKindOf_SurvivesFmtErrorfWrapping(t *testing.T) {
	inner := New(TransactionAborted, "LockManager.Acquire", "timed out")
	wrapped := fmt.Errorf("BufferPool.GetPage: %w", inner)
	wrapped = fmt.Errorf("Operator.Next: %w", wrapped)

	require.Equal(t, TransactionAborted, KindOf(wrapped))
	require.True(t, Is(wrapped, TransactionAborted))
	require.False(t, Is(wrapped, DbError))
}

func TestKindOf_InnermostClassifiedErrorWins(t *testing.T) {
	inner := New(IoError, "HeapFile.Open", "permission denied")
	outer := Wrap(InvalidArgument, "Catalog.LoadSchema", fmt.Errorf("invalid catalog entry %q: %w", "people (id int)", inner))

	require.Equal(t, IoError, KindOf(outer))
	require.True(t, Is(outer, IoError))
	require.False(t, Is(outer, InvalidArgument))
}

func TestKindOf_UnclassifiedError(t *testing.T) {
	require.Equal(t, Unknown, KindOf(fmt.Errorf("plain error")))
	require.Equal(t, Unknown, KindOf(nil))
}

func TestWrap_NilIsNil(t *testing.T) {
	require.NoError(t, Wrap(DbError, "op", nil))
}

func TestError_MessageIncludesOpAndKind(t *testing.T) {
	err := New(InvalidArgument, "Schema.FieldIndex", "unknown field name")
	require.Contains(t, err.Error(), "Schema.FieldIndex")
	require.Contains(t, err.Error(), "invalid_argument")
	require.Contains(t, err.Error(), "unknown field name")
}
