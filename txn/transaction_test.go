package txn

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"coredb/types"
)

func TestAllocator_IssuesDistinctIncreasingIDs(t *testing.T) {
	a := NewAllocator()
	first := a.Begin()
	second := a.Begin()
	require.NotEqual(t, first, second)
	require.Greater(t, uint64(second), uint64(first))
	require.NotEqual(t, types.NoTransaction, first)
}

func TestAllocator_ConcurrentBeginNeverDuplicates(t *testing.T) {
	a := NewAllocator()
	const n = 200
	ids := make(chan TransactionID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- a.Begin()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[TransactionID]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate transaction id issued: %d", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}
