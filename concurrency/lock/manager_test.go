package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coredb/dberrors"
	"coredb/types"
)

func testManager() *Manager {
	return NewManager(20*time.Millisecond, 60*time.Millisecond, nil)
}

func TestAcquire_SharedByTwoTransactionsSucceeds(t *testing.T) {
	m := testManager()
	pid := types.PageId{TableID: 1, PageNumber: 0}

	require.NoError(t, m.Acquire(1, pid, Shared))
	require.NoError(t, m.Acquire(2, pid, Shared))
	require.True(t, m.Holds(1, pid))
	require.True(t, m.Holds(2, pid))
}

func TestAcquire_ExclusiveIsReentrant(t *testing.T) {
	m := testManager()
	pid := types.PageId{TableID: 1, PageNumber: 0}

	require.NoError(t, m.Acquire(1, pid, Exclusive))
	require.NoError(t, m.Acquire(1, pid, Exclusive))
	require.True(t, m.IsExclusivelyLocked(pid))
}

func TestAcquire_SharedToExclusiveUpgradeSucceedsWithoutBlocking(t *testing.T) {
	m := testManager()
	pid := types.PageId{TableID: 1, PageNumber: 0}

	require.NoError(t, m.Acquire(1, pid, Shared))

	done := make(chan error, 1)
	go func() { done <- m.Acquire(1, pid, Exclusive) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("upgrade should not block")
	}
	require.True(t, m.IsExclusivelyLocked(pid))
}

func TestAcquire_SecondTransactionBlocksOnExclusive(t *testing.T) {
	m := testManager()
	pid := types.PageId{TableID: 1, PageNumber: 0}
	require.NoError(t, m.Acquire(1, pid, Exclusive))

	acquired := make(chan struct{})
	go func() {
		_ = m.Acquire(2, pid, Shared)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("transaction 2 should still be blocked behind the exclusive holder")
	case <-time.After(10 * time.Millisecond):
	}

	m.Release(1, pid)

	select {
	case <-acquired:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("transaction 2 should acquire shortly after the release")
	}
}

func TestAcquire_TimesOutAndAbortsWhenNeverGranted(t *testing.T) {
	m := testManager()
	pid := types.PageId{TableID: 1, PageNumber: 0}
	require.NoError(t, m.Acquire(1, pid, Exclusive))

	err := m.Acquire(2, pid, Exclusive)
	require.Error(t, err)
	require.Equal(t, dberrors.TransactionAborted, dberrors.KindOf(err))
}

func TestReleaseAll_ClearsEveryPageForTransaction(t *testing.T) {
	m := testManager()
	p1 := types.PageId{TableID: 1, PageNumber: 0}
	p2 := types.PageId{TableID: 1, PageNumber: 1}

	require.NoError(t, m.Acquire(1, p1, Shared))
	require.NoError(t, m.Acquire(1, p2, Exclusive))

	m.ReleaseAll(1)

	require.False(t, m.Holds(1, p1))
	require.False(t, m.Holds(1, p2))
}

// TestDeadlockResolvedByTimeout reproduces scenario 5 from the spec: A
// holds shared on p1, B holds shared on p2; A wants exclusive on p2 while
// B wants exclusive on p1. Both requests block; at least one must abort
// within the configured timeout window, and the survivor must then
// complete.
func TestDeadlockResolvedByTimeout(t *testing.T) {
	m := testManager()
	p1 := types.PageId{TableID: 1, PageNumber: 0}
	p2 := types.PageId{TableID: 1, PageNumber: 1}

	require.NoError(t, m.Acquire(1, p1, Shared))
	require.NoError(t, m.Acquire(2, p2, Shared))

	var wg sync.WaitGroup
	var errA, errB error
	wg.Add(2)
	go func() {
		defer wg.Done()
		errA = m.Acquire(1, p2, Exclusive)
	}()
	go func() {
		defer wg.Done()
		errB = m.Acquire(2, p1, Exclusive)
	}()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deadlock was not resolved within the timeout window")
	}

	aborted := 0
	if errA != nil {
		require.Equal(t, dberrors.TransactionAborted, dberrors.KindOf(errA))
		aborted++
	}
	if errB != nil {
		require.Equal(t, dberrors.TransactionAborted, dberrors.KindOf(errB))
		aborted++
	}
	require.GreaterOrEqual(t, aborted, 1, "at least one of the two deadlocked acquisitions must abort")
}
