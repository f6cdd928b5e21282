// Package lock implements the page-granularity two-phase lock manager the
// buffer pool sits on top of. Every page has its own mutex and two
// condition variables — a plain sync.RWMutex per page cannot express the
// shared-to-exclusive upgrade or the writer-priority rule this manager
// needs, so it is not used here even though it would cover the common
// case more simply.
package lock

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"coredb/dberrors"
	"coredb/logging"
	"coredb/types"
)

// Mode is the lock strength a caller requests.
type Mode int

const (
	Shared Mode = iota
	Exclusive
)

func (m Mode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// DefaultTimeoutMin and DefaultTimeoutMax bound the random per-attempt
// acquisition timeout. Chosen so the deadlock-by-timeout scenario resolves
// comfortably inside a typical test's own deadline while staying long
// enough that ordinary contention under the buffer pool's default
// capacity doesn't spuriously abort a transaction.
const (
	DefaultTimeoutMin = 50 * time.Millisecond
	DefaultTimeoutMax = 150 * time.Millisecond
)

// pageLock holds the per-page lock state: the set of reading transactions,
// the single holding writer (NoTransaction if none), the count of
// transactions currently blocked trying to acquire exclusive (used for the
// writer-priority rule), and the mutex plus two condition variables the
// grant/wait protocol signals through.
type pageLock struct {
	mu             sync.Mutex
	noReaders      *sync.Cond // broadcast whenever the reader set shrinks to <=1, or a writer releases/times out.
	noWriters      *sync.Cond // broadcast whenever the writer clears, or a blocked exclusive waiter times out and writersWaiting drops.
	readers        map[types.TransactionID]bool
	writer         types.TransactionID
	writersWaiting int
}

func newPageLock() *pageLock {
	pl := &pageLock{readers: make(map[types.TransactionID]bool)}
	pl.noReaders = sync.NewCond(&pl.mu)
	pl.noWriters = sync.NewCond(&pl.mu)
	return pl
}

// canGrantShared implements the SHARED grant rule: the requester already
// holding any lock on this page is always reentrant; otherwise writer
// priority means a pending or active writer blocks new readers.
func (pl *pageLock) canGrantShared(tid types.TransactionID) bool {
	if pl.writer == tid || pl.readers[tid] {
		return true
	}
	return pl.writer == types.NoTransaction && pl.writersWaiting == 0
}

// canGrantExclusive implements the EXCLUSIVE grant rule, including the
// shared-to-exclusive upgrade case (the sole reader is the requester).
func (pl *pageLock) canGrantExclusive(tid types.TransactionID) bool {
	if pl.writer == tid {
		return true
	}
	if pl.writer != types.NoTransaction {
		return false
	}
	switch len(pl.readers) {
	case 0:
		return true
	case 1:
		return pl.readers[tid]
	default:
		return false
	}
}

// waitWithTimeout parks the caller on cond until either it is woken and
// the deadline has not yet passed (returns true — caller should recheck
// its grant condition), or the deadline passes (returns false). The caller
// must already hold pl.mu.
func (pl *pageLock) waitWithTimeout(cond *sync.Cond, deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}
	timer := time.AfterFunc(remaining, func() {
		pl.mu.Lock()
		cond.Broadcast()
		pl.mu.Unlock()
	})
	cond.Wait()
	timer.Stop()
	return time.Now().Before(deadline)
}

// Manager is the page-granularity lock table for one buffer pool. The
// table-level mutex guards only the map of per-page state and the
// held-by-transaction index; once a *pageLock is found, all further
// synchronization happens on that page's own mutex, so two transactions
// contending for different pages never block each other at the table
// level.
type Manager struct {
	mu         sync.Mutex
	pages      map[types.PageId]*pageLock
	heldBy     map[types.TransactionID]map[types.PageId]bool
	timeoutMin time.Duration
	timeoutMax time.Duration
	logger     *slog.Logger
}

// NewManager constructs a Manager. A zero timeoutMin/timeoutMax substitutes
// the package defaults; a nil logger substitutes logging.Default().
func NewManager(timeoutMin, timeoutMax time.Duration, logger *slog.Logger) *Manager {
	if timeoutMin <= 0 {
		timeoutMin = DefaultTimeoutMin
	}
	if timeoutMax <= 0 || timeoutMax < timeoutMin {
		timeoutMax = DefaultTimeoutMax
	}
	return &Manager{
		pages:      make(map[types.PageId]*pageLock),
		heldBy:     make(map[types.TransactionID]map[types.PageId]bool),
		timeoutMin: timeoutMin,
		timeoutMax: timeoutMax,
		logger:     logging.OrDefault(logger),
	}
}

func (m *Manager) pageLockFor(pid types.PageId) *pageLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	pl, ok := m.pages[pid]
	if !ok {
		pl = newPageLock()
		m.pages[pid] = pl
	}
	return pl
}

func (m *Manager) randomTimeout() time.Duration {
	span := int64(m.timeoutMax - m.timeoutMin)
	if span <= 0 {
		return m.timeoutMin
	}
	return m.timeoutMin + time.Duration(rand.Int63n(span+1))
}

func (m *Manager) recordHeld(tid types.TransactionID, pid types.PageId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.heldBy[tid]
	if !ok {
		set = make(map[types.PageId]bool)
		m.heldBy[tid] = set
	}
	set[pid] = true
}

func (m *Manager) forgetHeld(tid types.TransactionID, pid types.PageId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if set, ok := m.heldBy[tid]; ok {
		delete(set, pid)
		if len(set) == 0 {
			delete(m.heldBy, tid)
		}
	}
}

// Acquire blocks until tid holds mode on pid, or fails with a
// TransactionAborted error if the randomized per-attempt timeout elapses
// first. The caller must respond to a TransactionAborted error by invoking
// the buffer pool's TransactionComplete(tid, false) and propagating.
func (m *Manager) Acquire(tid types.TransactionID, pid types.PageId, mode Mode) error {
	pl := m.pageLockFor(pid)
	deadline := time.Now().Add(m.randomTimeout())

	pl.mu.Lock()
	defer pl.mu.Unlock()

	if mode == Shared {
		for !pl.canGrantShared(tid) {
			if !pl.waitWithTimeout(pl.noWriters, deadline) {
				m.logger.Debug("lock acquisition timed out", "tid", tid, "page", pid, "mode", mode)
				return dberrors.New(dberrors.TransactionAborted, "LockManager.Acquire",
					fmt.Sprintf("timed out waiting for shared lock on page %+v", pid))
			}
		}
		pl.readers[tid] = true
		m.recordHeld(tid, pid)
		return nil
	}

	pl.writersWaiting++
	for !pl.canGrantExclusive(tid) {
		if !pl.waitWithTimeout(pl.noReaders, deadline) {
			pl.writersWaiting--
			pl.noWriters.Broadcast() // writersWaiting changed — wake any shared waiters blocked on writer-priority.
			m.logger.Debug("lock acquisition timed out", "tid", tid, "page", pid, "mode", mode)
			return dberrors.New(dberrors.TransactionAborted, "LockManager.Acquire",
				fmt.Sprintf("timed out waiting for exclusive lock on page %+v", pid))
		}
	}
	pl.writersWaiting--
	delete(pl.readers, tid) // upgrade case: drop our own shared hold, it's superseded by the exclusive one.
	pl.writer = tid
	m.recordHeld(tid, pid)
	return nil
}

// Release releases any mode tid holds on pid. A no-op if tid holds
// nothing there.
func (m *Manager) Release(tid types.TransactionID, pid types.PageId) {
	pl := m.pageLockFor(pid)
	pl.mu.Lock()
	defer pl.mu.Unlock()

	released := false
	if pl.writer == tid {
		pl.writer = types.NoTransaction
		pl.noReaders.Broadcast()
		pl.noWriters.Broadcast()
		released = true
	}
	if pl.readers[tid] {
		delete(pl.readers, tid)
		if len(pl.readers) <= 1 {
			pl.noReaders.Broadcast()
		}
		released = true
	}
	if released {
		m.forgetHeld(tid, pid)
	}
}

// ReleaseAll releases every page tid currently holds any lock on.
func (m *Manager) ReleaseAll(tid types.TransactionID) {
	m.mu.Lock()
	held := m.heldBy[tid]
	pids := make([]types.PageId, 0, len(held))
	for pid := range held {
		pids = append(pids, pid)
	}
	m.mu.Unlock()

	for _, pid := range pids {
		m.Release(tid, pid)
	}
}

// Holds reports whether tid holds any lock (shared or exclusive) on pid.
func (m *Manager) Holds(tid types.TransactionID, pid types.PageId) bool {
	pl := m.pageLockFor(pid)
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.writer == tid || pl.readers[tid]
}

// IsExclusivelyLocked reports whether any transaction currently holds an
// exclusive lock on pid.
func (m *Manager) IsExclusivelyLocked(pid types.PageId) bool {
	pl := m.pageLockFor(pid)
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.writer != types.NoTransaction
}
