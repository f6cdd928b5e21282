// Package bufferpool is the exclusive gateway to pages: every read or
// write a transaction performs against a table goes through GetPage here,
// which consults the lock manager before ever touching a HeapFile. It
// follows the teacher's LRU bufferpool in spirit — a capacity-bounded map
// plus an access-order list, evicting the least-recently-used entry on a
// miss at capacity — but enforces NO-STEAL instead of always-evictable:
// a dirty page can never be chosen for eviction, since writing it back
// before its transaction commits would make abort unsafe.
package bufferpool

import (
	"log/slog"
	"sync"

	"coredb/concurrency/lock"
	"coredb/dberrors"
	"coredb/logging"
	"coredb/storage/heapfile"
	"coredb/storage/page"
	"coredb/types"
)

// FileSource resolves a table id to the HeapFile backing it. The catalog
// implements this; the pool depends only on this narrow interface rather
// than importing the catalog package, so any FileOf provider can back it.
type FileSource interface {
	FileOf(tableID int64) (*heapfile.HeapFile, error)
}

// Pool is a bounded, NO-STEAL page cache shared by every transaction in
// the process.
type Pool struct {
	mu       sync.Mutex
	capacity int
	pages    map[types.PageId]*page.Page
	lru      []types.PageId // insertion-ordered; index 0 is least recently used.
	files    FileSource
	locks    *lock.Manager
	logger   *slog.Logger

	// dirtiedBy mirrors page-level dirty state so TransactionComplete can
	// find every page a transaction touched without scanning the whole
	// pool's Page objects individually.
	dirtiedBy map[types.TransactionID]map[types.PageId]bool
}

// New constructs a Pool of the given capacity (pages), backed by files and
// coordinated by locks. A nil logger defaults via logging.OrDefault.
func New(capacity int, files FileSource, locks *lock.Manager, logger *slog.Logger) *Pool {
	return &Pool{
		capacity:  capacity,
		pages:     make(map[types.PageId]*page.Page),
		lru:       make([]types.PageId, 0, capacity),
		files:     files,
		locks:     locks,
		logger:    logging.OrDefault(logger),
		dirtiedBy: make(map[types.TransactionID]map[types.PageId]bool),
	}
}

// GetPage acquires the requested lock mode on pid for tid, then returns
// the cached Page, loading it from its HeapFile on a miss (evicting a
// clean page first if the pool is at capacity).
func (p *Pool) GetPage(tid types.TransactionID, pid types.PageId, mode heapfile.LockMode) (*page.Page, error) {
	lockMode := lock.Shared
	if mode == heapfile.ReadWrite {
		lockMode = lock.Exclusive
	}
	if err := p.locks.Acquire(tid, pid, lockMode); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pg, ok := p.pages[pid]; ok {
		p.touch(pid)
		return pg, nil
	}

	if len(p.pages) >= p.capacity {
		if err := p.evictLocked(); err != nil {
			return nil, err
		}
	}

	pg, err := p.loadLocked(pid)
	if err != nil {
		return nil, err
	}
	p.pages[pid] = pg
	p.lru = append(p.lru, pid)
	p.logger.Debug("buffer pool miss", "page", pid)
	return pg, nil
}

func (p *Pool) loadLocked(pid types.PageId) (*page.Page, error) {
	hf, err := p.files.FileOf(pid.TableID)
	if err != nil {
		return nil, err
	}
	return hf.ReadPage(pid.PageNumber)
}

func (p *Pool) touch(pid types.PageId) {
	for i, id := range p.lru {
		if id == pid {
			p.lru = append(p.lru[:i], p.lru[i+1:]...)
			break
		}
	}
	p.lru = append(p.lru, pid)
}

// evictLocked removes the least-recently-used clean page. Fails with
// DbError if every resident page is dirty — under NO-STEAL there is
// nothing safe to evict.
func (p *Pool) evictLocked() error {
	for i, pid := range p.lru {
		pg := p.pages[pid]
		if dirty, _ := pg.IsDirty(); dirty {
			continue
		}
		delete(p.pages, pid)
		p.lru = append(p.lru[:i], p.lru[i+1:]...)
		p.logger.Debug("buffer pool evict", "page", pid)
		return nil
	}
	return dberrors.New(dberrors.DbError, "BufferPool.evict", "no clean page available to evict")
}

// AddEmptyPage extends tableID's HeapFile by one zero-filled page,
// acquires EXCLUSIVE for tid on the new page, and returns it via GetPage.
func (p *Pool) AddEmptyPage(tid types.TransactionID, tableID int64) (*page.Page, error) {
	hf, err := p.files.FileOf(tableID)
	if err != nil {
		return nil, err
	}
	pn, err := hf.AddPage()
	if err != nil {
		return nil, err
	}
	pid := types.PageId{TableID: tableID, PageNumber: pn}
	return p.GetPage(tid, pid, heapfile.ReadWrite)
}

// InsertTuple delegates to tableID's HeapFile to find or create a page
// with a free slot, then marks the returned page dirty for tid.
func (p *Pool) InsertTuple(tid types.TransactionID, tableID int64, t *types.Tuple) (*page.Page, error) {
	hf, err := p.files.FileOf(tableID)
	if err != nil {
		return nil, err
	}
	pg, err := hf.InsertTuple(tid, p, t)
	if err != nil {
		return nil, err
	}
	p.markDirty(tid, pg)
	return pg, nil
}

// DeleteTuple delegates to t's HeapFile to remove it from its page, then
// marks the returned page dirty for tid.
func (p *Pool) DeleteTuple(tid types.TransactionID, t *types.Tuple) (*page.Page, error) {
	rid := t.RecordId()
	if rid == nil {
		return nil, dberrors.New(dberrors.InvalidArgument, "BufferPool.DeleteTuple", "tuple has no RecordId")
	}
	hf, err := p.files.FileOf(rid.PageId.TableID)
	if err != nil {
		return nil, err
	}
	pg, err := hf.DeleteTuple(tid, p, t)
	if err != nil {
		return nil, err
	}
	p.markDirty(tid, pg)
	return pg, nil
}

func (p *Pool) markDirty(tid types.TransactionID, pg *page.Page) {
	pg.MarkDirty(tid)

	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.dirtiedBy[tid]
	if !ok {
		set = make(map[types.PageId]bool)
		p.dirtiedBy[tid] = set
	}
	set[pg.ID()] = true
}

// TransactionComplete finalizes tid's effect on the pool: on commit, every
// page it dirtied is flushed to disk and marked clean; on abort, every
// page it dirtied is discarded from the pool so the next read re-loads
// the pre-write contents from disk. Either way, every lock tid holds is
// released.
func (p *Pool) TransactionComplete(tid types.TransactionID, commit bool) error {
	p.mu.Lock()
	dirtied := p.dirtiedBy[tid]
	pids := make([]types.PageId, 0, len(dirtied))
	for pid := range dirtied {
		pids = append(pids, pid)
	}
	delete(p.dirtiedBy, tid)
	p.mu.Unlock()

	for _, pid := range pids {
		p.mu.Lock()
		pg, ok := p.pages[pid]
		p.mu.Unlock()
		if !ok {
			continue
		}
		if commit {
			hf, err := p.files.FileOf(pid.TableID)
			if err != nil {
				return err
			}
			if err := hf.WritePage(pg); err != nil {
				return err
			}
			pg.SetBeforeImage()
			pg.MarkClean()
		} else {
			p.discardLocked(pid)
		}
	}

	p.locks.ReleaseAll(tid)
	return nil
}

func (p *Pool) discardLocked(pid types.PageId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pages, pid)
	for i, id := range p.lru {
		if id == pid {
			p.lru = append(p.lru[:i], p.lru[i+1:]...)
			break
		}
	}
}

// DiscardPage removes pid from the pool without writing it — the recovery
// path for a page known to be corrupt or superseded.
func (p *Pool) DiscardPage(pid types.PageId) {
	p.discardLocked(pid)
}

// FlushAllPages writes every dirty resident page to disk. Used for
// shutdown and tests; not part of the transactional commit path.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	pids := make([]types.PageId, 0, len(p.pages))
	for pid := range p.pages {
		pids = append(pids, pid)
	}
	p.mu.Unlock()

	for _, pid := range pids {
		p.mu.Lock()
		pg, ok := p.pages[pid]
		p.mu.Unlock()
		if !ok {
			continue
		}
		if dirty, _ := pg.IsDirty(); !dirty {
			continue
		}
		hf, err := p.files.FileOf(pid.TableID)
		if err != nil {
			return err
		}
		if err := hf.WritePage(pg); err != nil {
			return err
		}
		pg.SetBeforeImage()
		pg.MarkClean()
	}
	return nil
}

// HoldsLock reports whether tid holds any lock on pid.
func (p *Pool) HoldsLock(tid types.TransactionID, pid types.PageId) bool {
	return p.locks.Holds(tid, pid)
}

// ReleasePage releases whatever lock tid holds on pid, independent of any
// page residency in the pool.
func (p *Pool) ReleasePage(tid types.TransactionID, pid types.PageId) {
	p.locks.Release(tid, pid)
}
