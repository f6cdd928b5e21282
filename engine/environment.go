// Package engine wires the storage layer, the lock manager, the catalog,
// and a transaction-id allocator into one value a process can pass around
// explicitly. The teacher's own "v1" packages reached for a package-level
// database singleton; this module threads an *Environment through every
// caller instead, so a test can stand up two independent environments in
// the same process without them fighting over global state.
package engine

import (
	"log/slog"

	"coredb/catalog"
	"coredb/concurrency/lock"
	"coredb/config"
	"coredb/execution/stats"
	"coredb/logging"
	"coredb/storage/bufferpool"
	"coredb/storage/page"
	"coredb/txn"
)

// Environment bundles everything an operator tree or a cmd/ binary needs
// to run a statement: the catalog (table lookup), the buffer pool (page
// access), the lock manager (concurrency control), a transaction id
// allocator, a stats provider, and a logger.
type Environment struct {
	Catalog *catalog.Catalog
	Pool    *bufferpool.Pool
	Locks   *lock.Manager
	Txns    *txn.Allocator
	Stats   *stats.Provider
	Logger  *slog.Logger
}

// New constructs an Environment from cfg. A zero BufferPoolCapacity becomes
// config.DefaultBufferPoolCapacity and a zero PageSize leaves page.Size
// unchanged; cfg.DataDir is not read. logger may be nil; logging.OrDefault
// resolves it to the process-wide default.
func New(cfg config.Config, logger *slog.Logger) (*Environment, error) {
	logger = logging.OrDefault(logger)

	page.SetSize(cfg.PageSize)

	cat, err := catalog.New(logger)
	if err != nil {
		return nil, err
	}

	locks := lock.NewManager(0, 0, logger)

	capacity := cfg.BufferPoolCapacity
	if capacity <= 0 {
		capacity = config.DefaultBufferPoolCapacity
	}
	pool := bufferpool.New(capacity, cat, locks, logger)

	return &Environment{
		Catalog: cat,
		Pool:    pool,
		Locks:   locks,
		Txns:    txn.NewAllocator(),
		Stats:   stats.New(cat),
		Logger:  logger,
	}, nil
}

// LoadSchema registers every table declared in catalogFile, the same
// grammar catalog.Catalog.LoadSchema accepts.
func (e *Environment) LoadSchema(catalogFile string) error {
	return e.Catalog.LoadSchema(catalogFile)
}

// Begin allocates a fresh transaction id.
func (e *Environment) Begin() txn.TransactionID {
	return e.Txns.Begin()
}

// Commit flushes every page tid dirtied and releases its locks.
func (e *Environment) Commit(tid txn.TransactionID) error {
	return e.Pool.TransactionComplete(tid, true)
}

// Abort discards every page tid dirtied and releases its locks.
func (e *Environment) Abort(tid txn.TransactionID) error {
	return e.Pool.TransactionComplete(tid, false)
}

// Close releases the environment's catalog resources (its ristretto
// cache). Open HeapFile handles are owned by the catalog's table
// registrations, not by the Environment, and outlive Close.
func (e *Environment) Close() {
	e.Catalog.Close()
}
