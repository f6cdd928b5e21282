// Package catalog is the process-scoped registry mapping table id to its
// backing HeapFile, display name, and optional primary-key field. It
// breaks the cyclic ownership a naive design would otherwise have between
// the buffer pool, heap files, and tuples: operators and pages carry only
// a table id, and the catalog is the single place that resolves an id to
// a concrete file.
//
// Lookups are read-heavy — every page fault and every SeqScan.Open
// resolves a table id through here — so the authoritative maps sit behind
// a read-through ristretto cache keyed by table id, the same pattern the
// teacher's peer examples use for hot, read-mostly lookup paths.
package catalog

import (
	"log/slog"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"coredb/dberrors"
	"coredb/logging"
	"coredb/storage/heapfile"
	"coredb/types"
)

type entry struct {
	file       *heapfile.HeapFile
	name       string
	primaryKey string
}

// Catalog is the registry mapping table id to (HeapFile, name, optional
// primary key).
type Catalog struct {
	mu       sync.RWMutex
	byID     map[int64]*entry
	idByName map[string]int64
	cache    *ristretto.Cache[int64, *entry]
	logger   *slog.Logger
}

// New constructs an empty Catalog. A nil logger defaults via
// logging.OrDefault.
func New(logger *slog.Logger) (*Catalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[int64, *entry]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, dberrors.Wrap(dberrors.DbError, "catalog.New", err)
	}
	return &Catalog{
		byID:     make(map[int64]*entry),
		idByName: make(map[string]int64),
		cache:    cache,
		logger:   logging.OrDefault(logger),
	}, nil
}

// AddTable registers file under name, overwriting any prior entry with the
// same name (last writer wins). pkey may be empty.
func (c *Catalog) AddTable(file *heapfile.HeapFile, name string, pkey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{file: file, name: name, primaryKey: pkey}
	c.byID[file.ID()] = e
	c.idByName[name] = file.ID()
	c.cache.Set(file.ID(), e, 1)
	c.logger.Debug("catalog: registered table", "name", name, "tableID", file.ID())
}

func (c *Catalog) lookup(tableID int64) (*entry, error) {
	if e, ok := c.cache.Get(tableID); ok {
		return e, nil
	}
	c.mu.RLock()
	e, ok := c.byID[tableID]
	c.mu.RUnlock()
	if !ok {
		return nil, dberrors.New(dberrors.NotFound, "Catalog.lookup", "no such table id")
	}
	c.cache.Set(tableID, e, 1)
	return e, nil
}

// TableIDByName resolves a table's name to its id.
func (c *Catalog) TableIDByName(name string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.idByName[name]
	if !ok {
		return 0, dberrors.New(dberrors.NotFound, "Catalog.TableIDByName", "no table named "+name)
	}
	return id, nil
}

// SchemaOf returns the schema of the given table id's backing file.
func (c *Catalog) SchemaOf(tableID int64) (*types.Schema, error) {
	e, err := c.lookup(tableID)
	if err != nil {
		return nil, err
	}
	return e.file.Schema(), nil
}

// FileOf returns the HeapFile backing the given table id. Satisfies
// bufferpool.FileSource.
func (c *Catalog) FileOf(tableID int64) (*heapfile.HeapFile, error) {
	e, err := c.lookup(tableID)
	if err != nil {
		return nil, err
	}
	return e.file, nil
}

// NameOf returns the display name registered for tableID.
func (c *Catalog) NameOf(tableID int64) (string, error) {
	e, err := c.lookup(tableID)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// PrimaryKeyOf returns the primary-key field name registered for tableID,
// or "" if none was declared.
func (c *Catalog) PrimaryKeyOf(tableID int64) (string, error) {
	e, err := c.lookup(tableID)
	if err != nil {
		return "", err
	}
	return e.primaryKey, nil
}

// Close releases the cache's background resources.
func (c *Catalog) Close() {
	c.cache.Close()
}
