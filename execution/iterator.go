// Package execution implements the pull-iterator operator tree: every
// concrete operator (SeqScan, Filter, Join, Insert, Delete, Aggregate)
// satisfies OpIterator, composed rather than inherited — there is no
// Operator base class, just this interface plus the baseIterator helper
// every non-leaf operator embeds for the same "cache the next tuple until
// consumed" convenience the teacher's lineage gets from a base class.
package execution

import (
	"coredb/dberrors"
	"coredb/types"
)

// OpIterator is the pull-iterator contract every operator implements.
type OpIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*types.Tuple, error)
	Rewind() error
	Close()
	Schema() *types.Schema
	Children() []OpIterator
	SetChildren(children []OpIterator)
}

// baseIterator supplies HasNext/Next in terms of a fetchNext closure that
// each embedding operator supplies at construction, caching the looked-
// ahead tuple exactly once until Next consumes it. This is the composition
// replacement for the AbstractDbIterator/Operator base class the source
// uses: every operator below wires its own fetchNext instead of
// overriding a virtual method.
type baseIterator struct {
	fetchNext func() (*types.Tuple, error)
	cached    *types.Tuple
	opened    bool
}

func newBaseIterator(fetchNext func() (*types.Tuple, error)) *baseIterator {
	return &baseIterator{fetchNext: fetchNext}
}

func (b *baseIterator) openBase() {
	b.opened = true
	b.cached = nil
}

func (b *baseIterator) closeBase() {
	b.opened = false
	b.cached = nil
}

func (b *baseIterator) HasNext() (bool, error) {
	if !b.opened {
		return false, dberrors.New(dberrors.InvalidState, "OpIterator.HasNext", "iterator not open")
	}
	if b.cached != nil {
		return true, nil
	}
	t, err := b.fetchNext()
	if err != nil {
		return false, err
	}
	b.cached = t
	return t != nil, nil
}

func (b *baseIterator) Next() (*types.Tuple, error) {
	has, err := b.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, dberrors.New(dberrors.InvalidState, "OpIterator.Next", "no more tuples")
	}
	t := b.cached
	b.cached = nil
	return t, nil
}
