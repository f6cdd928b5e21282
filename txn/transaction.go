// Package txn issues transaction identifiers. It is deliberately thin: the
// teacher's TxnManager additionally tracks each transaction's state
// (active/committed/aborted) and a list of rows it inserted, bookkeeping
// that existed there to support write-ahead logging and replay. Lock
// ownership already lives in the lock manager and dirty-page ownership
// already lives in the buffer pool, so a transaction id allocator is the
// one piece of that manager this engine still needs.
package txn

import (
	"sync/atomic"

	"coredb/types"
)

// TransactionID re-exports types.TransactionID so callers that only need
// to mint and pass around ids don't have to import the types package
// directly.
type TransactionID = types.TransactionID

// Allocator issues process-unique TransactionIDs starting at 1 — zero is
// reserved as the "no transaction" sentinel (types.NoTransaction).
type Allocator struct {
	next uint64
}

// NewAllocator returns an Allocator whose first Begin() call yields
// TransactionID(1).
func NewAllocator() *Allocator {
	return &Allocator{next: 0}
}

// Begin issues the next TransactionID. Safe for concurrent use.
func (a *Allocator) Begin() TransactionID {
	return TransactionID(atomic.AddUint64(&a.next, 1))
}
