package types

// PageId identifies one page within one table. It is a plain comparable
// struct — Go gives value equality and stable hashing for free when a
// struct of comparable fields is used directly as a map key, so no
// separate Hash() method is needed the way a Java PageId needs hashCode().
type PageId struct {
	TableID    int64
	PageNumber int64
}

// TransactionID is an opaque, process-unique identifier. Defined here
// rather than in package txn to avoid an import cycle: Page's dirty
// tracking, the lock manager and the buffer pool all need it, and txn
// itself has no need to know about pages.
type TransactionID uint64

// NoTransaction is the zero value, used to mark a page clean (not
// dirtied by any transaction).
const NoTransaction TransactionID = 0
