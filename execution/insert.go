package execution

import (
	"coredb/storage/bufferpool"
	"coredb/types"
)

// insertResultSchema is the fixed {rowsAffected: INT} schema Insert and
// Delete both yield their single result tuple against.
var insertResultSchema = mustSchema(types.FieldDesc{Kind: types.IntType, Name: "rowsAffected"})

func mustSchema(fields ...types.FieldDesc) *types.Schema {
	s, err := types.NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Insert is single-shot: the first Next call consumes the child
// completely, routing each tuple through the buffer pool, and returns one
// tuple (count: INT); every call after that reports exhausted.
type Insert struct {
	base    *baseIterator
	tid     types.TransactionID
	tableID int64
	child   OpIterator
	pool    *bufferpool.Pool
	done    bool
}

// NewInsert builds an Insert that, once opened, inserts every tuple child
// produces into tableID as part of tid.
func NewInsert(tid types.TransactionID, tableID int64, child OpIterator, pool *bufferpool.Pool) *Insert {
	in := &Insert{tid: tid, tableID: tableID, child: child, pool: pool}
	in.base = newBaseIterator(in.fetchNext)
	return in
}

// Open opens the child and resets the single-shot flag.
func (in *Insert) Open() error {
	if err := in.child.Open(); err != nil {
		return err
	}
	in.done = false
	in.base.openBase()
	return nil
}

func (in *Insert) fetchNext() (*types.Tuple, error) {
	if in.done {
		return nil, nil
	}
	in.done = true

	var count int32
	for {
		has, err := in.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := in.child.Next()
		if err != nil {
			return nil, err
		}
		if _, err := in.pool.InsertTuple(in.tid, in.tableID, t); err != nil {
			return nil, err
		}
		count++
	}

	result := types.NewTuple(insertResultSchema)
	if err := result.SetField(0, types.IntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}

func (in *Insert) HasNext() (bool, error)      { return in.base.HasNext() }
func (in *Insert) Next() (*types.Tuple, error) { return in.base.Next() }

// Rewind re-opens the underlying child and resets the single-shot state;
// a second pass re-inserts.
func (in *Insert) Rewind() error { return in.Open() }

// Close closes this operator then its child.
func (in *Insert) Close() {
	in.base.closeBase()
	in.child.Close()
}

// Schema returns {rowsAffected: INT}.
func (in *Insert) Schema() *types.Schema { return insertResultSchema }

// Children returns the single child.
func (in *Insert) Children() []OpIterator { return []OpIterator{in.child} }

// SetChildren closes this operator and replaces its child.
func (in *Insert) SetChildren(children []OpIterator) {
	in.Close()
	in.child = children[0]
}
