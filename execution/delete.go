package execution

import (
	"coredb/storage/bufferpool"
	"coredb/types"
)

// Delete is single-shot, symmetric with Insert: the first Next call
// consumes the child completely, deleting each tuple through the buffer
// pool, and returns one tuple (count: INT).
type Delete struct {
	base  *baseIterator
	tid   types.TransactionID
	child OpIterator
	pool  *bufferpool.Pool
	done  bool
}

// NewDelete builds a Delete that, once opened, deletes every tuple child
// produces as part of tid.
func NewDelete(tid types.TransactionID, child OpIterator, pool *bufferpool.Pool) *Delete {
	d := &Delete{tid: tid, child: child, pool: pool}
	d.base = newBaseIterator(d.fetchNext)
	return d
}

// Open opens the child and resets the single-shot flag.
func (d *Delete) Open() error {
	if err := d.child.Open(); err != nil {
		return err
	}
	d.done = false
	d.base.openBase()
	return nil
}

func (d *Delete) fetchNext() (*types.Tuple, error) {
	if d.done {
		return nil, nil
	}
	d.done = true

	var count int32
	for {
		has, err := d.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := d.child.Next()
		if err != nil {
			return nil, err
		}
		if _, err := d.pool.DeleteTuple(d.tid, t); err != nil {
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

func (d *Delete) HasNext() (bool, error)      { return d.base.HasNext() }
func (d *Delete) Next() (*types.Tuple, error) { return d.base.Next() }

// Rewind re-opens the underlying child and resets the single-shot state.
func (d *Delete) Rewind() error { return d.Open() }

// Close closes this operator then its child.
func (d *Delete) Close() {
	d.base.closeBase()
	d.child.Close()
}

// Schema returns {rowsAffected: INT}.
func (d *Delete) Schema() *types.Schema { return insertResultSchema }

// Children returns the single child.
func (d *Delete) Children() []OpIterator { return []OpIterator{d.child} }

// SetChildren closes this operator and replaces its child.
func (d *Delete) SetChildren(children []OpIterator) {
	d.Close()
	d.child = children[0]
}
