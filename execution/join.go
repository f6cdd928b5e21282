package execution

import "coredb/types"

// Join is a naive nested-loop join: for every outer (left) tuple, the
// inner (right) child is rewound and scanned fully. Output schema is
// types.Merge(left, right).
type Join struct {
	base  *baseIterator
	pred  *JoinPredicate
	left  OpIterator
	right OpIterator
	schema *types.Schema

	outerTuple *types.Tuple
	started    bool
}

// NewJoin builds a Join evaluating pred over every (left, right) pair.
func NewJoin(pred *JoinPredicate, left, right OpIterator) *Join {
	j := &Join{pred: pred, left: left, right: right, schema: types.Merge(left.Schema(), right.Schema())}
	j.base = newBaseIterator(j.fetchNext)
	return j
}

// Open opens both children and primes the outer loop.
func (j *Join) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	if err := j.right.Open(); err != nil {
		return err
	}
	j.outerTuple = nil
	j.started = false
	j.base.openBase()
	return nil
}

func (j *Join) fetchNext() (*types.Tuple, error) {
	for {
		if j.outerTuple == nil {
			has, err := j.left.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				return nil, nil
			}
			j.outerTuple, err = j.left.Next()
			if err != nil {
				return nil, err
			}
			if j.started {
				if err := j.right.Rewind(); err != nil {
					return nil, err
				}
			}
			j.started = true
		}

		hasInner, err := j.right.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasInner {
			j.outerTuple = nil
			continue
		}
		innerTuple, err := j.right.Next()
		if err != nil {
			return nil, err
		}
		ok, err := j.pred.Eval(j.outerTuple, innerTuple)
		if err != nil {
			return nil, err
		}
		if ok {
			return mergeTuples(j.outerTuple, innerTuple, j.schema)
		}
	}
}

func mergeTuples(left, right *types.Tuple, schema *types.Schema) (*types.Tuple, error) {
	out := types.NewTuple(schema)
	n := left.Schema().NumFields()
	for i := 0; i < n; i++ {
		f, err := left.Field(i)
		if err != nil {
			return nil, err
		}
		if err := out.SetField(i, f); err != nil {
			return nil, err
		}
	}
	for i := 0; i < right.Schema().NumFields(); i++ {
		f, err := right.Field(i)
		if err != nil {
			return nil, err
		}
		if err := out.SetField(n+i, f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (j *Join) HasNext() (bool, error)      { return j.base.HasNext() }
func (j *Join) Next() (*types.Tuple, error) { return j.base.Next() }

// Rewind restarts both children and the outer loop.
func (j *Join) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return err
	}
	if err := j.right.Rewind(); err != nil {
		return err
	}
	j.outerTuple = nil
	j.started = false
	j.base.openBase()
	return nil
}

// Close closes this operator then both children.
func (j *Join) Close() {
	j.base.closeBase()
	j.left.Close()
	j.right.Close()
}

// Schema returns merge(leftSchema, rightSchema).
func (j *Join) Schema() *types.Schema { return j.schema }

// Children returns [left, right].
func (j *Join) Children() []OpIterator { return []OpIterator{j.left, j.right} }

// SetChildren closes this operator and replaces both children, recomputing
// the merged schema.
func (j *Join) SetChildren(children []OpIterator) {
	j.Close()
	j.left, j.right = children[0], children[1]
	j.schema = types.Merge(j.left.Schema(), j.right.Schema())
}
