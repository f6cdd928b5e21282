package execution

import "coredb/types"

// Filter streams its child's tuples, emitting those for which pred
// evaluates true. Output schema equals the child's.
type Filter struct {
	base  *baseIterator
	pred  *Predicate
	child OpIterator
}

// NewFilter builds a Filter over child using pred.
func NewFilter(pred *Predicate, child OpIterator) *Filter {
	f := &Filter{pred: pred, child: child}
	f.base = newBaseIterator(f.fetchNext)
	return f
}

// Open opens the child then primes this operator.
func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return err
	}
	f.base.openBase()
	return nil
}

func (f *Filter) fetchNext() (*types.Tuple, error) {
	for {
		has, err := f.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, nil
		}
		t, err := f.child.Next()
		if err != nil {
			return nil, err
		}
		ok, err := f.pred.Eval(t)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
}

func (f *Filter) HasNext() (bool, error)      { return f.base.HasNext() }
func (f *Filter) Next() (*types.Tuple, error) { return f.base.Next() }

// Rewind restarts the child.
func (f *Filter) Rewind() error {
	if err := f.child.Rewind(); err != nil {
		return err
	}
	f.base.openBase()
	return nil
}

// Close closes this operator then its child.
func (f *Filter) Close() {
	f.base.closeBase()
	f.child.Close()
}

// Schema returns the child's schema, unchanged.
func (f *Filter) Schema() *types.Schema { return f.child.Schema() }

// Children returns the single child.
func (f *Filter) Children() []OpIterator { return []OpIterator{f.child} }

// SetChildren closes this operator and replaces its child.
func (f *Filter) SetChildren(children []OpIterator) {
	f.Close()
	f.child = children[0]
}
