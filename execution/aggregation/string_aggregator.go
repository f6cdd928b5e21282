package aggregation

import (
	"coredb/dberrors"
	"coredb/types"
)

// StringAggregator accumulates COUNT only over a STRING field; the only
// meaningful aggregate over a string column is how many there are, so any
// other op fails at construction rather than silently doing something
// undefined.
type StringAggregator struct {
	gbField int
	aField  int

	order  []types.Field
	seen   map[types.Field]bool
	counts map[types.Field]int32
}

// NewStringAggregator builds a COUNT accumulator grouping by gbField (or
// NoGrouping). Fails with InvalidArgument if op is not Count.
func NewStringAggregator(gbField, aField int, op Op) (*StringAggregator, error) {
	if op != Count {
		return nil, dberrors.New(dberrors.InvalidArgument, "NewStringAggregator", "only COUNT is supported over a STRING field")
	}
	return &StringAggregator{
		gbField: gbField,
		aField:  aField,
		seen:    make(map[types.Field]bool),
		counts:  make(map[types.Field]int32),
	}, nil
}

func (sa *StringAggregator) groupKey(tup *types.Tuple) (types.Field, error) {
	if sa.gbField == NoGrouping {
		return types.Field{}, nil
	}
	return tup.Field(sa.gbField)
}

// MergeTupleIntoGroup increments the group's count. aField is consulted
// only to confirm the tuple carries a value there.
func (sa *StringAggregator) MergeTupleIntoGroup(tup *types.Tuple) error {
	key, err := sa.groupKey(tup)
	if err != nil {
		return err
	}
	if _, err := tup.Field(sa.aField); err != nil {
		return err
	}
	if !sa.seen[key] {
		sa.seen[key] = true
		sa.order = append(sa.order, key)
	}
	sa.counts[key]++
	return nil
}

// Finalize reads out one Result per group, in first-seen order.
func (sa *StringAggregator) Finalize() []Result {
	results := make([]Result, 0, len(sa.order))
	for _, key := range sa.order {
		count := sa.counts[key]
		results = append(results, Result{Group: key, Value: count, Count: count})
	}
	return results
}
