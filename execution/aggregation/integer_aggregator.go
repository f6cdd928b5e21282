package aggregation

import "coredb/types"

// IntegerAggregator accumulates MIN, MAX, SUM, AVG, COUNT, SC_AVG, or
// SUM_COUNT over an INT field, grouped by another field or ungrouped.
// SC_AVG and SUM_COUNT both track a running sum identically to SUM; they
// exist as distinct Ops only so a caller can label the output column
// differently, the way the original aggregator family does.
type IntegerAggregator struct {
	gbField int
	aField  int
	op      Op

	order  []types.Field
	seen   map[types.Field]bool
	sums   map[types.Field]int32
	counts map[types.Field]int32
}

// NewIntegerAggregator builds an accumulator grouping by gbField (or
// NoGrouping), aggregating the aField-th field of every merged tuple
// with op.
func NewIntegerAggregator(gbField, aField int, op Op) *IntegerAggregator {
	return &IntegerAggregator{
		gbField: gbField,
		aField:  aField,
		op:      op,
		seen:    make(map[types.Field]bool),
		sums:    make(map[types.Field]int32),
		counts:  make(map[types.Field]int32),
	}
}

func (ia *IntegerAggregator) groupKey(tup *types.Tuple) (types.Field, error) {
	if ia.gbField == NoGrouping {
		return types.Field{}, nil
	}
	return tup.Field(ia.gbField)
}

// MergeTupleIntoGroup folds one child tuple into its group's running
// value and count.
func (ia *IntegerAggregator) MergeTupleIntoGroup(tup *types.Tuple) error {
	key, err := ia.groupKey(tup)
	if err != nil {
		return err
	}
	af, err := tup.Field(ia.aField)
	if err != nil {
		return err
	}
	val := af.IntValue()

	if !ia.seen[key] {
		ia.seen[key] = true
		ia.order = append(ia.order, key)
		ia.sums[key] = val
	} else {
		switch ia.op {
		case Sum, Avg, ScAvg, SumCount:
			ia.sums[key] += val
		case Max:
			if val > ia.sums[key] {
				ia.sums[key] = val
			}
		case Min:
			if val < ia.sums[key] {
				ia.sums[key] = val
			}
		}
	}
	ia.counts[key]++
	return nil
}

// Finalize reads out one Result per group, in the order each group was
// first seen. AVG divides sum by count (integer division); COUNT reports
// the count; every other op reports the running value.
func (ia *IntegerAggregator) Finalize() []Result {
	results := make([]Result, 0, len(ia.order))
	for _, key := range ia.order {
		count := ia.counts[key]
		var value int32
		switch ia.op {
		case Avg:
			value = ia.sums[key] / count
		case Count:
			value = count
		default:
			value = ia.sums[key]
		}
		results = append(results, Result{Group: key, Value: value, Count: count})
	}
	return results
}
