// Package aggregation implements the merge-then-finalize accumulators
// behind the Aggregate operator: one accumulator per group key, folded as
// the child is drained, then read out in the order each group was first
// seen.
package aggregation

import "coredb/types"

// Op names the aggregation function computed per group.
type Op int

const (
	Min Op = iota
	Max
	Sum
	Avg
	Count
	ScAvg
	SumCount
)

func (op Op) String() string {
	switch op {
	case Min:
		return "min"
	case Max:
		return "max"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Count:
		return "count"
	case ScAvg:
		return "scavg"
	case SumCount:
		return "sumcount"
	default:
		return "unknown"
	}
}

// NoGrouping marks the group-by field index as absent: every merged tuple
// falls into the same implicit group.
const NoGrouping = -1

// Result is one finalized group. Group is meaningless when the
// accumulator was built with gbField == NoGrouping.
type Result struct {
	Group types.Field
	Value int32
	Count int32
}
