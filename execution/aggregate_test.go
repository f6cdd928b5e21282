package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"coredb/execution/aggregation"
	"coredb/types"
)

func TestAggregate_GroupedAverageMatchesPerGroupMean(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 10),
		intTuple(t, schema, 1, 20),
		intTuple(t, schema, 2, 5),
	})
	agg := NewAggregate(src, 1, 0, aggregation.Avg)

	require.NoError(t, agg.Open())
	require.Equal(t, 2, agg.Schema().NumFields())
	out := drainAll(t, agg)
	require.Len(t, out, 2)

	g0, _ := out[0].Field(0)
	v0, _ := out[0].Field(1)
	require.Equal(t, int32(1), g0.IntValue())
	require.Equal(t, int32(15), v0.IntValue())

	g1, _ := out[1].Field(0)
	v1, _ := out[1].Field(1)
	require.Equal(t, int32(2), g1.IntValue())
	require.Equal(t, int32(5), v1.IntValue())
}

func TestAggregate_NoGroupingCountOverEmptyChildYieldsZero(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, nil)
	agg := NewAggregate(src, 1, aggregation.NoGrouping, aggregation.Count)

	require.NoError(t, agg.Open())
	out := drainAll(t, agg)
	require.Len(t, out, 1)
	v, _ := out[0].Field(0)
	require.Equal(t, int32(0), v.IntValue())
}

func TestAggregate_NoGroupingSumOverEmptyChildYieldsNullAggregate(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, nil)
	agg := NewAggregate(src, 1, aggregation.NoGrouping, aggregation.Sum)

	require.NoError(t, agg.Open())
	out := drainAll(t, agg)
	require.Len(t, out, 1)
	require.False(t, out[0].IsFieldSet(0))
}

func TestAggregate_GroupedSumOverEmptyChildYieldsNoRows(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, nil)
	agg := NewAggregate(src, 1, 0, aggregation.Sum)

	require.NoError(t, agg.Open())
	require.Empty(t, drainAll(t, agg))
}

func TestAggregate_MinMaxTrackExtremesPerGroup(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 7),
		intTuple(t, schema, 1, 2),
		intTuple(t, schema, 1, 9),
	})
	minAgg := NewAggregate(src, 1, 0, aggregation.Min)
	require.NoError(t, minAgg.Open())
	minOut := drainAll(t, minAgg)
	require.Len(t, minOut, 1)
	v, _ := minOut[0].Field(1)
	require.Equal(t, int32(2), v.IntValue())

	require.NoError(t, src.Rewind())
	maxAgg := NewAggregate(src, 1, 0, aggregation.Max)
	require.NoError(t, maxAgg.Open())
	maxOut := drainAll(t, maxAgg)
	require.Len(t, maxOut, 1)
	v, _ = maxOut[0].Field(1)
	require.Equal(t, int32(9), v.IntValue())
}

func TestAggregate_RewindReMaterializesFromChild(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, []*types.Tuple{intTuple(t, schema, 1, 3)})
	agg := NewAggregate(src, 1, aggregation.NoGrouping, aggregation.Sum)
	require.NoError(t, agg.Open())
	require.Len(t, drainAll(t, agg), 1)

	require.NoError(t, agg.Rewind())
	out := drainAll(t, agg)
	require.Len(t, out, 1)
	v, _ := out[0].Field(0)
	require.Equal(t, int32(3), v.IntValue())
}
