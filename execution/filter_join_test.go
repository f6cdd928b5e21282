package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"coredb/types"
)

func twoIntSchema(t *testing.T) *types.Schema {
	s, err := types.NewSchema(types.FieldDesc{Kind: types.IntType, Name: "a"}, types.FieldDesc{Kind: types.IntType, Name: "b"})
	require.NoError(t, err)
	return s
}

func intTuple(t *testing.T, schema *types.Schema, vals ...int32) *types.Tuple {
	tup := types.NewTuple(schema)
	for i, v := range vals {
		require.NoError(t, tup.SetField(i, types.IntField(v)))
	}
	return tup
}

func drainAll(t *testing.T, it OpIterator) []*types.Tuple {
	var out []*types.Tuple
	for {
		has, err := it.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := it.Next()
		require.NoError(t, err)
		out = append(out, tup)
	}
	return out
}

func TestFilter_EmitsOnlyMatchingTuples(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 2),
		intTuple(t, schema, 3, 4),
		intTuple(t, schema, 5, 6),
	})
	pred := NewPredicate(0, GreaterThan, types.IntField(2))
	f := NewFilter(pred, src)

	require.NoError(t, f.Open())
	out := drainAll(t, f)
	require.Len(t, out, 2)
	f0, _ := out[0].Field(0)
	require.Equal(t, int32(3), f0.IntValue())
}

func TestFilter_RewindRestartsChild(t *testing.T) {
	schema := twoIntSchema(t)
	src := NewMemorySource(schema, []*types.Tuple{intTuple(t, schema, 1, 1)})
	pred := NewPredicate(0, Equals, types.IntField(1))
	f := NewFilter(pred, src)
	require.NoError(t, f.Open())
	require.Len(t, drainAll(t, f), 1)

	require.NoError(t, f.Rewind())
	require.Len(t, drainAll(t, f), 1)
}

func TestJoin_NaiveNestedLoopMergesSchemaAndMatches(t *testing.T) {
	schema := twoIntSchema(t)
	left := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 10),
		intTuple(t, schema, 2, 20),
	})
	right := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 100),
		intTuple(t, schema, 2, 200),
		intTuple(t, schema, 2, 201),
	})
	pred := NewJoinPredicate(0, Equals, 0)
	j := NewJoin(pred, left, right)

	require.NoError(t, j.Open())
	require.Equal(t, 4, j.Schema().NumFields())
	out := drainAll(t, j)
	require.Len(t, out, 3)

	f0, _ := out[0].Field(0)
	f2, _ := out[0].Field(2)
	require.Equal(t, int32(1), f0.IntValue())
	require.Equal(t, int32(1), f2.IntValue())
}

func TestJoin_EmptyRightProducesNoRows(t *testing.T) {
	schema := twoIntSchema(t)
	left := NewMemorySource(schema, []*types.Tuple{intTuple(t, schema, 1, 1)})
	right := NewMemorySource(schema, nil)
	j := NewJoin(NewJoinPredicate(0, Equals, 0), left, right)

	require.NoError(t, j.Open())
	require.Empty(t, drainAll(t, j))
}
