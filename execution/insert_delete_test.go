package execution

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"coredb/catalog"
	"coredb/concurrency/lock"
	"coredb/storage/bufferpool"
	"coredb/types"
)

func newTestEnv(t *testing.T) (*catalog.Catalog, *bufferpool.Pool, *types.Schema, int64) {
	cat, err := catalog.New(nil)
	require.NoError(t, err)
	t.Cleanup(cat.Close)

	mgr := lock.NewManager(0, 0, nil)
	pool := bufferpool.New(16, cat, mgr, nil)

	catalogFile := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(catalogFile, []byte("t (a int, b int)\n"), 0644))
	require.NoError(t, cat.LoadSchema(catalogFile))

	tableID, err := cat.TableIDByName("t")
	require.NoError(t, err)
	schema, err := cat.SchemaOf(tableID)
	require.NoError(t, err)
	return cat, pool, schema, tableID
}

func TestRoundTrip_InsertCommitThenScan(t *testing.T) {
	cat, pool, schema, tableID := newTestEnv(t)
	tid := types.TransactionID(1)

	src := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 2),
		intTuple(t, schema, 3, 4),
		intTuple(t, schema, 5, 6),
	})
	insert := NewInsert(tid, tableID, src, pool)
	require.NoError(t, insert.Open())
	out := drainAll(t, insert)
	require.Len(t, out, 1)
	count, _ := out[0].Field(0)
	require.Equal(t, int32(3), count.IntValue())

	require.NoError(t, pool.TransactionComplete(tid, true))

	tid2 := types.TransactionID(2)
	scan := NewSeqScan(tid2, tableID, "t", pool, cat)
	require.NoError(t, scan.Open())
	rows := drainAll(t, scan)
	require.Len(t, rows, 3)
	f0, _ := rows[0].Field(0)
	require.Equal(t, int32(1), f0.IntValue())
}

func TestAbort_RollsBackDelete(t *testing.T) {
	cat, pool, schema, tableID := newTestEnv(t)
	tid1 := types.TransactionID(1)

	src := NewMemorySource(schema, []*types.Tuple{
		intTuple(t, schema, 1, 2),
		intTuple(t, schema, 3, 4),
		intTuple(t, schema, 5, 6),
	})
	insert := NewInsert(tid1, tableID, src, pool)
	require.NoError(t, insert.Open())
	drainAll(t, insert)
	require.NoError(t, pool.TransactionComplete(tid1, true))

	tid2 := types.TransactionID(2)
	scan := NewSeqScan(tid2, tableID, "t", pool, cat)
	require.NoError(t, scan.Open())
	target := NewPredicate(0, Equals, types.IntField(3))
	filtered := NewFilter(target, scan)
	require.NoError(t, filtered.Open())
	del := NewDelete(tid2, filtered, pool)
	require.NoError(t, del.Open())
	result := drainAll(t, del)
	count, _ := result[0].Field(0)
	require.Equal(t, int32(1), count.IntValue())

	require.NoError(t, pool.TransactionComplete(tid2, false))

	tid3 := types.TransactionID(3)
	scan2 := NewSeqScan(tid3, tableID, "t", pool, cat)
	require.NoError(t, scan2.Open())
	rows := drainAll(t, scan2)
	require.Len(t, rows, 3, "aborted delete must not be visible")
}
