package heapfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"coredb/storage/page"
	"coredb/types"
)

func testSchema(t *testing.T) *types.Schema {
	s, err := types.NewSchema(
		types.FieldDesc{Kind: types.IntType, Name: "a"},
		types.FieldDesc{Kind: types.IntType, Name: "b"},
	)
	require.NoError(t, err)
	return s
}

func TestOpen_AssignsStableTableIDPerAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.dat")
	schema := testSchema(t)

	hf1, err := Open(path, schema)
	require.NoError(t, err)
	defer hf1.Close()

	hf2, err := Open(path, schema)
	require.NoError(t, err)
	defer hf2.Close()

	require.Equal(t, hf1.ID(), hf2.ID())
}

func TestOpen_DistinctPathsGetDistinctIDs(t *testing.T) {
	dir := t.TempDir()
	schema := testSchema(t)

	hf1, err := Open(filepath.Join(dir, "a.dat"), schema)
	require.NoError(t, err)
	defer hf1.Close()

	hf2, err := Open(filepath.Join(dir, "b.dat"), schema)
	require.NoError(t, err)
	defer hf2.Close()

	require.NotEqual(t, hf1.ID(), hf2.ID())
}

func TestAddPageAndNumPages(t *testing.T) {
	hf, err := Open(filepath.Join(t.TempDir(), "t.dat"), testSchema(t))
	require.NoError(t, err)
	defer hf.Close()

	n, err := hf.NumPages()
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	pn, err := hf.AddPage()
	require.NoError(t, err)
	require.Equal(t, int64(0), pn)

	n, err = hf.NumPages()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestWritePageThenReadPageRoundTrips(t *testing.T) {
	schema := testSchema(t)
	hf, err := Open(filepath.Join(t.TempDir(), "t.dat"), schema)
	require.NoError(t, err)
	defer hf.Close()

	_, err = hf.AddPage()
	require.NoError(t, err)

	pid := types.PageId{TableID: hf.ID(), PageNumber: 0}
	pg := page.NewPage(pid, schema)
	tup := types.NewTuple(schema)
	require.NoError(t, tup.SetField(0, types.IntField(1)))
	require.NoError(t, tup.SetField(1, types.IntField(2)))
	require.NoError(t, pg.InsertTuple(tup))

	require.NoError(t, hf.WritePage(pg))

	reloaded, err := hf.ReadPage(0)
	require.NoError(t, err)
	tuples := reloaded.Iterator()
	require.Len(t, tuples, 1)
	f0, _ := tuples[0].Field(0)
	require.Equal(t, int32(1), f0.IntValue())
}

type directPool struct {
	hf *HeapFile
}

func (d *directPool) GetPage(tid types.TransactionID, pid types.PageId, mode LockMode) (*page.Page, error) {
	return d.hf.ReadPage(pid.PageNumber)
}

func (d *directPool) ReleasePage(tid types.TransactionID, pid types.PageId) {}

func TestInsertTuple_AppendsPageWhenNoneHaveRoom(t *testing.T) {
	schema := testSchema(t)
	hf, err := Open(filepath.Join(t.TempDir(), "t.dat"), schema)
	require.NoError(t, err)
	defer hf.Close()

	pool := &directPool{hf: hf}
	tup := types.NewTuple(schema)
	require.NoError(t, tup.SetField(0, types.IntField(1)))
	require.NoError(t, tup.SetField(1, types.IntField(2)))

	pg, err := hf.InsertTuple(1, pool, tup)
	require.NoError(t, err)
	require.NotNil(t, pg.ID())

	n, err := hf.NumPages()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestIterator_YieldsTuplesInPageAndSlotOrder(t *testing.T) {
	schema := testSchema(t)
	hf, err := Open(filepath.Join(t.TempDir(), "t.dat"), schema)
	require.NoError(t, err)
	defer hf.Close()

	for page0 := 0; page0 < 2; page0++ {
		pn, err := hf.AddPage()
		require.NoError(t, err)
		pid := types.PageId{TableID: hf.ID(), PageNumber: pn}
		pg := page.NewPage(pid, schema)
		for i := 0; i < 2; i++ {
			tup := types.NewTuple(schema)
			require.NoError(t, tup.SetField(0, types.IntField(int32(page0*10+i))))
			require.NoError(t, tup.SetField(1, types.IntField(0)))
			require.NoError(t, pg.InsertTuple(tup))
		}
		require.NoError(t, hf.WritePage(pg))
	}

	it, err := hf.Iterator()
	require.NoError(t, err)
	require.NoError(t, it.Open())

	var seen []int32
	for {
		has, err := it.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := it.Next()
		require.NoError(t, err)
		f0, _ := tup.Field(0)
		seen = append(seen, f0.IntValue())
	}
	require.Equal(t, []int32{0, 1, 10, 11}, seen)
}
