package execution

import (
	"fmt"

	"coredb/catalog"
	"coredb/dberrors"
	"coredb/storage/bufferpool"
	"coredb/storage/heapfile"
	"coredb/types"
)

// SeqScan reads every tuple of one table in page order, as a part of tid,
// projecting the underlying schema's field names to "alias.originalName"
// (the original leaves field types untouched — only names change).
type SeqScan struct {
	base *baseIterator

	tid     types.TransactionID
	tableID int64
	alias   string
	pool    *bufferpool.Pool
	cat     *catalog.Catalog

	file         *heapfile.HeapFile
	outputSchema *types.Schema
	pageNum      int64
	numPages     int64
	pageTuples   []*types.Tuple
	pos          int
}

// NewSeqScan builds a scan over tableID as part of tid. alias renames the
// output schema's fields to "alias.name"; an empty alias is used verbatim
// (yielding "." + name, matching the original's documented behavior for
// a null/empty alias).
func NewSeqScan(tid types.TransactionID, tableID int64, alias string, pool *bufferpool.Pool, cat *catalog.Catalog) *SeqScan {
	s := &SeqScan{tid: tid, tableID: tableID, alias: alias, pool: pool, cat: cat}
	s.base = newBaseIterator(s.fetchNext)
	return s
}

// Open resolves the backing file and schema, and primes the first page.
func (s *SeqScan) Open() error {
	file, err := s.cat.FileOf(s.tableID)
	if err != nil {
		return err
	}
	schema, err := s.cat.SchemaOf(s.tableID)
	if err != nil {
		return err
	}
	aliased, err := aliasSchema(schema, s.alias)
	if err != nil {
		return err
	}
	numPages, err := file.NumPages()
	if err != nil {
		return err
	}

	s.file = file
	s.outputSchema = aliased
	s.numPages = numPages
	s.pageNum = 0
	s.pageTuples = nil
	s.pos = 0
	s.base.openBase()
	return nil
}

func aliasSchema(schema *types.Schema, alias string) (*types.Schema, error) {
	descs := make([]types.FieldDesc, schema.NumFields())
	for i := range descs {
		kind, _ := schema.FieldType(i)
		name, _ := schema.FieldName(i)
		maxLen, _ := schema.FieldMaxLen(i)
		descs[i] = types.FieldDesc{Kind: kind, Name: fmt.Sprintf("%s.%s", alias, name), MaxLen: maxLen}
	}
	return types.NewSchema(descs...)
}

func (s *SeqScan) fetchNext() (*types.Tuple, error) {
	for {
		if s.pos < len(s.pageTuples) {
			t := s.pageTuples[s.pos]
			s.pos++
			return renameTuple(t, s.outputSchema)
		}
		if s.pageNum >= s.numPages {
			return nil, nil
		}
		pid := types.PageId{TableID: s.tableID, PageNumber: s.pageNum}
		pg, err := s.pool.GetPage(s.tid, pid, heapfile.ReadOnly)
		if err != nil {
			return nil, err
		}
		s.pageTuples = pg.Iterator()
		s.pos = 0
		s.pageNum++
	}
}

// renameTuple copies t's field values and RecordId onto a fresh tuple
// bound to outputSchema, leaving t (and the page it lives on) untouched.
func renameTuple(t *types.Tuple, outputSchema *types.Schema) (*types.Tuple, error) {
	out := types.NewTuple(outputSchema)
	for i := 0; i < outputSchema.NumFields(); i++ {
		f, err := t.Field(i)
		if err != nil {
			return nil, err
		}
		if err := out.SetField(i, f); err != nil {
			return nil, err
		}
	}
	out.SetRecordId(t.RecordId())
	return out, nil
}

func (s *SeqScan) HasNext() (bool, error) { return s.base.HasNext() }
func (s *SeqScan) Next() (*types.Tuple, error) { return s.base.Next() }

// Rewind restarts the scan from page 0.
func (s *SeqScan) Rewind() error {
	if s.file == nil {
		return dberrors.New(dberrors.InvalidState, "SeqScan.Rewind", "never opened")
	}
	return s.Open()
}

// Close releases the scan's in-memory state; the locks it acquired remain
// held until the transaction completes.
func (s *SeqScan) Close() {
	s.base.closeBase()
	s.pageTuples = nil
}

// Schema returns the aliased output schema.
func (s *SeqScan) Schema() *types.Schema { return s.outputSchema }

// Children returns nil: SeqScan is a leaf.
func (s *SeqScan) Children() []OpIterator { return nil }

// SetChildren is a no-op for a leaf operator.
func (s *SeqScan) SetChildren(children []OpIterator) {}
