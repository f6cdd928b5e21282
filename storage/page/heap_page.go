// Package page implements the on-disk heap page format: a fixed-width
// bitmap header followed by a fixed number of fixed-width tuple slots.
// Unlike the slotted variable-length page the teacher's v2 storage engine
// uses for its WAL-backed tables, every tuple in a table built against one
// Schema is the same width, so a page can compute its own slot count from
// the page size and tuple width alone — no per-record offset table needed,
// just one bit per slot recording whether it is occupied.
package page

import (
	"bytes"
	"fmt"
	"io"

	"coredb/dberrors"
	"coredb/types"
)

// Size is the length in bytes of every page on disk, shared by every heap
// file in the engine. It defaults to 4096 and may be overridden by
// SetSize before any Catalog or HeapFile is opened; changing it once
// pages exist on disk in a different size corrupts them.
var Size = 4096

// SetSize overrides Size. Callers (engine.New, reading config.Config)
// must call this before opening any catalog or heap file.
func SetSize(n int) {
	if n > 0 {
		Size = n
	}
}

// NumSlots returns the number of fixed-width tuple slots a page of Size
// bytes holds for tuples of the given serialized width: floor(Size*8 /
// (tupleSize*8 + 1)), the classic slotted-bitmap-header derivation — each
// slot costs tupleSize bytes of payload plus one bit of header.
func NumSlots(tupleSize int) int {
	if tupleSize <= 0 {
		return 0
	}
	return (Size * 8) / (tupleSize*8 + 1)
}

// HeaderBytes returns the number of header bytes needed to hold one
// occupancy bit per slot.
func HeaderBytes(numSlots int) int {
	return (numSlots + 7) / 8
}

// Page is one heap-file page: a fixed-width bitmap header followed by
// numSlots fixed-width tuple slots, plus the in-memory bookkeeping the
// buffer pool needs to decide whether and how to flush it.
type Page struct {
	id       types.PageId
	schema   *types.Schema
	numSlots int
	header   []byte // one bit per slot, LSB-first within each byte; 1 = occupied.
	slots    []*types.Tuple

	before    []byte // snapshot of GetPageData taken by the first MarkDirty since the last MarkClean, or by SetBeforeImage; the buffer pool's abort path discards the page instead of using it.
	dirtiedBy types.TransactionID
}

// NewPage allocates an empty page of the given id and schema — every slot
// unoccupied.
func NewPage(id types.PageId, schema *types.Schema) *Page {
	numSlots := NumSlots(schema.Size())
	return &Page{
		id:       id,
		schema:   schema,
		numSlots: numSlots,
		header:   make([]byte, HeaderBytes(numSlots)),
		slots:    make([]*types.Tuple, numSlots),
	}
}

// NewPageFromBytes reconstructs a page from exactly Size bytes previously
// produced by GetPageData.
func NewPageFromBytes(id types.PageId, schema *types.Schema, data []byte) (*Page, error) {
	if len(data) != Size {
		return nil, dberrors.New(dberrors.InvalidArgument, "NewPageFromBytes",
			fmt.Sprintf("expected %d bytes, got %d", Size, len(data)))
	}
	p := NewPage(id, schema)
	r := bytes.NewReader(data)
	if _, err := io.ReadFull(r, p.header); err != nil {
		return nil, dberrors.Wrap(dberrors.IoError, "NewPageFromBytes", err)
	}
	for i := 0; i < p.numSlots; i++ {
		if !p.isSlotUsedLocked(i) {
			if err := skipTuple(r, schema); err != nil {
				return nil, dberrors.Wrap(dberrors.IoError, "NewPageFromBytes", err)
			}
			continue
		}
		tup := types.NewTuple(schema)
		for f := 0; f < schema.NumFields(); f++ {
			kind, _ := schema.FieldType(f)
			maxLen, _ := schema.FieldMaxLen(f)
			field, err := types.ParseField(r, kind, maxLen)
			if err != nil {
				return nil, err
			}
			if err := tup.SetField(f, field); err != nil {
				return nil, err
			}
		}
		tup.SetRecordId(&types.RecordId{PageId: id, SlotIndex: i})
		p.slots[i] = tup
	}
	return p, nil
}

func skipTuple(r io.Reader, schema *types.Schema) error {
	_, err := io.CopyN(io.Discard, r, int64(schema.Size()))
	return err
}

// ID returns the page's identity.
func (p *Page) ID() types.PageId { return p.id }

// NumSlots returns the fixed slot count for this page.
func (p *Page) NumSlots() int { return p.numSlots }

func (p *Page) isSlotUsedLocked(i int) bool {
	return p.header[i/8]&(1<<(uint(i)%8)) != 0
}

// IsSlotUsed reports whether slot i is occupied.
func (p *Page) IsSlotUsed(i int) bool {
	if i < 0 || i >= p.numSlots {
		return false
	}
	return p.isSlotUsedLocked(i)
}

func (p *Page) setSlotUsed(i int, used bool) {
	if used {
		p.header[i/8] |= 1 << (uint(i) % 8)
	} else {
		p.header[i/8] &^= 1 << (uint(i) % 8)
	}
}

// GetNumEmptySlots returns the number of unoccupied slots.
func (p *Page) GetNumEmptySlots() int {
	empty := 0
	for i := 0; i < p.numSlots; i++ {
		if !p.isSlotUsedLocked(i) {
			empty++
		}
	}
	return empty
}

// InsertTuple places t into the first empty slot, stamping its RecordId
// and re-pointing it at this page's schema. Fails with DbError if the page
// is full or if t's schema is not structurally equal to this page's.
func (p *Page) InsertTuple(t *types.Tuple) error {
	if !t.Schema().Equals(p.schema) {
		return dberrors.New(dberrors.DbError, "Page.InsertTuple", "tuple schema does not match page schema")
	}
	for i := 0; i < p.numSlots; i++ {
		if p.isSlotUsedLocked(i) {
			continue
		}
		if err := t.ResetSchema(p.schema); err != nil {
			return err
		}
		t.SetRecordId(&types.RecordId{PageId: p.id, SlotIndex: i})
		p.slots[i] = t
		p.setSlotUsed(i, true)
		return nil
	}
	return dberrors.New(dberrors.DbError, "Page.InsertTuple", "page is full")
}

// DeleteTuple removes the tuple at t.RecordId() from this page, failing
// with InvalidArgument if t has no RecordId, and with DbError if it
// doesn't belong to this page or its slot is already empty.
func (p *Page) DeleteTuple(t *types.Tuple) error {
	rid := t.RecordId()
	if rid == nil {
		return dberrors.New(dberrors.InvalidArgument, "Page.DeleteTuple", "tuple has no RecordId")
	}
	if rid.PageId != p.id {
		return dberrors.New(dberrors.DbError, "Page.DeleteTuple", "tuple does not belong to this page")
	}
	if rid.SlotIndex < 0 || rid.SlotIndex >= p.numSlots || !p.isSlotUsedLocked(rid.SlotIndex) {
		return dberrors.New(dberrors.DbError, "Page.DeleteTuple", "slot is not occupied")
	}
	p.slots[rid.SlotIndex] = nil
	p.setSlotUsed(rid.SlotIndex, false)
	t.SetRecordId(nil)
	return nil
}

// Iterator returns the page's live tuples in slot order.
func (p *Page) Iterator() []*types.Tuple {
	out := make([]*types.Tuple, 0, p.numSlots-p.GetNumEmptySlots())
	for i := 0; i < p.numSlots; i++ {
		if p.isSlotUsedLocked(i) {
			out = append(out, p.slots[i])
		}
	}
	return out
}

// GetPageData serializes the page to exactly Size bytes: the bitmap header
// followed by every slot (occupied slots serialized via Field.Serialize,
// empty slots zero-filled).
func (p *Page) GetPageData() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	buf.Write(p.header)
	for i := 0; i < p.numSlots; i++ {
		if p.isSlotUsedLocked(i) {
			tup := p.slots[i]
			for f := 0; f < p.schema.NumFields(); f++ {
				maxLen, _ := p.schema.FieldMaxLen(f)
				field, _ := tup.Field(f)
				_ = field.Serialize(buf, maxLen)
			}
		} else {
			buf.Write(make([]byte, p.schema.Size()))
		}
	}
	out := buf.Bytes()
	if len(out) < Size {
		out = append(out, make([]byte, Size-len(out))...)
	}
	return out[:Size]
}

// MarkDirty records that tid has modified this page since it was last
// flushed, capturing the page's contents as its before-image the first
// time it's called since the last MarkClean. The buffer pool's abort path
// does not restore this image; it discards the page.
func (p *Page) MarkDirty(tid types.TransactionID) {
	if p.before == nil {
		p.before = p.GetPageData()
	}
	p.dirtiedBy = tid
}

// IsDirty reports whether the page has unflushed modifications, and if so,
// by which transaction.
func (p *Page) IsDirty() (bool, types.TransactionID) {
	return p.dirtiedBy != types.NoTransaction, p.dirtiedBy
}

// MarkClean clears the dirty bit and before-image after a successful
// flush.
func (p *Page) MarkClean() {
	p.dirtiedBy = types.NoTransaction
	p.before = nil
}

// GetBeforeImage returns a page reconstructed from the snapshot taken by
// the first MarkDirty call since the last flush, or a snapshot of the
// current contents if the page was never dirtied.
func (p *Page) GetBeforeImage() (*Page, error) {
	data := p.before
	if data == nil {
		data = p.GetPageData()
	}
	return NewPageFromBytes(p.id, p.schema, data)
}

// SetBeforeImage snapshots the page's current contents as its own
// before-image, called once a transaction's writes to it have committed.
func (p *Page) SetBeforeImage() {
	p.before = p.GetPageData()
}
