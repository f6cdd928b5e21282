package types

import (
	"strings"

	"coredb/dberrors"
)

// Tuple is a schema reference plus a mutable, fixed-length slice of Field
// slots. Slots start unset (IsFieldSet reports false) until SetField
// assigns them. RecordId is nil until the tuple is placed on a page (or
// loaded from one); Page.InsertTuple sets it and Page.DeleteTuple clears
// it to nil again.
type Tuple struct {
	schema   *Schema
	fields   []Field
	fieldSet []bool
	recordID *RecordId
}

// NewTuple allocates a tuple with schema.NumFields() unset slots.
func NewTuple(schema *Schema) *Tuple {
	n := schema.NumFields()
	return &Tuple{
		schema:   schema,
		fields:   make([]Field, n),
		fieldSet: make([]bool, n),
	}
}

// Schema returns the tuple's schema.
func (t *Tuple) Schema() *Schema { return t.schema }

// RecordId returns the tuple's on-disk location, or nil if it was never
// assigned (a freshly-constructed tuple, or a delete result).
func (t *Tuple) RecordId() *RecordId { return t.recordID }

// SetRecordId records the tuple's on-disk location.
func (t *Tuple) SetRecordId(rid *RecordId) { t.recordID = rid }

// SetField assigns the i-th field, failing with InvalidArgument if i is
// out of range or f.Kind doesn't match the schema's declared type at i.
func (t *Tuple) SetField(i int, f Field) error {
	if i < 0 || i >= len(t.fields) {
		return dberrors.New(dberrors.InvalidArgument, "Tuple.SetField", "field index out of range")
	}
	wantKind, err := t.schema.FieldType(i)
	if err != nil {
		return err
	}
	if f.Kind != wantKind {
		return dberrors.New(dberrors.InvalidArgument, "Tuple.SetField", "field kind does not match schema")
	}
	t.fields[i] = f
	t.fieldSet[i] = true
	return nil
}

// Field returns the i-th field. Returns InvalidArgument if i is out of
// range, InvalidState if the slot was never assigned.
func (t *Tuple) Field(i int) (Field, error) {
	if i < 0 || i >= len(t.fields) {
		return Field{}, dberrors.New(dberrors.InvalidArgument, "Tuple.Field", "field index out of range")
	}
	if !t.fieldSet[i] {
		return Field{}, dberrors.New(dberrors.InvalidState, "Tuple.Field", "field not set")
	}
	return t.fields[i], nil
}

// IsFieldSet reports whether the i-th slot has ever been assigned.
func (t *Tuple) IsFieldSet(i int) bool {
	if i < 0 || i >= len(t.fieldSet) {
		return false
	}
	return t.fieldSet[i]
}

// ResetSchema points the tuple at a new, structurally-equal schema,
// mirroring Tuple.resetTupleDesc: every field's type must match the new
// schema's type at the same index, or this fails with InvalidArgument.
// HeapPage.InsertTuple uses this to stamp its own schema onto an
// externally-built tuple before storing it.
func (t *Tuple) ResetSchema(schema *Schema) error {
	if schema.NumFields() != len(t.fields) {
		return dberrors.New(dberrors.InvalidArgument, "Tuple.ResetSchema", "arity mismatch")
	}
	for i := range t.fields {
		wantKind, _ := schema.FieldType(i)
		if t.fieldSet[i] && t.fields[i].Kind != wantKind {
			return dberrors.New(dberrors.InvalidArgument, "Tuple.ResetSchema", "field kind mismatch at index")
		}
	}
	t.schema = schema
	return nil
}

// String renders the tuple as its fields joined by tabs, terminated by a
// newline, matching the printed form the original Tuple.toString produces
// (minus the trailing newline there, which callers added themselves; this
// adds it directly since the spec calls for "terminated by newline").
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if t.fieldSet[i] {
			parts[i] = f.String()
		} else {
			parts[i] = "<null>"
		}
	}
	return strings.Join(parts, "\t") + "\n"
}
