package types

import (
	"strings"

	"coredb/dberrors"
)

// FieldDesc names one column of a Schema: its type, its display name, and
// — for STRING columns — the maximum length declared for it. MaxLen is
// ignored for INT columns.
type FieldDesc struct {
	Kind   Type
	Name   string
	MaxLen int
}

// Schema (the spec's TupleDesc) describes the shape of every tuple that
// flows through one point in an operator tree: an ordered, non-empty list
// of (Type, name, maxlen) entries. Tuples built against a Schema are
// fixed-width — Size() is the same for every tuple sharing this Schema.
type Schema struct {
	fields []FieldDesc
}

// NewSchema builds a Schema from an explicit field list. At least one
// entry is required.
func NewSchema(fields ...FieldDesc) (*Schema, error) {
	if len(fields) == 0 {
		return nil, dberrors.New(dberrors.InvalidArgument, "NewSchema", "schema must have at least one field")
	}
	cp := make([]FieldDesc, len(fields))
	copy(cp, fields)
	return &Schema{fields: cp}, nil
}

// NumFields returns the schema's arity.
func (s *Schema) NumFields() int { return len(s.fields) }

// FieldType returns the type of the i-th field.
func (s *Schema) FieldType(i int) (Type, error) {
	if i < 0 || i >= len(s.fields) {
		return 0, dberrors.New(dberrors.NotFound, "Schema.FieldType", "field index out of range")
	}
	return s.fields[i].Kind, nil
}

// FieldName returns the name of the i-th field (possibly empty).
func (s *Schema) FieldName(i int) (string, error) {
	if i < 0 || i >= len(s.fields) {
		return "", dberrors.New(dberrors.NotFound, "Schema.FieldName", "field index out of range")
	}
	return s.fields[i].Name, nil
}

// FieldMaxLen returns the declared maximum length of the i-th field
// (meaningful only for STRING columns).
func (s *Schema) FieldMaxLen(i int) (int, error) {
	if i < 0 || i >= len(s.fields) {
		return 0, dberrors.New(dberrors.NotFound, "Schema.FieldMaxLen", "field index out of range")
	}
	return s.fields[i].MaxLen, nil
}

// FieldIndex finds the index of the first field with the given name.
func (s *Schema) FieldIndex(name string) (int, error) {
	for i, f := range s.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, dberrors.New(dberrors.NotFound, "Schema.FieldIndex", "no field named "+name)
}

// Size returns the fixed serialized width in bytes of a tuple built
// against this schema: the sum of each field's serialized length.
func (s *Schema) Size() int {
	total := 0
	for _, f := range s.fields {
		total += SerializedLen(f.Kind, f.MaxLen)
	}
	return total
}

// Equals compares two schemas by arity and per-index type only; field
// names and declared string lengths are irrelevant to equality, matching
// the original TupleDesc.equals contract.
func (s *Schema) Equals(other *Schema) bool {
	if other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i].Kind != other.fields[i].Kind {
			return false
		}
	}
	return true
}

// Merge concatenates two schemas: the result has a.NumFields()+b.NumFields()
// fields, with a's fields first.
func Merge(a, b *Schema) *Schema {
	merged := make([]FieldDesc, 0, len(a.fields)+len(b.fields))
	merged = append(merged, a.fields...)
	merged = append(merged, b.fields...)
	return &Schema{fields: merged}
}

// String renders the schema as "type(name), type(name), ...", matching the
// original TupleDesc.toString convention used in diagnostics.
func (s *Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Kind.String() + "(" + f.Name + ")"
	}
	return strings.Join(parts, ", ")
}
