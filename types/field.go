package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"coredb/dberrors"
)

// Field is a single tagged-variant value, not two structs (IntField,
// StringField) implementing a common interface. One type, one dispatch
// point per operation (Equals, Compare, Serialize), discriminated by Kind.
type Field struct {
	Kind     Type
	intVal   int32
	strVal   string
	strMaxLn int // only meaningful when Kind == StringType; the max length given at construction. Serialize takes its padding length as an argument and does not read this.
}

// IntField constructs an INT field.
func IntField(v int32) Field {
	return Field{Kind: IntType, intVal: v}
}

// StringFieldOf constructs a STRING field with the given declared maximum
// length. Serialize checks len(v) against the maxLen passed to it, not
// against this one.
func StringFieldOf(v string, maxLen int) Field {
	return Field{Kind: StringType, strVal: v, strMaxLn: maxLen}
}

// IntValue returns the field's integer payload; valid only when
// Kind == IntType.
func (f Field) IntValue() int32 { return f.intVal }

// StringValue returns the field's string payload; valid only when
// Kind == StringType.
func (f Field) StringValue() string { return f.strVal }

func (f Field) String() string {
	switch f.Kind {
	case IntType:
		return fmt.Sprintf("%d", f.intVal)
	case StringType:
		return f.strVal
	default:
		return "<invalid field>"
	}
}

// Equals reports value equality. Fields of different Kind are never equal.
func (f Field) Equals(other Field) bool {
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case IntType:
		return f.intVal == other.intVal
	case StringType:
		return f.strVal == other.strVal
	default:
		return false
	}
}

// Compare orders two fields of the same Kind, returning a negative number,
// zero, or a positive number as f is less than, equal to, or greater than
// other. Comparing fields of different Kind fails with InvalidArgument.
func (f Field) Compare(other Field) (int, error) {
	if f.Kind != other.Kind {
		return 0, dberrors.New(dberrors.InvalidArgument, "Field.Compare", "cannot compare fields of different kinds")
	}
	switch f.Kind {
	case IntType:
		switch {
		case f.intVal < other.intVal:
			return -1, nil
		case f.intVal > other.intVal:
			return 1, nil
		default:
			return 0, nil
		}
	case StringType:
		return strings.Compare(f.strVal, other.strVal), nil
	default:
		return 0, dberrors.New(dberrors.InvalidArgument, "Field.Compare", "unknown field kind")
	}
}

// SerializedLen returns the number of bytes Serialize writes for a field of
// this Kind, given the schema's declared string length (ignored for INT).
func SerializedLen(kind Type, maxStringLen int) int {
	switch kind {
	case IntType:
		return IntLen
	case StringType:
		return StringLenPrefixSize + maxStringLen
	default:
		return 0
	}
}

// Serialize writes the field in the on-disk format described in the data
// model: INT as 4 bytes big-endian two's-complement; STRING as a 4-byte
// big-endian length prefix followed by maxLen bytes of content, zero
// padded. maxLen must match the schema's declared maximum for this column.
func (f Field) Serialize(w io.Writer, maxLen int) error {
	switch f.Kind {
	case IntType:
		var buf [IntLen]byte
		binary.BigEndian.PutUint32(buf[:], uint32(f.intVal))
		_, err := w.Write(buf[:])
		return err
	case StringType:
		content := []byte(f.strVal)
		if len(content) > maxLen {
			return dberrors.New(dberrors.InvalidArgument, "Field.Serialize", "string value exceeds declared maximum length")
		}
		var lenBuf [StringLenPrefixSize]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(content)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		padded := make([]byte, maxLen)
		copy(padded, content)
		_, err := w.Write(padded)
		return err
	default:
		return dberrors.New(dberrors.InvalidArgument, "Field.Serialize", "unknown field kind")
	}
}

// ParseField reads one field of the given Kind from r, using maxLen as the
// STRING column's declared maximum (ignored for INT). The inverse of
// Serialize.
func ParseField(r io.Reader, kind Type, maxLen int) (Field, error) {
	switch kind {
	case IntType:
		var buf [IntLen]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Field{}, dberrors.Wrap(dberrors.IoError, "ParseField", err)
		}
		return IntField(int32(binary.BigEndian.Uint32(buf[:]))), nil
	case StringType:
		var lenBuf [StringLenPrefixSize]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return Field{}, dberrors.Wrap(dberrors.IoError, "ParseField", err)
		}
		actualLen := int(binary.BigEndian.Uint32(lenBuf[:]))
		padded := make([]byte, maxLen)
		if _, err := io.ReadFull(r, padded); err != nil {
			return Field{}, dberrors.Wrap(dberrors.IoError, "ParseField", err)
		}
		if actualLen > maxLen {
			return Field{}, dberrors.New(dberrors.DbError, "ParseField", "stored string length exceeds declared maximum")
		}
		return StringFieldOf(string(padded[:actualLen]), maxLen), nil
	default:
		return Field{}, dberrors.New(dberrors.InvalidArgument, "ParseField", "unknown field kind")
	}
}
