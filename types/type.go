package types

import "strings"

// Type is the closed set of field types this engine understands. Every
// type has a length known from the schema alone, which is what makes
// tuples fixed-width and lets HeapPage compute its slot count without
// looking at any tuple payload.
type Type uint8

const (
	// IntType is a 4-byte signed big-endian integer.
	IntType Type = iota

	// StringType is a 4-byte big-endian length prefix followed by up to
	// MaxLen bytes of UTF-8 content, zero-padded to MaxLen. MaxLen lives on
	// the schema entry, not on the Type itself — two STRING columns in the
	// same schema may have different maximum lengths.
	StringType
)

func (t Type) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	default:
		return "unknown"
	}
}

// IntLen is the on-disk width of an INT field.
const IntLen = 4

// StringLenPrefixSize is the width of the length prefix on a STRING field,
// not counting the padded content that follows it.
const StringLenPrefixSize = 4

// ParseType maps the catalog-file grammar's case-insensitive type tokens
// ("int", "string") to a Type. Returns false for anything else.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(s) {
	case "int":
		return IntType, true
	case "string":
		return StringType, true
	default:
		return 0, false
	}
}
