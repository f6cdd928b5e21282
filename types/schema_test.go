package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoIntSchema(t *testing.T) *Schema {
	s, err := NewSchema(
		FieldDesc{Kind: IntType, Name: "a"},
		FieldDesc{Kind: IntType, Name: "b"},
	)
	require.NoError(t, err)
	return s
}

func TestSchema_SizeIsSumOfFieldLengths(t *testing.T) {
	s := twoIntSchema(t)
	require.Equal(t, 2*IntLen, s.Size())
}

func TestSchema_FieldIndexFindsFirstMatch(t *testing.T) {
	s := twoIntSchema(t)
	idx, err := s.FieldIndex("b")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	_, err = s.FieldIndex("nope")
	require.Error(t, err)
}

func TestSchema_EqualsIgnoresNames(t *testing.T) {
	s1, _ := NewSchema(FieldDesc{Kind: IntType, Name: "x"}, FieldDesc{Kind: StringType, Name: "y", MaxLen: 8})
	s2, _ := NewSchema(FieldDesc{Kind: IntType, Name: "different"}, FieldDesc{Kind: StringType, Name: "also-different", MaxLen: 32})
	require.True(t, s1.Equals(s2))
}

func TestSchema_EqualsRejectsTypeMismatch(t *testing.T) {
	s1, _ := NewSchema(FieldDesc{Kind: IntType})
	s2, _ := NewSchema(FieldDesc{Kind: StringType, MaxLen: 8})
	require.False(t, s1.Equals(s2))
}

func TestMerge_IsAssociativeOnWidths(t *testing.T) {
	a, _ := NewSchema(FieldDesc{Kind: IntType, Name: "a1"}, FieldDesc{Kind: IntType, Name: "a2"})
	b, _ := NewSchema(FieldDesc{Kind: StringType, Name: "b1", MaxLen: 10})

	merged := Merge(a, b)
	require.Equal(t, a.NumFields()+b.NumFields(), merged.NumFields())

	for i := 0; i < a.NumFields(); i++ {
		wantType, _ := a.FieldType(i)
		gotType, _ := merged.FieldType(i)
		require.Equal(t, wantType, gotType)
	}
	for i := 0; i < b.NumFields(); i++ {
		wantType, _ := b.FieldType(i)
		gotType, _ := merged.FieldType(a.NumFields() + i)
		require.Equal(t, wantType, gotType)
	}
}

func TestNewSchema_RejectsEmpty(t *testing.T) {
	_, err := NewSchema()
	require.Error(t, err)
}
