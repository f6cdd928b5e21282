package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTuple_SetAndGetField(t *testing.T) {
	schema, _ := NewSchema(FieldDesc{Kind: IntType, Name: "a"}, FieldDesc{Kind: StringType, Name: "b", MaxLen: 8})
	tup := NewTuple(schema)

	require.NoError(t, tup.SetField(0, IntField(7)))
	require.NoError(t, tup.SetField(1, StringFieldOf("hi", 8)))

	got, err := tup.Field(0)
	require.NoError(t, err)
	require.Equal(t, int32(7), got.IntValue())
}

func TestTuple_UnsetFieldFailsRead(t *testing.T) {
	schema, _ := NewSchema(FieldDesc{Kind: IntType})
	tup := NewTuple(schema)
	_, err := tup.Field(0)
	require.Error(t, err)
}

func TestTuple_SetFieldWrongKindFails(t *testing.T) {
	schema, _ := NewSchema(FieldDesc{Kind: IntType})
	tup := NewTuple(schema)
	err := tup.SetField(0, StringFieldOf("x", 4))
	require.Error(t, err)
}

func TestTuple_RecordIdDefaultsNil(t *testing.T) {
	schema, _ := NewSchema(FieldDesc{Kind: IntType})
	tup := NewTuple(schema)
	require.Nil(t, tup.RecordId())

	rid := &RecordId{PageId: PageId{TableID: 1, PageNumber: 0}, SlotIndex: 3}
	tup.SetRecordId(rid)
	require.Equal(t, rid, tup.RecordId())
}

func TestTuple_StringFormat(t *testing.T) {
	schema, _ := NewSchema(FieldDesc{Kind: IntType, Name: "a"}, FieldDesc{Kind: IntType, Name: "b"})
	tup := NewTuple(schema)
	require.NoError(t, tup.SetField(0, IntField(1)))
	require.NoError(t, tup.SetField(1, IntField(2)))
	require.Equal(t, "1\t2\n", tup.String())
}
