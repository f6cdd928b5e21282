package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestField_IntRoundTrip(t *testing.T) {
	f := IntField(-42)
	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf, 0))
	require.Equal(t, IntLen, buf.Len())

	got, err := ParseField(&buf, IntType, 0)
	require.NoError(t, err)
	require.True(t, f.Equals(got))
}

func TestField_StringRoundTrip(t *testing.T) {
	f := StringFieldOf("hello", 16)
	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf, 16))
	require.Equal(t, StringLenPrefixSize+16, buf.Len())

	got, err := ParseField(&buf, StringType, 16)
	require.NoError(t, err)
	require.True(t, f.Equals(got))
	require.Equal(t, "hello", got.StringValue())
}

func TestField_StringTooLongFailsSerialize(t *testing.T) {
	f := StringFieldOf("this is way too long", 4)
	var buf bytes.Buffer
	err := f.Serialize(&buf, 4)
	require.Error(t, err)
}

func TestField_CompareAcrossKindsFails(t *testing.T) {
	_, err := IntField(1).Compare(StringFieldOf("x", 4))
	require.Error(t, err)
}

func TestField_CompareOrdering(t *testing.T) {
	c, err := IntField(1).Compare(IntField(2))
	require.NoError(t, err)
	require.Negative(t, c)

	c, err = StringFieldOf("b", 4).Compare(StringFieldOf("a", 4))
	require.NoError(t, err)
	require.Positive(t, c)
}
