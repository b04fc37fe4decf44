package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 1, "a": []any{true, nil, "x"}, "c": 2.5})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,null,"x"],"b":1,"c":2.5}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(map[string]string{"k": "<a & b> "})
	require.NoError(t, err)
	assert.Equal(t, "{\"k\":\"<a & b> \"}", string(got))
}

func TestMarshalCanonical_EscapesControl(t *testing.T) {
	got, err := MarshalCanonical("a\"b\\c\n\x01")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\n\u0001"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301"
	got, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D.., which sort before U+FB01.
	got, err := MarshalCanonical(map[string]int{"ﬁ": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"ﬁ\":1}", string(got))
}

func TestStateHash_Deterministic(t *testing.T) {
	a := NewCharacter("c1", "Ada")
	b := NewCharacter("c1", "Ada")

	ha, err := StateHash(a)
	require.NoError(t, err)
	hb, err := StateHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	b.Attributes[Spirit] = Attribute{XP: 1}
	hb, err = StateHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestStateHash_Nil(t *testing.T) {
	_, err := StateHash(nil)
	require.Error(t, err)
}
