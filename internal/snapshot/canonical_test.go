package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_KeyOrder(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...) and sorts before
	// U+FF61 in UTF-16, although it sorts after it in UTF-8.
	doc := map[string]any{
		"b":          int64(2),
		"a":          int64(1),
		"\U0001F600": true,
		"\uff61":     false,
	}
	out, err := MarshalCanonical(doc)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1,\"b\":2,\"\U0001F600\":true,\"\uff61\":false}", string(out))
}

func TestMarshalCanonical_Forbidden(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"null", nil},
		{"float", 1.5},
		{"float number", json.Number("1.5")},
		{"nested null", map[string]any{"a": []any{int64(1), nil}}},
		{"struct", struct{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestMarshalCanonical_Strings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no html escaping", "<a & b>", `"<a & b>"`},
		{"nfc", "e\u0301", "\"\u00e9\""},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash kept", `x\u2028`, `"x\\u2028"`},
		{"control escaped", "a\nb", `"a\nb"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestMarshalCanonical_IntegerNumbers(t *testing.T) {
	out, err := MarshalCanonical([]any{json.Number("42"), int64(-7), 3})
	require.NoError(t, err)
	assert.Equal(t, "[42,-7,3]", string(out))
}
