package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedValuer struct{}

func (fixedValuer) CanonicalValue() any {
	return map[string]any{"b": 2, "a": "x"}
}

func TestMarshal_SortsKeys(t *testing.T) {
	got, err := Marshal(map[string]any{
		"subtotal": "185.00",
		"items":    []any{map[string]any{"qty": 1, "id": "sg1"}},
		"auto":     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"auto":true,"items":[{"id":"sg1","qty":1}],"subtotal":"185.00"}`, string(got))
}

func TestMarshal_NoHTMLEscape(t *testing.T) {
	got, err := Marshal("Sunglasses + Lenses <&>")
	require.NoError(t, err)
	assert.Equal(t, `"Sunglasses + Lenses <&>"`, string(got))
}

func TestMarshal_NFC(t *testing.T) {
	// n + combining tilde composes to U+00F1
	got, err := Marshal("Espan\u0303ol")
	require.NoError(t, err)
	assert.Equal(t, "\"Espa\u00f1ol\"", string(got))
}

func TestMarshal_LineSeparators(t *testing.T) {
	got, err := Marshal("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	got, err = Marshal(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestMarshal_Rejects(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(map[string]any{"price": 85.0})
	assert.ErrorContains(t, err, "floats are forbidden")

	_, err = Marshal(struct{}{})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestMarshal_ValuerAndTypedContainers(t *testing.T) {
	got, err := Marshal(map[string]any{
		"v":   fixedValuer{},
		"ids": []string{"sg1", "bd1"},
		"qty": map[string]int{"ln1": 2, "bd1": 1},
		"seq": int64(7),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ids":["sg1","bd1"],"qty":{"bd1":1,"ln1":2},"seq":7,"v":{"a":"x","b":2}}`, string(got))
}

func TestCompareUTF16(t *testing.T) {
	// U+FF61 sorts before U+1F600 by UTF-8 bytes but after it by UTF-16 units.
	assert.Greater(t, compareUTF16("\uFF61", "\U0001F600"), 0)
	assert.Less(t, compareUTF16("a", "ab"), 0)
	assert.Equal(t, 0, compareUTF16("sg1", "sg1"))
}

func TestHash(t *testing.T) {
	h1, err := Hash(DomainSnapshot, map[string]any{"a": 1})
	require.NoError(t, err)
	h2, err := Hash(DomainCatalog, map[string]any{"a": 1})
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2, "domain separation")

	data, err := Marshal(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, h1, HashBytes(DomainSnapshot, data))
}
