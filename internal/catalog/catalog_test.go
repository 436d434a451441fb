package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solaris/internal/money"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	items := c.Items()
	require.Len(t, items, 3)

	assert.Equal(t, "sg1", c.Primary().ID)
	assert.Equal(t, "85.00", c.Primary().Price.String())
	assert.Equal(t, "ln1", c.Secondary().ID)
	assert.Equal(t, "25.00", c.Secondary().Price.String())
	assert.Equal(t, "bd1", c.Bundle().ID)
	assert.Equal(t, "100.00", c.Bundle().Price.String())
	assert.Equal(t, "Solaris Bundle (Sunglasses + Lenses)", c.Bundle().Name)
	assert.Equal(t, "Swap and shine", c.Secondary().Tagline)

	assert.Equal(t, "10.00", c.BundleSaving().String())
	assert.Len(t, c.Hash(), 64)
}

func TestDefault_Lookup(t *testing.T) {
	c := Default()

	it, ok := c.Lookup("ln1")
	require.True(t, ok)
	assert.Equal(t, RoleSecondary, it.Role)

	_, ok = c.Lookup("gift-card")
	assert.False(t, ok)
	assert.False(t, c.Contains("gift-card"))
	assert.True(t, c.Contains("bd1"))
}

func TestItemsReturnsCopy(t *testing.T) {
	c := Default()
	items := c.Items()
	items[0].Name = "changed"
	assert.Equal(t, "Solaris Signature Sunglasses", c.Primary().Name)
}

func testItems() []Item {
	return []Item{
		{ID: "bd1", Role: RoleBundle, Name: "Bundle", Price: money.MustParse("100.00")},
		{ID: "sg1", Role: RolePrimary, Name: "Frames", Price: money.MustParse("85.00")},
		{ID: "ln1", Role: RoleSecondary, Name: "Lenses", Price: money.MustParse("25.00")},
	}
}

func TestNew_OrdersByRole(t *testing.T) {
	c, err := New(testItems()...)
	require.NoError(t, err)

	var ids []string
	for _, it := range c.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"sg1", "ln1", "bd1"}, ids)
	assert.NotEqual(t, Default().Hash(), c.Hash(), "names differ from the default catalog")
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Item) []Item
		wantErr string
	}{
		{
			name:    "too few items",
			mutate:  func(in []Item) []Item { return in[:2] },
			wantErr: "expected 3 items",
		},
		{
			name: "duplicate id",
			mutate: func(in []Item) []Item {
				in[2].ID = "sg1"
				return in
			},
			wantErr: "duplicate id",
		},
		{
			name: "missing id",
			mutate: func(in []Item) []Item {
				in[0].ID = ""
				return in
			},
			wantErr: "id is required",
		},
		{
			name: "role twice",
			mutate: func(in []Item) []Item {
				in[2].Role = RolePrimary
				return in
			},
			wantErr: "assigned twice",
		},
		{
			name: "zero price",
			mutate: func(in []Item) []Item {
				in[1].Price = money.Zero()
				return in
			},
			wantErr: "price must be positive",
		},
		{
			name: "bundle not discounted",
			mutate: func(in []Item) []Item {
				in[0].Price = money.MustParse("110.00")
				return in
			},
			wantErr: "must be below component total",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mutate(testItems())...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var catErr *Error
			assert.ErrorAs(t, err, &catErr)
		})
	}
}

func TestCompile_SchemaViolation(t *testing.T) {
	src := []byte(`
items: [
	{id: "sg1", name: "Frames", role: "primary", price: "85.00"},
	{id: "ln1", name: "Lenses", role: "secondary", price: "twenty"},
	{id: "bd1", name: "Bundle", role: "bundle", price: "100.00"},
]
`)
	_, err := Compile("bad.cue", src)
	require.Error(t, err)

	var catErr *Error
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "cue", catErr.Field)
}

func TestCompile_UnknownRole(t *testing.T) {
	src := []byte(`
items: [
	{id: "sg1", name: "Frames", role: "primary", price: "85.00"},
	{id: "ln1", name: "Lenses", role: "accessory", price: "25.00"},
	{id: "bd1", name: "Bundle", role: "bundle", price: "100.00"},
]
`)
	_, err := Compile("role.cue", src)
	assert.Error(t, err)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile("broken.cue", []byte(`items: [`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.cue")
	src := `
items: [
	{id: "sg2", name: "Night Frames", role: "primary", price: "90.00", tagline: "After dark"},
	{id: "ln2", name: "Amber Lenses", role: "secondary", price: "30"},
	{id: "bd2", name: "Night Bundle", role: "bundle", price: "105.50"},
]
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sg2", c.Primary().ID)
	assert.Equal(t, "After dark", c.Primary().Tagline)
	assert.Equal(t, "", c.Secondary().Tagline)
	assert.Equal(t, "14.50", c.BundleSaving().String())
	assert.NotEqual(t, Default().Hash(), c.Hash())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	assert.ErrorContains(t, err, "read catalog")
}
