package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasOnlyDefaultGroup(t *testing.T) {
	c := New()
	assert.Equal(t, []string{DefaultGroup}, c.Names())
	assert.Equal(t, 0, c.Size(DefaultGroup))
}

func TestAddGroup(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		input   string
		changed bool
	}{
		{name: "empty", input: "", changed: false},
		{name: "whitespace only", input: "   ", changed: false},
		{name: "existing", input: DefaultGroup, changed: false},
		{name: "reserved pseudo-selection", input: AllProducts, changed: false},
		{name: "new", input: "Newname", changed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, changed := c.AddGroup(tt.input)
			assert.Equal(t, tt.changed, changed)
			if tt.changed {
				assert.Equal(t, c.Len()+1, next.Len())
				assert.Equal(t, 0, next.Size(tt.input))
			} else {
				assert.True(t, next.Equal(c))
			}
		})
	}
}

func TestAddGroupTrimsName(t *testing.T) {
	c, changed := New().AddGroup("  Indica  ")
	require.True(t, changed)
	assert.True(t, c.Has("Indica"))

	_, changed = c.AddGroup("Indica ")
	assert.False(t, changed)
}

func TestDeleteGroup(t *testing.T) {
	c, _ := New().AddGroup("Sativa")

	next, changed := c.DeleteGroup(DefaultGroup)
	assert.False(t, changed)
	assert.True(t, next.Has(DefaultGroup))

	_, changed = c.DeleteGroup("unknown")
	assert.False(t, changed)

	_, changed = c.DeleteGroup("")
	assert.False(t, changed)

	next, changed = c.DeleteGroup("Sativa")
	assert.True(t, changed)
	assert.False(t, next.Has("Sativa"))
	assert.True(t, c.Has("Sativa"), "receiver must not change")
}

func TestProductMembership(t *testing.T) {
	c := New()

	c, changed := c.AddProduct("p1", DefaultGroup)
	require.True(t, changed)
	assert.True(t, c.Contains("p1", DefaultGroup))

	again, changed := c.AddProduct("p1", DefaultGroup)
	assert.False(t, changed)
	assert.True(t, again.Equal(c))

	c, changed = c.RemoveProduct("p1", DefaultGroup)
	require.True(t, changed)
	assert.False(t, c.Contains("p1", DefaultGroup))

	_, changed = c.RemoveProduct("p1", DefaultGroup)
	assert.False(t, changed)
}

func TestProductOperationsIgnoreAllAndUnknown(t *testing.T) {
	c := New()

	_, changed := c.AddProduct("p1", AllProducts)
	assert.False(t, changed)
	_, changed = c.AddProduct("p1", "missing")
	assert.False(t, changed)
	_, changed = c.RemoveProduct("p1", AllProducts)
	assert.False(t, changed)

	assert.False(t, c.Contains("p1", AllProducts))
	assert.False(t, c.Contains("p1", "missing"))
}

func TestMutationsDoNotLeakIntoPreviousValue(t *testing.T) {
	before, _ := New().AddProduct("p1", DefaultGroup)
	after, _ := before.AddProduct("p2", DefaultGroup)

	assert.Equal(t, []string{"p1"}, before.Members(DefaultGroup))
	assert.Equal(t, []string{"p1", "p2"}, after.Members(DefaultGroup))
}

func TestNamesUseGermanCollation(t *testing.T) {
	c := New()
	for _, name := range []string{"Zitrone", "Ölig", "Apfel"} {
		c, _ = c.AddGroup(name)
	}
	assert.Equal(t, []string{"Apfel", DefaultGroup, "Ölig", "Zitrone"}, c.Names())
}
