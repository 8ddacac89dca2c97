package hint

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Item struct {
	Name string
}

func TestArrayElementTypeName(t *testing.T) {
	doc := `
	Saves many items.
	@param string $title
	@param \App\Models\Item[] $items
	@param Other[] $items
	@param int[][] $matrix
	`
	tests := []struct {
		param string
		want  string
		ok    bool
	}{
		{param: "items", want: `\App\Models\Item`, ok: true},
		{param: "matrix", want: "int", ok: true},
		{param: "title"},
		{param: "missing"},
	}
	for _, tt := range tests {
		got, ok := ArrayElementTypeName(doc, tt.param)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ArrayElementTypeName(%q) = %q, %v; want %q, %v", tt.param, got, ok, tt.want, tt.ok)
		}
	}

	_, ok := ArrayElementTypeName("", "items")
	assert.False(t, ok)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	Register[Item](r, "models.Thing")

	for _, name := range []string{"Item", "hint.Item", `\App\Models\Item`, "App.Models.Item", "models.Thing"} {
		got, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, reflect.TypeFor[Item](), got, name)
	}

	_, ok := r.Lookup("Unknown")
	assert.False(t, ok)
	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestResolverResolveArrayElementType(t *testing.T) {
	r := NewRegistry()
	Register[*Item](r)
	resolver := NewResolver(r)

	got, ok := resolver.ResolveArrayElementType(`@param Item[] $items`, "items")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[*Item](), got)

	_, ok = resolver.ResolveArrayElementType(`@param Missing[] $items`, "items")
	assert.False(t, ok)
}
