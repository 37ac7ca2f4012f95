package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	context := map[string]any{
		"name": "Sam",
		"order": map[string]any{
			"total": 150.0,
			"items": map[string]any{"first": "shoes"},
		},
	}
	for scenario, fn := range map[string]func(t *testing.T){
		"substitutes simple token": func(t *testing.T) {
			require.Equal(t, "Hi Sam", Resolve("Hi {{name}}", context))
		},
		"substitutes dotted path": func(t *testing.T) {
			require.Equal(t, "total: 150", Resolve("total: {{order.total}}", context))
		},
		"deep path": func(t *testing.T) {
			require.Equal(t, "shoes", Resolve("{{order.items.first}}", context))
		},
		"unresolved token left verbatim": func(t *testing.T) {
			require.Equal(t, "Hi {{missing}}", Resolve("Hi {{missing}}", context))
		},
		"missing intermediate key left verbatim": func(t *testing.T) {
			require.Equal(t, "{{order.shipping.cost}}", Resolve("{{order.shipping.cost}}", context))
		},
		"token key whitespace trimmed": func(t *testing.T) {
			require.Equal(t, "Hi Sam", Resolve("Hi {{ name }}", context))
		},
		"empty template": func(t *testing.T) {
			require.Equal(t, "", Resolve("", context))
		},
		"no tokens untouched": func(t *testing.T) {
			require.Equal(t, "plain text", Resolve("plain text", context))
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestResolveIdempotent(t *testing.T) {
	context := map[string]any{"name": "Sam"}
	templates := []string{
		"Hi {{name}}",
		"Hi {{missing}} and {{name}}",
		"no tokens",
	}
	for _, template := range templates {
		once := Resolve(template, context)
		require.Equal(t, once, Resolve(once, context))
	}
}

func TestLookup(t *testing.T) {
	context := map[string]any{"a": map[string]any{"b": 1.0}}

	value, ok := Lookup(context, "a.b")
	require.True(t, ok)
	require.Equal(t, 1.0, value)

	_, ok = Lookup(context, "a.c")
	require.False(t, ok)

	_, ok = Lookup(context, "")
	require.False(t, ok)
}
