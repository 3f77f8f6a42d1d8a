package treesitter_test

import (
	"context"
	"testing"

	"github.com/smacker/go-tree-sitter/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/beanls/pkg/syntax"
	"github.com/walteh/beanls/pkg/syntax/treesitter"
)

// toml stands in for the ledger grammar; only the provider plumbing is under
// test here.

func collect(t *testing.T, p *treesitter.Provider, uri string) map[string]syntax.Node {
	t.Helper()
	tree, ok := p.Tree(context.Background(), uri)
	require.True(t, ok)

	out := map[string]syntax.Node{}
	syntax.Walk(tree.Root(), func(n syntax.Node) bool {
		if _, seen := out[n.Kind()]; !seen {
			out[n.Kind()] = n
		}
		return true
	})
	return out
}

func TestProviderOpen(t *testing.T) {
	ctx := context.Background()
	p := treesitter.NewProvider(toml.GetLanguage())

	require.NoError(t, p.Open(ctx, "file:///a.toml", "key = 1\n"))

	nodes := collect(t, p, "file:///a.toml")
	require.Contains(t, nodes, "document")
	require.Contains(t, nodes, "bare_key")
	require.Contains(t, nodes, "integer")

	assert.Equal(t, "key", nodes["bare_key"].Text())
	assert.Equal(t, syntax.Point{Line: 0, Column: 0}, nodes["bare_key"].Start())
	assert.Equal(t, "1", nodes["integer"].Text())
	assert.Equal(t, syntax.Point{Line: 0, Column: 6}, nodes["integer"].Start())
	assert.Equal(t, syntax.Point{Line: 0, Column: 7}, nodes["integer"].End())
}

func TestProviderIncrementalChange(t *testing.T) {
	ctx := context.Background()
	p := treesitter.NewProvider(toml.GetLanguage())

	require.NoError(t, p.Open(ctx, "file:///a.toml", "key = 1\n"))

	err := p.Change(ctx, "file:///a.toml", "key = 42\n", []syntax.Edit{{
		Range: &syntax.EditRange{
			Start: syntax.Point{Line: 0, Column: 6},
			End:   syntax.Point{Line: 0, Column: 7},
		},
		Text: "42",
	}})
	require.NoError(t, err)

	nodes := collect(t, p, "file:///a.toml")
	require.Contains(t, nodes, "integer")
	assert.Equal(t, "42", nodes["integer"].Text())
	assert.Equal(t, syntax.Point{Line: 0, Column: 8}, nodes["integer"].End())
}

func TestProviderChangeFallsBackToFullParse(t *testing.T) {
	ctx := context.Background()
	p := treesitter.NewProvider(toml.GetLanguage())

	require.NoError(t, p.Open(ctx, "file:///a.toml", "key = 1\n"))

	// the edit does not produce the new text, so the provider re-parses
	err := p.Change(ctx, "file:///a.toml", "other = \"x\"\n", []syntax.Edit{{
		Range: &syntax.EditRange{
			Start: syntax.Point{Line: 0, Column: 0},
			End:   syntax.Point{Line: 0, Column: 0},
		},
		Text: "#",
	}})
	require.NoError(t, err)

	nodes := collect(t, p, "file:///a.toml")
	assert.Equal(t, "other", nodes["bare_key"].Text())
	assert.Contains(t, nodes, "string")
	assert.NotContains(t, nodes, "integer")
}

func TestProviderFullReplaceAndClose(t *testing.T) {
	ctx := context.Background()
	p := treesitter.NewProvider(toml.GetLanguage())

	// change before open behaves like open
	require.NoError(t, p.Change(ctx, "file:///b.toml", "a = true\n", []syntax.Edit{{Text: "a = true\n"}}))
	nodes := collect(t, p, "file:///b.toml")
	assert.Contains(t, nodes, "boolean")

	p.Close(ctx, "file:///b.toml")
	_, ok := p.Tree(ctx, "file:///b.toml")
	assert.False(t, ok)
}
