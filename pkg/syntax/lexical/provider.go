package lexical

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/syntax"
)

// Provider keeps one lexical tree per open document. Lexing is cheap, so every
// change rebuilds the tree from the full text.
type Provider struct {
	trees sync.Map // map[string]*syntax.BasicTree
}

var (
	_ syntax.Provider     = (*Provider)(nil)
	_ syntax.DocumentSync = (*Provider)(nil)
)

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Open(ctx context.Context, uri string, text string) error {
	tree, err := Parse(text)
	if err != nil {
		p.trees.Delete(uri)
		return errors.Errorf("building tree for %s: %w", uri, err)
	}
	p.trees.Store(uri, tree)

	zerolog.Ctx(ctx).Trace().Str("uri", uri).Int("entries", tree.Root().ChildCount()).Msg("built lexical tree")
	return nil
}

func (p *Provider) Change(ctx context.Context, uri string, text string, _ []syntax.Edit) error {
	return p.Open(ctx, uri, text)
}

func (p *Provider) Close(_ context.Context, uri string) {
	p.trees.Delete(uri)
}

func (p *Provider) Tree(_ context.Context, uri string) (syntax.Tree, bool) {
	v, ok := p.trees.Load(uri)
	if !ok {
		return nil, false
	}
	return v.(*syntax.BasicTree), true
}
