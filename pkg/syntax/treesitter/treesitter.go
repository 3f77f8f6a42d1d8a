// Package treesitter serves syntax trees from a tree-sitter grammar, keeping one
// parser and tree per open document and re-parsing incrementally on edits.
//
// The beanls binary does not use it: the smacker bindings ship no beancount
// grammar, so the server runs the lexical provider. Embedders that have a
// grammar pass it to NewProvider and hand the result to lsp.NewServer.
package treesitter

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/syntax"
)

type document struct {
	mu     sync.Mutex
	parser *sitter.Parser
	tree   *sitter.Tree
	src    []byte
}

// Provider implements syntax.Provider and syntax.DocumentSync.
type Provider struct {
	language *sitter.Language
	docs     sync.Map // map[string]*document
}

var (
	_ syntax.Provider     = (*Provider)(nil)
	_ syntax.DocumentSync = (*Provider)(nil)
)

func NewProvider(language *sitter.Language) *Provider {
	return &Provider{language: language}
}

func (p *Provider) Open(ctx context.Context, uri string, text string) error {
	parser := sitter.NewParser()
	parser.SetLanguage(p.language)

	doc := &document{parser: parser}
	if err := doc.parse(ctx, []byte(text), false); err != nil {
		return errors.Errorf("parsing %s: %w", uri, err)
	}

	p.docs.Store(uri, doc)
	return nil
}

func (p *Provider) Change(ctx context.Context, uri string, text string, edits []syntax.Edit) error {
	v, ok := p.docs.Load(uri)
	if !ok {
		return p.Open(ctx, uri, text)
	}
	doc := v.(*document)

	doc.mu.Lock()
	defer doc.mu.Unlock()

	incremental := doc.tree != nil
	src := doc.src
	for _, edit := range edits {
		if edit.Range == nil {
			incremental = false
			break
		}
		var input sitter.EditInput
		src, input = applyEdit(src, edit)
		if doc.tree != nil {
			doc.tree.Edit(input)
		}
	}

	if incremental && string(src) != text {
		zerolog.Ctx(ctx).Warn().Str("uri", uri).Msg("edited source diverged from document text, reparsing from scratch")
		incremental = false
	}

	if err := doc.parseLocked(ctx, []byte(text), incremental); err != nil {
		return errors.Errorf("reparsing %s: %w", uri, err)
	}
	return nil
}

func (p *Provider) Close(_ context.Context, uri string) {
	p.docs.Delete(uri)
}

func (p *Provider) Tree(_ context.Context, uri string) (syntax.Tree, bool) {
	v, ok := p.docs.Load(uri)
	if !ok {
		return nil, false
	}
	doc := v.(*document)

	doc.mu.Lock()
	defer doc.mu.Unlock()

	if doc.tree == nil {
		return nil, false
	}
	root := doc.tree.RootNode()
	if root == nil || root.IsNull() {
		return nil, false
	}
	return &tree{root: &node{n: root, src: doc.src}}, true
}

func (d *document) parse(ctx context.Context, src []byte, incremental bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.parseLocked(ctx, src, incremental)
}

func (d *document) parseLocked(ctx context.Context, src []byte, incremental bool) error {
	var old *sitter.Tree
	if incremental {
		old = d.tree
	}
	t, err := d.parser.ParseCtx(ctx, old, src)
	if err != nil {
		return err
	}
	d.tree = t
	d.src = src
	return nil
}

// applyEdit replaces the edited span of src and describes the change for
// tree-sitter.
func applyEdit(src []byte, edit syntax.Edit) ([]byte, sitter.EditInput) {
	ix := position.NewIndex(string(src))
	start := ix.Offset(edit.Range.Start)
	oldEnd := ix.Offset(edit.Range.End)
	if oldEnd < start {
		oldEnd = start
	}

	out := make([]byte, 0, len(src)-(oldEnd-start)+len(edit.Text))
	out = append(out, src[:start]...)
	out = append(out, edit.Text...)
	out = append(out, src[oldEnd:]...)

	newEnd := start + len(edit.Text)
	startPt := ix.Point(start)
	oldEndPt := ix.Point(oldEnd)
	newEndPt := position.NewIndex(string(out)).Point(newEnd)

	return out, sitter.EditInput{
		StartIndex:  uint32(start),
		OldEndIndex: uint32(oldEnd),
		NewEndIndex: uint32(newEnd),
		StartPoint:  toPoint(startPt),
		OldEndPoint: toPoint(oldEndPt),
		NewEndPoint: toPoint(newEndPt),
	}
}

func toPoint(p syntax.Point) sitter.Point {
	return sitter.Point{Row: uint32(p.Line), Column: uint32(p.Column)}
}

type tree struct {
	root *node
}

func (t *tree) Root() syntax.Node {
	return t.root
}

type node struct {
	n   *sitter.Node
	src []byte
}

func (n *node) Kind() string { return n.n.Type() }

func (n *node) Start() syntax.Point {
	p := n.n.StartPoint()
	return syntax.Point{Line: int(p.Row), Column: int(p.Column)}
}

func (n *node) End() syntax.Point {
	p := n.n.EndPoint()
	return syntax.Point{Line: int(p.Row), Column: int(p.Column)}
}

func (n *node) Text() string { return n.n.Content(n.src) }

func (n *node) ChildCount() int { return int(n.n.ChildCount()) }

func (n *node) Child(i int) syntax.Node {
	c := n.n.Child(i)
	if c == nil || c.IsNull() {
		return nil
	}
	return &node{n: c, src: n.src}
}
