package lexical

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/syntax"
)

/*
Tree shape:
----------

	file
	 +-> open          (entry line, kind from its directive keyword)
	 |     +-> date
	 |     +-> open    (the keyword itself)
	 |     +-> account
	 +-> transaction
	 |     +-> date, flag|txn, payee, narration, tag, link
	 +-> posting       (indented)
	 |     +-> account, number, currency
	 +-> metadata      (indented)
	 |     +-> key, string|number|...
	 +-> section       (org-mode heading, "* ..." at column 0)
	 +-> comment

Entry nodes span the whole line, so a directive node never reads as its
keyword.
*/

// Entry kinds that carry no classification of their own.
const (
	KindFile        = "file"
	KindTransaction = "transaction"
	KindPosting     = "posting"
	KindMetadata    = "metadata"
	KindLine        = "line"
	KindSection     = "section"
)

type builder struct {
	ix  *position.Index
	src string
}

// Parse lexes text and groups its tokens into entry lines.
func Parse(text string) (*syntax.BasicTree, error) {
	tokens, err := Lex(text)
	if err != nil {
		return nil, errors.Errorf("lexing ledger: %w", err)
	}

	b := &builder{ix: position.NewIndex(text), src: text}

	entries := make([]*syntax.BasicNode, 0)
	line := make([]lexer.Token, 0, 16)
	for _, tok := range tokens {
		if tok.Type == tokNewline || tok.Type == tokEOF {
			entries = append(entries, b.entry(line)...)
			line = line[:0]
			continue
		}
		line = append(line, tok)
	}

	root := syntax.NewBasicNode(KindFile, syntax.Point{}, b.ix.Point(len(text)), text, entries...)
	return syntax.NewBasicTree(root), nil
}

func (b *builder) span(tok lexer.Token) (syntax.Point, syntax.Point) {
	return b.ix.Point(tok.Pos.Offset), b.ix.Point(tok.Pos.Offset + len(tok.Value))
}

func (b *builder) leaf(kind string, tok lexer.Token) *syntax.BasicNode {
	value := tok.Value
	if tok.Type == tokKey {
		value = strings.TrimSuffix(value, ":")
	}
	start := b.ix.Point(tok.Pos.Offset)
	end := b.ix.Point(tok.Pos.Offset + len(value))
	return syntax.NewBasicNode(kind, start, end, value)
}

// entry turns the tokens of one line into zero or more nodes.
func (b *builder) entry(toks []lexer.Token) []*syntax.BasicNode {
	if len(toks) == 0 {
		return nil
	}
	first := toks[0]
	firstStart, _ := b.span(first)

	if first.Type == tokComment {
		return []*syntax.BasicNode{b.leaf("comment", first)}
	}

	if first.Type == tokFlag && first.Value == "*" && firstStart.Column == 0 {
		_, end := b.span(toks[len(toks)-1])
		text := b.src[first.Pos.Offset:b.ix.Offset(end)]
		return []*syntax.BasicNode{syntax.NewBasicNode(KindSection, firstStart, end, text)}
	}

	kind := KindLine
	switch {
	case first.Type == tokDate && len(toks) > 1 && toks[1].Type == tokKeyword && toks[1].Value != "txn":
		kind = toks[1].Value
	case first.Type == tokDate && len(toks) > 1 && (toks[1].Type == tokFlag || toks[1].Type == tokKeyword):
		kind = KindTransaction
	case first.Type == tokKeyword && firstStart.Column == 0:
		kind = first.Value
	case firstStart.Column > 0 && first.Type == tokKey:
		kind = KindMetadata
	case firstStart.Column > 0 && (first.Type == tokAccount || first.Type == tokFlag):
		kind = KindPosting
	}

	children := b.children(kind, toks)
	_, end := b.span(toks[len(toks)-1])
	text := b.src[first.Pos.Offset:b.ix.Offset(end)]
	return []*syntax.BasicNode{syntax.NewBasicNode(kind, firstStart, end, text, children...)}
}

func (b *builder) children(kind string, toks []lexer.Token) []*syntax.BasicNode {
	strs := 0
	for _, tok := range toks {
		if tok.Type == tokString {
			strs++
		}
	}

	out := make([]*syntax.BasicNode, 0, len(toks))
	seenStrings := 0
	for _, tok := range toks {
		var leafKind string
		switch tok.Type {
		case tokComment:
			leafKind = "comment"
		case tokDate:
			leafKind = "date"
		case tokAccount:
			leafKind = "account"
		case tokNumber:
			leafKind = "number"
		case tokBool:
			leafKind = "bool"
		case tokCurrency:
			leafKind = "currency"
		case tokTag:
			leafKind = "tag"
		case tokLink:
			leafKind = "link"
		case tokKey:
			leafKind = "key"
		case tokKeyword:
			leafKind = tok.Value
		case tokFlag:
			leafKind = "flag"
		case tokString:
			leafKind = "string"
			if kind == KindTransaction {
				// with two strings the first is the payee
				leafKind = "narration"
				if strs > 1 && seenStrings == 0 {
					leafKind = "payee"
				}
			}
			seenStrings++
		default:
			continue
		}
		out = append(out, b.leaf(leafKind, tok))
	}
	return out
}
