/*
Tree Visitor for Token Generation:
--------------------------------

The visitor walks the syntax tree depth-first in pre-order and consults the
rule table once per node:

	Tree                      Tokens
	----                      ------
	file
	 +-> transaction   (no rule, keep descending)
	 |     +-> date    ----> number
	 |     +-> txn     ----> keyword
	 |     +-> narration --> string
	 |     +-> posting (no rule)
	 |           +-> account -> type
	 +-> comment       ----> comment

A parent starts at or before its children and siblings are visited left to
right, so pre-order already yields tokens in (line, column) order.
*/
package semtok

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/syntax"
)

// tokenVisitor collects semantic tokens while walking the tree
type tokenVisitor struct {
	tokens []Token

	rules  RuleTable
	legend *Legend

	// index converts byte columns to UTF-16; nil means columns are used as is
	index *position.Index

	dropped int
}

func newVisitor(rules RuleTable, legend *Legend, text string, haveText bool) *tokenVisitor {
	v := &tokenVisitor{
		tokens: make([]Token, 0),
		rules:  rules,
		legend: legend,
	}
	if haveText {
		v.index = position.NewIndex(text)
	}
	return v
}

func (v *tokenVisitor) visitTree(ctx context.Context, tree syntax.Tree) {
	if tree == nil {
		return
	}
	syntax.Walk(tree.Root(), v.visitNode)

	if v.dropped > 0 {
		zerolog.Ctx(ctx).Trace().Int("dropped", v.dropped).Msg("dropped tokens outside legend or out of order")
	}
}

// visitNode classifies n and always continues into its children.
func (v *tokenVisitor) visitNode(n syntax.Node) bool {
	rule, ok := v.rules.Lookup(n)
	if !ok {
		return true
	}

	tok := Token{
		Category: rule.Category,
		Modifier: rule.Modifier,
	}

	start := n.Start()
	text := n.Text()
	if v.index != nil {
		place := v.index.Place(start)
		tok.Line, tok.Column = place.Line, place.Character
		tok.Length = position.UTF16Len(text)
	} else {
		tok.Line, tok.Column = start.Line, start.Column
		tok.Length = len(text)
	}

	if _, ok := v.legend.ModifierMask(tok.Modifier); !ok {
		tok.Modifier = ModifierNone
	}

	v.emit(tok)
	return true
}

func (v *tokenVisitor) emit(tok Token) {
	if !v.legend.Allows(tok) || tok.Length == 0 {
		v.dropped++
		return
	}
	if n := len(v.tokens); n > 0 {
		prev := v.tokens[n-1]
		if tok.Line < prev.Line || (tok.Line == prev.Line && tok.Column <= prev.Column) {
			v.dropped++
			return
		}
	}
	v.tokens = append(v.tokens, tok)
}

func (v *tokenVisitor) getTokens() []Token {
	return v.tokens
}
