/*
Package syntax defines the read-only view of a parsed ledger document that the
annotation pipeline consumes.

The parser itself lives outside this module. Anything that can hand back a tree
of kinded, positioned nodes for a document URI satisfies Provider:

	editor edit -> Provider re-parses -> Tree -> semtok encoder

Positions are zero-based. Columns are byte offsets into the line, which is what
incremental parsers such as tree-sitter report; converting to the editor's
position encoding is the consumer's job (see pkg/position).
*/
package syntax

import (
	"context"
	"fmt"
)

// Point is a zero-based line and byte column.
type Point struct {
	Line   int
	Column int
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p sorts strictly before o in document order.
func (p Point) Before(o Point) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Node is a single node of a parsed tree. Implementations must be safe to read
// for as long as the owning Tree is alive.
type Node interface {
	// Kind is the grammar-defined tag of the node (e.g. "account", "date").
	Kind() string
	Start() Point
	End() Point
	// Text is the full source text spanned by the node.
	Text() string
	ChildCount() int
	Child(i int) Node
}

// Tree is a parsed document.
type Tree interface {
	Root() Node
}

// Provider returns the current tree for a document. A false second result
// means there is nothing to classify for that document.
type Provider interface {
	Tree(ctx context.Context, uri string) (Tree, bool)
}

// Edit is a single text change in the editor's coordinates. A nil Range means
// the whole document was replaced.
type Edit struct {
	Range *EditRange
	Text  string
}

// EditRange is the replaced span of an Edit, as byte positions.
type EditRange struct {
	Start Point
	End   Point
}

// DocumentSync is implemented by providers that own re-parsing and need to
// follow the document lifecycle.
type DocumentSync interface {
	Open(ctx context.Context, uri string, text string) error
	Change(ctx context.Context, uri string, text string, edits []Edit) error
	Close(ctx context.Context, uri string)
}

// Walk visits n and its descendants depth-first in pre-order. Returning false
// from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.Child(i), fn)
	}
}
