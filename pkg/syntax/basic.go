package syntax

import (
	"context"
	"sync"
)

// BasicNode is an in-memory Node.
type BasicNode struct {
	kind     string
	start    Point
	end      Point
	text     string
	children []*BasicNode
}

var _ Node = (*BasicNode)(nil)

func NewBasicNode(kind string, start, end Point, text string, children ...*BasicNode) *BasicNode {
	return &BasicNode{
		kind:     kind,
		start:    start,
		end:      end,
		text:     text,
		children: children,
	}
}

func (n *BasicNode) Kind() string    { return n.kind }
func (n *BasicNode) Start() Point    { return n.start }
func (n *BasicNode) End() Point      { return n.end }
func (n *BasicNode) Text() string    { return n.text }
func (n *BasicNode) ChildCount() int { return len(n.children) }

func (n *BasicNode) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// BasicTree wraps a root node.
type BasicTree struct {
	root Node
}

func NewBasicTree(root Node) *BasicTree {
	return &BasicTree{root: root}
}

func (t *BasicTree) Root() Node {
	return t.root
}

// StaticProvider serves trees that were stored ahead of time.
type StaticProvider struct {
	trees sync.Map // map[string]Tree
}

var _ Provider = (*StaticProvider)(nil)

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (p *StaticProvider) Set(uri string, tree Tree) {
	p.trees.Store(uri, tree)
}

func (p *StaticProvider) Delete(uri string) {
	p.trees.Delete(uri)
}

func (p *StaticProvider) Tree(_ context.Context, uri string) (Tree, bool) {
	v, ok := p.trees.Load(uri)
	if !ok {
		return nil, false
	}
	return v.(Tree), true
}
