package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/exactsrc/internal/exactsrc"
)

// Node is a tree-sitter node of a File. It implements exactsrc.Node.
type Node struct {
	node *sitter.Node
	file *File
}

func (f *File) wrap(n *sitter.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{node: n, file: f}
}

func (n *Node) Kind() string { return n.node.Kind() }

// Text returns the node's source as recorded by the parser, which may differ
// from what exactsrc recovers for it.
func (n *Node) Text() string { return n.node.Utf8Text(n.file.src) }

func (n *Node) Start() exactsrc.Position { return position(n.node.StartPosition()) }

func (n *Node) End() exactsrc.Position { return position(n.node.EndPosition()) }

func (n *Node) Category() exactsrc.Category { return n.file.grammar.Categorize(n.Kind()) }

func (n *Node) Parent() *Node { return n.file.wrap(n.node.Parent()) }

// Children returns the named children, without comments and other extras.
func (n *Node) Children() []*Node {
	var children []*Node
	for i := uint(0); i < n.node.NamedChildCount(); i++ {
		child := n.node.NamedChild(i)
		if child == nil || child.IsExtra() {
			continue
		}
		children = append(children, n.file.wrap(child))
	}
	return children
}

// sitterNode and source let embedding types, such as nodes with adjusted
// positions, still reach the underlying tree.
func (n *Node) sitterNode() *sitter.Node { return n.node }

func (n *Node) source() (*Grammar, []byte) { return n.file.grammar, n.file.src }

func position(p sitter.Point) exactsrc.Position {
	return exactsrc.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

// Nodes converts a run of *Node to exactsrc nodes.
func Nodes(run []*Node) []exactsrc.Node {
	out := make([]exactsrc.Node, len(run))
	for i, n := range run {
		out[i] = n
	}
	return out
}
