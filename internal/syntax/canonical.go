package syntax

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/exactsrc/internal/exactsrc"
)

// treeNode is satisfied by *Node and by anything embedding it.
type treeNode interface {
	exactsrc.Node
	sitterNode() *sitter.Node
	source() (*Grammar, []byte)
}

// CanonicalTree prints a fragment returned by Parse. It implements
// exactsrc.Printer.
func (g *Grammar) CanonicalTree(t exactsrc.Tree) (string, error) {
	f, ok := t.(*fragment)
	if !ok {
		return "", fmt.Errorf("%s printer: foreign tree %T", g.Name, t)
	}
	return g.canonicalChildren(f.body, f.src), nil
}

// CanonicalNodes prints a run of file nodes, one per line. It implements
// exactsrc.Printer.
func (g *Grammar) CanonicalNodes(nodes []exactsrc.Node) (string, error) {
	var parts []string
	for _, n := range nodes {
		tn, ok := n.(treeNode)
		if !ok {
			return "", fmt.Errorf("%s printer: %T has no syntax tree", g.Name, n)
		}
		owner, src := tn.source()
		if owner != g {
			return "", fmt.Errorf("%s printer: node belongs to %s", g.Name, owner.Name)
		}
		if s := g.canonical(tn.sitterNode(), src); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// canonical renders n as an S-expression of kinds and token text. Extras and
// ignored kinds vanish, transparent kinds are replaced by their contents.
func (g *Grammar) canonical(n *sitter.Node, src []byte) string {
	if g.transparent[n.Kind()] {
		return g.canonicalChildren(n, src)
	}
	if n.ChildCount() == 0 {
		text := strconv.Quote(n.Utf8Text(src))
		if !n.IsNamed() {
			return text
		}
		return "(" + n.Kind() + " " + text + ")"
	}

	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(n.Kind())
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if g.skip(child) {
			continue
		}
		if s := g.canonical(child, src); s != "" {
			sb.WriteString(" ")
			sb.WriteString(s)
		}
	}
	sb.WriteString(")")
	return sb.String()
}

func (g *Grammar) canonicalChildren(n *sitter.Node, src []byte) string {
	var parts []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if g.skip(child) {
			continue
		}
		if s := g.canonical(child, src); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func (g *Grammar) skip(n *sitter.Node) bool {
	return n == nil || n.IsExtra() || g.ignored[n.Kind()]
}
