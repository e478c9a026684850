package syntax

import (
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/exactsrc/internal/exactsrc"
)

// fragment is a parsed candidate. body holds the fragment's own nodes as
// children, below any harness.
type fragment struct {
	tree *sitter.Tree
	body *sitter.Node
	src  []byte
}

func (f *fragment) Close() { f.tree.Close() }

// parse runs tree-sitter over src with a fresh parser; parsers are not safe
// for concurrent use but languages and trees are.
func (g *Grammar) parse(src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(g.language); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", g.Name, err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", g.Name)
	}
	return tree, nil
}

// Parse parses text as a standalone fragment. It implements exactsrc.Parser.
func (g *Grammar) Parse(text string) (exactsrc.Tree, error) {
	return g.parseFragment(g.harness, text)
}

// ParseIn parses text in the harness that fits where nodes sit in their file.
// It implements exactsrc.ContextParser.
func (g *Grammar) ParseIn(text string, nodes []exactsrc.Node) (exactsrc.Tree, error) {
	return g.parseFragment(g.harnessFor(nodes), text)
}

func (g *Grammar) harnessFor(nodes []exactsrc.Node) harness {
	if len(nodes) == 0 {
		return g.harness
	}
	tn, ok := nodes[0].(treeNode)
	if !ok {
		return g.harness
	}
	if parent := tn.sitterNode().Parent(); parent != nil {
		if h, ok := g.contexts[parent.Kind()]; ok {
			return h
		}
	}
	return g.harness
}

func (g *Grammar) parseFragment(h harness, text string) (exactsrc.Tree, error) {
	src := h.wrap(text)
	tree, err := g.parse(src)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("%w: %s fragment %q", exactsrc.ErrSyntax, g.Name, text)
	}

	body := root
	if h.body != "" {
		body = findFirst(root, h.body)
		if body == nil {
			tree.Close()
			return nil, fmt.Errorf("%w: %s fragment %q escapes its harness", exactsrc.ErrSyntax, g.Name, text)
		}
	}
	return &fragment{tree: tree, body: body, src: src}, nil
}

// findFirst returns the first node of the given kind in pre-order.
func findFirst(node *sitter.Node, kind string) *sitter.Node {
	if node.Kind() == kind {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := findFirst(node.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

var errStop = errors.New("stop walk")

// File is one parsed compilation unit. Nodes obtained from it are valid until
// Close.
type File struct {
	Path string

	grammar *Grammar
	src     []byte
	buf     *exactsrc.Buffer
	tree    *sitter.Tree
}

// ParseFile parses a whole source file. Syntax errors do not fail the parse;
// see HasErrors.
func ParseFile(g *Grammar, path string, src []byte) (*File, error) {
	tree, err := g.parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{
		Path:    path,
		grammar: g,
		src:     src,
		buf:     exactsrc.NewBuffer(string(src)),
		tree:    tree,
	}, nil
}

func (f *File) Close() { f.tree.Close() }

func (f *File) Grammar() *Grammar { return f.grammar }

func (f *File) Buffer() *exactsrc.Buffer { return f.buf }

func (f *File) HasErrors() bool { return f.tree.RootNode().HasError() }

func (f *File) Root() *Node { return f.wrap(f.tree.RootNode()) }

// Statements returns the top-level statements of the file.
func (f *File) Statements() []*Node { return f.Root().Children() }

// ExactSource returns the exact_src hook for this file.
func (f *File) ExactSource(opts ...exactsrc.Option) exactsrc.Func {
	return exactsrc.Bind(f.buf, f.grammar.Oracle(), opts...)
}

// NodeAt returns the outermost named node spanning exactly [start, end).
func (f *File) NodeAt(start, end exactsrc.Position) (*Node, bool) {
	var found *Node
	_, err := Walk(f.Root(), func(n *Node) error {
		s, e := n.Start(), n.End()
		if s == start && e == end {
			found = n
			return errStop
		}
		if end.Before(s) || e.Before(start) {
			return SkipChildren
		}
		return nil
	})
	return found, errors.Is(err, errStop)
}

// RunAt returns the nodes whose combined span is exactly [start, end): a single
// node, or else the shortest run of siblings that starts at start and ends at
// end.
func (f *File) RunAt(start, end exactsrc.Position) ([]*Node, bool) {
	if n, ok := f.NodeAt(start, end); ok {
		return []*Node{n}, true
	}

	var run []*Node
	_, err := Walk(f.Root(), func(n *Node) error {
		s, e := n.Start(), n.End()
		if start.Before(s) || e.Before(end) {
			return SkipChildren
		}
		children := n.Children()
		for i, child := range children {
			if child.Start() != start {
				continue
			}
			for j := i; j < len(children); j++ {
				if children[j].End() == end {
					run = children[i : j+1]
					return errStop
				}
			}
		}
		return nil
	})
	return run, errors.Is(err, errStop)
}
