package exactsrc

import (
	"fmt"
	"strings"
)

// Position is a location in a Buffer. Line is 1-based, Column is a 0-based byte
// offset into that line.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Category decides how a span is wrapped before it is re-parsed.
type Category int

const (
	CategoryOther Category = iota
	CategoryExpression
	CategoryStatement
)

func (c Category) String() string {
	switch c {
	case CategoryExpression:
		return "expression"
	case CategoryStatement:
		return "statement"
	default:
		return "other"
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expression", "expr":
		return CategoryExpression, nil
	case "statement", "stmt":
		return CategoryStatement, nil
	case "other", "":
		return CategoryOther, nil
	}
	return CategoryOther, fmt.Errorf("unknown category %q (valid: expression, statement, other)", s)
}

// Node is anything carrying span metadata: a syntax-tree node or a placeholder.
type Node interface {
	Start() Position
	End() Position
	Category() Category
}

// SpanNode is a placeholder Node with no tree behind it.
type SpanNode struct {
	From Position
	To   Position
	Kind Category
}

func (n SpanNode) Start() Position    { return n.From }
func (n SpanNode) End() Position      { return n.To }
func (n SpanNode) Category() Category { return n.Kind }

// Run is an ordered, non-empty list of adjacent nodes from one Buffer.
type Run []Node

func (r Run) First() Node { return r[0] }
func (r Run) Last() Node  { return r[len(r)-1] }

// Category is the category of a single node. Runs of several nodes are never
// expressions: they are statements when every element is one, other otherwise.
func (r Run) Category() Category {
	if len(r) == 1 {
		return r[0].Category()
	}
	for _, n := range r {
		if n.Category() != CategoryStatement {
			return CategoryOther
		}
	}
	return CategoryStatement
}

// check panics when r violates the run preconditions. These are caller bugs,
// not recoverable conditions.
func (r Run) check() {
	if len(r) == 0 {
		panic("exactsrc: empty node run")
	}
	for i, n := range r {
		if n.End().Before(n.Start()) {
			panic(fmt.Sprintf("exactsrc: node %d ends at %s before it starts at %s", i, n.End(), n.Start()))
		}
		if i > 0 && n.Start().Before(r[i-1].Start()) {
			panic(fmt.Sprintf("exactsrc: node %d at %s is out of order", i, n.Start()))
		}
	}
}

// Candidate is extracted text that has not been verified yet.
type Candidate struct {
	Text    string
	Wrapped bool
}

// VerifiedSpan is text whose canonical form matched the original node's.
type VerifiedSpan struct {
	Text string
}
