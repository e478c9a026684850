package exactsrc

import (
	"fmt"
	"strings"
)

// Tree is a parsed fragment. Close releases whatever the parser holds for it.
type Tree interface {
	Close()
}

// Parser parses standalone source fragments. A fragment that does not parse
// yields an error wrapping ErrSyntax.
type Parser interface {
	Parse(text string) (Tree, error)
}

// ContextParser is a Parser that can take the original nodes into account,
// for fragments whose grammar depends on where they sit (class members, file
// level items). The Oracle prefers ParseIn when a parser provides it.
type ContextParser interface {
	Parser
	ParseIn(text string, nodes []Node) (Tree, error)
}

// Printer renders trees and nodes in a normalized form used only for
// structural comparison.
type Printer interface {
	CanonicalTree(t Tree) (string, error)
	CanonicalNodes(nodes []Node) (string, error)
}

// Oracle verifies candidates by round-tripping them through a parser and
// comparing canonical forms.
type Oracle struct {
	parser  Parser
	printer Printer
}

func NewOracle(parser Parser, printer Printer) *Oracle {
	return &Oracle{
		parser:  parser,
		printer: printer,
	}
}

// Verify re-parses c and compares its canonical form with that of nodes. Every
// failure is an *ExtractionVerificationError carrying c.Text.
func (o *Oracle) Verify(c Candidate, nodes ...Node) (VerifiedSpan, error) {
	Run(nodes).check()

	tree, err := o.parse(c.Text, nodes)
	if err != nil {
		return VerifiedSpan{}, &ExtractionVerificationError{Text: c.Text, Cause: err}
	}
	defer tree.Close()

	got, err := o.printer.CanonicalTree(tree)
	if err != nil {
		return VerifiedSpan{}, &ExtractionVerificationError{Text: c.Text, Cause: fmt.Errorf("canonicalize candidate: %w", err)}
	}
	want, err := o.printer.CanonicalNodes(nodes)
	if err != nil {
		return VerifiedSpan{}, &ExtractionVerificationError{Text: c.Text, Cause: fmt.Errorf("canonicalize original: %w", err)}
	}

	got, want = strings.TrimSpace(got), strings.TrimSpace(want)
	if got != want {
		return VerifiedSpan{}, &ExtractionVerificationError{
			Text:  c.Text,
			Want:  want,
			Got:   got,
			Cause: ErrMismatch,
		}
	}
	return VerifiedSpan{Text: c.Text}, nil
}

func (o *Oracle) parse(text string, nodes []Node) (Tree, error) {
	if cp, ok := o.parser.(ContextParser); ok {
		return cp.ParseIn(text, nodes)
	}
	return o.parser.Parse(text)
}
