// Package syntax adapts tree-sitter grammars to the exactsrc collaborators:
// a fragment parser, a canonical printer, and nodes carrying span metadata.
package syntax

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/exactsrc/internal/exactsrc"
)

// ErrUnsupported is returned when no grammar matches a name or file.
var ErrUnsupported = errors.New("unsupported language")

// harness embeds a fragment in code that makes it valid at top level. Fragments
// in languages that accept bare statements need no harness.
type harness struct {
	prefix string
	suffix string
	// terminator follows the fragment so a bare expression becomes a
	// statement. The empty statement it leaves after real statements is ignored.
	terminator string
	// body is the kind of the first node, in pre-order, whose children are the
	// fragment. Empty means the root.
	body string
}

func (h harness) wrap(text string) []byte {
	return []byte(h.prefix + text + h.terminator + h.suffix)
}

// Grammar is one tree-sitter language plus the rules exactsrc needs on top of
// it. It implements exactsrc.Parser and exactsrc.Printer and is safe for
// concurrent use.
type Grammar struct {
	Name       string
	Extensions []string

	language *sitter.Language
	harness  harness
	// contexts overrides harness for nodes whose parent has the keyed kind,
	// such as class members or file level items.
	contexts map[string]harness

	// transparent kinds canonicalize as their named children, so that
	// wrapping parentheses and statement wrappers do not affect equality.
	transparent map[string]bool
	// ignored kinds are dropped from canonical forms entirely.
	ignored map[string]bool

	statements         map[string]bool
	statementSuffixes  []string
	expressions        map[string]bool
	expressionSuffixes []string
}

// Categorize classifies a node kind for extraction.
func (g *Grammar) Categorize(kind string) exactsrc.Category {
	if g.statements[kind] || hasAnySuffix(kind, g.statementSuffixes) {
		return exactsrc.CategoryStatement
	}
	if g.expressions[kind] || hasAnySuffix(kind, g.expressionSuffixes) {
		return exactsrc.CategoryExpression
	}
	return exactsrc.CategoryOther
}

// Oracle returns an exactsrc.Oracle that parses and prints with g.
func (g *Grammar) Oracle() *exactsrc.Oracle {
	return exactsrc.NewOracle(g, g)
}

func (g *Grammar) String() string { return g.Name }

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// Grammars returns every supported grammar, sorted by name.
func Grammars() []*Grammar {
	out := append([]*Grammar(nil), grammars...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the names of every supported grammar, sorted.
func Names() []string {
	var names []string
	for _, g := range Grammars() {
		names = append(names, g.Name)
	}
	return names
}

// Lookup finds a grammar by name, case-insensitively.
func Lookup(name string) (*Grammar, error) {
	for _, g := range grammars {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, name, strings.Join(Names(), ", "))
}

// ForPath picks a grammar from a file extension.
func ForPath(path string) (*Grammar, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, g := range grammars {
		for _, e := range g.Extensions {
			if e == ext {
				return g, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no grammar for %q", ErrUnsupported, path)
}
