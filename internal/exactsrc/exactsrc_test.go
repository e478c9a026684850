package exactsrc

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for exactsrc:
// - Single-line spans are the literal [startCol, endCol) slice
// - Expressions are wrapped in parentheses, statements never are
// - Multi-line spans keep one byte past the end column by default
// - WithEndColumnSlack(0) truncates exactly at the end column
// - WithFirstLineCut drops code before the start column on the first line
// - Dedent removes a literal run of startCol spaces only
// - Line ranges past the buffer are clamped
// - Runs: first/last bounds, never wrapped, preconditions panic
// - Verify succeeds on equal canonical forms and returns the candidate text
// - Verify fails with the payload on syntax errors and on mismatches
// - Printer errors surface as verification failures
// - Parsers that take node context get the original nodes
// - Bind is deterministic across calls

// fakeNode carries the source text a printer would see for the real node.
type fakeNode struct {
	SpanNode
	src string
}

type fakeTree struct {
	text   string
	closed *int
}

func (t fakeTree) Close() { *t.closed++ }

// fakeGrammar accepts any text with balanced parentheses and canonicalizes by
// dropping whitespace and redundant outer parentheses.
type fakeGrammar struct {
	closed int
}

func (g *fakeGrammar) Parse(text string) (Tree, error) {
	depth := 0
	for _, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return nil, fmt.Errorf("%w: unexpected )", ErrSyntax)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed (", ErrSyntax)
	}
	return fakeTree{text: text, closed: &g.closed}, nil
}

func (g *fakeGrammar) CanonicalTree(t Tree) (string, error) {
	return canon(t.(fakeTree).text), nil
}

func (g *fakeGrammar) CanonicalNodes(nodes []Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		fn, ok := n.(fakeNode)
		if !ok {
			return "", fmt.Errorf("foreign node %T", n)
		}
		sb.WriteString(canon(fn.src))
	}
	return sb.String(), nil
}

func canon(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	for len(s) >= 2 && s[0] == '(' && closingParen(s) == len(s)-1 {
		s = s[1 : len(s)-1]
	}
	return s
}

func closingParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func span(l1, c1, l2, c2 int, cat Category) SpanNode {
	return SpanNode{From: Position{l1, c1}, To: Position{l2, c2}, Kind: cat}
}

func TestExtract_SingleLine(t *testing.T) {
	t.Parallel()

	buf := NewBuffer("y = f(a, b)\n")

	tests := []struct {
		name    string
		node    Node
		want    string
		wrapped bool
	}{
		{"expression wrapped", span(1, 4, 1, 11, CategoryExpression), "(f(a, b))", true},
		{"statement bare", span(1, 0, 1, 11, CategoryStatement), "y = f(a, b)", false},
		{"other bare", span(1, 6, 1, 10, CategoryOther), "a, b", false},
		{"end past line clamps", span(1, 4, 1, 40, CategoryOther), "f(a, b)", false},
		{"start past end is empty", span(1, 30, 1, 40, CategoryOther), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(buf, tt.node)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.wrapped, got.Wrapped)
		})
	}
}

func TestExtract_MultiLine(t *testing.T) {
	t.Parallel()

	src := "def f():\n    a = g(1,\n          2)\n    return a\n"
	buf := NewBuffer(src)

	// g(1,\n          2) starts mid-line: the first line is kept whole unless cut.
	call := span(2, 8, 3, 12, CategoryExpression)
	assert.Equal(t, Candidate{Text: "(    a = g(1,\n  2))", Wrapped: true}, Extract(buf, call))
	assert.Equal(t, "(g(1,\n  2))", NewExtractor(WithFirstLineCut()).Extract(buf, call).Text)

	// The two body statements, ending at end of line so the slack is harmless.
	body := Run{span(2, 4, 3, 12, CategoryStatement), span(4, 4, 4, 12, CategoryStatement)}
	got := Extract(buf, body...)
	assert.Equal(t, "a = g(1,\n      2)\nreturn a", got.Text)
	assert.False(t, got.Wrapped)
}

func TestExtract_Options(t *testing.T) {
	t.Parallel()

	buf := NewBuffer("x = (1 +\n  2)\nprint(x)\n")
	node := span(1, 5, 2, 3, CategoryExpression)

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"defaults", nil, "(x = (1 +\n  2))"},
		{"no slack", []Option{WithEndColumnSlack(0)}, "(x = (1 +\n  2)"},
		{"first line cut", []Option{WithFirstLineCut()}, "(1 +\n  2))"},
		{"both", []Option{WithEndColumnSlack(0), WithFirstLineCut()}, "(1 +\n  2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewExtractor(tt.opts...).Extract(buf, node).Text)
		})
	}
}

func TestExtract_LiteralDedent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		node Node
		want string
	}{
		{
			name: "spaces stripped",
			src:  "    a\n    b\n",
			node: span(1, 4, 2, 5, CategoryStatement),
			want: "a\nb",
		},
		{
			name: "tabs untouched",
			src:  "\ta\n\tb\n",
			node: span(1, 1, 2, 2, CategoryStatement),
			want: "\ta\n\tb",
		},
		{
			name: "shallower line untouched",
			src:  "    a\n  b\n",
			node: span(1, 4, 2, 3, CategoryStatement),
			want: "a\n  b",
		},
		{
			name: "only the leading run is removed",
			src:  "  a  b\n  c  d\n",
			node: span(1, 2, 2, 6, CategoryStatement),
			want: "a  b\nc  d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(NewBuffer(tt.src), tt.node).Text)
		})
	}
}

func TestExtract_ClampsLines(t *testing.T) {
	t.Parallel()

	buf := NewBuffer("a = 1\nb = 2")
	got := Extract(buf, span(2, 0, 9, 5, CategoryStatement))
	assert.Equal(t, "b = 2", got.Text)

	got = Extract(buf, span(7, 0, 9, 5, CategoryExpression))
	assert.Equal(t, "()", got.Text)
}

func TestRun_Category(t *testing.T) {
	t.Parallel()

	expr := span(1, 0, 1, 1, CategoryExpression)
	stmt := span(1, 0, 1, 1, CategoryStatement)

	assert.Equal(t, CategoryExpression, Run{expr}.Category())
	assert.Equal(t, CategoryStatement, Run{stmt, stmt}.Category())
	assert.Equal(t, CategoryOther, Run{expr, expr}.Category())
	assert.Equal(t, CategoryOther, Run{stmt, expr}.Category())
}

func TestExtract_PreconditionsPanic(t *testing.T) {
	t.Parallel()

	buf := NewBuffer("a\nb\n")

	assert.Panics(t, func() { Extract(buf) })
	assert.Panics(t, func() { Extract(buf, span(2, 0, 1, 0, CategoryOther)) })
	assert.Panics(t, func() {
		Extract(buf, span(2, 0, 2, 1, CategoryStatement), span(1, 0, 1, 1, CategoryStatement))
	})
}

func TestOracle_Verify(t *testing.T) {
	t.Parallel()

	g := &fakeGrammar{}
	oracle := NewOracle(g, g)
	node := fakeNode{SpanNode: span(1, 4, 1, 11, CategoryExpression), src: "f(a, b)"}

	t.Run("match returns candidate text", func(t *testing.T) {
		got, err := oracle.Verify(Candidate{Text: "(f(a, b))", Wrapped: true}, node)
		require.NoError(t, err)
		assert.Equal(t, VerifiedSpan{Text: "(f(a, b))"}, got)
	})

	t.Run("syntax error carries payload", func(t *testing.T) {
		_, err := oracle.Verify(Candidate{Text: "(f(a, b)", Wrapped: true}, node)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVerification)
		assert.ErrorIs(t, err, ErrSyntax)

		text, ok := PayloadOf(err)
		require.True(t, ok)
		assert.Equal(t, "(f(a, b)", text)
	})

	t.Run("mismatch carries both canonical forms", func(t *testing.T) {
		_, err := oracle.Verify(Candidate{Text: "(f(a))", Wrapped: true}, node)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMismatch)

		var verr *ExtractionVerificationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "(f(a))", verr.Text)
		assert.Equal(t, "f(a,b)", verr.Want)
		assert.Equal(t, "f(a)", verr.Got)
	})

	t.Run("printer error is a verification failure", func(t *testing.T) {
		_, err := oracle.Verify(Candidate{Text: "x"}, span(1, 0, 1, 1, CategoryOther))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVerification)
		text, ok := PayloadOf(err)
		require.True(t, ok)
		assert.Equal(t, "x", text)
	})

	assert.Equal(t, 3, g.closed, "every parsed tree is closed")
}

// contextGrammar records the nodes handed to ParseIn.
type contextGrammar struct {
	fakeGrammar
	seen []Node
}

func (g *contextGrammar) ParseIn(text string, nodes []Node) (Tree, error) {
	g.seen = nodes
	return g.Parse(text)
}

func TestOracle_PrefersContextParser(t *testing.T) {
	t.Parallel()

	g := &contextGrammar{}
	node := fakeNode{SpanNode: span(1, 0, 1, 4, CategoryExpression), src: "f(a)"}

	got, err := NewOracle(g, g).Verify(Candidate{Text: "(f(a))", Wrapped: true}, node)
	require.NoError(t, err)
	assert.Equal(t, "(f(a))", got.Text)
	assert.Equal(t, []Node{node}, g.seen)
}

func TestBind_Deterministic(t *testing.T) {
	t.Parallel()

	g := &fakeGrammar{}
	buf := NewBuffer("y = foo(a)\n")
	exactSrc := Bind(buf, NewOracle(g, g))

	good := fakeNode{SpanNode: span(1, 4, 1, 10, CategoryExpression), src: "foo(a)"}
	short := fakeNode{SpanNode: span(1, 4, 1, 9, CategoryExpression), src: "foo(a)"}

	for i := 0; i < 3; i++ {
		text, err := exactSrc(good)
		require.NoError(t, err)
		assert.Equal(t, "(foo(a))", text)

		_, err = exactSrc(short)
		require.ErrorIs(t, err, ErrVerification)
		payload, _ := PayloadOf(err)
		assert.Equal(t, Extract(buf, short).Text, payload)
		assert.Equal(t, "(foo(a)", payload)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, c := range []Category{CategoryOther, CategoryExpression, CategoryStatement} {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("block")
	assert.Error(t, err)
}

func TestPayloadOf_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("macro failed: %w", &ExtractionVerificationError{Text: "(x", Cause: ErrSyntax})
	text, ok := PayloadOf(err)
	assert.True(t, ok)
	assert.Equal(t, "(x", text)

	_, ok = PayloadOf(errors.New("other"))
	assert.False(t, ok)
}
