package exactsrc

import "strings"

// DefaultEndColumnSlack is how many bytes past the last node's end column are
// kept on the final line of a multi-line span.
const DefaultEndColumnSlack = 1

// Extractor computes best-effort source text for a node run from its position
// metadata. The zero value is not useful; use NewExtractor.
type Extractor struct {
	slack        int
	cutFirstLine bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithEndColumnSlack sets how many bytes past the end column survive on the last
// line of a multi-line span. The default keeps one extra byte.
func WithEndColumnSlack(n int) Option {
	return func(e *Extractor) {
		e.slack = n
	}
}

// WithFirstLineCut drops the bytes before the start column on the first line
// of a multi-line span. By default the first line is kept whole and only loses
// a leading run of start-column spaces, like every other line.
func WithFirstLineCut() Option {
	return func(e *Extractor) {
		e.cutFirstLine = true
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{slack: DefaultEndColumnSlack}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract slices the text bounded by the first node's start and the last node's
// end out of buf. It never fails; whether the text is right is for an Oracle
// to decide. Expressions come back wrapped in parentheses.
func (e *Extractor) Extract(buf *Buffer, nodes ...Node) Candidate {
	run := Run(nodes)
	run.check()

	first, last := run.First(), run.Last()
	startLine := first.Start().Line - 1
	endLine := last.End().Line
	startCol := first.Start().Column
	endCol := last.End().Column

	lines := buf.slice(startLine, endLine)

	var text string
	switch {
	case len(lines) > 1:
		chunk := make([]string, len(lines))
		copy(chunk, lines)
		chunk[len(chunk)-1] = substr(chunk[len(chunk)-1], 0, endCol+e.slack)
		if e.cutFirstLine {
			chunk[0] = substr(chunk[0], startCol, len(chunk[0]))
		}
		// Literal prefix removal, not column-aware dedenting: a line indented
		// with tabs or by less than startCol keeps its leading whitespace.
		indent := strings.Repeat(" ", startCol)
		for i, line := range chunk {
			chunk[i] = strings.TrimPrefix(line, indent)
		}
		text = strings.Join(chunk, "\n")
	case len(lines) == 1:
		text = substr(lines[0], startCol, endCol)
	}

	wrapped := run.Category() == CategoryExpression
	if wrapped {
		text = "(" + text + ")"
	}
	return Candidate{Text: text, Wrapped: wrapped}
}

// Extract runs the default Extractor.
func Extract(buf *Buffer, nodes ...Node) Candidate {
	return NewExtractor().Extract(buf, nodes...)
}
