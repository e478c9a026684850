package exactsrc

import "strings"

// Buffer is the immutable source text of one compilation unit.
type Buffer struct {
	text  string
	lines []string
}

func NewBuffer(text string) *Buffer {
	return &Buffer{
		text:  text,
		lines: strings.Split(text, "\n"),
	}
}

func (b *Buffer) Text() string { return b.text }

// Lines returns a copy of the buffer's lines.
func (b *Buffer) Lines() []string {
	return append([]string(nil), b.lines...)
}

func (b *Buffer) NumLines() int { return len(b.lines) }

// Line returns the line at 0-based index i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// slice returns lines [start, end) clamped to the buffer.
func (b *Buffer) slice(start, end int) []string {
	start, end = clamp(start, end, len(b.lines))
	return b.lines[start:end]
}

// clamp bounds [start, end) to [0, n] and never lets end fall below start.
func clamp(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	return start, end
}

func substr(s string, start, end int) string {
	start, end = clamp(start, end, len(s))
	return s[start:end]
}
