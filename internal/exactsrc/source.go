// Package exactsrc recovers the exact source text of a syntax-tree node, or of
// a run of adjacent nodes, and verifies it by re-parsing.
//
// Extraction works purely from position metadata and always produces some
// text. Verification parses that text again and compares canonical printed
// forms, because positions on rewritten or synthesized nodes cannot be
// trusted. A failed verification still hands back the extracted text inside
// an *ExtractionVerificationError.
package exactsrc

// Func is the exact_src hook: verified source for a node run of one Buffer.
type Func func(nodes ...Node) (string, error)

// Bind returns the exact_src hook for buf. The extractor options apply to
// every call.
func Bind(buf *Buffer, oracle *Oracle, opts ...Option) Func {
	extractor := NewExtractor(opts...)
	return func(nodes ...Node) (string, error) {
		span, err := oracle.Verify(extractor.Extract(buf, nodes...), nodes...)
		if err != nil {
			return "", err
		}
		return span.Text, nil
	}
}

// Source extracts and verifies nodes in one call.
func Source(buf *Buffer, oracle *Oracle, nodes ...Node) (string, error) {
	return Bind(buf, oracle)(nodes...)
}
