package syntax

import (
	"fmt"

	"github.com/gobwas/glob"
)

// KindFilter matches node kinds against glob patterns such as "*_statement".
type KindFilter struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// NewKindFilter compiles patterns. An empty list matches nothing.
func NewKindFilter(patterns []string) (*KindFilter, error) {
	kf := &KindFilter{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid kind pattern %q: %w", pattern, err)
		}
		kf.patterns = append(kf.patterns, compiledPattern{pattern: pattern, glob: g})
	}
	return kf, nil
}

func (kf *KindFilter) Match(kind string) bool {
	for _, p := range kf.patterns {
		if p.glob.Match(kind) {
			return true
		}
	}
	return false
}

func (kf *KindFilter) Patterns() []string {
	out := make([]string, len(kf.patterns))
	for i, p := range kf.patterns {
		out[i] = p.pattern
	}
	return out
}
