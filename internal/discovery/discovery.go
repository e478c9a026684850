// Package discovery expands command-line paths into the source files exactsrc
// can parse.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/exactsrc/internal/syntax"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds source files under directories, skipping ignored paths.
type FileDiscovery struct {
	ignorePatterns []compiledPattern
}

// NewFileDiscovery compiles the ignore patterns. Patterns are matched against
// slash-separated paths relative to the directory being walked; a leading
// "**/" also matches at that directory's top level.
func NewFileDiscovery(ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{}
	for _, pattern := range ignorePatterns {
		variants := []string{pattern}
		if trimmed := strings.TrimPrefix(pattern, "**/"); trimmed != pattern {
			variants = append(variants, trimmed)
		}
		for _, p := range variants {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
			}
			fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: p, glob: g})
		}
	}
	return fd, nil
}

// Expand resolves paths into a sorted, de-duplicated list of files. Files named
// directly are always kept; directories contribute every file with a known
// grammar extension that is not ignored.
func (fd *FileDiscovery) Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		found, err := fd.walk(path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (fd *FileDiscovery) walk(rootDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if fd.Ignored(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if fd.Ignored(relPath, false) {
			return nil
		}
		if _, err := syntax.ForPath(path); err != nil {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// Ignored reports whether relPath, slash-separated and relative to a walked
// directory, is skipped. A directory is skipped when "relPath/**" matches.
func (fd *FileDiscovery) Ignored(relPath string, dir bool) bool {
	if dir {
		// "vendor" should match "vendor/**"
		return fd.shouldIgnore(relPath + "/**")
	}
	return fd.shouldIgnore(relPath)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	for _, cp := range fd.ignorePatterns {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	return false
}
