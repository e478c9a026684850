package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mvp-joe/exactsrc/internal/discovery"
)

// Test Plan for watch:
// - New fails for a missing root
// - Changes are delivered in sorted batches after the debounce
// - The filter drops unrelated files
// - Files in directories created after start are reported
// - Run returns when the context is cancelled
// - Ignored directories are not watched and changes under them are dropped,
//   including directories created after start
// - A file root reports only that file, not its siblings or subdirectories

const testDebounce = 50 * time.Millisecond

func pyOnly(path string) bool { return strings.HasSuffix(path, ".py") }

func startWatcher(t *testing.T, root string) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()

	w, err := New([]string{root}, pyOnly, WithDebounce(testDebounce), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return run(t, w)
}

func run(t *testing.T, w *Watcher) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { batches <- paths })
	}()
	t.Cleanup(cancel)
	return batches, cancel, done
}

// collectUntil gathers delivered paths until want arrives, then keeps
// listening for a few debounce periods to catch stragglers.
func collectUntil(t *testing.T, batches <-chan []string, want string) map[string]bool {
	t.Helper()

	seen := make(map[string]bool)
	deadline := time.After(5 * time.Second)
	for !seen[want] {
		select {
		case got := <-batches:
			for _, p := range got {
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("%s not delivered", want)
		}
	}
	quiet := time.After(4 * testDebounce)
	for {
		select {
		case got := <-batches:
			for _, p := range got {
				seen[p] = true
			}
		case <-quiet:
			return seen
		}
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
}

func TestNew_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, nil)
	assert.Error(t, err)
}

func TestRun_BatchesChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	batches, _, _ := startWatcher(t, root)

	b := filepath.Join(root, "b.py")
	a := filepath.Join(root, "a.py")
	write(t, b)
	write(t, a)
	write(t, b)
	write(t, filepath.Join(root, "notes.txt"))

	seen := make(map[string]int)
	deadline := time.After(5 * time.Second)
	for seen[a] == 0 || seen[b] == 0 {
		select {
		case got := <-batches:
			assert.IsIncreasing(t, got)
			for _, p := range got {
				seen[p]++
			}
		case <-deadline:
			t.Fatal("no batch delivered")
		}
	}
	assert.NotContains(t, seen, filepath.Join(root, "notes.txt"))
}

func TestRun_NewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	batches, _, _ := startWatcher(t, root)

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(testDebounce)

	path := filepath.Join(sub, "mod.py")
	write(t, path)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-batches:
			for _, p := range got {
				if p == path {
					return
				}
			}
		case <-deadline:
			t.Fatal("change in new directory not delivered")
		}
	}
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()

	_, cancel, done := startWatcher(t, t.TempDir())
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRun_IgnoredDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	vendor := filepath.Join(root, "vendor")
	lib := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(vendor, 0755))
	require.NoError(t, os.Mkdir(lib, 0755))

	fd, err := discovery.NewFileDiscovery([]string{"**/vendor/**"})
	require.NoError(t, err)
	w, err := New([]string{root}, pyOnly,
		WithIgnore(fd.Ignored),
		WithDebounce(testDebounce),
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.NotContains(t, w.watcher.WatchList(), vendor)
	assert.Contains(t, w.watcher.WatchList(), lib)
	batches, _, _ := run(t, w)

	nested := filepath.Join(lib, "vendor")
	require.NoError(t, os.Mkdir(nested, 0755))
	time.Sleep(testDebounce)

	write(t, filepath.Join(vendor, "dep.py"))
	write(t, filepath.Join(nested, "dep.py"))
	kept := filepath.Join(root, "main.py")
	write(t, kept)

	seen := collectUntil(t, batches, kept)
	assert.NotContains(t, seen, filepath.Join(vendor, "dep.py"))
	assert.NotContains(t, seen, filepath.Join(nested, "dep.py"))
	assert.NotContains(t, w.watcher.WatchList(), nested)
}

func TestRun_FileRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	target := filepath.Join(dir, "target.txt")
	sibling := filepath.Join(dir, "sibling.py")
	write(t, target)

	w, err := New([]string{target}, pyOnly, WithDebounce(testDebounce), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.NotContains(t, w.watcher.WatchList(), sub)
	batches, _, _ := run(t, w)

	write(t, sibling)
	write(t, filepath.Join(sub, "mod.py"))
	write(t, target)

	seen := collectUntil(t, batches, target)
	assert.Equal(t, map[string]bool{target: true}, seen)
}
