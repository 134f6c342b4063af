package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, w *Watcher) (<-chan struct{}, func()) {
	t.Helper()
	calls := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()
	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	return calls, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestRunDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrk.txt")
	w := New(dir, []string{path}, zaptest.NewLogger(t))
	w.Debounce = 50 * time.Millisecond
	calls, stop := startWatcher(t, w)
	defer stop()

	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called after write")
	}
	select {
	case <-calls:
		t.Fatal("burst of writes should trigger one callback")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, []string{filepath.Join(dir, "wrk.txt")}, zaptest.NewLogger(t))
	w.Debounce = 20 * time.Millisecond
	calls, stop := startWatcher(t, w)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	select {
	case <-calls:
		t.Fatal("unwatched file triggered callback")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRunWatchesArtifactDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "runs")
	require.NoError(t, os.Mkdir(sub, 0o755))
	elsewhere := t.TempDir()

	w := New(dir, []string{
		filepath.Join(sub, "block1kb.txt"),
		filepath.Join(elsewhere, "block1kbop.csv"),
	}, zaptest.NewLogger(t))
	w.Debounce = 20 * time.Millisecond
	calls, stop := startWatcher(t, w)
	defer stop()

	// same base name, wrong directory
	require.NoError(t, os.WriteFile(filepath.Join(dir, "block1kb.txt"), []byte("x"), 0o644))
	select {
	case <-calls:
		t.Fatal("file outside the artifact paths triggered callback")
	case <-time.After(300 * time.Millisecond):
	}

	for _, path := range []string{filepath.Join(sub, "block1kb.txt"), filepath.Join(elsewhere, "block1kbop.csv")} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("write to %s not noticed", path)
		}
	}
}

func TestTargetsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.csv")
	w := New("ignored", []string{a, b, a}, nil)

	dirs, files := w.targets()
	assert.Equal(t, []string{dir}, dirs)
	assert.Equal(t, []string{a, b}, files)
}

func TestRunMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), nil, nil)
	err := w.Run(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}
