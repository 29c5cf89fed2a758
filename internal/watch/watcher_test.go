package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, w *Watcher, kind ChangeKind) Change {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-w.Changes:
			if c.Kind == kind {
				return c
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s change", kind)
			return Change{}
		}
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "novel.yw7")
	require.NoError(t, os.WriteFile(file, []byte("<YWRITER7/>"), 0o644))

	w, err := NewWatcher(file, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("<YWRITER7></YWRITER7>"), 0o644))

	c := waitFor(t, w, ChangeModified)
	assert.Equal(t, w.File, c.File)

	require.NoError(t, os.Remove(file))
	c = waitFor(t, w, ChangeRemoved)
	assert.Equal(t, w.File, c.File)
}

func TestNewWatcherDefaults(t *testing.T) {
	w, err := NewWatcher("novel.yw7", 0)
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, DefaultDebounce, w.Debounce)
	assert.True(t, filepath.IsAbs(w.File))
}

func TestWatcherStartMissingDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "novel.yw7"), 0)
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Start())
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "modified", ChangeModified.String())
	assert.Equal(t, "removed", ChangeRemoved.String())
}
