package assemble

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter() *Writer {
	return NewWriter(log.New(io.Discard))
}

func TestWriteOnlyWhenChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.rst")
	w := newTestWriter()

	require.NoError(t, w.Write(path, "first\n"))
	assert.Equal(t, 1, w.Attempted())
	assert.Equal(t, 1, w.Rewritten())

	// Byte-identical content is counted as attempted but not rewritten.
	require.NoError(t, w.Write(path, "first\n"))
	assert.Equal(t, 2, w.Attempted())
	assert.Equal(t, 1, w.Rewritten())

	info1, err := os.Stat(path)
	require.NoError(t, err)

	// Different content overwrites and increments.
	require.NoError(t, w.Write(path, "second\n"))
	assert.Equal(t, 2, w.Rewritten())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
	_ = info1
}

func TestCleanOrphans(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.rst")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	w := newTestWriter()
	kept := filepath.Join(dir, "kept.rst")
	require.NoError(t, w.Write(kept, "content"))

	// Unchanged files are still "produced" and must survive cleanup.
	unchanged := filepath.Join(dir, "unchanged.rst")
	require.NoError(t, os.WriteFile(unchanged, []byte("same"), 0o644))
	require.NoError(t, w.Write(unchanged, "same"))

	require.NoError(t, w.CleanOrphans(dir))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale file should be removed")
	_, err = os.Stat(kept)
	assert.NoError(t, err)
	_, err = os.Stat(unchanged)
	assert.NoError(t, err)
}

func TestCleanOrphansMissingDir(t *testing.T) {
	w := newTestWriter()
	assert.Error(t, w.CleanOrphans(filepath.Join(t.TempDir(), "nope")))
}
