package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAcquireReadsInitialContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "puts 1")

	c := NewCache()
	h, err := c.Acquire(path)
	require.NoError(t, err)
	defer h.Release()

	got, err := h.Contents()
	require.NoError(t, err)
	assert.Equal(t, "puts 1", string(got))
}

// TestContentsReloadsOnSizeChangeDespiteSameMtime covers §4.5's "tolerate
// 1-second mtime resolution" invariant: a rewrite that lands in the same
// mtime second but changes the file's size must still be observed as stale.
func TestContentsReloadsOnSizeChangeDespiteSameMtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "puts 1")

	c := NewCache()
	h, err := c.Acquire(path)
	require.NoError(t, err)
	defer h.Release()

	initialGen := h.Generation()

	info, err := os.Stat(path)
	require.NoError(t, err)
	writeFile(t, path, "puts 1\nputs 2")
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	got, err := h.Contents()
	require.NoError(t, err)
	assert.Equal(t, "puts 1\nputs 2", string(got))
	assert.Greater(t, h.Generation(), initialGen)
}

func TestContentsDoesNotReloadWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "puts 1")

	c := NewCache()
	h, err := c.Acquire(path)
	require.NoError(t, err)
	defer h.Release()

	gen1 := h.Generation()
	_, err = h.Contents()
	require.NoError(t, err)
	gen2 := h.Generation()
	assert.Equal(t, gen1, gen2, "no filesystem change means no reload")
}

func TestInvalidateForcesReloadEvenWithUnchangedStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "one")

	c := NewCache()
	h, err := c.Acquire(path)
	require.NoError(t, err)
	defer h.Release()

	_, err = h.Contents()
	require.NoError(t, err)
	genBefore := h.Generation()

	c.Invalidate(path)
	got, err := h.Contents()
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))
	assert.Greater(t, h.Generation(), genBefore)
}

func TestAcquireSharesEntryAcrossHandles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "shared")

	c := NewCache()
	h1, err := c.Acquire(path)
	require.NoError(t, err)
	h2, err := c.Acquire(path)
	require.NoError(t, err)

	assert.Same(t, h1.e, h2.e)

	h1.Release()
	h2.Release()
}

func TestReleaseEvictsEntryAfterLastRef(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "x")

	c := NewCache()
	h, err := c.Acquire(path)
	require.NoError(t, err)
	h.Release()

	c.mu.Lock()
	_, stillPresent := c.entries[path]
	c.mu.Unlock()
	assert.False(t, stillPresent)
}

func TestAcquireMissingFileErrors(t *testing.T) {
	c := NewCache()
	_, err := c.Acquire(filepath.Join(t.TempDir(), "missing.rb"))
	require.Error(t, err)
}

func TestContentsReturnsIndependentCopies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "immutable")

	c := NewCache()
	h, err := c.Acquire(path)
	require.NoError(t, err)
	defer h.Release()

	first, err := h.Contents()
	require.NoError(t, err)
	first[0] = 'X'

	second, err := h.Contents()
	require.NoError(t, err)
	assert.Equal(t, "immutable", string(second))
}
