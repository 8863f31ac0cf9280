package security

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigAllowedDirectoriesDedupesAndAbsolutizes(t *testing.T) {
	dir := t.TempDir()
	out := GetConfigAllowedDirectories(dir, dir)
	require.Len(t, out, 1)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, out[0])
}

func TestGetConfigAllowedDirectoriesSkipsEmpty(t *testing.T) {
	dir := t.TempDir()
	out := GetConfigAllowedDirectories("", dir)
	require.Len(t, out, 1)
}

func TestValidateConfigPathAcceptsPathUnderAllowedDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsp_config.json")

	got, err := ValidateConfigPath(path, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestValidateConfigPathRejectsPathOutsideAllowedDirs(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	_, err := ValidateConfigPath(filepath.Join(other, "x.json"), []string{dir})
	require.Error(t, err)
}

func TestValidateConfigPathRejectsEmptyPath(t *testing.T) {
	_, err := ValidateConfigPath("", []string{"/tmp"})
	require.Error(t, err)
}

func TestValidateConfigPathRejectsNulByte(t *testing.T) {
	_, err := ValidateConfigPath("/tmp/evil\x00.json", []string{"/tmp"})
	require.Error(t, err)
}

func TestValidateConfigPathDoesNotMatchSiblingDirWithSamePrefix(t *testing.T) {
	dir := t.TempDir()
	siblingLike := dir + "-evil"

	_, err := ValidateConfigPath(filepath.Join(siblingLike, "x.json"), []string{dir})
	require.Error(t, err, "prefix match must respect the path separator boundary")
}
