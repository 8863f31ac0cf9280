package directories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserProvider struct {
	configDir string
	cacheDir  string
	homeDir   string
}

func (f fakeUserProvider) ConfigDir() (string, error) { return f.configDir, nil }
func (f fakeUserProvider) CacheDir() (string, error)  { return f.cacheDir, nil }
func (f fakeUserProvider) HomeDir() (string, error)   { return f.homeDir, nil }

type fakeEnvProvider struct {
	values map[string]string
}

func (f fakeEnvProvider) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func TestGetConfigDirectoryDefaultsUnderUserConfigDir(t *testing.T) {
	root := t.TempDir()
	users := fakeUserProvider{configDir: root}
	env := fakeEnvProvider{values: map[string]string{}}

	r := NewDirectoryResolver("solidlsp", users, env, true)
	dir, err := r.GetConfigDirectory()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "solidlsp"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "createMissing=true must create the directory")
}

func TestGetConfigDirectoryHonorsEnvOverride(t *testing.T) {
	override := t.TempDir()
	users := fakeUserProvider{configDir: "/unused"}
	env := fakeEnvProvider{values: map[string]string{"SOLIDLSP_CONFIG_DIR": override}}

	r := NewDirectoryResolver("solidlsp", users, env, false)
	dir, err := r.GetConfigDirectory()
	require.NoError(t, err)
	assert.Equal(t, override, dir)
}

func TestGetLogDirectoryDefaultsUnderCacheDirLogsSubdir(t *testing.T) {
	root := t.TempDir()
	users := fakeUserProvider{cacheDir: root}
	env := fakeEnvProvider{values: map[string]string{}}

	r := NewDirectoryResolver("solidlsp", users, env, false)
	dir, err := r.GetLogDirectory()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "solidlsp", "logs"), dir)
}

func TestGetResourcesDirectoryEnvOverride(t *testing.T) {
	override := t.TempDir()
	users := fakeUserProvider{}
	env := fakeEnvProvider{values: map[string]string{"SOLIDLSP_RESOURCES_DIR": override}}

	r := NewDirectoryResolver("solidlsp", users, env, false)
	dir, err := r.GetResourcesDirectory()
	require.NoError(t, err)
	assert.Equal(t, override, dir)
}

func TestUpperSnakeNormalizesAppName(t *testing.T) {
	assert.Equal(t, "MY_APP", upperSnake("my-app"))
	assert.Equal(t, "MY_APP", upperSnake("My App"))
}
