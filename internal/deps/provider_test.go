package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmbientProviderLsPathOverride(t *testing.T) {
	p := AmbientProvider{ExecutableNames: []string{"does-not-exist-anywhere"}}
	d, err := p.Resolve("linux-amd64", map[string]string{"ls_path": "/usr/local/bin/custom-ls"})
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/custom-ls", d.Executable)
}

func TestAmbientProviderMissingExecutableErrors(t *testing.T) {
	p := AmbientProvider{ExecutableNames: []string{"definitely-not-a-real-binary-xyz"}}
	_, err := p.Resolve("linux-amd64", nil)
	require.Error(t, err)
}

func TestSolargraphProviderLsPathOverrideSkipsBundlerDetection(t *testing.T) {
	p := SolargraphProvider{WorkspaceRoot: t.TempDir()}
	d, err := p.Resolve("linux-amd64", map[string]string{"ls_path": "/opt/solargraph"})
	require.NoError(t, err)
	assert.Equal(t, "/opt/solargraph", d.Executable)
	assert.Equal(t, []string{"stdio"}, d.Args)
}

func TestUsesBundlerSolargraphDetectsPinnedGem(t *testing.T) {
	dir := t.TempDir()
	lock := "GEM\n  specs:\n    solargraph (0.49.0)\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Gemfile.lock"), []byte(lock), 0o644))

	assert.True(t, usesBundlerSolargraph(dir))
}

func TestUsesBundlerSolargraphFalseWithoutLockfile(t *testing.T) {
	assert.False(t, usesBundlerSolargraph(t.TempDir()))
}

func TestKotlinProviderDefaultVersionAndJVMOptions(t *testing.T) {
	p := KotlinProvider{ResourcesDir: "/opt/resources", DefaultVersion: "1.2.3"}
	d, err := p.Resolve("linux-amd64", nil)
	require.NoError(t, err)

	expected := filepath.Join("/opt/resources", "kotlin-lsp-1.2.3", launcherName("linux-amd64"))
	assert.Equal(t, expected, d.Executable)

	require.Contains(t, d.Env, "JAVA_TOOL_OPTIONS")
	require.NotNil(t, d.Env["JAVA_TOOL_OPTIONS"])
	assert.Equal(t, defaultKotlinJVMOptions, *d.Env["JAVA_TOOL_OPTIONS"])
}

// TestKotlinProviderExplicitEmptyJVMOptionsMeansUnset covers §9's Open
// Question: jvm_options="" must clear JAVA_TOOL_OPTIONS, distinct from the
// key being absent (which keeps the default).
func TestKotlinProviderExplicitEmptyJVMOptionsMeansUnset(t *testing.T) {
	p := KotlinProvider{ResourcesDir: "/opt/resources", DefaultVersion: "1.2.3"}
	d, err := p.Resolve("linux-amd64", map[string]string{"jvm_options": ""})
	require.NoError(t, err)

	require.Contains(t, d.Env, "JAVA_TOOL_OPTIONS")
	assert.Nil(t, d.Env["JAVA_TOOL_OPTIONS"])
}

func TestKotlinProviderExplicitJVMOptionsOverridesDefault(t *testing.T) {
	p := KotlinProvider{ResourcesDir: "/opt/resources", DefaultVersion: "1.2.3"}
	d, err := p.Resolve("linux-amd64", map[string]string{"jvm_options": "-Xmx4G"})
	require.NoError(t, err)
	require.NotNil(t, d.Env["JAVA_TOOL_OPTIONS"])
	assert.Equal(t, "-Xmx4G", *d.Env["JAVA_TOOL_OPTIONS"])
}

func TestLauncherNameIsPlatformAppropriate(t *testing.T) {
	assert.Equal(t, "kotlin-lsp.bat", launcherName("windows-amd64"))
	assert.Equal(t, "kotlin-lsp.sh", launcherName("linux-amd64"))
	assert.Equal(t, "kotlin-lsp.sh", launcherName("darwin-arm64"))
}

func TestCurrentPlatformMatchesRuntime(t *testing.T) {
	assert.Equal(t, runtime.GOOS+"-"+runtime.GOARCH, CurrentPlatform())
}
