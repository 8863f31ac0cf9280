package symbols

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFileURIAndBackRoundTrips(t *testing.T) {
	root := "/home/dev/project"
	uri := toFileURI(root, "lib/app.rb", nil)
	assert.Equal(t, "file:///home/dev/project/lib/app.rb", uri)

	rel, err := toWorkspaceRelative(root, uri, nil)
	require.NoError(t, err)
	assert.Equal(t, "lib/app.rb", rel)
}

func TestToWorkspaceRelativeRejectsEscapingPath(t *testing.T) {
	root := "/home/dev/project"
	_, err := toWorkspaceRelative(root, "file:///home/dev/other/secret.rb", nil)
	require.Error(t, err)
}

type fakePathMapper struct {
	hostRoot      string
	containerRoot string
}

func (m fakePathMapper) HostToContainer(hostPath string) (string, error) {
	if !strings.HasPrefix(hostPath, m.hostRoot) {
		return "", fmt.Errorf("outside host root: %s", hostPath)
	}
	return m.containerRoot + strings.TrimPrefix(hostPath, m.hostRoot), nil
}

func (m fakePathMapper) ContainerToHost(containerPath string) (string, error) {
	if !strings.HasPrefix(containerPath, m.containerRoot) {
		return "", fmt.Errorf("outside container root: %s", containerPath)
	}
	return m.hostRoot + strings.TrimPrefix(containerPath, m.containerRoot), nil
}

func TestToFileURITranslatesThroughPathMapper(t *testing.T) {
	root := "/home/dev/project"
	mapper := fakePathMapper{hostRoot: root, containerRoot: "/projects"}

	uri := toFileURI(root, "lib/app.rb", mapper)
	assert.Equal(t, "file:///projects/lib/app.rb", uri)
}

func TestToWorkspaceRelativeTranslatesThroughPathMapper(t *testing.T) {
	root := "/home/dev/project"
	mapper := fakePathMapper{hostRoot: root, containerRoot: "/projects"}

	rel, err := toWorkspaceRelative(root, "file:///projects/lib/app.rb", mapper)
	require.NoError(t, err)
	assert.Equal(t, "lib/app.rb", rel)
}

func TestIsIgnoredMatchesWholeSegmentOnly(t *testing.T) {
	ignored := []string{"vendor", "node_modules"}

	assert.True(t, isIgnored("vendor/gems/foo.rb", ignored))
	assert.True(t, isIgnored("app/node_modules/x.js", ignored))
	assert.False(t, isIgnored("vendored/foo.rb", ignored), "must not match a path segment that merely contains the ignored name")
	assert.False(t, isIgnored("lib/app.rb", ignored))
}

func TestIsIgnoredWithNoConfiguredDirs(t *testing.T) {
	assert.False(t, isIgnored("vendor/gems/foo.rb", nil))
}
