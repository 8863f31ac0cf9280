package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDockerPathMapperRejectsEmptyRoots(t *testing.T) {
	_, err := NewDockerPathMapper("", "/projects")
	require.Error(t, err)

	_, err = NewDockerPathMapper("/home/dev/projects", "")
	require.Error(t, err)
}

func TestNewDockerPathMapperRejectsRelativeContainerRoot(t *testing.T) {
	_, err := NewDockerPathMapper("/home/dev/projects", "projects")
	require.Error(t, err)
}

func TestNewDockerPathMapperEnabledOnValidRoots(t *testing.T) {
	m, err := NewDockerPathMapper("/home/dev/projects", "/projects")
	require.NoError(t, err)
	assert.True(t, m.IsEnabled())
}

func TestHostToContainerTranslatesUnderRoot(t *testing.T) {
	m, err := NewDockerPathMapper("/home/dev/projects", "/projects")
	require.NoError(t, err)

	got, err := m.HostToContainer("/home/dev/projects/bsl-app/src/main.bsl")
	require.NoError(t, err)
	assert.Equal(t, "/projects/bsl-app/src/main.bsl", got)
}

func TestHostToContainerRejectsPathOutsideHostRoot(t *testing.T) {
	m, err := NewDockerPathMapper("/home/dev/projects", "/projects")
	require.NoError(t, err)

	_, err = m.HostToContainer("/home/dev/other/secret.bsl")
	require.Error(t, err)
}

func TestContainerToHostRoundTripsWithHostToContainer(t *testing.T) {
	m, err := NewDockerPathMapper("/home/dev/projects", "/projects")
	require.NoError(t, err)

	hostPath := "/home/dev/projects/bsl-app/src/main.bsl"
	containerPath, err := m.HostToContainer(hostPath)
	require.NoError(t, err)

	back, err := m.ContainerToHost(containerPath)
	require.NoError(t, err)
	assert.Equal(t, hostPath, back)
}

func TestContainerToHostRejectsPathOutsideContainerRoot(t *testing.T) {
	m, err := NewDockerPathMapper("/home/dev/projects", "/projects")
	require.NoError(t, err)

	_, err = m.ContainerToHost("/etc/passwd")
	require.Error(t, err)
}

func TestDisabledMapperPassesPathsThroughUnchanged(t *testing.T) {
	m, err := NewDockerPathMapperFromEnv()
	require.NoError(t, err)
	require.False(t, m.IsEnabled(), "no HOST_PROJECTS_ROOT set in the test environment")

	got, err := m.HostToContainer("/home/dev/projects/bsl-app/src/main.bsl")
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/projects/bsl-app/src/main.bsl", got)
}

func TestNewDockerPathMapperFromEnvHonorsHostProjectsRoot(t *testing.T) {
	t.Setenv("HOST_PROJECTS_ROOT", "/home/dev/projects")
	t.Setenv("PROJECTS_ROOT", "/projects")

	m, err := NewDockerPathMapperFromEnv()
	require.NoError(t, err)
	require.True(t, m.IsEnabled())

	got, err := m.HostToContainer("/home/dev/projects/bsl-app/main.bsl")
	require.NoError(t, err)
	assert.Equal(t, "/projects/bsl-app/main.bsl", got)
}
