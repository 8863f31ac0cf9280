// Package utils holds the path translation internal/symbols (C7) needs
// when the spawned language server sees the workspace at a different root
// than this process does — the case of a containerized language server
// with the project bind-mounted at some path other than what the bridge
// itself was launched against.
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DockerPathMapper translates workspace-relative operations between the
// host root this process resolves paths against and the root a
// containerized language server mounts the same workspace at. Implements
// symbols.PathMapper.
type DockerPathMapper struct {
	hostRoot      string // e.g. /home/dev/projects
	containerRoot string // e.g. /projects
	enabled       bool   // true once both roots are known
}

// NewDockerPathMapper creates a new DockerPathMapper instance
func NewDockerPathMapper(hostRoot, containerRoot string) (*DockerPathMapper, error) {
	if hostRoot == "" {
		return nil, errors.New("host root path cannot be empty")
	}
	if containerRoot == "" {
		return nil, errors.New("container root path cannot be empty")
	}

	// Clean and normalize paths
	// For Docker mode, don't use filepath.Abs as it may be cross-platform (Windows path on Linux)
	cleanHostRoot := filepath.Clean(hostRoot)
	// Convert to forward slashes for consistency
	cleanHostRoot = filepath.ToSlash(cleanHostRoot)

	// For container paths, use simple string cleaning to avoid Windows path issues
	cleanContainerRoot := strings.TrimSuffix(containerRoot, "/")
	if !strings.HasPrefix(cleanContainerRoot, "/") {
		return nil, errors.New("container root must be an absolute path starting with /")
	}

	return &DockerPathMapper{
		hostRoot:      cleanHostRoot,
		containerRoot: cleanContainerRoot,
		enabled:       true,
	}, nil
}

// NewDockerPathMapperFromEnv builds a mapper from HOST_PROJECTS_ROOT (or
// the older PROJECTS_HOST_ROOT name) and PROJECTS_ROOT, the env vars the
// bridge's container deployment sets when the workspace is bind-mounted at
// a different path than the host sees. Returns a disabled mapper — every
// translation becomes a no-op — when neither host root var is set, which is
// the common case of the bridge and its language servers sharing one
// filesystem namespace.
func NewDockerPathMapperFromEnv() (*DockerPathMapper, error) {
	hostRoot := os.Getenv("HOST_PROJECTS_ROOT")
	if hostRoot == "" {
		hostRoot = os.Getenv("PROJECTS_HOST_ROOT")
	}

	containerRoot := os.Getenv("PROJECTS_ROOT")
	if containerRoot == "" {
		containerRoot = "/projects"
	}

	if hostRoot == "" {
		return &DockerPathMapper{
			hostRoot:      "",
			containerRoot: containerRoot,
			enabled:       false,
		}, nil
	}

	return NewDockerPathMapper(hostRoot, containerRoot)
}

// IsEnabled reports whether both roots are known and translation is
// actually active (the roots need not differ).
func (dpm *DockerPathMapper) IsEnabled() bool {
	return dpm.enabled
}

// HostToContainer converts an absolute host path to the corresponding
// absolute container path. Returns hostPath unchanged when the mapper is
// disabled.
func (dpm *DockerPathMapper) HostToContainer(hostPath string) (string, error) {
	if !dpm.enabled {
		return hostPath, nil
	}
	if hostPath == "" {
		return "", errors.New("host path cannot be empty")
	}

	// Normalize backslashes before Clean so a Windows-style host root still
	// matches a path built on a Linux bridge process.
	cleanPath := filepath.Clean(strings.ReplaceAll(hostPath, "\\", "/"))
	normalizedHostRoot := strings.ReplaceAll(dpm.hostRoot, "\\", "/")

	if !strings.HasPrefix(cleanPath, normalizedHostRoot) {
		return "", fmt.Errorf("path %s is outside mounted directory %s", cleanPath, normalizedHostRoot)
	}

	relativePath := strings.TrimPrefix(strings.TrimPrefix(cleanPath, normalizedHostRoot), "/")

	containerPath := dpm.containerRoot
	if relativePath != "" {
		containerPath = filepath.Join(dpm.containerRoot, relativePath)
	}
	return filepath.Clean(containerPath), nil
}

// ContainerToHost converts an absolute container path back to the
// corresponding absolute host path. Returns containerPath unchanged when
// the mapper is disabled.
func (dpm *DockerPathMapper) ContainerToHost(containerPath string) (string, error) {
	if !dpm.enabled {
		return containerPath, nil
	}
	if containerPath == "" {
		return "", errors.New("container path cannot be empty")
	}

	cleanPath := filepath.Clean(containerPath)
	if !strings.HasPrefix(cleanPath, dpm.containerRoot) {
		return "", fmt.Errorf("path %s is outside container root %s", cleanPath, dpm.containerRoot)
	}

	relativePath := strings.TrimPrefix(strings.TrimPrefix(cleanPath, dpm.containerRoot), "/")

	hostPath := dpm.hostRoot
	if relativePath != "" {
		hostPath = filepath.Join(dpm.hostRoot, relativePath)
	}
	return filepath.Clean(hostPath), nil
}
