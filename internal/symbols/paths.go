// Package symbols implements the Symbol/Reference API (C7): document
// symbols, the full workspace symbol tree, references, definitions,
// containing/defining-symbol lookups, and dir/document overviews, all
// expressed over workspace-relative paths with ignored-directory filtering
// and per-language symbol-kind remapping (§4.7).
package symbols

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// PathMapper translates a path between the filesystem namespace this
// process resolves workspace-relative paths against and the namespace the
// spawned language server actually sees on disk. The two only diverge when
// the server runs in a container with the workspace bind-mounted at a
// different root than the bridge itself observes (utils.DockerPathMapper is
// the concrete implementation); a nil PathMapper means both sides already
// agree and no translation is needed.
type PathMapper interface {
	HostToContainer(hostPath string) (string, error)
	ContainerToHost(containerPath string) (string, error)
}

// toFileURI converts a workspace-relative path to the file:// URI LSP
// methods expect, anchoring it at root and, if mapper is non-nil,
// translating it into the path the language server's own filesystem
// namespace expects before encoding it.
func toFileURI(root, relPath string, mapper PathMapper) string {
	abs := filepath.Join(root, filepath.FromSlash(relPath))
	if mapper != nil {
		if translated, err := mapper.HostToContainer(abs); err == nil {
			abs = translated
		}
	}
	return pathToFileURI(abs)
}

func pathToFileURI(absPath string) string {
	slashed := filepath.ToSlash(absPath)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}

// toWorkspaceRelative converts a file:// URI reported by the language
// server back to a workspace-relative path under root, first translating it
// out of the server's filesystem namespace via mapper (if non-nil). Returns
// an error if the resulting path escapes root.
func toWorkspaceRelative(root, uri string, mapper PathMapper) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("symbols: parsing uri %q: %w", uri, err)
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", fmt.Errorf("symbols: unsupported uri scheme %q", u.Scheme)
	}

	serverPath := u.Path
	if mapper != nil {
		if translated, err := mapper.ContainerToHost(serverPath); err == nil {
			serverPath = translated
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("symbols: resolving workspace root: %w", err)
	}
	absPath, err := filepath.Abs(serverPath)
	if err != nil {
		return "", fmt.Errorf("symbols: resolving %q: %w", serverPath, err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("symbols: %q is not under workspace root: %w", uri, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("symbols: %q resolves outside workspace root", uri)
	}
	return filepath.ToSlash(rel), nil
}

// isIgnored reports whether relPath has any path segment matching one of
// ignoredDirs — lexical filtering on path segments, not server response
// content (§4.7).
func isIgnored(relPath string, ignoredDirs []string) bool {
	if len(ignoredDirs) == 0 {
		return false
	}
	ignored := make(map[string]bool, len(ignoredDirs))
	for _, d := range ignoredDirs {
		ignored[d] = true
	}
	for _, seg := range strings.Split(filepath.ToSlash(relPath), "/") {
		if ignored[seg] {
			return true
		}
	}
	return false
}
