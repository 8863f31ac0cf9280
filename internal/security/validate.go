// Package security validates filesystem paths supplied from the outside
// (config file locations, log file locations) against an allow-list of
// directories before the bridge touches them, mirroring the teacher's
// security.GetConfigAllowedDirectories / security.ValidateConfigPath call
// sites in main.go.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GetConfigAllowedDirectories returns the set of directories a config file
// path is allowed to resolve under: the resolved config directory and the
// current working directory, deduplicated.
func GetConfigAllowedDirectories(configDir, cwd string) []string {
	seen := make(map[string]bool, 2)
	var out []string
	for _, d := range []string{configDir, cwd} {
		if d == "" {
			continue
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out
}

// ValidateConfigPath resolves path to an absolute form and rejects it
// unless it falls under one of allowedDirs. Returns the resolved absolute
// path on success.
func ValidateConfigPath(path string, allowedDirs []string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("security: empty path")
	}
	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("security: path contains NUL byte")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("security: resolving %q: %w", path, err)
	}
	clean := filepath.Clean(abs)

	for _, dir := range allowedDirs {
		if dir == "" {
			continue
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		absDir = filepath.Clean(absDir)
		if clean == absDir || strings.HasPrefix(clean, absDir+string(filepath.Separator)) {
			return clean, nil
		}
	}

	return "", fmt.Errorf("security: path %q is outside allowed directories %v", path, allowedDirs)
}
