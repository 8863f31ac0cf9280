// Package directories resolves per-user config/log/cache directories for
// the bridge process, mirroring the teacher's directories.NewDirectoryResolver
// call site in main.go (no concrete source for that package was retrieved;
// this rebuilds it to the shape main.go expects, using stdlib os.UserConfigDir
// / os.UserCacheDir since no example in the pack imports a dedicated
// XDG/app-dirs library).
package directories

import (
	"fmt"
	"os"
	"path/filepath"
)

// UserProvider abstracts the per-OS user directory lookup so tests can
// substitute a fake home/config root.
type UserProvider interface {
	ConfigDir() (string, error)
	CacheDir() (string, error)
	HomeDir() (string, error)
}

// DefaultUserProvider delegates to the standard library's os.UserConfigDir,
// os.UserCacheDir, and os.UserHomeDir.
type DefaultUserProvider struct{}

func (DefaultUserProvider) ConfigDir() (string, error) { return os.UserConfigDir() }
func (DefaultUserProvider) CacheDir() (string, error)  { return os.UserCacheDir() }
func (DefaultUserProvider) HomeDir() (string, error)   { return os.UserHomeDir() }

// EnvProvider abstracts environment variable lookups, letting callers
// override config/log/cache locations (e.g. XDG_CONFIG_HOME, or this
// bridge's own *_DIR variables) without touching the real environment in
// tests.
type EnvProvider interface {
	Lookup(key string) (string, bool)
}

// DefaultEnvProvider reads from the real process environment.
type DefaultEnvProvider struct{}

func (DefaultEnvProvider) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// Resolver computes the config/log/cache directories for one named
// application, honoring environment overrides before falling back to the
// OS-conventional per-user directories.
type Resolver struct {
	appName       string
	users         UserProvider
	env           EnvProvider
	createMissing bool
}

// NewDirectoryResolver constructs a Resolver for appName. When
// createMissing is true, GetConfigDirectory/GetLogDirectory create the
// resolved directory (and parents) if absent.
func NewDirectoryResolver(appName string, users UserProvider, env EnvProvider, createMissing bool) *Resolver {
	return &Resolver{appName: appName, users: users, env: env, createMissing: createMissing}
}

func (r *Resolver) envOverrideKey(suffix string) string {
	return upperSnake(r.appName) + "_" + suffix
}

// GetConfigDirectory returns "<appName>"'s config directory: an explicit
// <APPNAME>_CONFIG_DIR env override, else "<user config dir>/<appName>".
func (r *Resolver) GetConfigDirectory() (string, error) {
	if v, ok := r.env.Lookup(r.envOverrideKey("CONFIG_DIR")); ok && v != "" {
		return r.ensure(v)
	}
	base, err := r.users.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("directories: resolving config dir: %w", err)
	}
	return r.ensure(filepath.Join(base, r.appName))
}

// GetLogDirectory returns "<appName>"'s log directory: an explicit
// <APPNAME>_LOG_DIR env override, else "<user cache dir>/<appName>/logs".
func (r *Resolver) GetLogDirectory() (string, error) {
	if v, ok := r.env.Lookup(r.envOverrideKey("LOG_DIR")); ok && v != "" {
		return r.ensure(v)
	}
	base, err := r.users.CacheDir()
	if err != nil {
		return "", fmt.Errorf("directories: resolving log dir: %w", err)
	}
	return r.ensure(filepath.Join(base, r.appName, "logs"))
}

// GetResourcesDirectory returns the directory C4's single-path providers
// cache downloaded/extracted server binaries under, keyed by server+version
// by the caller.
func (r *Resolver) GetResourcesDirectory() (string, error) {
	if v, ok := r.env.Lookup(r.envOverrideKey("RESOURCES_DIR")); ok && v != "" {
		return r.ensure(v)
	}
	base, err := r.users.CacheDir()
	if err != nil {
		return "", fmt.Errorf("directories: resolving resources dir: %w", err)
	}
	return r.ensure(filepath.Join(base, r.appName, "resources"))
}

func (r *Resolver) ensure(dir string) (string, error) {
	if r.createMissing {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("directories: creating %s: %w", dir, err)
		}
	}
	return dir, nil
}

func upperSnake(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' || c == ' ' {
			out = append(out, '_')
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
