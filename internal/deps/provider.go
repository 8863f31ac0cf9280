// Package deps implements the Dependency Provider (C4): given a platform
// and a language server's custom settings, resolve a launch command and
// environment overlay. Two variants per §4.4: Single-path (download/cache,
// modeled here without performing a real network download — see
// KotlinProvider's doc comment) and Ambient (PATH lookup).
package deps

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/solidlsp/solidlsp/internal/lsperrors"
	"github.com/solidlsp/solidlsp/internal/process"
)

// Provider resolves a LaunchDescriptor for one language server on the
// current platform from a flat settings map (§4.4's per-language settings
// table).
type Provider interface {
	Resolve(platform string, settings map[string]string) (process.LaunchDescriptor, error)
}

// CurrentPlatform returns the platform tag the core advertises in a
// resolved LaunchDescriptor, combining GOOS/GOARCH the way the original's
// per-OS download-suffix tables do (see kotlin_language_server.py's
// PLATFORM_KOTLIN_SUFFIX map).
func CurrentPlatform() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// AmbientProvider assumes the executable is already on PATH. This backs
// Ruby's two backends (ruby-lsp, solargraph), which the original never
// downloads — it only ever shells out to whatever the user's Ruby
// toolchain provides (see ruby_lsp.py / solargraph.py).
type AmbientProvider struct {
	// ExecutableNames are tried in order; the first found on PATH wins.
	ExecutableNames []string
	Args            []string
}

func (p AmbientProvider) Resolve(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	if override, ok := settings["ls_path"]; ok && override != "" {
		return process.LaunchDescriptor{Executable: override, Args: p.Args, Platform: platform}, nil
	}

	for _, name := range p.ExecutableNames {
		if path, err := exec.LookPath(name); err == nil {
			return process.LaunchDescriptor{Executable: path, Args: p.Args, Platform: platform}, nil
		}
	}

	return process.LaunchDescriptor{}, fmt.Errorf("%w: none of %v found on PATH", lsperrors.ErrDependencyMissing, p.ExecutableNames)
}

// SolargraphProvider prefers "bundle exec solargraph" when the workspace's
// Gemfile.lock pins the solargraph gem, falling back to a plain PATH
// lookup otherwise — ported from solargraph.py's Bundler detection.
type SolargraphProvider struct {
	WorkspaceRoot string
}

func (p SolargraphProvider) Resolve(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	if override, ok := settings["ls_path"]; ok && override != "" {
		return process.LaunchDescriptor{Executable: override, Args: []string{"stdio"}, Platform: platform}, nil
	}

	if usesBundlerSolargraph(p.WorkspaceRoot) {
		if bundle, err := exec.LookPath("bundle"); err == nil {
			return process.LaunchDescriptor{
				Executable: bundle,
				Args:       []string{"exec", "solargraph", "stdio"},
				Cwd:        p.WorkspaceRoot,
				Platform:   platform,
			}, nil
		}
	}

	path, err := exec.LookPath("solargraph")
	if err != nil {
		return process.LaunchDescriptor{}, fmt.Errorf("%w: solargraph not found on PATH: %v", lsperrors.ErrDependencyMissing, err)
	}
	return process.LaunchDescriptor{Executable: path, Args: []string{"stdio"}, Cwd: p.WorkspaceRoot, Platform: platform}, nil
}

// usesBundlerSolargraph reports whether root's Gemfile.lock names the
// solargraph gem, mirroring solargraph.py's check.
func usesBundlerSolargraph(root string) bool {
	lock := filepath.Join(root, "Gemfile.lock")
	data, err := readFileQuiet(lock)
	if err != nil {
		return false
	}
	return containsGem(data, "solargraph")
}

// KotlinProvider implements the single-path variant: a specific pinned
// server version cached under a resources directory, with jvm_options
// overlayed onto JAVA_TOOL_OPTIONS (§4.4's Kotlin settings row). It does
// not perform the real archive download the original's
// `_get_or_install_core_dependency` does; ResourcesDir is expected to
// already contain the extracted server (installation is explicitly out of
// scope per §1's "pluggable dependency provider" contract).
type KotlinProvider struct {
	ResourcesDir   string
	DefaultVersion string
}

const defaultKotlinJVMOptions = "-Xmx2G"

func (p KotlinProvider) Resolve(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	executable := settings["ls_path"]
	if executable == "" {
		version := settings["kotlin_lsp_version"]
		if version == "" {
			version = p.DefaultVersion
		}
		executable = filepath.Join(p.ResourcesDir, "kotlin-lsp-"+version, launcherName(platform))
	}

	env := map[string]*string{}
	if jvmOpts, set := settings["jvm_options"]; set {
		if jvmOpts == "" {
			env["JAVA_TOOL_OPTIONS"] = nil // explicit empty means "unset" per Design Note §9
		} else {
			v := jvmOpts
			env["JAVA_TOOL_OPTIONS"] = &v
		}
	} else {
		v := defaultKotlinJVMOptions
		env["JAVA_TOOL_OPTIONS"] = &v
	}

	return process.LaunchDescriptor{
		Executable: executable,
		Env:        env,
		Platform:   platform,
	}, nil
}

func launcherName(platform string) string {
	if len(platform) >= 3 && platform[:3] == "win" {
		return "kotlin-lsp.bat"
	}
	return "kotlin-lsp.sh"
}
