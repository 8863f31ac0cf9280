// Package config loads and validates the bridge's JSON configuration file
// (§4.4, §6 "CLI / config surface"): which language servers exist, which
// languages/extensions route to them, their timeouts and ignored
// directories, and the global logging/restart settings. Mirrors the
// teacher's lsp.LSPServerConfig / lsp.LoadLSPConfig / lsp.ApplyEnvOverrides
// call sites in main.go.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/solidlsp/solidlsp/internal/security"
	"github.com/solidlsp/solidlsp/types"
)

const (
	defaultRequestTimeoutSeconds  = 30
	defaultIndexingTimeoutSeconds = 120
)

// LanguageServerConfig is one entry in "language_servers": how to launch the
// server and the settings governing its behavior (§4.4, §4.6, §4.7).
type LanguageServerConfig struct {
	Command                []string               `json:"command"`
	Languages              []types.Language       `json:"languages"`
	InitializationOptions  map[string]interface{} `json:"initialization_options,omitempty"`
	Settings               map[string]interface{} `json:"settings,omitempty"`
	IgnoredDirectories     []string               `json:"ignored_directories,omitempty"`
	RequestTimeoutSeconds  int                    `json:"request_timeout_seconds,omitempty"`
	IndexingTimeoutSeconds int                    `json:"indexing_timeout_seconds,omitempty"`
}

// GlobalConfig holds process-wide logging/restart settings, loaded from the
// config file's "global" object.
type GlobalConfig struct {
	LogPath            string `json:"log_file_path"`
	LogLevel           string `json:"log_level"`
	MaxLogFiles        int    `json:"max_log_files"`
	MaxRestartAttempts int    `json:"max_restart_attempts"`
	RestartDelayMs     int    `json:"restart_delay_ms"`
}

// LSPServerConfig is the full config document (§6 "CLI / config surface").
type LSPServerConfig struct {
	LanguageServers      map[types.LanguageServer]LanguageServerConfig `json:"language_servers"`
	LanguageServerMap    map[types.LanguageServer][]types.Language     `json:"language_server_map"`
	ExtensionLanguageMap map[string]types.Language                    `json:"extension_language_map"`
	LanguageBackend      string                                       `json:"language_backend,omitempty"`
	Global               GlobalConfig                                 `json:"global"`
}

// LoadLSPConfig reads and parses path, rejecting it unless it resolves
// under allowedDirs (§ security boundary around externally-supplied paths).
func LoadLSPConfig(path string, allowedDirs []string) (*LSPServerConfig, error) {
	resolved, err := security.ValidateConfigPath(path, allowedDirs)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", resolved, err)
	}

	var cfg LSPServerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", resolved, err)
	}

	if cfg.LanguageServers == nil {
		cfg.LanguageServers = make(map[types.LanguageServer]LanguageServerConfig)
	}
	if cfg.LanguageServerMap == nil {
		cfg.LanguageServerMap = make(map[types.LanguageServer][]types.Language)
	}
	if cfg.ExtensionLanguageMap == nil {
		cfg.ExtensionLanguageMap = make(map[string]types.Language)
	}

	return &cfg, nil
}

// ApplyEnvOverrides lets a small set of environment variables tune a loaded
// config at runtime without editing the file on disk — main.go's comment
// calls this out explicitly for container/MCP-client deployments where the
// config file isn't easily edited.
func ApplyEnvOverrides(cfg *LSPServerConfig) {
	if v, ok := os.LookupEnv("SOLIDLSP_LOG_LEVEL"); ok && v != "" {
		cfg.Global.LogLevel = v
	}
	if v, ok := os.LookupEnv("SOLIDLSP_LOG_PATH"); ok && v != "" {
		cfg.Global.LogPath = v
	}
	if v, ok := os.LookupEnv("SOLIDLSP_LANGUAGE_BACKEND"); ok && v != "" {
		cfg.LanguageBackend = v
	}
	if v, ok := os.LookupEnv("SOLIDLSP_MAX_RESTART_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Global.MaxRestartAttempts = n
		}
	}
	for server, entry := range cfg.LanguageServers {
		if v, ok := os.LookupEnv(envKey(server, "REQUEST_TIMEOUT_SECONDS")); ok {
			if n, err := strconv.Atoi(v); err == nil {
				entry.RequestTimeoutSeconds = n
				cfg.LanguageServers[server] = entry
			}
		}
		if v, ok := os.LookupEnv(envKey(server, "INDEXING_TIMEOUT_SECONDS")); ok {
			if n, err := strconv.Atoi(v); err == nil {
				entry.IndexingTimeoutSeconds = n
				cfg.LanguageServers[server] = entry
			}
		}
	}
}

func envKey(server types.LanguageServer, suffix string) string {
	key := "SOLIDLSP_"
	for _, r := range string(server) {
		if r == '-' {
			key += "_"
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		key += string(r)
	}
	return key + "_" + suffix
}

// ServersForLanguage implements types.LSPServerConfigProvider.
func (c *LSPServerConfig) ServersForLanguage(lang types.Language) []types.LanguageServer {
	var out []types.LanguageServer
	for server, langs := range c.LanguageServerMap {
		for _, l := range langs {
			if l == lang {
				out = append(out, server)
				break
			}
		}
	}
	return out
}

// LanguageForExtension implements types.LSPServerConfigProvider.
func (c *LSPServerConfig) LanguageForExtension(ext string) (types.Language, bool) {
	lang, ok := c.ExtensionLanguageMap[ext]
	return lang, ok
}

// IgnoredDirectories implements types.LSPServerConfigProvider.
func (c *LSPServerConfig) IgnoredDirectories(server types.LanguageServer) []string {
	entry, ok := c.LanguageServers[server]
	if !ok {
		return nil
	}
	return entry.IgnoredDirectories
}

// RequestTimeoutSeconds implements types.LSPServerConfigProvider.
func (c *LSPServerConfig) RequestTimeoutSeconds(server types.LanguageServer) int {
	if entry, ok := c.LanguageServers[server]; ok && entry.RequestTimeoutSeconds > 0 {
		return entry.RequestTimeoutSeconds
	}
	return defaultRequestTimeoutSeconds
}

// IndexingTimeoutSeconds implements types.LSPServerConfigProvider.
func (c *LSPServerConfig) IndexingTimeoutSeconds(server types.LanguageServer) int {
	if entry, ok := c.LanguageServers[server]; ok && entry.IndexingTimeoutSeconds > 0 {
		return entry.IndexingTimeoutSeconds
	}
	return defaultIndexingTimeoutSeconds
}
