package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solidlsp/solidlsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "language_servers": {
    "ruby-lsp": {
      "command": ["ruby-lsp"],
      "languages": ["ruby"],
      "request_timeout_seconds": 45
    }
  },
  "language_server_map": {"ruby-lsp": ["ruby"]},
  "extension_language_map": {".rb": "ruby"},
  "global": {"log_level": "info"}
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLSPConfigParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "lsp_config.json", sampleConfig)

	cfg, err := LoadLSPConfig(path, []string{dir})
	require.NoError(t, err)

	entry, ok := cfg.LanguageServers[types.LanguageServerRubyLSP]
	require.True(t, ok)
	assert.Equal(t, 45, entry.RequestTimeoutSeconds)
	assert.Equal(t, "info", cfg.Global.LogLevel)
}

func TestLoadLSPConfigRejectsPathOutsideAllowedDirs(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	path := writeConfig(t, outside, "lsp_config.json", sampleConfig)

	_, err := LoadLSPConfig(path, []string{dir})
	require.Error(t, err)
}

func TestRequestTimeoutSecondsFallsBackToDefault(t *testing.T) {
	cfg := &LSPServerConfig{LanguageServers: map[types.LanguageServer]LanguageServerConfig{}}
	assert.Equal(t, defaultRequestTimeoutSeconds, cfg.RequestTimeoutSeconds(types.LanguageServerKotlin))
}

func TestRequestTimeoutSecondsUsesConfiguredValue(t *testing.T) {
	cfg := &LSPServerConfig{LanguageServers: map[types.LanguageServer]LanguageServerConfig{
		types.LanguageServerKotlin: {RequestTimeoutSeconds: 99},
	}}
	assert.Equal(t, 99, cfg.RequestTimeoutSeconds(types.LanguageServerKotlin))
}

func TestIndexingTimeoutSecondsFallsBackToDefault(t *testing.T) {
	cfg := &LSPServerConfig{LanguageServers: map[types.LanguageServer]LanguageServerConfig{}}
	assert.Equal(t, defaultIndexingTimeoutSeconds, cfg.IndexingTimeoutSeconds(types.LanguageServerSolargraph))
}

func TestServersForLanguage(t *testing.T) {
	cfg := &LSPServerConfig{LanguageServerMap: map[types.LanguageServer][]types.Language{
		types.LanguageServerRubyLSP:    {types.LanguageRuby},
		types.LanguageServerSolargraph: {types.LanguageRuby},
		types.LanguageServerKotlin:     {types.LanguageKotlin},
	}}

	servers := cfg.ServersForLanguage(types.LanguageRuby)
	assert.ElementsMatch(t, []types.LanguageServer{types.LanguageServerRubyLSP, types.LanguageServerSolargraph}, servers)
}

func TestApplyEnvOverridesGlobalAndPerServer(t *testing.T) {
	cfg := &LSPServerConfig{
		LanguageServers: map[types.LanguageServer]LanguageServerConfig{
			types.LanguageServerRubyLSP: {RequestTimeoutSeconds: 10},
		},
	}

	t.Setenv("SOLIDLSP_LOG_LEVEL", "debug")
	t.Setenv("SOLIDLSP_RUBY_LSP_REQUEST_TIMEOUT_SECONDS", "77")

	ApplyEnvOverrides(cfg)

	assert.Equal(t, "debug", cfg.Global.LogLevel)
	assert.Equal(t, 77, cfg.LanguageServers[types.LanguageServerRubyLSP].RequestTimeoutSeconds)
}

func TestEnvKeyUppercasesAndReplacesHyphens(t *testing.T) {
	assert.Equal(t, "SOLIDLSP_RUBY_LSP_REQUEST_TIMEOUT_SECONDS", envKey(types.LanguageServerRubyLSP, "REQUEST_TIMEOUT_SECONDS"))
}
