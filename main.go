// Copyright 2025 Dave Lage (rockerBOO)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/solidlsp/solidlsp/internal/bridge"
	"github.com/solidlsp/solidlsp/internal/config"
	"github.com/solidlsp/solidlsp/internal/directories"
	"github.com/solidlsp/solidlsp/internal/logger"
	"github.com/solidlsp/solidlsp/internal/mcpserver"
	"github.com/solidlsp/solidlsp/internal/security"
	"github.com/solidlsp/solidlsp/types"
)

// tryLoadConfig attempts to load configuration from multiple locations with security validation.
func tryLoadConfig(primaryPath, configDir string, allowedDirectories ...[]string) (*config.LSPServerConfig, error) {
	var configAllowedDirectories []string

	if len(allowedDirectories) > 0 {
		configAllowedDirectories = allowedDirectories[0]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		configAllowedDirectories = security.GetConfigAllowedDirectories(configDir, cwd)
	}

	if cfg, err := config.LoadLSPConfig(primaryPath, configAllowedDirectories); err == nil {
		return cfg, nil
	}

	fallbackPaths := []string{
		"lsp_config.json",
		filepath.Join(configDir, "config.json"),
		"lsp_config.example.json",
	}

	for _, fallbackPath := range fallbackPaths {
		if fallbackPath != primaryPath {
			if cfg, err := config.LoadLSPConfig(fallbackPath, configAllowedDirectories); err == nil {
				logger.Warn(fmt.Sprintf("loaded configuration from fallback location: %s", fallbackPath))
				return cfg, nil
			}
		}
	}

	return nil, errors.New("no valid configuration found")
}

// validateCommandLineArgs validates command line arguments for security.
func validateCommandLineArgs(confPath, logPath, configDir, logDir string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	if confPath != "" {
		configAllowedDirs := security.GetConfigAllowedDirectories(configDir, cwd)
		if _, err := security.ValidateConfigPath(confPath, configAllowedDirs); err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
	}

	if logPath != "" {
		logAllowedDirs := []string{logDir, cwd, "."}
		if _, err := security.ValidateConfigPath(logPath, logAllowedDirs); err != nil {
			return fmt.Errorf("invalid log path: %w", err)
		}
	}

	return nil
}

func main() {
	dirResolver := directories.NewDirectoryResolver("solidlsp", directories.DefaultUserProvider{}, directories.DefaultEnvProvider{}, true)

	configDir, err := dirResolver.GetConfigDirectory()
	if err != nil {
		log.Fatalf("failed to get config directory: %v", err)
	}

	logDir, err := dirResolver.GetLogDirectory()
	if err != nil {
		log.Fatalf("failed to get log directory: %v", err)
	}

	resourcesDir, err := dirResolver.GetResourcesDirectory()
	if err != nil {
		log.Fatalf("failed to get resources directory: %v", err)
	}

	defaultConfigPath := filepath.Join(configDir, "lsp_config.json")
	defaultLogPath := filepath.Join(logDir, "solidlsp-bridge.log")

	var confPath, logPath, logLevel string
	flag.StringVar(&confPath, "config", defaultConfigPath, "Path to LSP configuration file")
	flag.StringVar(&confPath, "c", defaultConfigPath, "Path to LSP configuration file (short)")
	flag.StringVar(&logPath, "log-path", "", "Path to log file (overrides config and default)")
	flag.StringVar(&logPath, "l", "", "Path to log file (short)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	if err := validateCommandLineArgs(confPath, logPath, configDir, logDir); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: invalid command line arguments: %v\n", err)
		os.Exit(1)
	}

	cfg, err := tryLoadConfig(confPath, configDir)
	var logConfig logger.LoggerConfig

	if err != nil {
		fullErrMsg := fmt.Sprintf("CRITICAL: failed to load LSP config from %q: %v", confPath, err)
		fmt.Fprintln(os.Stderr, fullErrMsg)
		log.Println(fullErrMsg)

		logConfig = logger.LoggerConfig{LogPath: defaultLogPath, LogLevel: "debug", MaxLogFiles: 10}

		cfg = &config.LSPServerConfig{
			LanguageServers:      make(map[types.LanguageServer]config.LanguageServerConfig),
			LanguageServerMap:    make(map[types.LanguageServer][]types.Language),
			ExtensionLanguageMap: make(map[string]types.Language),
			Global:               config.GlobalConfig{LogPath: defaultLogPath, LogLevel: "debug", MaxLogFiles: 10},
		}

		fmt.Fprintln(os.Stderr, "NOTICE: using minimal default configuration; LSP functionality will be limited.")
	} else {
		logConfig = logger.LoggerConfig{
			LogPath:     cfg.Global.LogPath,
			LogLevel:    cfg.Global.LogLevel,
			MaxLogFiles: cfg.Global.MaxLogFiles,
		}
	}

	// Allow runtime tuning from outside (e.g. via an MCP client's env vars)
	// without editing config files inside the container.
	config.ApplyEnvOverrides(cfg)

	if logPath != "" {
		logConfig.LogPath = logPath
	}
	if logLevel != "" {
		logConfig.LogLevel = logLevel
	}
	if logConfig.LogPath == "" {
		logConfig.LogPath = defaultLogPath
	}

	if err := logger.InitLogger(logConfig); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Close()

	logger.Info("Starting solidlsp bridge...")

	cwd, err := os.Getwd()
	if err != nil {
		panic("failed to get current working directory: " + err.Error())
	}

	// In container mode we must anchor workspace operations to the mounted
	// workspace root, not to the process CWD.
	workspaceRoot := os.Getenv("WORKSPACE_ROOT")
	allowedDirs := []string{cwd}
	if workspaceRoot != "" {
		allowedDirs = []string{workspaceRoot}
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to construct bridge logger: " + err.Error())
	}

	bridgeInstance := bridge.NewBridge(cfg, allowedDirs, log, resourcesDir)

	mcpServer := mcpserver.SetupMCPServer(bridgeInstance)
	bridgeInstance.SetServer(mcpServer)

	// Start auto-connect + warm-up SYNCHRONOUSLY before the MCP server
	// starts. This ensures LSP connections are fully established before
	// stdin processing begins, which matters for clients that close stdin
	// immediately after sending their first request.
	logger.Info("Connecting to language servers...")
	if err := bridgeInstance.SyncAutoConnect(); err != nil {
		logger.Warn("some language servers failed to connect: " + err.Error())
	}
	logger.Info("Language server connections ready.")

	logger.Info("Starting MCP server...")
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("MCP server error: " + err.Error())
	}
}
