// Package bridge is the top-level orchestrator wiring C1-C9 together: one
// Bridge owns the shared file buffer cache, diff preview service, backend
// dispatcher, and a Session per connected language server, and exposes the
// operations internal/mcpserver adapts onto MCP tools. Adapted from the
// teacher's bridge.MCPLSPBridge (bridge/types.go).
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/solidlsp/solidlsp/internal/backend"
	"github.com/solidlsp/solidlsp/internal/buffer"
	"github.com/solidlsp/solidlsp/internal/config"
	"github.com/solidlsp/solidlsp/internal/deps"
	"github.com/solidlsp/solidlsp/internal/diffpreview"
	"github.com/solidlsp/solidlsp/internal/logger"
	"github.com/solidlsp/solidlsp/internal/symbols"
	"github.com/solidlsp/solidlsp/types"
	"github.com/solidlsp/solidlsp/utils"
)

// Bridge combines the MCP server-facing surface with the set of live
// language server sessions and the shared C5/C8/C9 state.
type Bridge struct {
	mu                 sync.RWMutex
	mcpServer          *server.MCPServer
	sessions           map[types.LanguageServer]*Session
	config             *config.LSPServerConfig
	allowedDirectories []string
	pathMapper         *utils.DockerPathMapper

	cache      *buffer.Cache
	diff       *diffpreview.Service
	dispatcher *backend.Dispatcher
	log        *logger.Logger
	resourcesDir string
}

// NewBridge constructs a Bridge over cfg, restricted to allowedDirectories.
func NewBridge(cfg *config.LSPServerConfig, allowedDirectories []string, log *logger.Logger, resourcesDir string) *Bridge {
	pathMapper, err := utils.NewDockerPathMapperFromEnv()
	if err != nil {
		pathMapper = nil
	}

	backendDefault := backend.KindLSP
	if cfg.LanguageBackend == string(backend.KindJetBrains) {
		backendDefault = backend.KindJetBrains
	}

	return &Bridge{
		mcpServer:          nil,
		sessions:           make(map[types.LanguageServer]*Session),
		config:             cfg,
		allowedDirectories: allowedDirectories,
		pathMapper:         pathMapper,
		cache:              buffer.NewCache(),
		diff:               diffpreview.NewService(),
		dispatcher:         backend.NewDispatcher(backendDefault),
		log:                log,
		resourcesDir:       resourcesDir,
	}
}

// SetServer stores the MCP server instance mcpserver.SetupMCPServer built,
// mirroring main.go's bridgeInstance.SetServer(mcpServer) call.
func (b *Bridge) SetServer(s *server.MCPServer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mcpServer = s
}

// workspaceRoot picks the single workspace root every configured server is
// launched against: the first allowed directory (main.go resolves this
// from WORKSPACE_ROOT or cwd before constructing the Bridge).
func (b *Bridge) workspaceRoot() (string, error) {
	if len(b.allowedDirectories) == 0 {
		return "", fmt.Errorf("bridge: no allowed directories configured")
	}
	return b.allowedDirectories[0], nil
}

// activePathMapper returns b.pathMapper as a symbols.PathMapper, or nil if
// HOST_PROJECTS_ROOT/PROJECTS_HOST_ROOT was never set: a typed nil
// *utils.DockerPathMapper stored in an interface is non-nil, so C7 would
// otherwise always attempt (disabled, no-op) translation instead of
// skipping it outright.
func (b *Bridge) activePathMapper() symbols.PathMapper {
	if b.pathMapper == nil || !b.pathMapper.IsEnabled() {
		return nil
	}
	return b.pathMapper
}

// SyncAutoConnect starts a session for every configured language server,
// synchronously, so symbol queries can be served as soon as the MCP
// stdio loop starts (mirrors main.go's "Start auto-connect + warm-up
// SYNCHRONOUSLY" comment). Individual failures are logged and collected
// but do not abort the remaining connections.
func (b *Bridge) SyncAutoConnect() error {
	root, err := b.workspaceRoot()
	if err != nil {
		return err
	}

	var errs []error
	for ls, entry := range b.config.LanguageServers {
		if _, err := b.Connect(context.Background(), ls, root, settingsFromEntry(entry)); err != nil {
			b.log.Warn(fmt.Sprintf("bridge: failed to connect %s: %v", ls, err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("bridge: %d of %d language servers failed to connect", len(errs), len(b.config.LanguageServers))
	}
	return nil
}

func settingsFromEntry(entry config.LanguageServerConfig) map[string]string {
	out := make(map[string]string, len(entry.Settings))
	for k, v := range entry.Settings {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Connect starts (or returns the already-running) session for ls.
func (b *Bridge) Connect(ctx context.Context, ls types.LanguageServer, workspaceRoot string, settings map[string]string) (*Session, error) {
	b.mu.Lock()
	if existing, ok := b.sessions[ls]; ok {
		b.mu.Unlock()
		return existing, nil
	}
	b.mu.Unlock()

	strategy, err := strategyFor(ls, workspaceRoot, b.resourcesDir)
	if err != nil {
		return nil, err
	}

	session, err := startSession(ctx, ls, strategy, workspaceRoot, deps.CurrentPlatform(), settings, b.cache, b.log, b.activePathMapper())
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.sessions[ls] = session
	b.mu.Unlock()
	return session, nil
}

// Session returns the running session for ls, if connected.
func (b *Bridge) Session(ls types.LanguageServer) (*Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.sessions[ls]
	return s, ok
}

// DiffPreview exposes C8 to callers (internal/mcpserver).
func (b *Bridge) DiffPreview() *diffpreview.Service { return b.diff }

// Dispatcher exposes C9 to callers.
func (b *Bridge) Dispatcher() *backend.Dispatcher { return b.dispatcher }

// Close shuts every live session down gracefully.
func (b *Bridge) Close() error {
	b.mu.Lock()
	sessions := make([]*Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		sessions = append(sessions, s)
	}
	b.sessions = make(map[types.LanguageServer]*Session)
	b.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.Shutdown(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
