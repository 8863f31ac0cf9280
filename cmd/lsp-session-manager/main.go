// Command lsp-session-manager is a persistent LSP session daemon: it starts
// one language server via the bridge's C1-C9 internals, waits for the
// readiness coordinator to reach Ready, and serves a newline-delimited
// JSON-RPC API over TCP so a caller (an MCP front-end, an editor plugin)
// never pays the initialize+indexing cost more than once per process
// lifetime. Adapted from the teacher's own BSL-specific session manager,
// generalized to dispatch through internal/bridge instead of hand-rolling
// its own JSON-RPC framing and indexing-progress tracking.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solidlsp/solidlsp/internal/bridge"
	"github.com/solidlsp/solidlsp/internal/config"
	"github.com/solidlsp/solidlsp/internal/logger"
	"github.com/solidlsp/solidlsp/internal/readiness"
	"github.com/solidlsp/solidlsp/types"
)

var (
	port           = flag.Int("port", 9999, "TCP port to listen on")
	languageServer = flag.String("language-server", "", "Configured language server id to launch, e.g. ruby-lsp")
	workspaceDir   = flag.String("workspace", ".", "Workspace directory for the language server")
	configPath     = flag.String("config", "", "Path to LSP configuration file (optional; a minimal single-server config is used if omitted)")
)

// requestTimeout mirrors the teacher's per-method timeout table: most
// requests get 90s, but the genuinely slow operations get more room.
func requestTimeout(method string) time.Duration {
	switch method {
	case "workspace/diagnostic":
		return 10 * time.Minute
	case "textDocument/diagnostic", "textDocument/formatting":
		return 5 * time.Minute
	case "textDocument/rename", "textDocument/prepareRename":
		return 2 * time.Minute
	default:
		return 90 * time.Second
	}
}

func main() {
	flag.Parse()

	if *languageServer == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -language-server is required")
		os.Exit(1)
	}

	logConfig := logger.LoggerConfig{LogLevel: "info"}
	if err := logger.InitLogger(logConfig); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logInst, err := logger.New(logConfig)
	if err != nil {
		log.Fatalf("failed to construct bridge logger: %v", err)
	}

	cfg, err := loadConfig(*configPath, types.LanguageServer(*languageServer))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	b := bridge.NewBridge(cfg, []string{*workspaceDir}, logInst, "")

	ctx := context.Background()
	session, err := b.Connect(ctx, types.LanguageServer(*languageServer), *workspaceDir, nil)
	if err != nil {
		log.Fatalf("failed to start %s: %v", *languageServer, err)
	}

	logger.Info(fmt.Sprintf("waiting for %s to become ready...", *languageServer))
	if err := session.WaitReady(ctx); err != nil {
		logger.Warn(fmt.Sprintf("%s did not reach Ready cleanly: %v", *languageServer, err))
	}
	logger.Info(fmt.Sprintf("%s is %s", *languageServer, session.State()))

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("failed to listen on port %d: %v", *port, err)
	}
	defer listener.Close()

	logger.Info(fmt.Sprintf("session manager listening on :%d", *port))

	for {
		conn, err := listener.Accept()
		if err != nil {
			logger.Warn(fmt.Sprintf("accept error: %v", err))
			continue
		}
		go handleClient(conn, session)
	}
}

// loadConfig builds a minimal single-server LSPServerConfig when no -config
// flag is given, else defers to the normal config loader with the process's
// working directory and the config path itself as the allowed directories
// (the config path comes from the operator's command line, not from a
// client).
func loadConfig(path string, ls types.LanguageServer) (*config.LSPServerConfig, error) {
	if path == "" {
		return &config.LSPServerConfig{
			LanguageServers:      map[types.LanguageServer]config.LanguageServerConfig{ls: {}},
			LanguageServerMap:    make(map[types.LanguageServer][]types.Language),
			ExtensionLanguageMap: make(map[string]types.Language),
		}, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadLSPConfig(path, []string{cwd, path})
}

// jsonRPCRequest is the shape of one line read from a client connection.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// handleClient serves one TCP connection: newline-delimited JSON-RPC
// request in, newline-delimited JSON-RPC response out, matching the
// teacher's HandleClient loop shape.
func handleClient(conn net.Conn, session *bridge.Session) {
	defer conn.Close()
	connID := uuid.NewString()
	logger.Info(fmt.Sprintf("API client connected: %s (conn=%s)", conn.RemoteAddr(), connID))

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				logger.Warn(fmt.Sprintf("client read error (conn=%s): %v", connID, err))
			}
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			sendAPIError(conn, 0, -32700, "parse error")
			continue
		}

		result, err := handleAPIRequest(session, req.Method, req.Params)
		if err != nil {
			logger.Warn(fmt.Sprintf("conn=%s method=%s failed: %v", connID, req.Method, err))
			sendAPIError(conn, req.ID, -32603, err.Error())
			continue
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}
		respJSON, err := json.Marshal(resp)
		if err != nil {
			logger.Warn(fmt.Sprintf("error marshaling response: %v", err))
			continue
		}
		if _, err := conn.Write(append(respJSON, '\n')); err != nil {
			logger.Warn(fmt.Sprintf("error writing response: %v", err))
		}
	}

	logger.Info(fmt.Sprintf("API client disconnected: %s", conn.RemoteAddr()))
}

func sendAPIError(conn net.Conn, id int64, code int, message string) {
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]interface{}{"code": code, "message": message},
	}
	respJSON, _ := json.Marshal(resp)
	conn.Write(append(respJSON, '\n'))
}

// handleAPIRequest answers session/status and session/capabilities locally,
// forwards textDocument/didOpen|didClose and workspace/didChangeWatchedFiles
// through the session's Notify passthrough, and forwards every other method
// through its Request passthrough.
func handleAPIRequest(session *bridge.Session, method string, params json.RawMessage) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(method))
	defer cancel()

	switch method {
	case "session/status":
		return sessionStatus(session), nil

	case "session/capabilities":
		return session.Capabilities(), nil

	case "textDocument/didOpen", "textDocument/didClose",
		"workspace/didChangeWatchedFiles":
		var p interface{}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, session.Notify(ctx, method, p)

	default:
		var p interface{}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, err
			}
		}
		var result json.RawMessage
		if err := session.Request(ctx, method, p, &result); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// sessionStatus reports the readiness coordinator's state in place of the
// teacher's BSL-specific indexing current/total/speed counters, which this
// generic front-end has no way to reconstruct across arbitrary servers.
func sessionStatus(session *bridge.Session) map[string]interface{} {
	state := session.State()
	return map[string]interface{}{
		"languageServer": session.LanguageServer,
		"workspaceRoot":  session.WorkspaceRoot,
		"state":          state.String(),
		"ready":          state == readiness.Ready,
		"alive":          session.IsAlive(),
	}
}
