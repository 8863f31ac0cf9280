package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solidlsp/solidlsp/internal/buffer"
	"github.com/solidlsp/solidlsp/internal/langservers"
	"github.com/solidlsp/solidlsp/internal/logger"
	"github.com/solidlsp/solidlsp/internal/lsperrors"
	"github.com/solidlsp/solidlsp/internal/process"
	"github.com/solidlsp/solidlsp/internal/readiness"
	"github.com/solidlsp/solidlsp/internal/rpcframe"
	"github.com/solidlsp/solidlsp/internal/symbols"
	"github.com/solidlsp/solidlsp/internal/transport"
	"github.com/solidlsp/solidlsp/types"
)

// bespokeReadinessToken is a synthetic progress-token key used to hold the
// readiness latch cleared for servers whose completion signal isn't a real
// $/progress token (Solargraph's language/status / logMessage strings).
const bespokeReadinessToken = "__bespoke_readiness__"

// Session is one running language server: its subprocess, its multiplexer,
// its readiness coordinator, and the symbol API layered on top (§3 "Server
// session").
type Session struct {
	LanguageServer types.LanguageServer
	WorkspaceRoot  string

	host     *process.Host
	rpc      *transport.Session
	coord    *readiness.Coordinator
	strategy langservers.Strategy
	Symbols  *symbols.Client

	capabilities json.RawMessage
}

// startSession spawns the server, wires C1-C3 together via
// rpcframe.FrameStream and transport.NewSession, registers inbound
// notification handlers that drive the readiness coordinator, and runs the
// initialize/initialized handshake (§4.6).
func startSession(ctx context.Context, ls types.LanguageServer, strategy langservers.Strategy, workspaceRoot string, platform string, settings map[string]string, cache *buffer.Cache, log *logger.Logger, pathMapper symbols.PathMapper) (*Session, error) {
	descriptor, err := strategy.BuildLaunchDescriptor(platform, settings)
	if err != nil {
		return nil, err
	}
	descriptor.Cwd = workspaceRoot
	descriptor.Platform = platform

	host := process.NewHost(log)
	stdin, stdout, err := host.Spawn(descriptor)
	if err != nil {
		return nil, err
	}

	stream := rpcframe.NewFrameStream(stdout, stdin, stdin)
	coord := readiness.New(time.Duration(strategy.IndexingTimeoutSeconds()) * time.Second)
	coord.TransportConnected()

	rpc := transport.NewSession(ctx, stream)
	rpc.SetRequestTimeout(time.Duration(strategy.RequestTimeoutSeconds()) * time.Second)

	s := &Session{
		LanguageServer: ls,
		WorkspaceRoot:  workspaceRoot,
		host:           host,
		rpc:            rpc,
		coord:          coord,
		strategy:       strategy,
	}
	s.Symbols = symbols.NewClient(rpc, coord, cache, strategy, workspaceRoot, pathMapper)

	registerHandlers(rpc, coord, strategy, log)

	go func() {
		<-rpc.DisconnectNotify()
		coord.Fail(fmt.Errorf("%w: connection to %s lost", lsperrors.ErrTransportClosed, ls))
	}()

	if err := s.handshake(ctx); err != nil {
		coord.Fail(err)
		return nil, err
	}

	return s, nil
}

// registerHandlers wires the inbound methods §6 lists the core as handling:
// client/registerCapability (accept+log), workspace/executeClientCommand
// (empty array), window/workDoneProgress/create (register token),
// $/progress (update token state), window/logMessage (log, and for
// Solargraph's bespoke signal, feed the readiness classifier).
func registerHandlers(rpc *transport.Session, coord *readiness.Coordinator, strategy langservers.Strategy, log *logger.Logger) {
	rpc.OnRequest("client/registerCapability", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		log.Info("client/registerCapability: " + string(params))
		return nil, nil
	})
	rpc.OnRequest("workspace/executeClientCommand", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return []interface{}{}, nil
	})
	rpc.OnRequest("window/workDoneProgress/create", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(params, &p); err == nil {
			coord.TokenStarted(p.Token)
		}
		return nil, nil
	})

	rpc.OnNotification("$/progress", func(params json.RawMessage) {
		var p struct {
			Token string `json:"token"`
			Value struct {
				Kind string `json:"kind"`
			} `json:"value"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		coord.Progress(p.Token, readiness.ProgressEventKind(p.Value.Kind))
	})

	rpc.OnNotification("window/logMessage", func(params json.RawMessage) {
		var m map[string]interface{}
		if err := json.Unmarshal(params, &m); err != nil {
			return
		}
		if msg, ok := m["message"].(string); ok {
			log.Info("server: " + msg)
		}
		if signal, ok := strategy.ClassifyReadiness("window/logMessage", m); ok && signal.Ready {
			coord.TokenEnded(bespokeReadinessToken)
		}
	})

	rpc.OnNotification("language/status", func(params json.RawMessage) {
		var m map[string]interface{}
		if err := json.Unmarshal(params, &m); err != nil {
			return
		}
		if signal, ok := strategy.ClassifyReadiness("language/status", m); ok && signal.Ready {
			coord.TokenEnded(bespokeReadinessToken)
		}
	})

	rpc.OnNotification("textDocument/publishDiagnostics", func(params json.RawMessage) {})
}

// handshake runs initialize -> initialized (§4.6, §6 "initialize
// parameters"). For servers with a bespoke readiness signal (Solargraph),
// a synthetic bespokeReadinessToken is pre-registered so the coordinator's
// latch stays cleared until ClassifyReadiness fires.
func (s *Session) handshake(ctx context.Context) error {
	if s.strategy.HasBespokeReadinessSignal() {
		// Keep the latch cleared until registerHandlers' ClassifyReadiness
		// hook ends this token (§9 Open question: Solargraph readiness).
		s.coord.TokenStarted(bespokeReadinessToken)
	}

	params := map[string]interface{}{
		"processId": nil,
		"rootUri":   "file://" + s.WorkspaceRoot,
		"workspaceFolders": []map[string]string{
			{"uri": "file://" + s.WorkspaceRoot, "name": "workspace"},
		},
		"capabilities": map[string]interface{}{
			"general": map[string]interface{}{
				"positionEncodings": []string{"utf-16"},
			},
			"textDocument": map[string]interface{}{
				"documentSymbol": map[string]interface{}{
					"hierarchicalDocumentSymbolSupport": true,
				},
				"definition": map[string]interface{}{"linkSupport": true},
				"references": map[string]interface{}{},
			},
			"workspace": map[string]interface{}{
				"workspaceFolders": true,
				"didChangeWatchedFiles": map[string]interface{}{
					"dynamicRegistration": true,
				},
				"didChangeConfiguration": map[string]interface{}{
					"dynamicRegistration": true,
				},
			},
			"window": map[string]interface{}{
				"workDoneProgress": true,
			},
		},
		"initializationOptions": s.strategy.BuildInitializeParams(s.WorkspaceRoot),
	}

	var result json.RawMessage
	if err := s.rpc.Request(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	s.capabilities = result
	s.coord.InitializeResponseReceived()

	if err := s.rpc.Notify(ctx, "initialized", map[string]interface{}{}); err != nil {
		return err
	}
	s.coord.InitializedSent()

	return nil
}

// Shutdown runs the graduated teardown (§4.3) and marks the coordinator
// Stopped.
func (s *Session) Shutdown(ctx context.Context) error {
	s.coord.StopRequested()
	err := s.host.Shutdown(ctx,
		func(shCtx context.Context) error { return s.rpc.Request(shCtx, "shutdown", nil, nil) },
		func(exCtx context.Context) error { return s.rpc.Notify(exCtx, "exit", nil) },
	)
	s.coord.Stopped()
	return err
}

// IsAlive implements types.LanguageClientInterface.
func (s *Session) IsAlive() bool {
	select {
	case <-s.host.Terminated():
		return false
	default:
		return true
	}
}

// Close implements types.LanguageClientInterface.
func (s *Session) Close() error {
	return s.Shutdown(context.Background())
}

// WaitReady blocks until the readiness coordinator reaches Ready (§4.6).
func (s *Session) WaitReady(ctx context.Context) error {
	return s.coord.WaitReady(ctx)
}

// State reports the session's current readiness state, for status-style
// API surfaces (cmd/lsp-session-manager's "session/status" method).
func (s *Session) State() readiness.State {
	return s.coord.State()
}

// Capabilities returns the raw "initialize" response capabilities object.
func (s *Session) Capabilities() json.RawMessage {
	return s.capabilities
}

// Request is a generic passthrough to the underlying RPC multiplexer (C2),
// for callers (the TCP API front-end in cmd/lsp-session-manager) that need
// to forward an arbitrary LSP method C7 doesn't wrap in a convenience call.
func (s *Session) Request(ctx context.Context, method string, params, result interface{}) error {
	if !readiness.AllowedBeforeReady(method) {
		if err := s.coord.WaitReady(ctx); err != nil {
			return err
		}
	}
	return s.rpc.Request(ctx, method, params, result)
}

// Notify is a generic passthrough for fire-and-forget notifications
// (textDocument/didOpen, textDocument/didChange, textDocument/didClose).
func (s *Session) Notify(ctx context.Context, method string, params interface{}) error {
	return s.rpc.Notify(ctx, method, params)
}
