// Package lsperrors defines the error taxonomy shared across the LSP client
// core. Callers should compare with errors.Is against the sentinels below;
// every raise site wraps one of them with %w to keep the chain intact.
package lsperrors

import (
	"errors"
	"strconv"
)

var (
	// ErrTransportClosed is raised when a server's stdio pipe closes (EOF)
	// before a shutdown was requested.
	ErrTransportClosed = errors.New("lsp: transport closed")

	// ErrProtocolError is raised on an unparsable frame or non-conforming
	// JSON-RPC payload.
	ErrProtocolError = errors.New("lsp: protocol error")

	// ErrTimeout is raised when a request or the indexing phase exceeds its
	// configured ceiling.
	ErrTimeout = errors.New("lsp: timeout")

	// ErrCapabilityMissing is raised when a server's initialize response
	// lacks a capability the core requires.
	ErrCapabilityMissing = errors.New("lsp: required capability missing")

	// ErrNotFound indicates a symbol/name lookup yielded nothing. Not
	// treated as an operational failure by callers.
	ErrNotFound = errors.New("lsp: not found")

	// ErrPathIgnored indicates a path resolves under an ignored directory;
	// read APIs treat this the same as file-does-not-exist.
	ErrPathIgnored = errors.New("lsp: path ignored")

	// ErrBackendMismatch is raised when activating a project would require
	// switching a session's already-latched backend.
	ErrBackendMismatch = errors.New("lsp: backend mismatch")

	// ErrRemoteError wraps a JSON-RPC error object returned by the server.
	ErrRemoteError = errors.New("lsp: remote error")

	// ErrDependencyMissing is raised when a dependency provider cannot
	// resolve a launch command for a language.
	ErrDependencyMissing = errors.New("lsp: dependency missing")

	// ErrSessionNotReady is raised when a caller waits for readiness on a
	// session that is already Failed or Stopped; a session still starting
	// up is waited on instead.
	ErrSessionNotReady = errors.New("lsp: session not ready")
)

// RemoteError carries the JSON-RPC error code/message from a server
// response, wrapping ErrRemoteError so errors.Is(err, ErrRemoteError) holds.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return "lsp: remote error " + strconv.Itoa(e.Code) + ": " + e.Message
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteError
}
