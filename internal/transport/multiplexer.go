// Package transport implements the RPC multiplexer (C2): it correlates
// outbound requests with inbound responses by id, dispatches inbound
// notifications and server-originated requests to registered handlers, and
// enforces per-request timeouts. Built directly on sourcegraph/jsonrpc2,
// which already understands request/response correlation over an
// ObjectStream; Session adds the handler-registry and timeout contract C2
// specifies.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/solidlsp/solidlsp/internal/lsperrors"
)

// RequestHandler answers a server-originated request and must return a
// result (or an error, turned into a JSON-RPC error reply).
type RequestHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// NotificationHandler fires-and-forgets on an inbound notification.
type NotificationHandler func(params json.RawMessage)

const defaultRequestTimeout = 30 * time.Second

// Session is the RPC multiplexer for one spawned language server.
type Session struct {
	conn *jsonrpc2.Conn

	mu                    sync.RWMutex
	requestHandlers       map[string]RequestHandler
	notificationHandlers  map[string]NotificationHandler
	defaultRequestTimeout time.Duration
}

// NewSession starts the multiplexer over stream (normally an
// rpcframe.FrameStream wrapping a subprocess's stdio). The multiplexer owns
// both the inbound and outbound logical loops via jsonrpc2.Conn internally.
func NewSession(ctx context.Context, stream jsonrpc2.ObjectStream) *Session {
	s := &Session{
		requestHandlers:       make(map[string]RequestHandler),
		notificationHandlers:  make(map[string]NotificationHandler),
		defaultRequestTimeout: defaultRequestTimeout,
	}
	s.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.dispatch))
	return s
}

// OnRequest registers a handler for a server-originated request method.
func (s *Session) OnRequest(method string, h RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestHandlers[method] = h
}

// OnNotification registers a handler for an inbound notification method.
func (s *Session) OnNotification(method string, h NotificationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationHandlers[method] = h
}

// SetRequestTimeout sets the default per-request timeout applied by Request
// when the caller's context carries no earlier deadline.
func (s *Session) SetRequestTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultRequestTimeout = d
}

// Request sends method(params) and blocks until a matching response arrives
// or the timeout elapses. result, if non-nil, receives the unmarshalled
// response. A context deadline already set by the caller takes precedence
// over the session's default timeout.
func (s *Session) Request(ctx context.Context, method string, params, result interface{}) error {
	s.mu.RLock()
	timeout := s.defaultRequestTimeout
	s.mu.RUnlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return s.translateCallErr(ctx, method, s.conn.Call(ctx, method, params, result))
}

// translateCallErr maps a raw jsonrpc2.Call error onto the core's error
// taxonomy (§7): a cancelled/expired context becomes ErrTimeout, a JSON-RPC
// error object becomes RemoteError, a closed connection becomes
// ErrTransportClosed, anything else is a protocol error.
func (s *Session) translateCallErr(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %v", lsperrors.ErrTimeout, method, ctx.Err())
	}

	if errors.Is(err, jsonrpc2.ErrClosed) {
		return fmt.Errorf("%w: %s: %v", lsperrors.ErrTransportClosed, method, err)
	}

	if rpcErr, ok := err.(*jsonrpc2.Error); ok {
		return &lsperrors.RemoteError{Code: int(rpcErr.Code), Message: rpcErr.Message}
	}

	return fmt.Errorf("%w: %s: %v", lsperrors.ErrProtocolError, method, err)
}

// Notify sends method(params) without waiting for a response.
func (s *Session) Notify(ctx context.Context, method string, params interface{}) error {
	if err := s.conn.Notify(ctx, method, params); err != nil {
		return fmt.Errorf("%w: notify %s: %v", lsperrors.ErrTransportClosed, method, err)
	}
	return nil
}

// Close shuts the underlying connection down; pending requests fail with
// ErrTransportClosed.
func (s *Session) Close() error {
	return s.conn.Close()
}

// DisconnectNotify returns a channel closed when the underlying stream is
// lost, signalling the session should move to the Failed state.
func (s *Session) DisconnectNotify() <-chan struct{} {
	return s.conn.DisconnectNotify()
}

// dispatch is the single entry point for all inbound traffic: jsonrpc2
// already distinguishes requests (req.Notif == false) from notifications
// (req.Notif == true) for us, since it owns response/request correlation.
func (s *Session) dispatch(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var params json.RawMessage
	if req.Params != nil {
		params = json.RawMessage(*req.Params)
	}

	if req.Notif {
		s.mu.RLock()
		h, ok := s.notificationHandlers[req.Method]
		s.mu.RUnlock()
		if ok {
			h(params)
		}
		return nil, nil
	}

	s.mu.RLock()
	h, ok := s.requestHandlers[req.Method]
	s.mu.RUnlock()
	if !ok {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
	return h(ctx, params)
}
