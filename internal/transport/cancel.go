package transport

import (
	"context"
	"sync/atomic"

	"github.com/sourcegraph/jsonrpc2"
)

var cancelIDCounter uint64

// RequestCancellable behaves like Request but additionally sends
// $/cancelRequest to the server if ctx is cancelled (or times out) before a
// response arrives. The in-flight handler on the server side is expected to
// finish on its own; cancellation only stops us from waiting on it (§5
// "Cancellation").
func (s *Session) RequestCancellable(ctx context.Context, method string, params, result interface{}) error {
	id := jsonrpc2.ID{Num: atomic.AddUint64(&cancelIDCounter, 1)}

	done := make(chan error, 1)
	go func() {
		done <- s.conn.Call(ctx, method, params, result, jsonrpc2.PickID(id))
	}()

	select {
	case err := <-done:
		return s.translateCallErr(ctx, method, err)
	case <-ctx.Done():
		_ = s.conn.Notify(context.Background(), "$/cancelRequest", map[string]interface{}{"id": id})
		<-done // let the goroutine finish so it doesn't leak
		return s.translateCallErr(ctx, method, ctx.Err())
	}
}
