package readiness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/solidlsp/solidlsp/internal/lsperrors"
)

// ProgressEventKind mirrors LSP's $/progress "kind" field.
type ProgressEventKind string

const (
	ProgressBegin  ProgressEventKind = "begin"
	ProgressReport ProgressEventKind = "report"
	ProgressEnd    ProgressEventKind = "end"
)

// Coordinator is one session's readiness state machine: a single lock
// guards both the state value and the progress-token set, per §5 "Shared
// resources" (hold time O(1)).
type Coordinator struct {
	mu    sync.Mutex
	state State
	err   error

	tokens      map[string]bool
	latchSet    bool // true means "indexing complete" (token set empty)
	readyCh     chan struct{}
	readyClosed bool

	IndexingTimeout time.Duration
}

// New constructs a Coordinator starting in Spawning, with the latch
// initially SET (synchronous-indexing default per §4.6 — a server that
// never reports progress never clears it).
func New(indexingTimeout time.Duration) *Coordinator {
	return &Coordinator{
		state:           Spawning,
		tokens:          make(map[string]bool),
		latchSet:        true,
		readyCh:         make(chan struct{}),
		IndexingTimeout: indexingTimeout,
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TransportConnected fires Spawning -> Initializing.
func (c *Coordinator) TransportConnected() {
	c.transition(Spawning, Initializing)
}

// InitializeResponseReceived fires Initializing -> AwaitingInitialized.
func (c *Coordinator) InitializeResponseReceived() {
	c.transition(Initializing, AwaitingInitialized)
}

// InitializedSent fires AwaitingInitialized -> Indexing, clearing the latch
// iff a progress token already exists (created between the initialize
// response and this call), otherwise moving straight through to Ready.
func (c *Coordinator) InitializedSent() {
	c.mu.Lock()
	if c.state != AwaitingInitialized {
		c.mu.Unlock()
		return
	}
	c.state = Indexing
	anyTokens := len(c.tokens) > 0
	if anyTokens {
		c.latchSet = false
	}
	becameReady := !anyTokens && c.latchSet
	if becameReady {
		c.state = Ready
	}
	c.mu.Unlock()

	if becameReady {
		c.closeReady()
	}
}

// TokenStarted registers a progress token as outstanding, clearing the
// latch. Both workDoneProgress/create and a bare $/progress begin count as
// "token started" (§4.6 tie-break).
func (c *Coordinator) TokenStarted(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[token] = true
	c.latchSet = false
}

// TokenEnded retires token. Unknown tokens are ignored. If the tracked set
// becomes empty, the latch is SET and, if we were Indexing, the state
// advances to Ready.
func (c *Coordinator) TokenEnded(token string) {
	c.mu.Lock()
	delete(c.tokens, token)
	becameReady := false
	if len(c.tokens) == 0 {
		c.latchSet = true
		if c.state == Indexing {
			c.state = Ready
			becameReady = true
		}
	}
	c.mu.Unlock()

	if becameReady {
		c.closeReady()
	}
}

// Progress applies one $/progress notification's kind to the token's
// lifecycle.
func (c *Coordinator) Progress(token string, kind ProgressEventKind) {
	switch kind {
	case ProgressBegin:
		c.TokenStarted(token)
	case ProgressEnd:
		c.TokenEnded(token)
	case ProgressReport:
		// no state transition; report carries only UI text/percentage.
	}
}

// WaitReady blocks until the session reaches Ready, the IndexingTimeout
// elapses (in which case Ready is forced and nil is returned per §4.6/§7:
// "warning, force Ready, continue"), or ctx is done.
func (c *Coordinator) WaitReady(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	readyCh := c.readyCh
	c.mu.Unlock()

	if state == Ready {
		return nil
	}
	if state == Failed || state == Stopped {
		return fmt.Errorf("%w: session is %s", lsperrors.ErrSessionNotReady, state)
	}

	timeout := c.IndexingTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	select {
	case <-readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		c.forceReady()
		return nil
	}
}

func (c *Coordinator) forceReady() {
	c.mu.Lock()
	becameReady := c.state == Indexing
	if becameReady {
		c.state = Ready
		c.latchSet = true
	}
	c.mu.Unlock()
	if becameReady {
		c.closeReady()
	}
}

// Fail transitions unconditionally to Failed, recording err for later
// inspection (§4.6 "* -> Failed").
func (c *Coordinator) Fail(err error) {
	c.mu.Lock()
	c.state = Failed
	c.err = err
	c.mu.Unlock()
}

// Err returns the error that caused a transition to Failed, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// StopRequested fires Ready -> Stopping.
func (c *Coordinator) StopRequested() {
	c.transition(Ready, Stopping)
}

// Stopped fires Stopping -> Stopped.
func (c *Coordinator) Stopped() {
	c.transition(Stopping, Stopped)
}

func (c *Coordinator) transition(from, to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == from {
		c.state = to
	}
}

func (c *Coordinator) closeReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.readyClosed {
		c.readyClosed = true
		close(c.readyCh)
	}
}
