// Package process implements the Subprocess Host (C3): it spawns a
// language server as a child process, owns its stdio, and tears it down
// through the LSP shutdown/exit handshake with graduated grace periods.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/solidlsp/solidlsp/internal/lsperrors"
	"github.com/solidlsp/solidlsp/internal/logger"
)

// LaunchDescriptor is the immutable record a Dependency Provider (C4)
// resolves: executable, argv, working directory, and an environment overlay
// merged onto the inherited process environment.
type LaunchDescriptor struct {
	Executable string
	Args       []string
	Cwd        string
	// Env overlays inherited env. A key present with a nil value means
	// "unset this variable"; present with a non-nil empty string means
	// "set to empty", distinguishing the two per Design Note §9.
	Env      map[string]*string
	Platform string
}

// TerminalState describes how a session's subprocess ended.
type TerminalState struct {
	ExitCode   int
	Signaled   bool
	Signal     os.Signal
	Err        error
	GracefulOK bool
}

// Host owns one spawned language server's process and stdio.
type Host struct {
	log *logger.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	stderr  io.ReadCloser
	started bool
	term    *TerminalState
	termCh  chan struct{}

	ShutdownGrace time.Duration
	KillGrace     time.Duration
}

const (
	defaultShutdownGrace = 5 * time.Second
	defaultKillGrace     = 5 * time.Second
)

// NewHost constructs a Host bound to log for stderr forwarding.
func NewHost(log *logger.Logger) *Host {
	return &Host{
		log:           log,
		termCh:        make(chan struct{}),
		ShutdownGrace: defaultShutdownGrace,
		KillGrace:     defaultKillGrace,
	}
}

// Spawn starts the server described by d. Stdin/stdout are returned as raw
// streams for the caller to wrap in an rpcframe.FrameStream; stderr is
// drained to the logger in the background.
func (h *Host) Spawn(d LaunchDescriptor) (stdin io.WriteCloser, stdout io.ReadCloser, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return nil, nil, fmt.Errorf("process host already started")
	}

	cmd := exec.Command(d.Executable, d.Args...)
	cmd.Dir = d.Cwd
	cmd.Env = mergeEnv(os.Environ(), d.Env)

	stdin, err = cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stdin pipe: %v", lsperrors.ErrDependencyMissing, err)
	}
	stdout, err = cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stdout pipe: %v", lsperrors.ErrDependencyMissing, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stderr pipe: %v", lsperrors.ErrDependencyMissing, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("%w: starting %s: %v", lsperrors.ErrDependencyMissing, d.Executable, err)
	}

	h.cmd = cmd
	h.stdin = stdin
	h.stdout = stdout
	h.stderr = stderr
	h.started = true

	go h.drainStderr()
	go h.reap()

	return stdin, stdout, nil
}

func (h *Host) drainStderr() {
	buf := make([]byte, 4096)
	for {
		n, err := h.stderr.Read(buf)
		if n > 0 {
			h.log.Warn("server stderr: " + string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

func (h *Host) reap() {
	err := h.cmd.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()

	term := &TerminalState{Err: err}
	if err == nil {
		term.ExitCode = 0
		term.GracefulOK = true
	} else if exitErr, ok := err.(*exec.ExitError); ok {
		term.ExitCode = exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			term.Signaled = true
			term.Signal = status.Signal()
		}
	}
	h.term = term
	close(h.termCh)
}

// Terminated returns a channel closed once the subprocess has been reaped.
func (h *Host) Terminated() <-chan struct{} {
	return h.termCh
}

// TerminalState returns the recorded exit state, or nil if the process
// hasn't exited yet.
func (h *Host) TerminalState() *TerminalState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.term
}

// Shutdown performs the graduated teardown: request handler sends
// "shutdown" then "exit" via send/notify, waits ShutdownGrace for the
// process to exit on its own, then SIGTERMs and waits KillGrace, then
// SIGKILLs.
func (h *Host) Shutdown(ctx context.Context, sendShutdown func(context.Context) error, notifyExit func(context.Context) error) error {
	if sendShutdown != nil {
		shCtx, cancel := context.WithTimeout(ctx, h.ShutdownGrace)
		_ = sendShutdown(shCtx)
		cancel()
	}
	if notifyExit != nil {
		_ = notifyExit(ctx)
	}

	select {
	case <-h.Terminated():
		return nil
	case <-time.After(h.ShutdownGrace):
	}

	h.mu.Lock()
	proc := h.cmd.Process
	h.mu.Unlock()
	if proc != nil {
		_ = proc.Signal(syscall.SIGTERM)
	}

	select {
	case <-h.Terminated():
		return nil
	case <-time.After(h.KillGrace):
	}

	if proc != nil {
		if err := proc.Kill(); err != nil {
			return fmt.Errorf("%w: killing process: %v", lsperrors.ErrTransportClosed, err)
		}
	}
	<-h.Terminated()
	return nil
}

// mergeEnv overlays overlay onto base. A nil value unsets the key; a
// non-nil (possibly empty) value sets it. base entries not mentioned in
// overlay pass through unchanged.
func mergeEnv(base []string, overlay map[string]*string) []string {
	if len(overlay) == 0 {
		return base
	}

	idx := make(map[string]int, len(base))
	result := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				idx[kv[:i]] = len(result)
				break
			}
		}
		result = append(result, kv)
	}

	for key, val := range overlay {
		if val == nil {
			if i, ok := idx[key]; ok {
				result[i] = "" // neutralised below
			}
			continue
		}
		entry := key + "=" + *val
		if i, ok := idx[key]; ok {
			result[i] = entry
		} else {
			idx[key] = len(result)
			result = append(result, entry)
		}
	}

	out := result[:0]
	for _, kv := range result {
		if kv != "" {
			out = append(out, kv)
		}
	}
	return out
}
