// Package backend implements the Backend Dispatcher (C9): resolves which
// subsystem (in-process LSP core vs an external editor-plugin backend)
// services a project's symbol queries, with a session default and
// per-project overrides (§4.9).
package backend

import (
	"fmt"
	"sync"

	"github.com/solidlsp/solidlsp/internal/lsperrors"
)

// Kind identifies a backend family.
type Kind string

const (
	KindLSP       Kind = "LSP"
	KindJetBrains Kind = "JetBrains"
)

// Dispatcher resolves and latches one session's effective backend per
// project (§4.9, §3 "Project/backend mapping").
type Dispatcher struct {
	mu             sync.Mutex
	sessionDefault Kind
	activated      map[string]Kind // project id -> resolved (latched) backend
}

// NewDispatcher constructs a Dispatcher with the given session default.
func NewDispatcher(sessionDefault Kind) *Dispatcher {
	return &Dispatcher{sessionDefault: sessionDefault, activated: make(map[string]Kind)}
}

// Activate resolves projectID's effective backend. override is the
// project's configured override, or "" if none. Rules (§4.9):
//   - First activation of a project: effective = override if set, else the
//     backend already shared by activated projects, else session default.
//   - Re-activation: must agree with whatever was resolved the first time,
//     honoring the "override is either null or equal to the currently
//     effective backend" rule — otherwise BackendMismatch.
func (d *Dispatcher) Activate(projectID string, override Kind) (Kind, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if resolved, ok := d.activated[projectID]; ok {
		if override != "" && override != resolved {
			return "", fmt.Errorf("%w: project %q already activated as %s, override requests %s",
				lsperrors.ErrBackendMismatch, projectID, resolved, override)
		}
		return resolved, nil
	}

	effective := d.sessionDefault
	if override != "" {
		effective = override
	}

	// Compare against the currently effective backend across all already
	// activated projects: a later project's override must be null or equal
	// to that shared effective backend (switching mid-session would require
	// tearing down live sessions, which §4.9 disallows).
	if current, ok := d.currentEffective(); ok {
		if override != "" && override != current {
			return "", fmt.Errorf("%w: session effective backend is %s, project %q resolves to %s",
				lsperrors.ErrBackendMismatch, current, projectID, effective)
		}
		effective = current
	}

	d.activated[projectID] = effective
	return effective, nil
}

// currentEffective returns the backend shared by all already-activated
// projects, if any have been activated.
func (d *Dispatcher) currentEffective() (Kind, bool) {
	for _, k := range d.activated {
		return k, true
	}
	return "", false
}

// Resolved returns the previously-resolved backend for projectID, if any.
func (d *Dispatcher) Resolved(projectID string) (Kind, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k, ok := d.activated[projectID]
	return k, ok
}
