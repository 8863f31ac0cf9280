package backend

import "fmt"

// JetBrainsStub stands in for the real out-of-process editor-plugin
// backend (§1 "Out of scope (collaborators)"): the core only needs to know
// this backend exists and can be dispatched to, not how it talks to the
// IDE. SPEC_FULL.md adds this stub so C9's dispatch rules have a second
// real Kind to route between instead of only ever resolving to KindLSP.
type JetBrainsStub struct{}

// DocumentSymbols always reports the backend as unreachable; a real
// implementation would proxy to the IDE plugin's own RPC channel.
func (JetBrainsStub) DocumentSymbols(projectID, path string) error {
	return fmt.Errorf("backend: JetBrains backend not wired for project %q (stub)", projectID)
}
