// Package langservers holds the per-language server strategy objects
// (Design Note §9 "Polymorphism across language servers"): each server has
// its own launch command, initialization options, ignored directories,
// readiness signal, and symbol-kind remap table.
package langservers

import (
	"github.com/solidlsp/solidlsp/internal/process"
	"github.com/solidlsp/solidlsp/internal/protocol"
	"github.com/solidlsp/solidlsp/types"
)

// ReadinessSignal classifies one inbound notification as relevant (or not)
// to a server-specific "service ready" detector that sits alongside the
// generic initialize/progress-token state machine (C6). Most servers need
// nothing beyond the generic machine; Solargraph is the one exception
// (§9 Open question).
type ReadinessSignal struct {
	Ready bool
}

// Strategy is the capability set a per-language adapter implements
// (Design Note §9).
type Strategy interface {
	// LanguageServer identifies which server this strategy drives.
	LanguageServer() types.LanguageServer

	// BuildLaunchDescriptor resolves the command line for this server,
	// typically delegating to an internal/deps.Provider.
	BuildLaunchDescriptor(platform string, settings map[string]string) (process.LaunchDescriptor, error)

	// BuildInitializeParams returns the initializationOptions blob (and any
	// other non-generic fields) this server expects in "initialize".
	BuildInitializeParams(workspaceRoot string) map[string]interface{}

	// IgnoredDirectories lists directory names pruned from symbol-tree
	// walks and reference results for this server (§4.7).
	IgnoredDirectories() []string

	// ClassifyReadiness inspects one inbound notification method/params
	// outside the generic progress-token machinery, for servers with a
	// bespoke "ready" signal. ok is false when the notification carries no
	// readiness information for this server.
	ClassifyReadiness(method string, params map[string]interface{}) (signal ReadinessSignal, ok bool)

	// HasBespokeReadinessSignal reports whether this strategy's readiness
	// depends on ClassifyReadiness ever firing (Solargraph), as opposed to
	// only the generic initialize/progress-token machinery (everyone else).
	HasBespokeReadinessSignal() bool

	// RemapSymbolKind adjusts a raw LSP SymbolKind before it reaches C7
	// consumers (e.g. Markdown's String -> Namespace remap).
	RemapSymbolKind(kind protocol.SymbolKind) protocol.SymbolKind

	// RequestTimeoutSeconds / IndexingTimeoutSeconds give this server's
	// defaults absent an explicit config override (§6).
	RequestTimeoutSeconds() int
	IndexingTimeoutSeconds() int
}

// baseIgnoredDirs are pruned for every strategy in addition to its own
// list; directories such as vendor, .bundle, tmp and log come from the
// per-strategy lists.
var baseIgnoredDirs = []string{".git", "node_modules"}

func withBaseIgnored(extra ...string) []string {
	return append(append([]string{}, baseIgnoredDirs...), extra...)
}
