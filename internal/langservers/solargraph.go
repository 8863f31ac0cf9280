package langservers

import (
	"strings"

	"github.com/solidlsp/solidlsp/internal/deps"
	"github.com/solidlsp/solidlsp/internal/process"
	"github.com/solidlsp/solidlsp/internal/protocol"
	"github.com/solidlsp/solidlsp/types"
)

// Solargraph is an asynchronous-indexing server with a bespoke, fragile
// "service ready" signal (§9 Open question, preserved as a policy decision
// rather than re-derived): either a "language/status" notification with
// type ProjectStatus and message "OK", or a "window/logMessage" whose text
// contains "Solargraph is ready" — both ported from solargraph.py's
// service_ready_event.set() call sites.
type Solargraph struct {
	Provider deps.SolargraphProvider
}

func NewSolargraph(workspaceRoot string) *Solargraph {
	return &Solargraph{Provider: deps.SolargraphProvider{WorkspaceRoot: workspaceRoot}}
}

func (s *Solargraph) LanguageServer() types.LanguageServer { return types.LanguageServerSolargraph }

func (s *Solargraph) BuildLaunchDescriptor(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	return s.Provider.Resolve(platform, settings)
}

func (s *Solargraph) BuildInitializeParams(workspaceRoot string) map[string]interface{} {
	return map[string]interface{}{}
}

// solargraphIgnoredDirs ported verbatim from solargraph.py.
func (s *Solargraph) IgnoredDirectories() []string {
	return withBaseIgnored("vendor")
}

func (s *Solargraph) ClassifyReadiness(method string, params map[string]interface{}) (ReadinessSignal, bool) {
	switch method {
	case "language/status":
		if params["type"] == "ProjectStatus" && params["message"] == "OK" {
			return ReadinessSignal{Ready: true}, true
		}
		return ReadinessSignal{}, false
	case "window/logMessage":
		if msg, ok := params["message"].(string); ok && strings.Contains(msg, "Solargraph is ready") {
			return ReadinessSignal{Ready: true}, true
		}
		return ReadinessSignal{}, false
	default:
		return ReadinessSignal{}, false
	}
}

func (s *Solargraph) RemapSymbolKind(kind protocol.SymbolKind) protocol.SymbolKind {
	return kind
}

func (s *Solargraph) HasBespokeReadinessSignal() bool { return true }

// RequestTimeoutSeconds: solargraph.py sets a 120s request timeout
// (Bundler-backed startup can be slow), matching §6's "120 for
// Bundler-based Ruby" default.
func (s *Solargraph) RequestTimeoutSeconds() int  { return 120 }
func (s *Solargraph) IndexingTimeoutSeconds() int { return 120 }
