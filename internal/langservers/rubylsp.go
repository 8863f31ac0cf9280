package langservers

import (
	"github.com/solidlsp/solidlsp/internal/deps"
	"github.com/solidlsp/solidlsp/internal/process"
	"github.com/solidlsp/solidlsp/internal/protocol"
	"github.com/solidlsp/solidlsp/types"
)

// RubyLSP drives Shopify's ruby-lsp, a synchronous-indexing server — ported
// from ruby_lsp.py, which sets a 30s request timeout and never waits on a
// bespoke readiness signal beyond the generic initialize handshake.
type RubyLSP struct {
	Provider deps.AmbientProvider
}

func NewRubyLSP() *RubyLSP {
	return &RubyLSP{Provider: deps.AmbientProvider{ExecutableNames: []string{"ruby-lsp"}, Args: []string{}}}
}

func (r *RubyLSP) LanguageServer() types.LanguageServer { return types.LanguageServerRubyLSP }

func (r *RubyLSP) BuildLaunchDescriptor(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	return r.Provider.Resolve(platform, settings)
}

func (r *RubyLSP) BuildInitializeParams(workspaceRoot string) map[string]interface{} {
	return map[string]interface{}{
		"enabledFeatures": map[string]bool{
			"diagnostics": false,
		},
	}
}

// rubyIgnoredDirs ported verbatim from ruby_lsp.py's ignore list.
func (r *RubyLSP) IgnoredDirectories() []string {
	return withBaseIgnored(
		"vendor", ".bundle", "tmp", "log", "coverage", ".yardoc",
		"doc", "storage", "public/packs", "public/webpack", "public/assets",
	)
}

func (r *RubyLSP) ClassifyReadiness(method string, params map[string]interface{}) (ReadinessSignal, bool) {
	return ReadinessSignal{}, false
}

func (r *RubyLSP) HasBespokeReadinessSignal() bool { return false }

func (r *RubyLSP) RemapSymbolKind(kind protocol.SymbolKind) protocol.SymbolKind {
	return kind
}

func (r *RubyLSP) RequestTimeoutSeconds() int  { return 30 }
func (r *RubyLSP) IndexingTimeoutSeconds() int { return 120 }
