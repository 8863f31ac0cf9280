package langservers

import (
	"github.com/solidlsp/solidlsp/internal/deps"
	"github.com/solidlsp/solidlsp/internal/process"
	"github.com/solidlsp/solidlsp/internal/protocol"
	"github.com/solidlsp/solidlsp/types"
)

// Markdown drives markdown-oxide. Its one notable quirk is the headline
// example from §4.7: headings are reported with SymbolKind String(15),
// remapped here to Namespace(3) so downstream consumers that filter out
// "low-level" kinds don't drop them.
type Markdown struct {
	Provider deps.AmbientProvider
}

func NewMarkdown() *Markdown {
	return &Markdown{Provider: deps.AmbientProvider{ExecutableNames: []string{"markdown-oxide"}}}
}

func (m *Markdown) LanguageServer() types.LanguageServer { return types.LanguageServerMarkdown }

func (m *Markdown) BuildLaunchDescriptor(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	return m.Provider.Resolve(platform, settings)
}

func (m *Markdown) BuildInitializeParams(workspaceRoot string) map[string]interface{} {
	return map[string]interface{}{}
}

func (m *Markdown) IgnoredDirectories() []string {
	return withBaseIgnored()
}

func (m *Markdown) ClassifyReadiness(method string, params map[string]interface{}) (ReadinessSignal, bool) {
	return ReadinessSignal{}, false
}

func (m *Markdown) HasBespokeReadinessSignal() bool { return false }

func (m *Markdown) RemapSymbolKind(kind protocol.SymbolKind) protocol.SymbolKind {
	if kind == protocol.SymbolKindString {
		return protocol.SymbolKindNamespace
	}
	return kind
}

func (m *Markdown) RequestTimeoutSeconds() int  { return 30 }
func (m *Markdown) IndexingTimeoutSeconds() int { return 120 }
