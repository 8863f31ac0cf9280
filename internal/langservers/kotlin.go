package langservers

import (
	"github.com/solidlsp/solidlsp/internal/deps"
	"github.com/solidlsp/solidlsp/internal/process"
	"github.com/solidlsp/solidlsp/internal/protocol"
	"github.com/solidlsp/solidlsp/types"
)

// defaultKotlinLSPVersion pins the server version used when no
// kotlin_lsp_version setting is supplied, ported from
// kotlin_language_server.py's DEFAULT_KOTLIN_LSP_VERSION.
const defaultKotlinLSPVersion = "261.13587.0"

// Kotlin is a synchronous-indexing server (§4.6): its "initialize"
// response isn't returned until the workspace is queryable, so it never
// sends $/progress and needs no bespoke readiness signal.
type Kotlin struct {
	Provider deps.KotlinProvider
}

func NewKotlin(resourcesDir string) *Kotlin {
	return &Kotlin{Provider: deps.KotlinProvider{ResourcesDir: resourcesDir, DefaultVersion: defaultKotlinLSPVersion}}
}

func (k *Kotlin) LanguageServer() types.LanguageServer { return types.LanguageServerKotlin }

func (k *Kotlin) BuildLaunchDescriptor(platform string, settings map[string]string) (process.LaunchDescriptor, error) {
	return k.Provider.Resolve(platform, settings)
}

func (k *Kotlin) BuildInitializeParams(workspaceRoot string) map[string]interface{} {
	return map[string]interface{}{
		"storagePath": workspaceRoot,
	}
}

func (k *Kotlin) IgnoredDirectories() []string {
	return withBaseIgnored("build", "out", ".gradle", ".idea")
}

func (k *Kotlin) ClassifyReadiness(method string, params map[string]interface{}) (ReadinessSignal, bool) {
	return ReadinessSignal{}, false
}

func (k *Kotlin) HasBespokeReadinessSignal() bool { return false }

func (k *Kotlin) RemapSymbolKind(kind protocol.SymbolKind) protocol.SymbolKind {
	return kind
}

func (k *Kotlin) RequestTimeoutSeconds() int  { return 30 }
func (k *Kotlin) IndexingTimeoutSeconds() int { return 120 }
