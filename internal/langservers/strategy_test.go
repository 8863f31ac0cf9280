package langservers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solidlsp/solidlsp/internal/protocol"
)

// TestSolargraphClassifyReadinessDualSignal covers §9's Open Question:
// Solargraph's bespoke readiness fires on either of two independent signals.
func TestSolargraphClassifyReadinessDualSignal(t *testing.T) {
	s := NewSolargraph("/workspace")

	signal, ok := s.ClassifyReadiness("language/status", map[string]interface{}{
		"type": "ProjectStatus", "message": "OK",
	})
	assert.True(t, ok)
	assert.True(t, signal.Ready)

	signal, ok = s.ClassifyReadiness("window/logMessage", map[string]interface{}{
		"message": "Solargraph is ready to respond",
	})
	assert.True(t, ok)
	assert.True(t, signal.Ready)
}

func TestSolargraphClassifyReadinessIgnoresUnrelatedNotifications(t *testing.T) {
	s := NewSolargraph("/workspace")

	_, ok := s.ClassifyReadiness("language/status", map[string]interface{}{
		"type": "ProjectStatus", "message": "Parsing",
	})
	assert.False(t, ok)

	_, ok = s.ClassifyReadiness("textDocument/publishDiagnostics", map[string]interface{}{})
	assert.False(t, ok)
}

func TestSolargraphIgnoredDirectoriesIncludesVendorAndBase(t *testing.T) {
	s := NewSolargraph("/workspace")
	dirs := s.IgnoredDirectories()
	assert.Contains(t, dirs, "vendor")
	assert.Contains(t, dirs, ".git")
	assert.Contains(t, dirs, "node_modules")
}

func TestRubyLSPHasNoBespokeReadinessSignal(t *testing.T) {
	r := NewRubyLSP()
	assert.False(t, r.HasBespokeReadinessSignal())

	_, ok := r.ClassifyReadiness("window/logMessage", map[string]interface{}{"message": "anything"})
	assert.False(t, ok)
}

func TestRubyLSPIgnoredDirectoriesMatchesOriginal(t *testing.T) {
	r := NewRubyLSP()
	dirs := r.IgnoredDirectories()
	for _, want := range []string{"vendor", ".bundle", "tmp", "log", "coverage", ".yardoc", "doc", "storage", "public/packs", "public/webpack", "public/assets"} {
		assert.Contains(t, dirs, want)
	}
}

func TestKotlinHasNoBespokeReadinessSignal(t *testing.T) {
	k := NewKotlin("/resources")
	assert.False(t, k.HasBespokeReadinessSignal())
	assert.Equal(t, defaultKotlinLSPVersion, k.Provider.DefaultVersion)
}

func TestMarkdownRemapsStringToNamespace(t *testing.T) {
	m := NewMarkdown()
	assert.NotEqual(t, m.RemapSymbolKind(5), m.RemapSymbolKind(15))
	assert.Equal(t, protocol.SymbolKindNamespace, m.RemapSymbolKind(protocol.SymbolKindString))
}
