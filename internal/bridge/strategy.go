package bridge

import (
	"fmt"

	"github.com/solidlsp/solidlsp/internal/langservers"
	"github.com/solidlsp/solidlsp/types"
)

// strategyFor builds the per-language strategy object for one configured
// server (Design Note §9 "Polymorphism across language servers").
func strategyFor(ls types.LanguageServer, workspaceRoot, resourcesDir string) (langservers.Strategy, error) {
	switch ls {
	case types.LanguageServerKotlin:
		return langservers.NewKotlin(resourcesDir), nil
	case types.LanguageServerRubyLSP:
		return langservers.NewRubyLSP(), nil
	case types.LanguageServerSolargraph:
		return langservers.NewSolargraph(workspaceRoot), nil
	case types.LanguageServerMarkdown:
		return langservers.NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("bridge: no strategy registered for language server %q", ls)
	}
}
