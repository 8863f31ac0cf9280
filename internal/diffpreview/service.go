// Package diffpreview implements the Diff Preview Service (C8): a
// deterministic unified-diff generator with add/remove counters and a
// single-slot "latest preview" register, ported from diff_manager.py onto
// pmezard/go-difflib (the teacher's declared diff dependency).
package diffpreview

import (
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

// Preview is one generated diff (§3 "Diff preview").
type Preview struct {
	FilePath     string `json:"filePath"`
	SymbolName   string `json:"symbolName,omitempty"`
	UnifiedDiff  string `json:"unifiedDiff"`
	LinesAdded   int    `json:"linesAdded"`
	LinesRemoved int    `json:"linesRemoved"`
}

// Service generates diff previews and holds the single process-wide
// "latest preview" slot (§3, §5 "Process-wide state").
type Service struct {
	mu     sync.Mutex
	latest *Preview
}

// NewService constructs an empty Service.
func NewService() *Service {
	return &Service{}
}

// GeneratePreview builds a unified diff between old and new content,
// headers "a/<path>"/"b/<path>", no trailing lineterm (§4.8, §6 "Diff
// output format"). It does not touch the latest-preview slot; callers that
// want persistence call SetLatest explicitly.
func GeneratePreview(old, newContent, filePath, symbolName string) Preview {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filePath,
		ToFile:   "b/" + filePath,
		Context:  3,
		Eol:      "\n",
	}
	// GetUnifiedDiffString always appends a trailing newline; trim it so
	// output matches the "no trailing blank line terminator" contract.
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		text = ""
	}
	text = strings.TrimSuffix(text, "\n")

	added, removed := countChanges(text)

	return Preview{
		FilePath:     filePath,
		SymbolName:   symbolName,
		UnifiedDiff:  text,
		LinesAdded:   added,
		LinesRemoved: removed,
	}
}

// countChanges counts lines starting with '+'/'-' excluding the "+++"/"---"
// file headers (§4.8 step 3).
func countChanges(unifiedDiff string) (added, removed int) {
	for _, line := range strings.Split(unifiedDiff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// SetLatest overwrites the single latest-preview slot.
func (s *Service) SetLatest(p Preview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.latest = &cp
}

// ClearLatest empties the slot.
func (s *Service) ClearLatest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
}

// GetLatest reads the slot; nil if empty.
func (s *Service) GetLatest() *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil
	}
	cp := *s.latest
	return &cp
}
