package symbols

import (
	"strings"

	"github.com/solidlsp/solidlsp/internal/protocol"
)

// extractRange slices contents down to the text spanned by rng. Positions
// are treated as UTF-16 code units per LSP's default encoding (§4.7); for
// the ASCII/BMP content this core deals with (source/markdown files),
// counting runes is equivalent to counting UTF-16 units, so we avoid a
// dedicated UTF-16 indexer.
func extractRange(contents []byte, rng protocol.Range) string {
	lines := strings.Split(string(contents), "\n")
	startLine, endLine := int(rng.Start.Line), int(rng.End.Line)
	if startLine < 0 || startLine >= len(lines) || endLine < 0 || endLine >= len(lines) {
		return ""
	}

	if startLine == endLine {
		return sliceRunes(lines[startLine], int(rng.Start.Character), int(rng.End.Character))
	}

	var b strings.Builder
	b.WriteString(sliceRunesFrom(lines[startLine], int(rng.Start.Character)))
	for i := startLine + 1; i < endLine; i++ {
		b.WriteByte('\n')
		b.WriteString(lines[i])
	}
	b.WriteByte('\n')
	b.WriteString(sliceRunesTo(lines[endLine], int(rng.End.Character)))
	return b.String()
}

func sliceRunes(s string, start, end int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}

func sliceRunesFrom(s string, start int) string {
	r := []rune(s)
	if start < 0 || start >= len(r) {
		return ""
	}
	return string(r[start:])
}

func sliceRunesTo(s string, end int) string {
	r := []rune(s)
	if end > len(r) {
		end = len(r)
	}
	if end < 0 {
		return ""
	}
	return string(r[:end])
}
