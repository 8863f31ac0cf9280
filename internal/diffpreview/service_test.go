package diffpreview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePreviewCountsAddedAndRemoved(t *testing.T) {
	old := "def greet\n  puts 'hi'\nend\n"
	newContent := "def greet\n  puts 'hello'\n  puts 'world'\nend\n"

	p := GeneratePreview(old, newContent, "lib/greet.rb", "greet")

	assert.Equal(t, "lib/greet.rb", p.FilePath)
	assert.Equal(t, "greet", p.SymbolName)
	assert.Equal(t, 2, p.LinesAdded)
	assert.Equal(t, 1, p.LinesRemoved)
	assert.Contains(t, p.UnifiedDiff, "a/lib/greet.rb")
	assert.Contains(t, p.UnifiedDiff, "b/lib/greet.rb")
	assert.NotContains(t, p.UnifiedDiff, "\n\n", "trailing lineterm must be trimmed")
}

func TestGeneratePreviewNoChangeIsEmptyDiff(t *testing.T) {
	content := "line one\nline two\n"
	p := GeneratePreview(content, content, "a.txt", "")

	assert.Empty(t, p.UnifiedDiff)
	assert.Zero(t, p.LinesAdded)
	assert.Zero(t, p.LinesRemoved)
}

func TestGeneratePreviewIsDeterministic(t *testing.T) {
	old := "a\nb\nc\n"
	newContent := "a\nx\nc\n"

	first := GeneratePreview(old, newContent, "f.txt", "")
	second := GeneratePreview(old, newContent, "f.txt", "")

	assert.Equal(t, first, second)
}

func TestLatestPreviewSlotLifecycle(t *testing.T) {
	s := NewService()
	assert.Nil(t, s.GetLatest(), "slot starts empty")

	p := GeneratePreview("a\n", "b\n", "f.txt", "sym")
	s.SetLatest(p)

	got := s.GetLatest()
	require.NotNil(t, got)
	assert.Equal(t, p, *got)

	// GetLatest must return a copy; mutating it must not affect the slot.
	got.SymbolName = "mutated"
	again := s.GetLatest()
	require.NotNil(t, again)
	assert.Equal(t, "sym", again.SymbolName)

	s.ClearLatest()
	assert.Nil(t, s.GetLatest())
}

func TestSetLatestOverwritesSingleSlot(t *testing.T) {
	s := NewService()
	s.SetLatest(GeneratePreview("a\n", "b\n", "one.txt", ""))
	s.SetLatest(GeneratePreview("c\n", "d\n", "two.txt", ""))

	got := s.GetLatest()
	require.NotNil(t, got)
	assert.Equal(t, "two.txt", got.FilePath)
}
