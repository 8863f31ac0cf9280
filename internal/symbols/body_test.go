package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRangeSingleLine(t *testing.T) {
	contents := []byte("def greet(name)\n  puts name\nend\n")
	got := extractRange(contents, rng(0, 0, 0, 16))
	assert.Equal(t, "def greet(name)", got)
}

func TestExtractRangeMultiLine(t *testing.T) {
	contents := []byte("def greet(name)\n  puts name\nend\n")
	got := extractRange(contents, rng(0, 0, 2, 3))
	assert.Equal(t, "def greet(name)\n  puts name\nend", got)
}

func TestExtractRangeOutOfBoundsReturnsEmpty(t *testing.T) {
	contents := []byte("one\ntwo\n")
	assert.Equal(t, "", extractRange(contents, rng(5, 0, 5, 2)))
}
