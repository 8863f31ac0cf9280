package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rng(startLine, startChar, endLine, endChar uint32) Range {
	return Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}

func TestContainsPositionWithinSingleLineRange(t *testing.T) {
	r := rng(1, 2, 1, 8)
	assert.True(t, ContainsPosition(r, Position{Line: 1, Character: 2}))
	assert.True(t, ContainsPosition(r, Position{Line: 1, Character: 8}))
	assert.True(t, ContainsPosition(r, Position{Line: 1, Character: 5}))
}

func TestContainsPositionOutsideSingleLineRange(t *testing.T) {
	r := rng(1, 2, 1, 8)
	assert.False(t, ContainsPosition(r, Position{Line: 1, Character: 1}))
	assert.False(t, ContainsPosition(r, Position{Line: 1, Character: 9}))
	assert.False(t, ContainsPosition(r, Position{Line: 0, Character: 5}))
	assert.False(t, ContainsPosition(r, Position{Line: 2, Character: 5}))
}

func TestContainsPositionMultiLineRangeMiddleLineAnyColumn(t *testing.T) {
	r := rng(1, 4, 5, 2)
	assert.True(t, ContainsPosition(r, Position{Line: 3, Character: 0}))
	assert.True(t, ContainsPosition(r, Position{Line: 3, Character: 9999}))
	assert.True(t, ContainsPosition(r, Position{Line: 1, Character: 4}))
	assert.False(t, ContainsPosition(r, Position{Line: 1, Character: 3}))
	assert.True(t, ContainsPosition(r, Position{Line: 5, Character: 2}))
	assert.False(t, ContainsPosition(r, Position{Line: 5, Character: 3}))
}
