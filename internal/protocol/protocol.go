// Package protocol re-exports the LSP wire types the core needs from
// github.com/myleshyson/lsprotocol-go (the teacher's declared protocol-types
// dependency) under short local names, so the rest of the module can write
// protocol.Position instead of lsprotocol.Position everywhere.
package protocol

import (
	lsprotocol "github.com/myleshyson/lsprotocol-go"
)

type (
	Position       = lsprotocol.Position
	Range          = lsprotocol.Range
	Location       = lsprotocol.Location
	SymbolKind     = lsprotocol.SymbolKind
	DocumentSymbol = lsprotocol.DocumentSymbol
	Diagnostic     = lsprotocol.Diagnostic
)

// SymbolKind values used by the remapping table (C7) and init-params
// capability advertisement. These mirror the LSP specification's
// SymbolKind enum.
const (
	SymbolKindFile          = lsprotocol.SymbolKindFile
	SymbolKindNamespace     = lsprotocol.SymbolKindNamespace
	SymbolKindString        = lsprotocol.SymbolKindString
	SymbolKindClass         = lsprotocol.SymbolKindClass
	SymbolKindMethod        = lsprotocol.SymbolKindMethod
	SymbolKindFunction      = lsprotocol.SymbolKindFunction
	SymbolKindVariable      = lsprotocol.SymbolKindVariable
	SymbolKindConstant      = lsprotocol.SymbolKindConstant
	SymbolKindModule        = lsprotocol.SymbolKindModule
	SymbolKindProperty      = lsprotocol.SymbolKindProperty
	SymbolKindField         = lsprotocol.SymbolKindField
	SymbolKindConstructor   = lsprotocol.SymbolKindConstructor
	SymbolKindInterface     = lsprotocol.SymbolKindInterface
	SymbolKindEnum          = lsprotocol.SymbolKindEnum
	SymbolKindEnumMember    = lsprotocol.SymbolKindEnumMember
	SymbolKindStruct        = lsprotocol.SymbolKindStruct
	SymbolKindPackage       = lsprotocol.SymbolKindPackage
	PositionEncodingUTF16   = lsprotocol.PositionEncodingKindUTF16
)

// ContainsPosition reports whether rng inclusively contains pos, using
// UTF-16 code unit semantics per the LSP Position definition.
func ContainsPosition(rng Range, pos Position) bool {
	if pos.Line < rng.Start.Line || pos.Line > rng.End.Line {
		return false
	}
	if pos.Line == rng.Start.Line && pos.Character < rng.Start.Character {
		return false
	}
	if pos.Line == rng.End.Line && pos.Character > rng.End.Character {
		return false
	}
	return true
}
