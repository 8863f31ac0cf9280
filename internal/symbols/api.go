package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/solidlsp/solidlsp/internal/buffer"
	"github.com/solidlsp/solidlsp/internal/langservers"
	"github.com/solidlsp/solidlsp/internal/lsperrors"
	"github.com/solidlsp/solidlsp/internal/protocol"
	"github.com/solidlsp/solidlsp/internal/readiness"
)

// Requester is the subset of transport.Session's contract C7 needs: a
// blocking request/result round trip. Kept as a narrow interface so this
// package neither imports transport nor needs a live session in tests.
type Requester interface {
	Request(ctx context.Context, method string, params, result interface{}) error
}

// Client is one project's symbol API, layered on a ready session (C2),
// gated by its readiness coordinator (C6), and backed by the shared file
// buffer cache (C5) for include_body lookups.
type Client struct {
	session       Requester
	coordinator   *readiness.Coordinator
	cache         *buffer.Cache
	strategy      langservers.Strategy
	workspaceRoot string
	pathMapper    PathMapper
}

// NewClient constructs a C7 client for one session. pathMapper may be nil,
// meaning the language server observes the same filesystem namespace as
// this process and no URI translation is needed.
func NewClient(session Requester, coordinator *readiness.Coordinator, cache *buffer.Cache, strategy langservers.Strategy, workspaceRoot string, pathMapper PathMapper) *Client {
	return &Client{session: session, coordinator: coordinator, cache: cache, strategy: strategy, workspaceRoot: workspaceRoot, pathMapper: pathMapper}
}

// ShallowSymbol is the compact record returned by overview operations:
// enough to identify a symbol without its full subtree.
type ShallowSymbol struct {
	Name  string              `json:"name"`
	Kind  protocol.SymbolKind `json:"kind"`
	Range protocol.Range      `json:"range"`
}

// Symbol is C7's public symbol record (§3 "Symbol record"), post
// remapping, optionally carrying its source body.
type Symbol struct {
	Name          string              `json:"name"`
	Kind          protocol.SymbolKind `json:"kind"`
	Range         protocol.Range      `json:"range"`
	SelectionRange protocol.Range     `json:"selectionRange"`
	Children      []*Symbol           `json:"children,omitempty"`
	Body          string              `json:"body,omitempty"`
}

func (c *Client) ensureReady(ctx context.Context, method string) error {
	if readiness.AllowedBeforeReady(method) {
		return nil
	}
	return c.coordinator.WaitReady(ctx)
}

// RequestDocumentSymbols returns the hierarchical symbol tree for one
// workspace-relative file (§4.7). Returns (nil, nil) — not an error — if
// path resolves under an ignored directory (§7 PathIgnored).
func (c *Client) RequestDocumentSymbols(ctx context.Context, path string) ([]*Symbol, error) {
	if isIgnored(path, c.strategy.IgnoredDirectories()) {
		return nil, nil
	}
	if err := c.ensureReady(ctx, "textDocument/documentSymbol"); err != nil {
		return nil, err
	}

	var raw []protocol.DocumentSymbol
	params := map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": toFileURI(c.workspaceRoot, path, c.pathMapper)},
	}
	if err := c.session.Request(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return nil, err
	}

	roots := make([]*Symbol, 0, len(raw))
	for _, s := range raw {
		roots = append(roots, c.convertSymbol(s))
	}
	return roots, nil
}

func (c *Client) convertSymbol(s protocol.DocumentSymbol) *Symbol {
	out := &Symbol{
		Name:           s.Name,
		Kind:           c.strategy.RemapSymbolKind(s.Kind),
		Range:          s.Range,
		SelectionRange: s.SelectionRange,
	}
	for _, child := range s.Children {
		out.Children = append(out.Children, c.convertSymbol(child))
	}
	return out
}

// TreeNode is one entry in the full workspace tree: either a directory
// (Children populated, Symbols empty) or a file (Symbols populated).
type TreeNode struct {
	Path     string      `json:"path"`
	IsDir    bool        `json:"isDir"`
	Children []*TreeNode `json:"children,omitempty"`
	Symbols  []*Symbol   `json:"symbols,omitempty"`
}

// RequestFullSymbolTree walks the workspace directory tree, pruning
// ignored directories, and attaches document symbols to each file leaf.
func (c *Client) RequestFullSymbolTree(ctx context.Context) ([]*TreeNode, error) {
	return c.walkDir(ctx, ".")
}

func (c *Client) walkDir(ctx context.Context, relDir string) ([]*TreeNode, error) {
	absDir := filepath.Join(c.workspaceRoot, relDir)
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("symbols: reading dir %s: %w", absDir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var nodes []*TreeNode
	for _, e := range entries {
		relChild := filepath.ToSlash(filepath.Join(relDir, e.Name()))
		if isIgnored(relChild, c.strategy.IgnoredDirectories()) {
			continue
		}
		if e.IsDir() {
			children, err := c.walkDir(ctx, relChild)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &TreeNode{Path: relChild, IsDir: true, Children: children})
			continue
		}

		syms, err := c.RequestDocumentSymbols(ctx, relChild)
		if err != nil {
			continue // a single unparsable file shouldn't fail the whole tree
		}
		nodes = append(nodes, &TreeNode{Path: relChild, Symbols: syms})
	}
	return nodes, nil
}

// RequestReferences returns all references to the symbol at (line, char)
// in path, with results under ignored directories filtered out (§4.7).
func (c *Client) RequestReferences(ctx context.Context, path string, line, char uint32) ([]protocol.Location, error) {
	if isIgnored(path, c.strategy.IgnoredDirectories()) {
		return nil, nil
	}
	if err := c.ensureReady(ctx, "textDocument/references"); err != nil {
		return nil, err
	}

	var raw []protocol.Location
	params := map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": toFileURI(c.workspaceRoot, path, c.pathMapper)},
		"position":     map[string]interface{}{"line": line, "character": char},
		"context":      map[string]interface{}{"includeDeclaration": true},
	}
	if err := c.session.Request(ctx, "textDocument/references", params, &raw); err != nil {
		return nil, err
	}

	out := raw[:0]
	for _, loc := range raw {
		rel, err := toWorkspaceRelative(c.workspaceRoot, string(loc.Uri), c.pathMapper)
		if err == nil && isIgnored(rel, c.strategy.IgnoredDirectories()) {
			continue
		}
		out = append(out, loc)
	}
	return out, nil
}

// RequestDefinition returns the definition location(s) of the symbol at
// (line, char) in path.
func (c *Client) RequestDefinition(ctx context.Context, path string, line, char uint32) ([]protocol.Location, error) {
	if isIgnored(path, c.strategy.IgnoredDirectories()) {
		return nil, nil
	}
	if err := c.ensureReady(ctx, "textDocument/definition"); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	params := map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": toFileURI(c.workspaceRoot, path, c.pathMapper)},
		"position":     map[string]interface{}{"line": line, "character": char},
	}
	if err := c.session.Request(ctx, "textDocument/definition", params, &raw); err != nil {
		return nil, err
	}
	return decodeLocations(raw)
}

// decodeLocations handles textDocument/definition's polymorphic result:
// Location | Location[] | LocationLink[] | null.
func decodeLocations(raw json.RawMessage) ([]protocol.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single protocol.Location
	if err := json.Unmarshal(raw, &single); err == nil && single.Uri != "" {
		return []protocol.Location{single}, nil
	}

	var list []protocol.Location
	if err := json.Unmarshal(raw, &list); err == nil && (len(list) == 0 || list[0].Uri != "") {
		return list, nil
	}

	var links []struct {
		TargetUri            string         `json:"targetUri"`
		TargetRange          protocol.Range `json:"targetRange"`
		TargetSelectionRange protocol.Range `json:"targetSelectionRange"`
	}
	if err := json.Unmarshal(raw, &links); err == nil && len(links) > 0 {
		out := make([]protocol.Location, 0, len(links))
		for _, l := range links {
			locJSON, err := json.Marshal(map[string]interface{}{"uri": l.TargetUri, "range": l.TargetRange})
			if err != nil {
				continue
			}
			var loc protocol.Location
			if err := json.Unmarshal(locJSON, &loc); err == nil {
				out = append(out, loc)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: unrecognized definition result shape", lsperrors.ErrProtocolError)
}

// RequestContainingSymbol returns the smallest symbol in path whose range
// encloses (line, char); ties resolve to the deepest (post-order) symbol
// (§4.7). Returns nil, nil if no symbol encloses the position.
func (c *Client) RequestContainingSymbol(ctx context.Context, path string, line, char uint32, includeBody bool) (*Symbol, error) {
	roots, err := c.RequestDocumentSymbols(ctx, path)
	if err != nil {
		return nil, err
	}
	pos := protocol.Position{Line: line, Character: char}

	var best *Symbol
	var visit func(s *Symbol)
	visit = func(s *Symbol) {
		if !protocol.ContainsPosition(s.Range, pos) {
			return
		}
		best = s // post-order: deeper matches overwrite shallower ones
		for _, child := range s.Children {
			visit(child)
		}
	}
	for _, root := range roots {
		visit(root)
	}

	if best == nil {
		return nil, nil
	}
	if includeBody {
		if err := c.attachBody(best, path); err != nil {
			return nil, err
		}
	}
	return best, nil
}

func (c *Client) attachBody(s *Symbol, path string) error {
	h, err := c.cache.Acquire(filepath.Join(c.workspaceRoot, filepath.FromSlash(path)))
	if err != nil {
		return err
	}
	defer h.Release()

	contents, err := h.Contents()
	if err != nil {
		return err
	}
	s.Body = extractRange(contents, s.Range)
	return nil
}

// RequestDefiningSymbol combines definition with a document-symbol lookup
// to identify the defining symbol record (§4.7).
func (c *Client) RequestDefiningSymbol(ctx context.Context, path string, line, char uint32) (*Symbol, error) {
	defs, err := c.RequestDefinition(ctx, path, line, char)
	if err != nil || len(defs) == 0 {
		return nil, err
	}

	target := defs[0]
	relPath, err := toWorkspaceRelative(c.workspaceRoot, string(target.Uri), c.pathMapper)
	if err != nil {
		return nil, err
	}
	return c.RequestContainingSymbol(ctx, relPath, target.Range.Start.Line, target.Range.Start.Character, false)
}

// RequestDirOverview returns shallow symbol info per file under dir,
// recursively, skipping ignored directories.
func (c *Client) RequestDirOverview(ctx context.Context, dir string) (map[string][]ShallowSymbol, error) {
	out := make(map[string][]ShallowSymbol)
	var walk func(relDir string) error
	walk = func(relDir string) error {
		absDir := filepath.Join(c.workspaceRoot, relDir)
		entries, err := os.ReadDir(absDir)
		if err != nil {
			return fmt.Errorf("symbols: reading dir %s: %w", absDir, err)
		}
		for _, e := range entries {
			relChild := filepath.ToSlash(filepath.Join(relDir, e.Name()))
			if isIgnored(relChild, c.strategy.IgnoredDirectories()) {
				continue
			}
			if e.IsDir() {
				if err := walk(relChild); err != nil {
					return err
				}
				continue
			}
			shallow, err := c.RequestDocumentOverview(ctx, relChild)
			if err != nil {
				continue
			}
			out[relChild] = shallow
		}
		return nil
	}
	if err := walk(dir); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestDocumentOverview returns shallow symbol info (top level only, no
// recursion into children) for one file.
func (c *Client) RequestDocumentOverview(ctx context.Context, path string) ([]ShallowSymbol, error) {
	roots, err := c.RequestDocumentSymbols(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]ShallowSymbol, 0, len(roots))
	for _, s := range roots {
		out = append(out, ShallowSymbol{Name: s.Name, Kind: s.Kind, Range: s.Range})
	}
	return out, nil
}

// RequestWorkspaceSymbol runs workspace/symbol for query, an addition
// beyond spec.md's base API (SPEC_FULL.md §C7 added operations).
func (c *Client) RequestWorkspaceSymbol(ctx context.Context, query string) ([]ShallowSymbol, error) {
	if err := c.ensureReady(ctx, "workspace/symbol"); err != nil {
		return nil, err
	}
	var raw []struct {
		Name     string              `json:"name"`
		Kind     protocol.SymbolKind `json:"kind"`
		Location protocol.Location   `json:"location"`
	}
	if err := c.session.Request(ctx, "workspace/symbol", map[string]interface{}{"query": query}, &raw); err != nil {
		return nil, err
	}

	out := make([]ShallowSymbol, 0, len(raw))
	for _, r := range raw {
		rel, err := toWorkspaceRelative(c.workspaceRoot, string(r.Location.Uri), c.pathMapper)
		if err == nil && isIgnored(rel, c.strategy.IgnoredDirectories()) {
			continue
		}
		out = append(out, ShallowSymbol{Name: r.Name, Kind: c.strategy.RemapSymbolKind(r.Kind), Range: r.Location.Range})
	}
	return out, nil
}
