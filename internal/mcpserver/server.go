// Package mcpserver adapts the bridge's symbol/diff operations onto MCP
// tools via mark3labs/mcp-go, the teacher's declared MCP dependency.
// Mirrors the teacher's mcpserver.SetupMCPServer(bridgeInstance) call site
// in main.go.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/solidlsp/solidlsp/internal/bridge"
	"github.com/solidlsp/solidlsp/internal/diffpreview"
	"github.com/solidlsp/solidlsp/types"
)

const serverVersion = "0.1.0"

// SetupMCPServer builds an *server.MCPServer exposing the bridge's C7/C8
// operations as tools, per SPEC_FULL.md's "thin MCP adapter" extension.
func SetupMCPServer(b *bridge.Bridge) *server.MCPServer {
	s := server.NewMCPServer("solidlsp-bridge", serverVersion)

	s.AddTool(mcp.NewTool("lsp_document_symbols",
		mcp.WithDescription("List the hierarchical symbol tree for one workspace-relative file."),
		mcp.WithString("language_server", mcp.Required(), mcp.Description("Configured language server id, e.g. ruby-lsp")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative file path")),
	), documentSymbolsHandler(b))

	s.AddTool(mcp.NewTool("lsp_references",
		mcp.WithDescription("List all references to the symbol at a position."),
		mcp.WithString("language_server", mcp.Required()),
		mcp.WithString("path", mcp.Required()),
		mcp.WithNumber("line", mcp.Required()),
		mcp.WithNumber("character", mcp.Required()),
	), referencesHandler(b))

	s.AddTool(mcp.NewTool("lsp_definition",
		mcp.WithDescription("Return the definition location(s) of the symbol at a position."),
		mcp.WithString("language_server", mcp.Required()),
		mcp.WithString("path", mcp.Required()),
		mcp.WithNumber("line", mcp.Required()),
		mcp.WithNumber("character", mcp.Required()),
	), definitionHandler(b))

	s.AddTool(mcp.NewTool("lsp_containing_symbol",
		mcp.WithDescription("Return the smallest symbol enclosing a position."),
		mcp.WithString("language_server", mcp.Required()),
		mcp.WithString("path", mcp.Required()),
		mcp.WithNumber("line", mcp.Required()),
		mcp.WithNumber("character", mcp.Required()),
		mcp.WithBoolean("include_body"),
	), containingSymbolHandler(b))

	s.AddTool(mcp.NewTool("lsp_dir_overview",
		mcp.WithDescription("Return shallow symbol info per file under a workspace-relative directory."),
		mcp.WithString("language_server", mcp.Required()),
		mcp.WithString("dir", mcp.Required()),
	), dirOverviewHandler(b))

	s.AddTool(mcp.NewTool("lsp_generate_diff_preview",
		mcp.WithDescription("Generate a unified diff preview. It is not stored as the latest preview."),
		mcp.WithString("old_content", mcp.Required()),
		mcp.WithString("new_content", mcp.Required()),
		mcp.WithString("file_path", mcp.Required()),
		mcp.WithString("symbol_name"),
	), generateDiffPreviewHandler(b))

	s.AddTool(mcp.NewTool("lsp_set_latest_preview",
		mcp.WithDescription("Overwrite the single latest-diff-preview slot."),
		mcp.WithString("old_content", mcp.Required()),
		mcp.WithString("new_content", mcp.Required()),
		mcp.WithString("file_path", mcp.Required()),
		mcp.WithString("symbol_name"),
	), setLatestPreviewHandler(b))

	return s
}

func sessionFor(b *bridge.Bridge, req mcp.CallToolRequest) (*bridge.Session, error) {
	lsArg, err := req.RequireString("language_server")
	if err != nil {
		return nil, err
	}
	session, ok := b.Session(types.LanguageServer(lsArg))
	if !ok {
		return nil, fmt.Errorf("mcpserver: language server %q is not connected", lsArg)
	}
	return session, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func documentSymbolsHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := sessionFor(b, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		syms, err := session.Symbols.RequestDocumentSymbols(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(syms)
	}
}

func referencesHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := sessionFor(b, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		line := req.GetInt("line", 0)
		char := req.GetInt("character", 0)
		locs, err := session.Symbols.RequestReferences(ctx, path, uint32(line), uint32(char))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(locs)
	}
}

func definitionHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := sessionFor(b, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		line := req.GetInt("line", 0)
		char := req.GetInt("character", 0)
		locs, err := session.Symbols.RequestDefinition(ctx, path, uint32(line), uint32(char))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(locs)
	}
}

func containingSymbolHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := sessionFor(b, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		line := req.GetInt("line", 0)
		char := req.GetInt("character", 0)
		includeBody := req.GetBool("include_body", false)
		sym, err := session.Symbols.RequestContainingSymbol(ctx, path, uint32(line), uint32(char), includeBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(sym)
	}
}

func dirOverviewHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := sessionFor(b, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dir, err := req.RequireString("dir")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		overview, err := session.Symbols.RequestDirOverview(ctx, dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(overview)
	}
}

func generateDiffPreviewHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		preview, err := buildPreview(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(preview)
	}
}

func setLatestPreviewHandler(b *bridge.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		preview, err := buildPreview(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b.DiffPreview().SetLatest(preview)
		return jsonResult(preview)
	}
}

func buildPreview(req mcp.CallToolRequest) (diffpreview.Preview, error) {
	oldContent, err := req.RequireString("old_content")
	if err != nil {
		return diffpreview.Preview{}, err
	}
	newContent, err := req.RequireString("new_content")
	if err != nil {
		return diffpreview.Preview{}, err
	}
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return diffpreview.Preview{}, err
	}
	symbolName := req.GetString("symbol_name", "")
	return diffpreview.GeneratePreview(oldContent, newContent, filePath, symbolName), nil
}
