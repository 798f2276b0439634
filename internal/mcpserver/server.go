// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes attachment-management tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bamboovfx/obsidian-image-manager/internal/index"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// Server wraps the MCP server with attachment tools.
type Server struct {
	mcp       *server.MCPServer
	store     storage.Provider
	db        *index.DB
	organizer *organizer.Service
	defaults  organizer.Request
}

// New creates a new MCP server with all tools registered. defaults carries
// the configured organize settings; tool arguments override per call.
func New(store storage.Provider, db *index.DB, org *organizer.Service, defaults organizer.Request) *Server {
	s := &Server{store: store, db: db, organizer: org, defaults: defaults}

	s.mcp = server.NewMCPServer(
		"ImageManager",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("organize_attachments",
		mcp.WithDescription("Rename image attachments to sequential prefixed names "+
			"(e.g. T0.png, T1.jpg), move them into the attachment folder, and repoint "+
			"the Markdown references that embed them. Run get_naming_contract first to "+
			"understand the naming scheme."),
		mcp.WithString("prefix", mcp.Description("Name prefix override (default from config)")),
		mcp.WithString("target_dir", mcp.Description("Attachment folder override")),
		mcp.WithString("note_path", mcp.Description("Restrict to images referenced by this note")),
		mcp.WithString("rewrite_scope", mcp.Description("Reference rewrite scope: vault or note")),
		mcp.WithBoolean("scoop_vault_root", mcp.Description("Also collect images lying in the vault root")),
		mcp.WithBoolean("dry_run", mcp.Description("Plan without moving or rewriting anything")),
	), s.organizeAttachments)

	s.mcp.AddTool(mcp.NewTool("preview_next_index",
		mcp.WithDescription("Report the index the next assigned attachment name would use, "+
			"without touching any file."),
		mcp.WithString("prefix", mcp.Description("Name prefix override (default from config)")),
	), s.previewNextIndex)

	s.mcp.AddTool(mcp.NewTool("list_attachments",
		mcp.WithDescription("List the files in the attachment folder."),
	), s.listAttachments)

	s.mcp.AddTool(mcp.NewTool("get_attachment_backlinks",
		mcp.WithDescription("Find all notes that embed or link to the specified attachment."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Attachment path or bare filename")),
	), s.getAttachmentBacklinks)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an image from a URL (or decode a data: URI) and save it "+
			"into the attachment folder. Returns a markdownImage field ready to paste into a "+
			"note body. A later organize_attachments run gives it its sequential name."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or base64 data: URI")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAsset)

	s.mcp.AddTool(mcp.NewTool("get_naming_contract",
		mcp.WithDescription("Returns the attachment naming contract: how sequential names are "+
			"assigned and how references are rewritten."),
	), s.getNamingContract)

	// Resource: attachment naming contract.
	s.mcp.AddResource(
		mcp.NewResource("imgmgr://attachment-naming", "Attachment Naming Contract",
			mcp.WithResourceDescription("How attachments are named, ordered, and re-referenced."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNamingContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// requestFromArgs overlays tool arguments onto the configured defaults.
func (s *Server) requestFromArgs(req mcp.CallToolRequest) organizer.Request {
	out := s.defaults
	if v := req.GetString("prefix", ""); v != "" {
		out.Prefix = v
	}
	if v := req.GetString("target_dir", ""); v != "" {
		out.TargetDir = v
	}
	if v := req.GetString("note_path", ""); v != "" {
		out.NotePath = v
	}
	if v := req.GetString("rewrite_scope", ""); v != "" {
		out.RewriteScope = v
	}
	out.ScoopVaultRoot = req.GetBool("scoop_vault_root", out.ScoopVaultRoot)
	out.DryRun = req.GetBool("dry_run", false)
	return out
}

func (s *Server) organizeAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.organizer.Run(ctx, s.requestFromArgs(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) previewNextIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	merged := s.requestFromArgs(req)
	n, err := s.organizer.PreviewNextIndex(ctx, merged)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("next name: %s%d", merged.Prefix, n)), nil
}

func (s *Server) listAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.store.ListDir(s.defaults.TargetDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsFile() {
			paths = append(paths, e.Path)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no attachments found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getAttachmentBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.db.ReferencingNotes(p, path.Base(p))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(notes, "\n")), nil
}

func (s *Server) getNamingContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NamingContract), nil
}

func (s *Server) readNamingContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "imgmgr://attachment-naming",
			MIMEType: "text/markdown",
			Text:     NamingContract,
		},
	}, nil
}
