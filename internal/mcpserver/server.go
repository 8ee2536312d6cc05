// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the ledger to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/ledgerservice"
)

const formatURI = "notesman://ledger-format"

// Server wraps the MCP server with ledger tools.
type Server struct {
	mcp *server.MCPServer
	svc *ledgerservice.Service
}

// New creates a new MCP server with all ledger tools registered.
func New(svc *ledgerservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notesman",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("ledger_status",
		mcp.WithDescription("Summarise the current task document: title, checksum and "+
			"open/complete/touched counts per section."),
	), s.ledgerStatus)

	s.mcp.AddTool(mcp.NewTool("preview_ledger",
		mcp.WithDescription("Show which lines the next run would keep, journal and archive. "+
			"Writes nothing."),
	), s.previewLedger)

	s.mcp.AddTool(mcp.NewTool("process_ledger",
		mcp.WithDescription("Journal touched items, archive completed items and rewrite the "+
			"current document. Pass the checksum from ledger_status as if_match to make "+
			"sure the document was not edited in between."),
		mcp.WithString("if_match", mcp.Description("Optional checksum of the current document")),
	), s.processLedger)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the raw Markdown of the current document, the journal or the archive."),
		mcp.WithString("kind", mcp.Required(),
			mcp.Description("Which document to read"),
			mcp.Enum(ledgerservice.KindCurrent, ledgerservice.KindJournal, ledgerservice.KindArchive)),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("get_ledger_format",
		mcp.WithDescription("Returns the ledger markup conventions. Read this before editing the current document."),
	), s.getLedgerFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Ledger Format",
			mcp.WithResourceDescription("Markers and sections the ledger processor recognises."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) ledgerStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(st), nil
}

func (s *Server) previewLedger(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.svc.Preview(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) processLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Process(ctx, req.GetString("if_match", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(rep), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.ReadDocument(ctx, kind)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) getLedgerFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LedgerFormat), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     LedgerFormat,
		},
	}, nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("checksum mismatch: the document changed, call ledger_status again")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}
