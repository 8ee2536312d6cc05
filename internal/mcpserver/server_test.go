package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/ledgerservice"
	"github.com/starford/notesman/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, _, svc := testutil.TestLedger(t, testutil.SampleLedger)
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so handlers are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "ledger_status":
		result, err = srv.ledgerStatus(ctx, req)
	case "preview_ledger":
		result, err = srv.previewLedger(ctx, req)
	case "process_ledger":
		result, err = srv.processLedger(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "get_ledger_format":
		result, err = srv.getLedgerFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestLedgerStatus(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "ledger_status", nil)
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var st ledgerservice.StatusDetail
	if err := json.Unmarshal([]byte(resultText(r)), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Title != "todo" || st.Checksum == "" {
		t.Errorf("status = %+v", st)
	}
}

func TestProcessWithChecksum(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "process_ledger", map[string]interface{}{"if_match": "stale"})
	if !r.IsError || !strings.Contains(resultText(r), "checksum mismatch") {
		t.Fatalf("stale checksum result = %q", resultText(r))
	}

	var st ledgerservice.StatusDetail
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "ledger_status", nil))), &st)

	r = callTool(t, srv, "process_ledger", map[string]interface{}{"if_match": st.Checksum})
	if r.IsError {
		t.Fatalf("process error: %s", resultText(r))
	}
	var rep ledger.Report
	_ = json.Unmarshal([]byte(resultText(r)), &rep)
	if rep.Archived != 2 || rep.Journaled != 1 {
		t.Errorf("report = %+v", rep)
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{"kind": "journal"})
	if !strings.Contains(resultText(r), "write tests] [2024-01-15, 09:30am] ") {
		t.Errorf("journal = %q", resultText(r))
	}
}

func TestPreviewWritesNothing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "preview_ledger", nil)
	if r.IsError || !strings.Contains(resultText(r), `"dry_run": true`) {
		t.Fatalf("preview = %q", resultText(r))
	}
	r = callTool(t, srv, "read_document", map[string]interface{}{"kind": "archive"})
	if !r.IsError {
		t.Error("archive exists after preview")
	}
}

func TestReadDocumentRequiresKind(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without kind")
	}
}

func TestGetLedgerFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_ledger_format", nil)
	if !strings.Contains(resultText(r), "## ACTIVE") {
		t.Errorf("format = %q", resultText(r))
	}
}
