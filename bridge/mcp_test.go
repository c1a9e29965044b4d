package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testImpl = &mcp.Implementation{Name: "canvasqa-test", Version: "0.1.0"}

// mcpSession registers the bridge's tools and returns a connected client
// session that can call them end-to-end over in-memory transports.
func mcpSession(t *testing.T, opts ...Option) (*Bridge, *mcp.ClientSession) {
	t.Helper()
	b, _, _ := testBridge(t, opts...)

	srv := mcp.NewServer(testImpl, nil)
	b.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return b, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func TestMCP_GetDocumentInfo(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "get_document_info", map[string]any{})

	var info DocumentInfo
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.NodeID != "1:1" || info.TotalNodes != 5 {
		t.Errorf("info = %+v", info)
	}
}

func TestMCP_ScanTextNodes_CommandIDThreading(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "scan_text_nodes", map[string]any{
		"nodeId":      "1:1",
		"useChunking": true,
		"chunkSize":   1,
		"commandId":   "cmd_mcp_42",
	})

	var resp ScanTextNodesResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.CommandID != "cmd_mcp_42" {
		t.Errorf("CommandID = %q, want the caller-supplied one", resp.CommandID)
	}
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
}

func TestMCP_SetTextContent_Roundtrip(t *testing.T) {
	_, session := mcpSession(t)

	callTool(t, session, "set_text_content", map[string]any{
		"nodeId": "1:2",
		"text":   "Over MCP",
	})

	text := callTool(t, session, "get_node_info", map[string]any{"nodeId": "1:2"})
	var info NodeInfo
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.Characters != "Over MCP" {
		t.Errorf("Characters = %q", info.Characters)
	}
}

func TestMCP_DeleteMultipleNodes_Partial(t *testing.T) {
	b, session := mcpSession(t)

	text := callTool(t, session, "delete_multiple_nodes", map[string]any{
		"nodeIds": []string{"1:5", "missing:1"},
	})

	var resp DeleteMultipleNodesResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.NodesDeleted != 1 || resp.NodesFailed != 1 {
		t.Errorf("deleted=%d failed=%d", resp.NodesDeleted, resp.NodesFailed)
	}
	if _, ok := b.doc.Node("1:5"); ok {
		t.Error("1:5 should be gone")
	}
}

func TestMCP_ValidateQARules(t *testing.T) {
	_, session := mcpSession(t, WithAudit(testStore(t)))

	text := callTool(t, session, "validate_qa_rules", map[string]any{
		"frameIds": []string{"1:1"},
	})

	var resp ValidateQARulesResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ReportID == "" {
		t.Error("expected a persisted report ID")
	}

	text = callTool(t, session, "export_qa_report", map[string]any{"reportId": resp.ReportID})
	var exported struct {
		Markdown string `json:"markdown"`
	}
	if err := json.Unmarshal([]byte(text), &exported); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if exported.Markdown != resp.Report {
		t.Error("exported markdown differs from validation output")
	}
}

func TestMCP_HighlightQAElement_NotFound(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "highlight-qa-element", map[string]any{
		"nodeId":      "stale:9",
		"elementName": "Nothing Here",
	})

	var resp HighlightResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.Found {
		t.Errorf("resp = %+v, want success without a match", resp)
	}
}

func TestMCP_InvalidArguments(t *testing.T) {
	_, session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_node_info",
		Arguments: map[string]any{"nodeId": "does:not:exist"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	// GetError always returns nil on clients (the error is not marshaled);
	// clients observe tool errors through IsError.
	if !result.IsError {
		t.Fatal("expected a tool error for an unknown node")
	}
}
