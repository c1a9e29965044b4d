// CLAUDE:SUMMARY Registers all canvasqa MCP tools — scans, bulk edits, QA validation, highlight, setters.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/canvasqa/kit"
)

// RegisterMCP registers every canvasqa command as an MCP tool on srv.
func (b *Bridge) RegisterMCP(srv *mcp.Server) {
	b.registerScanTextNodes(srv)
	b.registerSetMultipleTextContents(srv)
	b.registerDeleteMultipleNodes(srv)
	b.registerScanNodesByTypes(srv)
	b.registerValidateQARules(srv)
	b.registerTestQAValidation(srv)
	b.registerHighlightQAElement(srv)
	b.registerExportQAReport(srv)
	b.registerGetDocumentInfo(srv)
	b.registerGetNodeInfo(srv)
	b.registerGetSelection(srv)
	b.registerSetTextContent(srv)
	b.registerSetFillColor(srv)
	b.registerMoveNode(srv)
	b.registerResizeNode(srv)
	b.registerSetCornerRadius(srv)
	b.registerDeleteNode(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// decodeJSON builds the standard decode step: unmarshal the arguments into T
// and, when the request carries a commandId, thread it into the context so
// the audit middleware and the progress reporter see the same ID.
func decodeJSON[T any](commandIDOf func(*T) string) func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		r := new(T)
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, r); err != nil {
				return nil, err
			}
		}
		res := &kit.MCPDecodeResult{Request: r}
		if commandIDOf != nil {
			if id := commandIDOf(r); id != "" {
				res.EnrichCtx = func(ctx context.Context) context.Context {
					return kit.WithCommandID(ctx, id)
				}
			}
		}
		return res, nil
	}
}

// register wires one tool through the audit middleware.
func (b *Bridge) register(srv *mcp.Server, tool *mcp.Tool, endpoint kit.Endpoint, decode func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error)) {
	kit.RegisterMCPTool(srv, tool, b.auditMiddleware(tool.Name)(endpoint), decode)
}

var nodeIDProp = map[string]any{"type": "string", "description": "Node ID in the current document load"}

func (b *Bridge) registerScanTextNodes(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "scan_text_nodes",
		Description: "Scan all text nodes under a root node. With useChunking, streams command_progress events while scanning.",
		InputSchema: inputSchema(map[string]any{
			"nodeId":      nodeIDProp,
			"useChunking": map[string]any{"type": "boolean", "description": "Process the scan through the chunked batch scheduler"},
			"chunkSize":   map[string]any{"type": "integer", "description": "Items per chunk (default from config)"},
			"commandId":   map[string]any{"type": "string", "description": "Caller-supplied command ID for progress correlation"},
		}, []string{"nodeId"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.ScanTextNodes(ctx, req.(*ScanTextNodesRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON(func(r *ScanTextNodesRequest) string { return r.CommandID }))
}

func (b *Bridge) registerSetMultipleTextContents(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "set_multiple_text_contents",
		Description: "Replace the characters of many text nodes in one chunked batch. Failing items are recorded, not fatal.",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"text": map[string]any{
				"type":        "array",
				"description": "Replacements to apply",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"nodeId": nodeIDProp,
						"text":   map[string]any{"type": "string"},
					},
					"required": []string{"nodeId", "text"},
				},
			},
			"chunkSize": map[string]any{"type": "integer"},
			"commandId": map[string]any{"type": "string"},
		}, []string{"nodeId", "text"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.SetMultipleTextContents(ctx, req.(*SetMultipleTextContentsRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON(func(r *SetMultipleTextContentsRequest) string { return r.CommandID }))
}

func (b *Bridge) registerDeleteMultipleNodes(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "delete_multiple_nodes",
		Description: "Delete a list of nodes in one chunked batch with progress events.",
		InputSchema: inputSchema(map[string]any{
			"nodeIds":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"chunkSize": map[string]any{"type": "integer"},
			"commandId": map[string]any{"type": "string"},
		}, []string{"nodeIds"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.DeleteMultipleNodes(ctx, req.(*DeleteMultipleNodesRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON(func(r *DeleteMultipleNodesRequest) string { return r.CommandID }))
}

func (b *Bridge) registerScanNodesByTypes(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "scan_nodes_by_types",
		Description: "Return all visible nodes of the given types under a root node.",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"types":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Node types, e.g. text, rectangle, image"},
		}, []string{"nodeId", "types"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.ScanNodesByTypes(ctx, req.(*ScanNodesByTypesRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[ScanNodesByTypesRequest](nil))
}

func (b *Bridge) registerValidateQARules(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "validate_qa_rules",
		Description: "Run the design-QA rule catalog over frames and render a markdown report.",
		InputSchema: inputSchema(map[string]any{
			"frameIds":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"useSelection":    map[string]any{"type": "boolean", "description": "Validate the current selection instead of frameIds"},
			"ignoreStatusBar": map[string]any{"type": "boolean", "description": "Treat the top 44px as status bar for imagery checks"},
			"commandId":       map[string]any{"type": "string"},
		}, nil),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.ValidateQARules(ctx, req.(*ValidateQARulesRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON(func(r *ValidateQARulesRequest) string { return r.CommandID }))
}

func (b *Bridge) registerTestQAValidation(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "test_qa_validation",
		Description: "Run the QA rule catalog over the current selection (quick check, status bar ignored).",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	endpoint := func(ctx context.Context, _ any) (any, error) {
		return b.TestQAValidation(ctx)
	}
	b.register(srv, tool, endpoint, decodeJSON[struct{}](nil))
}

func (b *Bridge) registerHighlightQAElement(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "highlight-qa-element",
		Description: "Re-find an element flagged by a QA report (fuzzy match when the stored ID is stale) and flash-highlight it.",
		InputSchema: inputSchema(map[string]any{
			"nodeId":         map[string]any{"type": "string", "description": "ID captured at validation time; may be stale"},
			"frameId":        map[string]any{"type": "string", "description": "Search root; defaults to the document root"},
			"elementName":    map[string]any{"type": "string"},
			"ruleId":         map[string]any{"type": "string", "description": "Rule discriminator, e.g. corner-radius, contrast-ui"},
			"expectedRadius": map[string]any{"type": "number"},
			"textFragment":   map[string]any{"type": "string"},
		}, nil),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.HighlightQAElement(ctx, req.(*HighlightRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[HighlightRequest](nil))
}

func (b *Bridge) registerExportQAReport(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "export_qa_report",
		Description: "Fetch a previously saved QA report by ID, or the most recent one.",
		InputSchema: inputSchema(map[string]any{
			"reportId": map[string]any{"type": "string"},
		}, nil),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.ExportQAReport(ctx, req.(*ExportQAReportRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[ExportQAReportRequest](nil))
}

func (b *Bridge) registerGetDocumentInfo(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_document_info",
		Description: "Summarise the current document load.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	endpoint := func(ctx context.Context, _ any) (any, error) {
		return b.GetDocumentInfo(ctx)
	}
	b.register(srv, tool, endpoint, decodeJSON[struct{}](nil))
}

func (b *Bridge) registerGetNodeInfo(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_node_info",
		Description: "Return one node's properties, children reduced to IDs.",
		InputSchema: inputSchema(map[string]any{"nodeId": nodeIDProp}, []string{"nodeId"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.GetNodeInfo(ctx, req.(*NodeInfoRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[NodeInfoRequest](nil))
}

func (b *Bridge) registerGetSelection(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_selection",
		Description: "Return the host's current selection.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	endpoint := func(ctx context.Context, _ any) (any, error) {
		return b.GetSelection(ctx)
	}
	b.register(srv, tool, endpoint, decodeJSON[struct{}](nil))
}

func (b *Bridge) registerSetTextContent(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "set_text_content",
		Description: "Replace one text node's characters.",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"text":   map[string]any{"type": "string"},
		}, []string{"nodeId", "text"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.SetTextContent(ctx, req.(*SetTextRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[SetTextRequest](nil))
}

func (b *Bridge) registerSetFillColor(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "set_fill_color",
		Description: "Replace a node's fills with one solid RGBA color (channels in 0-1).",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"r":      map[string]any{"type": "number"},
			"g":      map[string]any{"type": "number"},
			"b":      map[string]any{"type": "number"},
			"a":      map[string]any{"type": "number"},
		}, []string{"nodeId", "r", "g", "b"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.SetFillColor(ctx, req.(*SetFillRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[SetFillRequest](nil))
}

func (b *Bridge) registerMoveNode(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "move_node",
		Description: "Reposition a node.",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"x":      map[string]any{"type": "number"},
			"y":      map[string]any{"type": "number"},
		}, []string{"nodeId", "x", "y"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.MoveNode(ctx, req.(*MoveRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[MoveRequest](nil))
}

func (b *Bridge) registerResizeNode(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "resize_node",
		Description: "Resize a node.",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"width":  map[string]any{"type": "number"},
			"height": map[string]any{"type": "number"},
		}, []string{"nodeId", "width", "height"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.ResizeNode(ctx, req.(*ResizeRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[ResizeRequest](nil))
}

func (b *Bridge) registerSetCornerRadius(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "set_corner_radius",
		Description: "Set a node's uniform corner radius.",
		InputSchema: inputSchema(map[string]any{
			"nodeId": nodeIDProp,
			"radius": map[string]any{"type": "number"},
		}, []string{"nodeId", "radius"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.SetCornerRadius(ctx, req.(*RadiusRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[RadiusRequest](nil))
}

func (b *Bridge) registerDeleteNode(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "delete_node",
		Description: "Delete one node.",
		InputSchema: inputSchema(map[string]any{"nodeId": nodeIDProp}, []string{"nodeId"}),
	}
	endpoint := func(ctx context.Context, req any) (any, error) {
		return b.DeleteNode(ctx, req.(*DeleteNodeRequest))
	}
	b.register(srv, tool, endpoint, decodeJSON[DeleteNodeRequest](nil))
}
