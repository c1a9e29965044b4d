// CLAUDE:SUMMARY Command implementations — batch scans/edits, QA validation, fuzzy highlight, thin setters.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/canvasqa/audit"
	"github.com/hazyhaar/canvasqa/batch"
	"github.com/hazyhaar/canvasqa/canvas"
	"github.com/hazyhaar/canvasqa/locator"
	"github.com/hazyhaar/canvasqa/progress"
	"github.com/hazyhaar/canvasqa/rules"
)

// Precondition errors abort the command before any work item runs. Batch
// commands emit a terminal error progress event before returning them.
var (
	ErrMissingParameter = errors.New("bridge: missing required parameter")
	ErrNoDocument       = errors.New("bridge: no document snapshot loaded")
)

func (b *Bridge) resolve(id string) (*canvas.Node, error) {
	n, ok := b.doc.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, id)
	}
	return n, nil
}

// abort routes a batch-command precondition failure through the progress
// stream: the stream must never end without a terminal event, so the error
// event goes out before the command returns.
func abort(ctx context.Context, rep *progress.Reporter, err error) error {
	if rep != nil {
		rep.Error(ctx, err.Error())
	}
	return err
}

// --- scan_text_nodes ---

// TextNodeInfo describes one discovered text node.
type TextNodeInfo struct {
	NodeID     string   `json:"nodeId"`
	Name       string   `json:"name"`
	Characters string   `json:"characters"`
	Path       []string `json:"path"`
	Depth      int      `json:"depth"`
	FontFamily string   `json:"fontFamily,omitempty"`
	FontSize   float64  `json:"fontSize,omitempty"`
	FontWeight int      `json:"fontWeight,omitempty"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
}

// ScanTextNodesRequest are the scan_text_nodes parameters.
type ScanTextNodesRequest struct {
	NodeID      string `json:"nodeId"`
	UseChunking bool   `json:"useChunking,omitempty"`
	ChunkSize   int    `json:"chunkSize,omitempty"`
	CommandID   string `json:"commandId,omitempty"`
}

// ScanTextNodesResponse is the scan_text_nodes result.
type ScanTextNodesResponse struct {
	Success   bool           `json:"success"`
	CommandID string         `json:"commandId"`
	Count     int            `json:"count"`
	TextNodes []TextNodeInfo `json:"textNodes"`
}

// ScanTextNodes discovers all visible, non-empty text nodes under a root.
// With chunking enabled the discovery list is processed through the batch
// scheduler so large trees stream progress instead of blocking silently.
func (b *Bridge) ScanTextNodes(ctx context.Context, req *ScanTextNodesRequest) (*ScanTextNodesResponse, error) {
	commandID := b.commandID(ctx)
	var rep *progress.Reporter
	if req.UseChunking {
		rep = b.reporter(commandID, "scan_text_nodes")
	}

	if req.NodeID == "" {
		return nil, abort(ctx, rep, fmt.Errorf("%w: nodeId", ErrMissingParameter))
	}
	root, err := b.resolve(req.NodeID)
	if err != nil {
		return nil, abort(ctx, rep, err)
	}

	var entries []canvas.Entry
	for _, e := range canvas.WalkWithPath(root) {
		if e.Node.Type.Has(canvas.CapText) && e.Node.Characters != "" {
			entries = append(entries, e)
		}
	}

	if !req.UseChunking {
		infos := make([]TextNodeInfo, 0, len(entries))
		for _, e := range entries {
			infos = append(infos, textInfo(e))
		}
		return &ScanTextNodesResponse{Success: true, CommandID: commandID, Count: len(infos), TextNodes: infos}, nil
	}

	summary, err := batch.Run(ctx, entries, batch.Options{
		ChunkSize:  b.chunkSize(req.ChunkSize),
		ChunkPause: b.cfg.ChunkPause,
	}, rep, func(_ context.Context, e canvas.Entry) (TextNodeInfo, error) {
		return textInfo(e), nil
	})
	if err != nil {
		return nil, err
	}

	infos := make([]TextNodeInfo, 0, summary.Succeeded)
	for _, r := range summary.Results {
		if r.Success {
			infos = append(infos, r.Result)
		}
	}
	return &ScanTextNodesResponse{Success: true, CommandID: commandID, Count: len(infos), TextNodes: infos}, nil
}

func textInfo(e canvas.Entry) TextNodeInfo {
	n := e.Node
	return TextNodeInfo{
		NodeID:     n.ID,
		Name:       n.DisplayName(),
		Characters: n.Characters,
		Path:       e.Path,
		Depth:      e.Depth,
		FontFamily: n.Style.Family,
		FontSize:   n.Style.Size,
		FontWeight: n.Style.Weight,
		X:          n.X,
		Y:          n.Y,
		Width:      n.Width,
		Height:     n.Height,
	}
}

func (b *Bridge) chunkSize(requested int) int {
	if requested > 0 {
		return requested
	}
	return b.cfg.ChunkSize
}

// --- set_multiple_text_contents ---

// TextReplacement is one nodeId→text assignment.
type TextReplacement struct {
	NodeID string `json:"nodeId"`
	Text   string `json:"text"`
}

// SetMultipleTextContentsRequest are the set_multiple_text_contents parameters.
type SetMultipleTextContentsRequest struct {
	NodeID    string            `json:"nodeId"`
	Text      []TextReplacement `json:"text"`
	ChunkSize int               `json:"chunkSize,omitempty"`
	CommandID string            `json:"commandId,omitempty"`
}

// ReplacementResult is the per-item outcome of a text replacement batch.
type ReplacementResult struct {
	NodeID  string `json:"nodeId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SetMultipleTextContentsResponse is the set_multiple_text_contents result.
type SetMultipleTextContentsResponse struct {
	Success             bool                `json:"success"`
	CommandID           string              `json:"commandId"`
	ReplacementsApplied int                 `json:"replacementsApplied"`
	ReplacementsFailed  int                 `json:"replacementsFailed"`
	Results             []ReplacementResult `json:"results"`
}

// SetMultipleTextContents replaces the characters of many text nodes in one
// chunked batch. A failing replacement is recorded and the batch continues.
func (b *Bridge) SetMultipleTextContents(ctx context.Context, req *SetMultipleTextContentsRequest) (*SetMultipleTextContentsResponse, error) {
	commandID := b.commandID(ctx)
	rep := b.reporter(commandID, "set_multiple_text_contents")

	if req.NodeID == "" {
		return nil, abort(ctx, rep, fmt.Errorf("%w: nodeId", ErrMissingParameter))
	}
	if len(req.Text) == 0 {
		return nil, abort(ctx, rep, fmt.Errorf("%w: text", ErrMissingParameter))
	}
	if _, err := b.resolve(req.NodeID); err != nil {
		return nil, abort(ctx, rep, err)
	}

	summary, err := batch.Run(ctx, req.Text, batch.Options{
		ChunkSize:  b.chunkSize(req.ChunkSize),
		ChunkPause: b.cfg.ChunkPause,
	}, rep, func(ctx context.Context, item TextReplacement) (string, error) {
		if _, err := b.resolve(item.NodeID); err != nil {
			return "", err
		}
		if err := b.host.Apply(ctx, canvas.Op{Kind: canvas.OpSetText, NodeID: item.NodeID, Text: item.Text}); err != nil {
			return "", err
		}
		return item.NodeID, nil
	})
	if err != nil {
		return nil, err
	}

	resp := &SetMultipleTextContentsResponse{
		Success:             summary.Success,
		CommandID:           commandID,
		ReplacementsApplied: summary.Succeeded,
		ReplacementsFailed:  summary.Failed,
	}
	for i, r := range summary.Results {
		resp.Results = append(resp.Results, ReplacementResult{
			NodeID:  req.Text[i].NodeID,
			Success: r.Success,
			Error:   r.Error,
		})
	}
	return resp, nil
}

// --- delete_multiple_nodes ---

// DeleteMultipleNodesRequest are the delete_multiple_nodes parameters.
type DeleteMultipleNodesRequest struct {
	NodeIDs   []string `json:"nodeIds"`
	ChunkSize int      `json:"chunkSize,omitempty"`
	CommandID string   `json:"commandId,omitempty"`
}

// DeleteResult is the per-item outcome of a deletion batch.
type DeleteResult struct {
	NodeID  string `json:"nodeId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeleteMultipleNodesResponse is the delete_multiple_nodes result.
type DeleteMultipleNodesResponse struct {
	Success      bool           `json:"success"`
	CommandID    string         `json:"commandId"`
	NodesDeleted int            `json:"nodesDeleted"`
	NodesFailed  int            `json:"nodesFailed"`
	Results      []DeleteResult `json:"results"`
}

// DeleteMultipleNodes deletes a list of nodes in one chunked batch.
func (b *Bridge) DeleteMultipleNodes(ctx context.Context, req *DeleteMultipleNodesRequest) (*DeleteMultipleNodesResponse, error) {
	commandID := b.commandID(ctx)
	rep := b.reporter(commandID, "delete_multiple_nodes")

	if len(req.NodeIDs) == 0 {
		return nil, abort(ctx, rep, fmt.Errorf("%w: nodeIds", ErrMissingParameter))
	}

	summary, err := batch.Run(ctx, req.NodeIDs, batch.Options{
		ChunkSize:  b.chunkSize(req.ChunkSize),
		ChunkPause: b.cfg.ChunkPause,
	}, rep, func(ctx context.Context, id string) (string, error) {
		if _, err := b.resolve(id); err != nil {
			return "", err
		}
		if err := b.host.Apply(ctx, canvas.Op{Kind: canvas.OpDelete, NodeID: id}); err != nil {
			return "", err
		}
		return id, nil
	})
	if err != nil {
		return nil, err
	}

	resp := &DeleteMultipleNodesResponse{
		Success:      summary.Success,
		CommandID:    commandID,
		NodesDeleted: summary.Succeeded,
		NodesFailed:  summary.Failed,
	}
	for i, r := range summary.Results {
		resp.Results = append(resp.Results, DeleteResult{
			NodeID:  req.NodeIDs[i],
			Success: r.Success,
			Error:   r.Error,
		})
	}
	return resp, nil
}

// --- scan_nodes_by_types ---

// NodeSummary is the compact node description returned by scans.
type NodeSummary struct {
	NodeID string          `json:"nodeId"`
	Name   string          `json:"name"`
	Type   canvas.NodeType `json:"type"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Path   []string        `json:"path,omitempty"`
}

// ScanNodesByTypesRequest are the scan_nodes_by_types parameters.
type ScanNodesByTypesRequest struct {
	NodeID string   `json:"nodeId"`
	Types  []string `json:"types"`
}

// ScanNodesByTypesResponse is the scan_nodes_by_types result.
type ScanNodesByTypesResponse struct {
	Success       bool          `json:"success"`
	Count         int           `json:"count"`
	MatchingNodes []NodeSummary `json:"matchingNodes"`
}

// ScanNodesByTypes returns all visible nodes of the requested types under a root.
func (b *Bridge) ScanNodesByTypes(ctx context.Context, req *ScanNodesByTypesRequest) (*ScanNodesByTypesResponse, error) {
	if req.NodeID == "" {
		return nil, fmt.Errorf("%w: nodeId", ErrMissingParameter)
	}
	if len(req.Types) == 0 {
		return nil, fmt.Errorf("%w: types", ErrMissingParameter)
	}
	root, err := b.resolve(req.NodeID)
	if err != nil {
		return nil, err
	}

	want := make(map[canvas.NodeType]bool, len(req.Types))
	for _, t := range req.Types {
		want[canvas.NodeType(t)] = true
	}

	var out []NodeSummary
	for _, e := range canvas.WalkWithPath(root) {
		if !want[e.Node.Type] {
			continue
		}
		n := e.Node
		out = append(out, NodeSummary{
			NodeID: n.ID, Name: n.DisplayName(), Type: n.Type,
			X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
			Path: e.Path,
		})
	}
	return &ScanNodesByTypesResponse{Success: true, Count: len(out), MatchingNodes: out}, nil
}

// --- validate_qa_rules / test_qa_validation ---

// ValidateQARulesRequest are the validate_qa_rules parameters.
type ValidateQARulesRequest struct {
	FrameIDs        []string `json:"frameIds,omitempty"`
	UseSelection    bool     `json:"useSelection,omitempty"`
	IgnoreStatusBar bool     `json:"ignoreStatusBar,omitempty"`
	CommandID       string   `json:"commandId,omitempty"`
}

// ValidateQARulesResponse is the validate_qa_rules result.
type ValidateQARulesResponse struct {
	Success   bool                         `json:"success"`
	CommandID string                       `json:"commandId"`
	ReportID  string                       `json:"reportId,omitempty"`
	Report    string                       `json:"report"`
	Results   map[string]rules.FrameReport `json:"results"`
}

// ValidateQARules runs the full rule catalog over the requested frames and
// renders the markdown report. With an audit store attached the report is
// also persisted for later export_qa_report calls.
func (b *Bridge) ValidateQARules(ctx context.Context, req *ValidateQARulesRequest) (*ValidateQARulesResponse, error) {
	frameIDs := req.FrameIDs
	if req.UseSelection {
		frameIDs = b.doc.Selection()
	}
	if len(frameIDs) == 0 {
		return nil, fmt.Errorf("%w: frameIds (or a non-empty selection)", ErrMissingParameter)
	}

	frames := make([]*canvas.Node, 0, len(frameIDs))
	for _, id := range frameIDs {
		n, err := b.resolve(id)
		if err != nil {
			return nil, err
		}
		if !n.Type.Has(canvas.CapChildren) {
			return nil, fmt.Errorf("bridge: node %s (%s) is not a frame", id, n.Type)
		}
		frames = append(frames, n)
	}

	commandID := b.commandID(ctx)
	rep := b.reporter(commandID, "validate_qa_rules")
	rep.Started(ctx, len(frames), fmt.Sprintf("validating %d frame(s)", len(frames)))

	// One engine per command: the result cache must not survive into the
	// next invocation.
	engine := rules.NewEngine(rules.Options{
		IgnoreStatusBar:  req.IgnoreStatusBar,
		RequiredTypeface: b.cfg.RequiredTypeface,
	}, rules.WithLogger(b.logger))

	report := engine.Validate(frames)
	markdown := rules.Markdown(report)

	results := make(map[string]rules.FrameReport, len(report.Frames))
	passed, total := 0, 0
	for _, fr := range report.Frames {
		results[fr.FrameID] = fr
		passed += fr.Passed
		total += fr.Total
	}

	resp := &ValidateQARulesResponse{
		Success:   true,
		CommandID: commandID,
		Report:    markdown,
		Results:   results,
	}
	if b.store != nil {
		reportID, err := b.store.SaveReport(ctx, commandID, len(report.Frames), passed, total, markdown)
		if err != nil {
			// Persistence is best-effort; the caller still gets the report.
			b.logger.Warn("qa report save failed", "command_id", commandID, "error", err)
		} else {
			resp.ReportID = reportID
		}
	}

	rep.Completed(ctx, len(frames), len(frames), nil,
		fmt.Sprintf("validated %d frame(s): %d/%d checks passed", len(frames), passed, total))
	return resp, nil
}

// TestQAValidation runs validate_qa_rules over the current selection.
func (b *Bridge) TestQAValidation(ctx context.Context) (*ValidateQARulesResponse, error) {
	return b.ValidateQARules(ctx, &ValidateQARulesRequest{UseSelection: true, IgnoreStatusBar: true})
}

// --- highlight-qa-element ---

// HighlightRequest are the highlight-qa-element parameters. Everything is
// optional; the more that is supplied, the better the re-identification.
type HighlightRequest struct {
	NodeID         string   `json:"nodeId,omitempty"`
	FrameID        string   `json:"frameId,omitempty"`
	ElementName    string   `json:"elementName,omitempty"`
	RuleID         string   `json:"ruleId,omitempty"`
	ExpectedRadius *float64 `json:"expectedRadius,omitempty"`
	TextFragment   string   `json:"textFragment,omitempty"`
}

// HighlightResponse is the highlight-qa-element result.
type HighlightResponse struct {
	Success bool   `json:"success"`
	Found   bool   `json:"found"`
	NodeID  string `json:"nodeId,omitempty"`
	Exact   bool   `json:"exact,omitempty"`
	Score   int    `json:"score,omitempty"`
}

// HighlightQAElement re-finds a previously flagged element and flashes it.
// A descriptor that matches nothing is a successful command with Found false:
// stale report data is expected, not an error.
func (b *Bridge) HighlightQAElement(ctx context.Context, req *HighlightRequest) (*HighlightResponse, error) {
	root := b.doc.Root()
	if req.FrameID != "" {
		if n, ok := b.doc.Node(req.FrameID); ok {
			root = n
		}
	}
	if root == nil {
		return nil, ErrNoDocument
	}

	loc := locator.New(b.cfg.Weights)
	match := loc.Locate(b.doc, root, locator.Descriptor{
		NodeID:         req.NodeID,
		Name:           req.ElementName,
		RuleID:         req.RuleID,
		ExpectedRadius: req.ExpectedRadius,
		TextFragment:   req.TextFragment,
	})
	if match == nil {
		return &HighlightResponse{Success: true, Found: false}, nil
	}

	h := locator.NewHighlighter(b.host,
		locator.WithRevertDelay(b.cfg.HighlightDelay),
		locator.WithHighlightLogger(b.logger))
	if err := h.Flash(ctx, match.Node); err != nil {
		return nil, fmt.Errorf("bridge: highlight: %w", err)
	}
	return &HighlightResponse{
		Success: true,
		Found:   true,
		NodeID:  match.Node.ID,
		Exact:   match.Exact,
		Score:   match.Score,
	}, nil
}

// --- export_qa_report ---

// ExportQAReportRequest are the export_qa_report parameters.
type ExportQAReportRequest struct {
	ReportID string `json:"reportId,omitempty"`
}

// ExportQAReport returns a previously saved report: by ID, or the most
// recent one when no ID is given.
func (b *Bridge) ExportQAReport(ctx context.Context, req *ExportQAReportRequest) (*audit.Report, error) {
	if b.store == nil {
		return nil, errors.New("bridge: no report store configured")
	}
	if req.ReportID != "" {
		return b.store.GetReport(ctx, req.ReportID)
	}
	return b.store.LatestReport(ctx)
}
