// CLAUDE:SUMMARY Thin read/write command wrappers — document info, selection, single-node property setters.
package bridge

import (
	"context"
	"fmt"

	"github.com/hazyhaar/canvasqa/canvas"
)

// DocumentInfo summarises the current document load.
type DocumentInfo struct {
	Success    bool            `json:"success"`
	NodeID     string          `json:"nodeId"`
	Name       string          `json:"name"`
	Type       canvas.NodeType `json:"type"`
	ChildCount int             `json:"childCount"`
	TotalNodes int             `json:"totalNodes"`
}

// GetDocumentInfo returns a summary of the mirrored document.
func (b *Bridge) GetDocumentInfo(_ context.Context) (*DocumentInfo, error) {
	root := b.doc.Root()
	if root == nil {
		return nil, ErrNoDocument
	}
	return &DocumentInfo{
		Success:    true,
		NodeID:     root.ID,
		Name:       root.DisplayName(),
		Type:       root.Type,
		ChildCount: len(root.Children),
		TotalNodes: len(canvas.Walk(root, nil)),
	}, nil
}

// NodeInfoRequest asks for one node by ID.
type NodeInfoRequest struct {
	NodeID string `json:"nodeId"`
}

// NodeInfo is the full single-node description, children reduced to IDs.
type NodeInfo struct {
	Success      bool                `json:"success"`
	NodeID       string              `json:"nodeId"`
	Name         string              `json:"name"`
	Type         canvas.NodeType     `json:"type"`
	Visible      bool                `json:"visible"`
	X            float64             `json:"x"`
	Y            float64             `json:"y"`
	Width        float64             `json:"width"`
	Height       float64             `json:"height"`
	Fills        []canvas.Paint      `json:"fills,omitempty"`
	Strokes      []canvas.Paint      `json:"strokes,omitempty"`
	CornerRadius float64             `json:"cornerRadius,omitempty"`
	Radii        *canvas.CornerRadii `json:"radii,omitempty"`
	Characters   string              `json:"characters,omitempty"`
	Style        canvas.TextStyle    `json:"style,omitempty"`
	ChildIDs     []string            `json:"childIds,omitempty"`
}

// GetNodeInfo returns one node's properties.
func (b *Bridge) GetNodeInfo(_ context.Context, req *NodeInfoRequest) (*NodeInfo, error) {
	if req.NodeID == "" {
		return nil, fmt.Errorf("%w: nodeId", ErrMissingParameter)
	}
	n, err := b.resolve(req.NodeID)
	if err != nil {
		return nil, err
	}
	info := &NodeInfo{
		Success: true, NodeID: n.ID, Name: n.DisplayName(), Type: n.Type,
		Visible: n.Visible, X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
		Fills: n.Fills, Strokes: n.Strokes,
		CornerRadius: n.CornerRadius, Radii: n.Radii,
		Characters: n.Characters, Style: n.Style,
	}
	for _, c := range n.Children {
		info.ChildIDs = append(info.ChildIDs, c.ID)
	}
	return info, nil
}

// SelectionResponse lists the currently selected nodes.
type SelectionResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Nodes   []NodeSummary `json:"nodes"`
}

// GetSelection returns the host's current selection as reported over the
// plugin channel. Stale selection entries (deleted nodes) are skipped.
func (b *Bridge) GetSelection(_ context.Context) (*SelectionResponse, error) {
	resp := &SelectionResponse{Success: true}
	for _, id := range b.doc.Selection() {
		n, ok := b.doc.Node(id)
		if !ok {
			continue
		}
		resp.Nodes = append(resp.Nodes, NodeSummary{
			NodeID: n.ID, Name: n.DisplayName(), Type: n.Type,
			X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
		})
	}
	resp.Count = len(resp.Nodes)
	return resp, nil
}

// OpResponse is the uniform result of single-node mutations.
type OpResponse struct {
	Success bool   `json:"success"`
	NodeID  string `json:"nodeId"`
}

func (b *Bridge) applyOne(ctx context.Context, op canvas.Op) (*OpResponse, error) {
	if op.NodeID == "" {
		return nil, fmt.Errorf("%w: nodeId", ErrMissingParameter)
	}
	if _, err := b.resolve(op.NodeID); err != nil {
		return nil, err
	}
	if err := b.host.Apply(ctx, op); err != nil {
		return nil, err
	}
	return &OpResponse{Success: true, NodeID: op.NodeID}, nil
}

// SetTextRequest are the set_text_content parameters.
type SetTextRequest struct {
	NodeID string `json:"nodeId"`
	Text   string `json:"text"`
}

// SetTextContent replaces one text node's characters.
func (b *Bridge) SetTextContent(ctx context.Context, req *SetTextRequest) (*OpResponse, error) {
	return b.applyOne(ctx, canvas.Op{Kind: canvas.OpSetText, NodeID: req.NodeID, Text: req.Text})
}

// SetFillRequest are the set_fill_color parameters. Channels are in [0,1].
type SetFillRequest struct {
	NodeID string  `json:"nodeId"`
	R      float64 `json:"r"`
	G      float64 `json:"g"`
	B      float64 `json:"b"`
	A      float64 `json:"a"`
}

// SetFillColor replaces a node's fills with one solid color.
func (b *Bridge) SetFillColor(ctx context.Context, req *SetFillRequest) (*OpResponse, error) {
	c := canvas.Color{R: req.R, G: req.G, B: req.B, A: req.A}
	return b.applyOne(ctx, canvas.Op{Kind: canvas.OpSetFill, NodeID: req.NodeID, Color: &c})
}

// MoveRequest are the move_node parameters.
type MoveRequest struct {
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// MoveNode repositions a node.
func (b *Bridge) MoveNode(ctx context.Context, req *MoveRequest) (*OpResponse, error) {
	return b.applyOne(ctx, canvas.Op{Kind: canvas.OpMove, NodeID: req.NodeID, X: req.X, Y: req.Y})
}

// ResizeRequest are the resize_node parameters.
type ResizeRequest struct {
	NodeID string  `json:"nodeId"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ResizeNode resizes a node.
func (b *Bridge) ResizeNode(ctx context.Context, req *ResizeRequest) (*OpResponse, error) {
	return b.applyOne(ctx, canvas.Op{Kind: canvas.OpResize, NodeID: req.NodeID, Width: req.Width, Height: req.Height})
}

// RadiusRequest are the set_corner_radius parameters.
type RadiusRequest struct {
	NodeID string  `json:"nodeId"`
	Radius float64 `json:"radius"`
}

// SetCornerRadius sets a node's uniform corner radius.
func (b *Bridge) SetCornerRadius(ctx context.Context, req *RadiusRequest) (*OpResponse, error) {
	return b.applyOne(ctx, canvas.Op{Kind: canvas.OpSetCornerRadius, NodeID: req.NodeID, Radius: req.Radius})
}

// DeleteNodeRequest are the delete_node parameters.
type DeleteNodeRequest struct {
	NodeID string `json:"nodeId"`
}

// DeleteNode deletes one node.
func (b *Bridge) DeleteNode(ctx context.Context, req *DeleteNodeRequest) (*OpResponse, error) {
	return b.applyOne(ctx, canvas.Op{Kind: canvas.OpDelete, NodeID: req.NodeID})
}
