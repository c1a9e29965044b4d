// CLAUDE:SUMMARY In-memory mirror of the host document — snapshot loading, ID index, selection, mutation ops.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNodeNotFound is returned when an ID does not resolve in the current
// document load. Stored IDs going stale is expected operation, not a bug.
var ErrNodeNotFound = errors.New("canvas: node not found")

// Document mirrors the host document tree. The plugin pushes a full snapshot
// on connect and after structural changes; mutations initiated on this side
// are applied to the mirror and committed through a Host.
//
// Locking is coarse: one RWMutex over the whole tree. Two concurrently
// dispatched top-level commands can still interleave their host-side
// mutations; preventing that is out of scope.
type Document struct {
	mu        sync.RWMutex
	root      *Node
	index     map[string]*Node
	selection []string
}

// NewDocument returns an empty document mirror.
func NewDocument() *Document {
	return &Document{index: make(map[string]*Node)}
}

// Load replaces the mirror with a new snapshot root, attaching parent
// pointers and rebuilding the ID index.
func (d *Document) Load(root *Node) {
	index := make(map[string]*Node)
	if root != nil {
		stack := []*Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			index[n.ID] = n
			for _, c := range n.Children {
				c.Parent = n
				stack = append(stack, c)
			}
		}
	}

	d.mu.Lock()
	d.root = root
	d.index = index
	d.mu.Unlock()
}

// LoadJSON parses a snapshot payload and loads it.
func (d *Document) LoadJSON(data []byte) error {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("canvas: parse snapshot: %w", err)
	}
	d.Load(&root)
	return nil
}

// Root returns the current snapshot root, or nil before the first load.
func (d *Document) Root() *Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// Node resolves an ID against the current load.
func (d *Document) Node(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.index[id]
	return n, ok
}

// SetSelection records the IDs the user currently has selected in the host.
func (d *Document) SetSelection(ids []string) {
	d.mu.Lock()
	d.selection = append([]string(nil), ids...)
	d.mu.Unlock()
}

// Selection returns the recorded selection IDs.
func (d *Document) Selection() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.selection...)
}

// Delete removes the node from the mirror (detaches from parent, drops the
// subtree from the index).
func (d *Document) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if p := n.Parent; p != nil {
		for i, c := range p.Children {
			if c == n {
				p.Children = append(p.Children[:i], p.Children[i+1:]...)
				break
			}
		}
	}
	if n == d.root {
		d.root = nil
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(d.index, cur.ID)
		stack = append(stack, cur.Children...)
	}
	return nil
}

// SetText replaces a text node's characters in the mirror.
func (d *Document) SetText(id, text string) error {
	n, err := d.require(id, CapText)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n.Characters = text
	d.mu.Unlock()
	return nil
}

// SetFill replaces a node's fills with a single solid paint.
func (d *Document) SetFill(id string, c Color) error {
	n, err := d.require(id, CapFills)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n.Fills = []Paint{{Kind: PaintSolid, Color: c}}
	d.mu.Unlock()
	return nil
}

// SetFills replaces a node's fill list wholesale.
func (d *Document) SetFills(id string, fills []Paint) error {
	n, err := d.require(id, CapFills)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n.Fills = fills
	d.mu.Unlock()
	return nil
}

// SetStrokes replaces a node's stroke list.
func (d *Document) SetStrokes(id string, strokes []Paint) error {
	n, err := d.require(id, CapStrokes)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n.Strokes = strokes
	d.mu.Unlock()
	return nil
}

// Move sets a node's position.
func (d *Document) Move(id string, x, y float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.X, n.Y = x, y
	return nil
}

// Resize sets a node's dimensions.
func (d *Document) Resize(id string, w, h float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.Width, n.Height = w, h
	return nil
}

// SetCornerRadius sets the uniform corner radius and clears any independent
// corner overrides.
func (d *Document) SetCornerRadius(id string, r float64) error {
	n, err := d.require(id, CapCornerRadius)
	if err != nil {
		return err
	}
	d.mu.Lock()
	n.CornerRadius = r
	n.Radii = nil
	d.mu.Unlock()
	return nil
}

func (d *Document) require(id string, cap Capability) (*Node, error) {
	d.mu.RLock()
	n, ok := d.index[id]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !n.Type.Has(cap) {
		return nil, fmt.Errorf("canvas: node %s (%s) does not support this operation", id, n.Type)
	}
	return n, nil
}

// OpKind discriminates mutation operations sent to the host.
type OpKind string

const (
	OpDelete          OpKind = "delete"
	OpSetText         OpKind = "set_text"
	OpSetFill         OpKind = "set_fill"
	OpSetFills        OpKind = "set_fills"
	OpSetStrokes      OpKind = "set_strokes"
	OpMove            OpKind = "move"
	OpResize          OpKind = "resize"
	OpSetCornerRadius OpKind = "set_corner_radius"
)

// Op is one mutation to commit against the host document. Fields beyond
// NodeID are interpreted per Kind.
type Op struct {
	Kind    OpKind  `json:"kind"`
	NodeID  string  `json:"nodeId"`
	Text    string  `json:"text,omitempty"`
	Color   *Color  `json:"color,omitempty"`
	Fills   []Paint `json:"fills,omitempty"`
	Strokes []Paint `json:"strokes,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
}

// Host is the boundary to the live design tool. Apply commits one mutation;
// the mirror is updated by the caller, the host by the plugin on the far end
// of the channel.
type Host interface {
	Apply(ctx context.Context, op Op) error
}

// Loopback is a Host that applies ops to the mirror only. It backs tests and
// offline runs where no plugin is connected.
type Loopback struct {
	Doc *Document
}

// Apply applies the op to the mirrored document.
func (l *Loopback) Apply(_ context.Context, op Op) error {
	switch op.Kind {
	case OpDelete:
		return l.Doc.Delete(op.NodeID)
	case OpSetText:
		return l.Doc.SetText(op.NodeID, op.Text)
	case OpSetFill:
		if op.Color == nil {
			return fmt.Errorf("canvas: set_fill without color")
		}
		return l.Doc.SetFill(op.NodeID, *op.Color)
	case OpSetFills:
		return l.Doc.SetFills(op.NodeID, op.Fills)
	case OpSetStrokes:
		return l.Doc.SetStrokes(op.NodeID, op.Strokes)
	case OpMove:
		return l.Doc.Move(op.NodeID, op.X, op.Y)
	case OpResize:
		return l.Doc.Resize(op.NodeID, op.Width, op.Height)
	case OpSetCornerRadius:
		return l.Doc.SetCornerRadius(op.NodeID, op.Radius)
	default:
		return fmt.Errorf("canvas: unknown op kind %q", op.Kind)
	}
}
