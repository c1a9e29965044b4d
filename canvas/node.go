// CLAUDE:SUMMARY Node model for the mirrored design document — types, capability tags, paints, geometry, text.
// Package canvas holds the in-memory mirror of the design-tool document: a
// tree of visual nodes (frames, shapes, text, images) plus traversal
// utilities. Nodes are owned by the host document; canvasqa references them,
// mutates them through the host boundary, and never extends their lifetime.
package canvas

import "fmt"

// NodeType is the closed set of node kinds the plugin reports.
type NodeType string

const (
	TypeDocument  NodeType = "document"
	TypePage      NodeType = "page"
	TypeFrame     NodeType = "frame"
	TypeGroup     NodeType = "group"
	TypeSection   NodeType = "section"
	TypeRectangle NodeType = "rectangle"
	TypeEllipse   NodeType = "ellipse"
	TypeLine      NodeType = "line"
	TypeVector    NodeType = "vector"
	TypeText      NodeType = "text"
	TypeImage     NodeType = "image"
	TypeInstance  NodeType = "instance"
	TypeComponent NodeType = "component"
)

// Capability is one facet of node behaviour. Capabilities replace runtime
// property probing: whether a node can carry children, fills or text is a
// property of its type, checked via set membership.
type Capability uint8

const (
	CapChildren Capability = iota
	CapFills
	CapStrokes
	CapText
	CapCornerRadius
	CapEffects
)

// capabilities maps each node type to its capability set.
var capabilities = map[NodeType]uint8{
	TypeDocument:  bit(CapChildren),
	TypePage:      bit(CapChildren),
	TypeFrame:     bit(CapChildren) | bit(CapFills) | bit(CapStrokes) | bit(CapCornerRadius) | bit(CapEffects),
	TypeGroup:     bit(CapChildren) | bit(CapEffects),
	TypeSection:   bit(CapChildren) | bit(CapFills),
	TypeRectangle: bit(CapFills) | bit(CapStrokes) | bit(CapCornerRadius) | bit(CapEffects),
	TypeEllipse:   bit(CapFills) | bit(CapStrokes) | bit(CapEffects),
	TypeLine:      bit(CapStrokes),
	TypeVector:    bit(CapFills) | bit(CapStrokes) | bit(CapEffects),
	TypeText:      bit(CapFills) | bit(CapStrokes) | bit(CapText) | bit(CapEffects),
	TypeImage:     bit(CapFills) | bit(CapCornerRadius) | bit(CapEffects),
	TypeInstance:  bit(CapChildren) | bit(CapFills) | bit(CapStrokes) | bit(CapCornerRadius) | bit(CapEffects),
	TypeComponent: bit(CapChildren) | bit(CapFills) | bit(CapStrokes) | bit(CapCornerRadius) | bit(CapEffects),
}

func bit(c Capability) uint8 { return 1 << c }

// Has reports whether the type carries the capability. Unknown types report
// no capabilities, so a future plugin version cannot make the walker recurse
// into something it does not understand.
func (t NodeType) Has(c Capability) bool {
	return capabilities[t]&bit(c) != 0
}

// Color is an RGBA color with channels in [0,1], as the plugin reports it.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// PaintKind discriminates Paint variants.
type PaintKind string

const (
	PaintSolid    PaintKind = "solid"
	PaintGradient PaintKind = "gradient"
	PaintImage    PaintKind = "image"
)

// Paint is one entry in a node's fill or stroke list. Only solid paints carry
// a color; gradient and image paints are markers as far as QA is concerned.
type Paint struct {
	Kind    PaintKind `json:"kind"`
	Color   Color     `json:"color,omitempty"`
	Visible *bool     `json:"visible,omitempty"` // nil means visible
}

// IsVisible reports whether the paint participates in rendering.
func (p Paint) IsVisible() bool { return p.Visible == nil || *p.Visible }

// EffectKind discriminates Effect variants.
type EffectKind string

const (
	EffectDropShadow  EffectKind = "drop_shadow"
	EffectInnerShadow EffectKind = "inner_shadow"
	EffectBlur        EffectKind = "blur"
)

// Effect is a visual effect applied to a node.
type Effect struct {
	Kind    EffectKind `json:"kind"`
	Visible *bool      `json:"visible,omitempty"`
}

// IsVisible reports whether the effect participates in rendering.
func (e Effect) IsVisible() bool { return e.Visible == nil || *e.Visible }

// TextStyle describes the font of a text node or of one override segment.
type TextStyle struct {
	Family string  `json:"family,omitempty"`
	Style  string  `json:"style,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Weight int     `json:"weight,omitempty"`
}

// CornerRadii holds four independent corner radii in clockwise order starting
// top-left. Present only when the node overrides the uniform radius.
type CornerRadii struct {
	TopLeft     float64 `json:"topLeft"`
	TopRight    float64 `json:"topRight"`
	BottomRight float64 `json:"bottomRight"`
	BottomLeft  float64 `json:"bottomLeft"`
}

// Uniform reports whether all four radii agree.
func (c CornerRadii) Uniform() bool {
	return c.TopLeft == c.TopRight && c.TopRight == c.BottomRight && c.BottomRight == c.BottomLeft
}

// Node is one element of the mirrored document tree. IDs are stable only
// within one document load; a stored ID may stop resolving after the user
// edits the document, which is why the locator package exists.
type Node struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Type    NodeType `json:"type"`
	Visible bool     `json:"visible"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Fills   []Paint  `json:"fills,omitempty"`
	Strokes []Paint  `json:"strokes,omitempty"`
	Effects []Effect `json:"effects,omitempty"`

	CornerRadius float64      `json:"cornerRadius,omitempty"`
	Radii        *CornerRadii `json:"radii,omitempty"`

	Characters string      `json:"characters,omitempty"`
	Style      TextStyle   `json:"style,omitempty"`
	Overrides  []TextStyle `json:"overrides,omitempty"` // style-override segments

	Children []*Node `json:"children,omitempty"`

	// Parent is attached on document load. Traversal only; never serialized,
	// never used to keep a node alive.
	Parent *Node `json:"-"`
}

// DisplayName returns the node's name, falling back to "Unnamed <type>" so
// paths and reports never contain empty segments.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("Unnamed %s", n.Type)
}

// SolidFill returns the first visible solid fill, if any.
func (n *Node) SolidFill() (Color, bool) {
	return firstSolid(n.Fills)
}

// SolidStroke returns the first visible solid stroke, if any.
func (n *Node) SolidStroke() (Color, bool) {
	return firstSolid(n.Strokes)
}

func firstSolid(paints []Paint) (Color, bool) {
	for _, p := range paints {
		if p.Kind == PaintSolid && p.IsVisible() {
			return p.Color, true
		}
	}
	return Color{}, false
}

// HasImagePaint reports whether any visible fill is an image paint.
func (n *Node) HasImagePaint() bool {
	for _, p := range n.Fills {
		if p.Kind == PaintImage && p.IsVisible() {
			return true
		}
	}
	return false
}

// HasVisibleEffect reports whether the node carries a visible effect of kind k.
func (n *Node) HasVisibleEffect(k EffectKind) bool {
	for _, e := range n.Effects {
		if e.Kind == k && e.IsVisible() {
			return true
		}
	}
	return false
}
