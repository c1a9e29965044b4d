// CLAUDE:SUMMARY Transient flash-highlight of a located node, with scheduled revert to original appearance.
package locator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/canvasqa/canvas"
)

// DefaultRevertDelay is how long a highlight stays before automatic revert.
const DefaultRevertDelay = 3 * time.Second

// highlightColor is the high-visibility paint applied to matches.
var highlightColor = canvas.Color{R: 1, G: 0.3, B: 0, A: 1}

// original captures the appearance to restore on revert.
type original struct {
	fill       []canvas.Paint
	strokes    []canvas.Paint
	hasStrokes bool
}

// Highlighter applies a transient high-visibility override to a node and
// restores the original appearance after a delay. Original appearance is
// instance state keyed by node ID; create one Highlighter per command so a
// stale entry cannot survive into the next invocation.
type Highlighter struct {
	host   canvas.Host
	delay  time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	originals map[string]original
}

// HighlighterOption configures a Highlighter.
type HighlighterOption func(*Highlighter)

// WithRevertDelay overrides the automatic revert delay. Zero disables the
// timer; call Revert explicitly (tests).
func WithRevertDelay(d time.Duration) HighlighterOption {
	return func(h *Highlighter) { h.delay = d }
}

// WithHighlightLogger sets the logger for best-effort revert failures.
func WithHighlightLogger(l *slog.Logger) HighlighterOption {
	return func(h *Highlighter) { h.logger = l }
}

// NewHighlighter creates a Highlighter committing through host.
func NewHighlighter(host canvas.Host, opts ...HighlighterOption) *Highlighter {
	h := &Highlighter{
		host:      host,
		delay:     DefaultRevertDelay,
		logger:    slog.Default(),
		originals: make(map[string]original),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Flash applies the highlight override to n and schedules the revert. If the
// highlight commit itself fails, the original appearance is restored
// immediately and the error is returned.
func (h *Highlighter) Flash(ctx context.Context, n *canvas.Node) error {
	h.mu.Lock()
	h.originals[n.ID] = original{
		fill:       append([]canvas.Paint(nil), n.Fills...),
		strokes:    append([]canvas.Paint(nil), n.Strokes...),
		hasStrokes: n.Type.Has(canvas.CapStrokes),
	}
	h.mu.Unlock()

	c := highlightColor
	if err := h.host.Apply(ctx, canvas.Op{Kind: canvas.OpSetFill, NodeID: n.ID, Color: &c}); err != nil {
		h.Revert(ctx, n.ID)
		return err
	}
	if n.Type.Has(canvas.CapStrokes) {
		op := canvas.Op{Kind: canvas.OpSetStrokes, NodeID: n.ID,
			Strokes: []canvas.Paint{{Kind: canvas.PaintSolid, Color: c}}}
		if err := h.host.Apply(ctx, op); err != nil {
			h.Revert(ctx, n.ID)
			return err
		}
	}

	if h.delay > 0 {
		time.AfterFunc(h.delay, func() {
			// Detached from the command context by design: the command has
			// resolved long before the revert fires.
			h.Revert(context.Background(), n.ID)
		})
	}
	return nil
}

// Revert restores the recorded appearance for nodeID. Failures are logged
// only — a cosmetic restore must never block or fail the primary operation.
func (h *Highlighter) Revert(ctx context.Context, nodeID string) {
	h.mu.Lock()
	orig, ok := h.originals[nodeID]
	delete(h.originals, nodeID)
	h.mu.Unlock()
	if !ok {
		return
	}

	if err := h.host.Apply(ctx, canvas.Op{Kind: canvas.OpSetFills, NodeID: nodeID, Fills: orig.fill}); err != nil {
		h.logger.Warn("highlight revert failed", "node_id", nodeID, "error", err)
	}
	if orig.hasStrokes {
		if err := h.host.Apply(ctx, canvas.Op{Kind: canvas.OpSetStrokes, NodeID: nodeID, Strokes: orig.strokes}); err != nil {
			h.logger.Warn("highlight stroke revert failed", "node_id", nodeID, "error", err)
		}
	}
}
