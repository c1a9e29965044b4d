package locator

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/canvasqa/canvas"
)

func highlightDoc(t *testing.T) (*canvas.Document, *canvas.Loopback) {
	t.Helper()
	doc := canvas.NewDocument()
	doc.Load(&canvas.Node{
		ID: "f:1", Type: canvas.TypeFrame, Visible: true,
		Children: []*canvas.Node{
			{
				ID: "n:1", Name: "Card", Type: canvas.TypeRectangle, Visible: true,
				Fills: []canvas.Paint{{Kind: canvas.PaintImage}},
			},
		},
	})
	return doc, &canvas.Loopback{Doc: doc}
}

func TestFlashAndRevert(t *testing.T) {
	doc, host := highlightDoc(t)
	h := NewHighlighter(host, WithRevertDelay(0)) // manual revert
	ctx := context.Background()

	n, _ := doc.Node("n:1")
	if err := h.Flash(ctx, n); err != nil {
		t.Fatal(err)
	}

	after, _ := doc.Node("n:1")
	if len(after.Fills) != 1 || after.Fills[0].Kind != canvas.PaintSolid {
		t.Fatalf("fills after flash: %+v", after.Fills)
	}
	if after.Fills[0].Color != highlightColor {
		t.Fatalf("flash color: %+v", after.Fills[0].Color)
	}

	h.Revert(ctx, "n:1")
	reverted, _ := doc.Node("n:1")
	// The original image paint must come back, not a solid approximation.
	if len(reverted.Fills) != 1 || reverted.Fills[0].Kind != canvas.PaintImage {
		t.Fatalf("fills after revert: %+v", reverted.Fills)
	}
}

func TestRevert_UnknownIDIsNoop(t *testing.T) {
	_, host := highlightDoc(t)
	h := NewHighlighter(host, WithRevertDelay(0))
	h.Revert(context.Background(), "never-flashed")
}

type failingHost struct{ err error }

func (f *failingHost) Apply(context.Context, canvas.Op) error { return f.err }

func TestFlash_HostFailure(t *testing.T) {
	doc, _ := highlightDoc(t)
	errHost := errors.New("channel down")
	h := NewHighlighter(&failingHost{err: errHost}, WithRevertDelay(0))

	n, _ := doc.Node("n:1")
	if err := h.Flash(context.Background(), n); !errors.Is(err, errHost) {
		t.Fatalf("error: %v, want the host failure", err)
	}

	// The stored original is consumed by the immediate revert attempt.
	h.mu.Lock()
	remaining := len(h.originals)
	h.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("originals left behind: %d", remaining)
	}
}
