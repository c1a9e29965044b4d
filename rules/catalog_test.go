package rules

import (
	"strings"
	"testing"

	"github.com/hazyhaar/canvasqa/canvas"
)

var (
	white = canvas.Color{R: 1, G: 1, B: 1, A: 1}
	black = canvas.Color{R: 0, G: 0, B: 0, A: 1}
	grey  = canvas.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}
)

func solid(c canvas.Color) []canvas.Paint {
	return []canvas.Paint{{Kind: canvas.PaintSolid, Color: c}}
}

// frame attaches parent pointers by loading the tree into a document.
func frame(t *testing.T, root *canvas.Node) *canvas.Node {
	t.Helper()
	doc := canvas.NewDocument()
	doc.Load(root)
	return root
}

func mobileFrame(children ...*canvas.Node) *canvas.Node {
	return &canvas.Node{
		ID: "f:1", Name: "Screen", Type: canvas.TypeFrame, Visible: true,
		Width: 390, Height: 844, Fills: solid(white),
		Children: children,
	}
}

func textNode(id, chars string, style canvas.TextStyle, fill canvas.Color) *canvas.Node {
	return &canvas.Node{
		ID: id, Name: chars, Type: canvas.TypeText, Visible: true,
		X: 16, Width: 100, Height: 20,
		Characters: chars, Style: style, Fills: solid(fill),
	}
}

func TestMargins_MobileViolation(t *testing.T) {
	f := frame(t, mobileFrame(&canvas.Node{
		ID: "c:1", Name: "Content", Type: canvas.TypeRectangle, Visible: true,
		X: 10, Width: 100, Height: 40, Fills: solid(black),
	}))

	res := validateMargins(f, Options{})
	if res.Passed {
		t.Fatal("10px inside a 16px margin should fail")
	}
	if len(res.Details) != 1 {
		t.Fatalf("violations: %d, want 1", len(res.Details))
	}
	v := res.Details[0]
	if v.Side != "left" || v.Required != 16 || v.Actual != 10 {
		t.Fatalf("violation: %+v", v)
	}
}

func TestMargins_ZeroIsEdgeToEdge(t *testing.T) {
	f := frame(t, mobileFrame(&canvas.Node{
		ID: "c:1", Name: "Hero", Type: canvas.TypeRectangle, Visible: true,
		X: 0, Width: 390, Height: 200, Fills: solid(black),
	}))

	if res := validateMargins(f, Options{}); !res.Passed {
		t.Fatalf("edge-to-edge child flagged: %s", res.Reason)
	}
}

func TestMargins_TabletThreshold(t *testing.T) {
	f := frame(t, &canvas.Node{
		ID: "f:1", Type: canvas.TypeFrame, Visible: true, Width: 834, Height: 1194,
		Children: []*canvas.Node{{
			ID: "c:1", Name: "Panel", Type: canvas.TypeRectangle, Visible: true,
			X: 20, Width: 200, Height: 100,
		}},
	})

	res := validateMargins(f, Options{})
	if res.Passed {
		t.Fatal("20px inside a 24px tablet margin should fail")
	}
	if res.Details[0].Required != 24 {
		t.Fatalf("required = %g, want 24", res.Details[0].Required)
	}
}

func TestMargins_SkipsBackgroundAndStatusLayers(t *testing.T) {
	f := frame(t, mobileFrame(
		&canvas.Node{ID: "c:1", Name: "Background", Type: canvas.TypeRectangle, Visible: true, X: 2, Width: 386},
		&canvas.Node{ID: "c:2", Name: "Status Bar", Type: canvas.TypeRectangle, Visible: true, X: 4, Width: 382},
	))

	if res := validateMargins(f, Options{}); !res.Passed {
		t.Fatalf("background/status layers flagged: %s", res.Reason)
	}
}

func TestTypeHierarchy(t *testing.T) {
	styles := []canvas.TextStyle{
		{Family: "Inter", Size: 24, Weight: 700},
		{Family: "Inter", Size: 18, Weight: 600},
		{Family: "Inter", Size: 16, Weight: 400},
		{Family: "Inter", Size: 14, Weight: 400},
	}
	var children []*canvas.Node
	for i, s := range styles {
		children = append(children, textNode(string(rune('a'+i)), "t", s, black))
	}
	f := frame(t, mobileFrame(children...))
	if res := validateTypeHierarchy(f, Options{}); !res.Passed {
		t.Fatalf("4 variants should pass: %s", res.Reason)
	}

	// A fifth distinct variant crosses the limit.
	children = append(children, textNode("e", "t", canvas.TextStyle{Family: "Inter", Size: 12, Weight: 300}, black))
	f = frame(t, mobileFrame(children...))
	res := validateTypeHierarchy(f, Options{})
	if res.Passed {
		t.Fatal("5 variants should fail")
	}
	if !strings.Contains(res.Reason, "5 distinct font variants") {
		t.Fatalf("reason: %s", res.Reason)
	}
}

func TestTypeHierarchy_DuplicatesCollapse(t *testing.T) {
	style := canvas.TextStyle{Family: "Inter", Size: 16, Weight: 400}
	var children []*canvas.Node
	for i := 0; i < 10; i++ {
		children = append(children, textNode(string(rune('a'+i)), "t", style, black))
	}
	f := frame(t, mobileFrame(children...))
	if res := validateTypeHierarchy(f, Options{}); !res.Passed {
		t.Fatalf("one repeated variant should pass: %s", res.Reason)
	}
}

func TestImageryEdge(t *testing.T) {
	img := &canvas.Node{
		ID: "i:1", Name: "Hero", Type: canvas.TypeImage, Visible: true,
		X: 0, Y: 44, Width: 390, Height: 240,
	}
	f := frame(t, mobileFrame(img))

	// Below the status bar: fails with a strict top edge, passes when the
	// status bar is ignored.
	if res := validateImageryEdge(f, Options{}); res.Passed {
		t.Fatal("y=44 with a 0 threshold should fail")
	}
	if res := validateImageryEdge(f, Options{IgnoreStatusBar: true}); !res.Passed {
		t.Fatalf("y=44 with the status bar ignored should pass: %s", res.Reason)
	}
}

func TestImageryEdge_NoImagesPasses(t *testing.T) {
	f := frame(t, mobileFrame())
	if res := validateImageryEdge(f, Options{}); !res.Passed {
		t.Fatal("a frame without imagery has nothing to check")
	}
}

func TestTextContrast(t *testing.T) {
	f := frame(t, mobileFrame(
		textNode("t:1", "Readable", canvas.TextStyle{Family: "Inter"}, black),
		textNode("t:2", "Washed out", canvas.TextStyle{Family: "Inter"}, grey),
	))

	res := validateTextContrast(f, Options{})
	if res.Passed {
		t.Fatal("grey on white should fail")
	}
	if len(res.Details) != 1 {
		t.Fatalf("violations: %d, want 1", len(res.Details))
	}
	v := res.Details[0]
	if v.NodeID != "t:2" || v.Ratio >= 4.5 || v.Ratio < 1 {
		t.Fatalf("violation: %+v", v)
	}
	if res.NodeIDs["Washed out"] != "t:2" {
		t.Fatalf("NodeIDs: %v", res.NodeIDs)
	}
}

func TestTextContrast_BackgroundFromParentChain(t *testing.T) {
	// White text inside a dark frame: the background must resolve to the
	// frame fill, not default to white.
	f := frame(t, &canvas.Node{
		ID: "f:1", Type: canvas.TypeFrame, Visible: true, Width: 390, Fills: solid(black),
		Children: []*canvas.Node{
			textNode("t:1", "Inverted", canvas.TextStyle{Family: "Inter"}, white),
		},
	})
	if res := validateTextContrast(f, Options{}); !res.Passed {
		t.Fatalf("white on black should pass: %s", res.Reason)
	}
}

func TestUIContrast_StrokeFallback(t *testing.T) {
	f := frame(t, mobileFrame(&canvas.Node{
		ID: "u:1", Name: "Close icon", Type: canvas.TypeVector, Visible: true,
		Strokes: solid(grey),
	}))

	res := validateUIContrast(f, Options{})
	if res.Passed {
		t.Fatal("grey outline icon on white should fail")
	}

	f = frame(t, mobileFrame(&canvas.Node{
		ID: "u:1", Name: "Close icon", Type: canvas.TypeVector, Visible: true,
		Strokes: solid(black),
	}))
	if res := validateUIContrast(f, Options{}); !res.Passed {
		t.Fatalf("black outline icon should pass: %s", res.Reason)
	}
}

func TestCornerRadius(t *testing.T) {
	card := func(id string, radius float64) *canvas.Node {
		return &canvas.Node{
			ID: id, Name: "Card", Type: canvas.TypeRectangle, Visible: true,
			CornerRadius: radius, Fills: solid(white),
		}
	}

	f := frame(t, mobileFrame(card("c:1", 6)))
	if res := validateCornerRadius(f, Options{}); !res.Passed {
		t.Fatalf("6px card flagged: %s", res.Reason)
	}

	f = frame(t, mobileFrame(card("c:1", 8)))
	res := validateCornerRadius(f, Options{})
	if res.Passed {
		t.Fatal("8px card should fail")
	}
	if res.Details[0].Radius != 8 {
		t.Fatalf("violation: %+v", res.Details[0])
	}
}

func TestCornerRadius_MixedCorners(t *testing.T) {
	f := frame(t, mobileFrame(&canvas.Node{
		ID: "c:1", Name: "Card", Type: canvas.TypeRectangle, Visible: true,
		Fills: solid(white),
		Radii: &canvas.CornerRadii{TopLeft: 6, TopRight: 6, BottomRight: 0, BottomLeft: 0},
	}))

	res := validateCornerRadius(f, Options{})
	if res.Passed {
		t.Fatal("mixed corners should fail")
	}
	v := res.Details[0]
	if v.Radii == nil || !strings.Contains(v.Message, "corners disagree") {
		t.Fatalf("violation: %+v", v)
	}
}

func TestCornerRadius_ExcludesControls(t *testing.T) {
	f := frame(t, mobileFrame(&canvas.Node{
		ID: "c:1", Name: "Tab bar", Type: canvas.TypeRectangle, Visible: true,
		CornerRadius: 0, Fills: solid(white),
	}))
	if res := validateCornerRadius(f, Options{}); !res.Passed {
		t.Fatalf("navigation chrome should be exempt: %s", res.Reason)
	}
}

func TestTypeface(t *testing.T) {
	f := frame(t, mobileFrame(
		textNode("t:1", "Fine", canvas.TextStyle{Family: "Inter"}, black),
		textNode("t:2", "Foreign", canvas.TextStyle{Family: "Roboto"}, black),
	))

	res := validateTypeface(f, Options{})
	if res.Passed {
		t.Fatal("Roboto should fail the Inter requirement")
	}
	if !strings.Contains(res.Reason, "Roboto") {
		t.Fatalf("reason: %s", res.Reason)
	}
}

func TestTypeface_OverrideSegments(t *testing.T) {
	n := textNode("t:1", "Mixed", canvas.TextStyle{Family: "Inter"}, black)
	n.Overrides = []canvas.TextStyle{{Family: "Georgia"}}
	f := frame(t, mobileFrame(n))

	res := validateTypeface(f, Options{})
	if res.Passed {
		t.Fatal("a Georgia override segment should fail")
	}
}

func TestTypeface_ConfiguredFamily(t *testing.T) {
	f := frame(t, mobileFrame(
		textNode("t:1", "Branded", canvas.TextStyle{Family: "Roboto"}, black),
	))
	if res := validateTypeface(f, Options{RequiredTypeface: "Roboto"}); !res.Passed {
		t.Fatalf("configured family should pass: %s", res.Reason)
	}
}

func TestCardShadow(t *testing.T) {
	bare := &canvas.Node{
		ID: "c:1", Name: "Card", Type: canvas.TypeRectangle, Visible: true,
		Fills: solid(white), CornerRadius: 6,
	}
	f := frame(t, mobileFrame(bare))
	if res := validateCardShadow(f, Options{}); res.Passed {
		t.Fatal("shadowless card should fail")
	}

	bare.Effects = []canvas.Effect{{Kind: canvas.EffectDropShadow}}
	f = frame(t, mobileFrame(bare))
	if res := validateCardShadow(f, Options{}); !res.Passed {
		t.Fatalf("card with drop shadow should pass: %s", res.Reason)
	}
}

func TestPlaceholdersAlwaysPass(t *testing.T) {
	f := frame(t, mobileFrame())
	placeholders := []string{
		"bottom-bar", "ui-language", "button-count",
		"button-bar-shadow", "spacing-sections", "spacing-cards",
	}
	for _, id := range placeholders {
		rule, ok := ByID(id)
		if !ok {
			t.Fatalf("placeholder %s missing from catalog", id)
		}
		res := rule.Validate(f, Options{})
		if !res.Passed {
			t.Errorf("%s: placeholder should pass", id)
		}
		if res.Note != "not yet implemented" {
			t.Errorf("%s: note = %q", id, res.Note)
		}
	}
}

func TestByID_Unknown(t *testing.T) {
	if _, ok := ByID("no-such-rule"); ok {
		t.Fatal("unknown rule ID should not resolve")
	}
}
