package wcag

import (
	"math"
	"testing"

	"github.com/hazyhaar/canvasqa/canvas"
)

func TestContrastRatio_BlackOnWhite(t *testing.T) {
	black := canvas.Color{A: 1}
	got := ContrastRatio(black, White)
	if math.Abs(got-21) > 0.01 {
		t.Fatalf("black/white ratio = %v, want 21", got)
	}
}

func TestContrastRatio_Identity(t *testing.T) {
	c := canvas.Color{R: 0.3, G: 0.6, B: 0.9, A: 1}
	if got := ContrastRatio(c, c); got != 1 {
		t.Fatalf("same color ratio = %v, want 1", got)
	}
}

func TestContrastRatio_Symmetric(t *testing.T) {
	a := canvas.Color{R: 0.2, G: 0.4, B: 0.1, A: 1}
	b := canvas.Color{R: 0.9, G: 0.9, B: 0.8, A: 1}
	if ContrastRatio(a, b) != ContrastRatio(b, a) {
		t.Fatal("ratio must not depend on argument order")
	}
}

func TestRelativeLuminance(t *testing.T) {
	if got := RelativeLuminance(White); math.Abs(got-1) > 1e-9 {
		t.Fatalf("white luminance = %v, want 1", got)
	}
	if got := RelativeLuminance(canvas.Color{A: 1}); got != 0 {
		t.Fatalf("black luminance = %v, want 0", got)
	}
	// Green dominates the luminance weighting.
	g := RelativeLuminance(canvas.Color{G: 1, A: 1})
	r := RelativeLuminance(canvas.Color{R: 1, A: 1})
	if g <= r {
		t.Fatalf("green %v should out-weigh red %v", g, r)
	}
}

func TestLinearize_BranchBoundary(t *testing.T) {
	// Below the threshold the linear segment applies.
	low := Linearize(0.03)
	if math.Abs(low-0.03/12.92) > 1e-9 {
		t.Fatalf("low branch: %v", low)
	}
	// Above it, the power curve.
	high := Linearize(0.5)
	want := math.Pow((0.5+0.055)/1.055, 2.4)
	if math.Abs(high-want) > 1e-9 {
		t.Fatalf("high branch: %v, want %v", high, want)
	}
}

func TestHex(t *testing.T) {
	cases := []struct {
		c    canvas.Color
		want string
	}{
		{White, "#FFFFFF"},
		{canvas.Color{A: 1}, "#000000"},
		{canvas.Color{R: 1, A: 1}, "#FF0000"},
		{canvas.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}, "#808080"},
	}
	for _, tc := range cases {
		if got := Hex(tc.c); got != tc.want {
			t.Errorf("Hex(%+v) = %s, want %s", tc.c, got, tc.want)
		}
	}
}
