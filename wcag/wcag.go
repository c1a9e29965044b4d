// Package wcag implements the WCAG 2.x color math used by the QA rules:
// sRGB linearization, relative luminance, and contrast ratio. Pure functions,
// no dependencies.
package wcag

import (
	"fmt"
	"math"

	"github.com/hazyhaar/canvasqa/canvas"
)

// Linearize converts one sRGB channel in [0,1] to its linear-light value.
func Linearize(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the WCAG relative luminance of a color, ignoring
// alpha. 0 is black, 1 is white.
func RelativeLuminance(c canvas.Color) float64 {
	return 0.2126*Linearize(c.R) + 0.7152*Linearize(c.G) + 0.0722*Linearize(c.B)
}

// ContrastRatio returns the WCAG contrast ratio between two colors, in
// [1, 21]. Symmetric in its arguments; a color against itself is 1.
func ContrastRatio(a, b canvas.Color) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Hex formats a color as #RRGGBB, ignoring alpha. Channels are clamped.
func Hex(c canvas.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// White is the default background when no solid-fill ancestor resolves.
var White = canvas.Color{R: 1, G: 1, B: 1, A: 1}
