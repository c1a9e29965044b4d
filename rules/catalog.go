// CLAUDE:SUMMARY The canonical rule catalog — margins, type hierarchy, imagery, contrast, radius, typeface, shadows.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hazyhaar/canvasqa/canvas"
	"github.com/hazyhaar/canvasqa/wcag"
)

// Layout thresholds.
const (
	mobileMaxWidth  = 420.0
	mobileMargin    = 16.0
	tabletMargin    = 24.0
	statusBarHeight = 44.0

	maxTypeVariants = 5
	requiredRadius  = 6.0
	textRatio       = 4.5
	uiRatio         = 3.0

	maxFamiliesListed = 5
	excerptLen        = 40
)

// uiKeywords mark nodes treated as UI controls by the contrast-ui rule and
// the locator.
var uiKeywords = []string{"button", "icon", "control", "input", "checkbox", "radio"}

// Catalog returns the full rule set in report order. The trailing rules are
// placeholders that always pass; they are scaffolding for checks that have
// a slot in the report but no predicate yet, and must stay visible as such.
func Catalog() []Rule {
	return []Rule{
		{
			ID:          "page-margins",
			Name:        "Page margins",
			Description: "Content keeps the minimum side margin for the device class",
			Expected:    "16px on mobile (width <= 420), 24px on tablet; exactly 0 is edge-to-edge by design",
			Validate:    validateMargins,
		},
		{
			ID:          "type-hierarchy",
			Name:        "Typographic hierarchy",
			Description: "The frame uses a bounded set of font variants",
			Expected:    fmt.Sprintf("fewer than %d distinct (family, size, weight) combinations", maxTypeVariants),
			Validate:    validateTypeHierarchy,
		},
		{
			ID:          "imagery-edge",
			Name:        "Imagery edge-to-edge",
			Description: "At least one image bleeds to the top and left frame edges",
			Expected:    "an image node with y <= top threshold and x <= 1",
			Validate:    validateImageryEdge,
		},
		{
			ID:          "contrast-text",
			Name:        "Text color contrast",
			Description: "Text meets WCAG AA contrast against its resolved background",
			Expected:    fmt.Sprintf("contrast ratio >= %.1f:1", textRatio),
			Validate:    validateTextContrast,
		},
		{
			ID:          "contrast-ui",
			Name:        "UI control contrast",
			Description: "UI controls meet WCAG contrast against their resolved background",
			Expected:    fmt.Sprintf("contrast ratio >= %.1f:1", uiRatio),
			Validate:    validateUIContrast,
		},
		{
			ID:          "corner-radius",
			Name:        "Corner radius",
			Description: "Cards and images use the uniform corner radius",
			Expected:    fmt.Sprintf("uniform radius of exactly %gpx", requiredRadius),
			Validate:    validateCornerRadius,
		},
		{
			ID:          "typeface",
			Name:        "Typeface",
			Description: "All text uses the required font family",
			Expected:    "family " + DefaultTypeface + " (or the configured override)",
			Validate:    validateTypeface,
		},
		{
			ID:          "card-shadow",
			Name:        "Card shadow",
			Description: "Cards carry a drop shadow",
			Expected:    "a visible drop_shadow effect on every card",
			Validate:    validateCardShadow,
		},

		placeholder("bottom-bar", "Bottom bar treatment", "Bottom navigation bars follow the platform treatment"),
		placeholder("ui-language", "UI language casing", "Labels use consistent sentence casing"),
		placeholder("button-count", "Button count", "Screens stay within the primary-action budget"),
		placeholder("button-bar-shadow", "Button bar shadow", "Floating button bars carry an elevation shadow"),
		placeholder("spacing-sections", "Section spacing", "Vertical rhythm between sections is consistent"),
		placeholder("spacing-cards", "Card spacing", "Gaps between sibling cards are consistent"),
	}
}

func placeholder(id, name, desc string) Rule {
	return Rule{
		ID:          id,
		Name:        name,
		Description: desc,
		Expected:    "not yet implemented",
		Validate: func(*canvas.Node, Options) Result {
			return notImplemented(id)
		},
	}
}

// ByID returns the catalog rule with the given ID.
func ByID(id string) (Rule, bool) {
	for _, r := range Catalog() {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// --- page margins ---

func validateMargins(frame *canvas.Node, _ Options) Result {
	required := tabletMargin
	if frame.Width <= mobileMaxWidth {
		required = mobileMargin
	}

	var violations []Violation
	for _, child := range frame.Children {
		if !child.Visible {
			continue
		}
		name := strings.ToLower(child.Name)
		if strings.Contains(name, "background") || strings.Contains(name, "status") {
			continue
		}
		left := child.X
		right := frame.Width - (child.X + child.Width)
		if left > 0 && left < required {
			violations = append(violations, Violation{
				NodeID: child.ID, Name: child.DisplayName(),
				Side: "left", Required: required, Actual: left,
				Message: fmt.Sprintf("left margin %.1fpx is below the required %.0fpx", left, required),
			})
		}
		if right > 0 && right < required {
			violations = append(violations, Violation{
				NodeID: child.ID, Name: child.DisplayName(),
				Side: "right", Required: required, Actual: right,
				Message: fmt.Sprintf("right margin %.1fpx is below the required %.0fpx", right, required),
			})
		}
	}

	if len(violations) > 0 {
		return fail("page-margins",
			fmt.Sprintf("%d element(s) sit inside the %.0fpx margin", len(violations), required),
			violations)
	}
	return pass("page-margins")
}

// --- typographic hierarchy ---

func validateTypeHierarchy(frame *canvas.Node, _ Options) Result {
	type variant struct {
		family string
		size   float64
		weight int
	}
	seen := map[variant]bool{}
	for _, n := range canvas.TextNodes(frame) {
		seen[variant{n.Style.Family, n.Style.Size, n.Style.Weight}] = true
	}
	if len(seen) >= maxTypeVariants {
		keys := make([]string, 0, len(seen))
		for v := range seen {
			keys = append(keys, fmt.Sprintf("%s %g/%d", v.family, v.size, v.weight))
		}
		sort.Strings(keys)
		return Result{
			RuleID: "type-hierarchy",
			Passed: false,
			Reason: fmt.Sprintf("%d distinct font variants (limit %d): %s",
				len(seen), maxTypeVariants-1, strings.Join(keys, ", ")),
		}
	}
	return pass("type-hierarchy")
}

// --- imagery edge-to-edge ---

func validateImageryEdge(frame *canvas.Node, opts Options) Result {
	topLimit := 0.0
	if opts.IgnoreStatusBar {
		topLimit = statusBarHeight
	}

	images := canvas.Walk(frame, func(n *canvas.Node) bool {
		return n.Type == canvas.TypeImage || n.HasImagePaint()
	})
	if len(images) == 0 {
		return pass("imagery-edge")
	}
	for _, img := range images {
		if img.Y <= topLimit && img.X <= 1 {
			return pass("imagery-edge")
		}
	}
	return fail("imagery-edge",
		fmt.Sprintf("%d image(s) found, none reaches the top-left edge (y <= %g, x <= 1)", len(images), topLimit),
		nil)
}

// --- color contrast ---

// resolveBackground walks up the parent chain from n until an ancestor with a
// visible solid fill is found. Defaults to white: the host canvas renders
// white behind unfilled frames.
func resolveBackground(n *canvas.Node) canvas.Color {
	for p := n.Parent; p != nil; p = p.Parent {
		if c, ok := p.SolidFill(); ok {
			return c
		}
	}
	return wcag.White
}

func excerpt(s string) string {
	if len(s) <= excerptLen {
		return s
	}
	return s[:excerptLen] + "…"
}

func validateTextContrast(frame *canvas.Node, _ Options) Result {
	var violations []Violation
	nodeIDs := map[string]string{}
	for _, n := range canvas.TextNodes(frame) {
		fg, ok := n.SolidFill()
		if !ok {
			continue
		}
		bg := resolveBackground(n)
		ratio := wcag.ContrastRatio(fg, bg)
		if ratio < textRatio {
			violations = append(violations, Violation{
				NodeID:     n.ID,
				Name:       n.DisplayName(),
				Excerpt:    excerpt(n.Characters),
				Foreground: wcag.Hex(fg),
				Background: wcag.Hex(bg),
				Ratio:      ratio,
				Message:    fmt.Sprintf("contrast %.2f:1, need %.1f:1", ratio, textRatio),
			})
			nodeIDs[n.DisplayName()] = n.ID
		}
	}
	if len(violations) > 0 {
		r := fail("contrast-text",
			fmt.Sprintf("%d text node(s) below %.1f:1", len(violations), textRatio), violations)
		r.NodeIDs = nodeIDs
		return r
	}
	return pass("contrast-text")
}

// IsUIControl reports whether the node name contains a UI-control keyword.
func IsUIControl(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range uiKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func validateUIContrast(frame *canvas.Node, _ Options) Result {
	controls := canvas.Walk(frame, func(n *canvas.Node) bool {
		return IsUIControl(n.Name)
	})

	var violations []Violation
	for _, n := range controls {
		fg, ok := n.SolidFill()
		if !ok {
			// Stroke-only controls (outline icons) are judged on the stroke.
			fg, ok = n.SolidStroke()
		}
		if !ok {
			continue
		}
		bg := resolveBackground(n)
		ratio := wcag.ContrastRatio(fg, bg)
		if ratio < uiRatio {
			violations = append(violations, Violation{
				NodeID:     n.ID,
				Name:       n.DisplayName(),
				Foreground: wcag.Hex(fg),
				Background: wcag.Hex(bg),
				Ratio:      ratio,
				Message:    fmt.Sprintf("contrast %.2f:1, need %.1f:1", ratio, uiRatio),
			})
		}
	}
	if len(violations) > 0 {
		return fail("contrast-ui",
			fmt.Sprintf("%d UI control(s) below %.1f:1", len(violations), uiRatio), violations)
	}
	return pass("contrast-ui")
}

// --- corner radius ---

var radiusExcluded = []string{"action", "navigation", "button", "icon", "tab"}

// isCardLike classifies nodes subject to the corner-radius and card-shadow
// rules: named cards/images, or filled rectangles placed directly in a frame.
func isCardLike(n *canvas.Node) bool {
	lower := strings.ToLower(n.Name)
	for _, ex := range radiusExcluded {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	if strings.Contains(lower, "card") || strings.Contains(lower, "image") || n.Type == canvas.TypeImage {
		return true
	}
	if n.Type == canvas.TypeRectangle && len(n.Fills) > 0 &&
		n.Parent != nil && n.Parent.Type == canvas.TypeFrame {
		return true
	}
	return false
}

func validateCornerRadius(frame *canvas.Node, _ Options) Result {
	cards := canvas.Walk(frame, func(n *canvas.Node) bool {
		return n.Type.Has(canvas.CapCornerRadius) && isCardLike(n)
	})

	var violations []Violation
	for _, n := range cards {
		if n.Radii != nil && !n.Radii.Uniform() {
			// Mixed corners are a violation on their own, independent of the
			// uniform-radius value check.
			radii := *n.Radii
			violations = append(violations, Violation{
				NodeID: n.ID, Name: n.DisplayName(), Radii: &radii,
				Message: fmt.Sprintf("corners disagree: %g / %g / %g / %g",
					radii.TopLeft, radii.TopRight, radii.BottomRight, radii.BottomLeft),
			})
			continue
		}
		radius := n.CornerRadius
		if n.Radii != nil {
			radius = n.Radii.TopLeft
		}
		if radius != requiredRadius {
			violations = append(violations, Violation{
				NodeID: n.ID, Name: n.DisplayName(), Radius: radius,
				Required: requiredRadius, Actual: radius,
				Message: fmt.Sprintf("radius %gpx, need exactly %gpx", radius, requiredRadius),
			})
		}
	}
	if len(violations) > 0 {
		return fail("corner-radius",
			fmt.Sprintf("%d card(s)/image(s) off the %gpx radius", len(violations), requiredRadius),
			violations)
	}
	return pass("corner-radius")
}

// --- typeface ---

func validateTypeface(frame *canvas.Node, opts Options) Result {
	required := opts.RequiredTypeface
	if required == "" {
		required = DefaultTypeface
	}

	families := map[string][]Violation{}
	for _, n := range canvas.TextNodes(frame) {
		if n.Style.Family != "" && n.Style.Family != required {
			families[n.Style.Family] = append(families[n.Style.Family], Violation{
				NodeID: n.ID, Name: n.DisplayName(),
				FontFamily: n.Style.Family,
				Excerpt:    excerpt(n.Characters),
				Message:    fmt.Sprintf("family %q, need %q", n.Style.Family, required),
			})
		}
		for _, ov := range n.Overrides {
			if ov.Family != "" && ov.Family != required {
				families[ov.Family] = append(families[ov.Family], Violation{
					NodeID: n.ID, Name: n.DisplayName(),
					FontFamily: ov.Family,
					Message:    fmt.Sprintf("override segment uses %q, need %q", ov.Family, required),
				})
			}
		}
	}
	if len(families) == 0 {
		return pass("typeface")
	}

	names := make([]string, 0, len(families))
	for f := range families {
		names = append(names, f)
	}
	sort.Strings(names)
	if len(names) > maxFamiliesListed {
		names = names[:maxFamiliesListed]
	}
	var violations []Violation
	for _, f := range names {
		violations = append(violations, families[f]...)
	}
	return fail("typeface",
		fmt.Sprintf("foreign families in use: %s", strings.Join(names, ", ")), violations)
}

// --- card shadow ---

func validateCardShadow(frame *canvas.Node, _ Options) Result {
	cards := canvas.Walk(frame, func(n *canvas.Node) bool {
		return strings.Contains(strings.ToLower(n.Name), "card")
	})
	if len(cards) == 0 {
		return pass("card-shadow")
	}

	var violations []Violation
	for _, n := range cards {
		if !n.HasVisibleEffect(canvas.EffectDropShadow) {
			violations = append(violations, Violation{
				NodeID: n.ID, Name: n.DisplayName(),
				Message: "card has no visible drop shadow",
			})
		}
	}
	if len(violations) > 0 {
		return fail("card-shadow",
			fmt.Sprintf("%d card(s) without a drop shadow", len(violations)), violations)
	}
	return pass("card-shadow")
}
