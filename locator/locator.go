// CLAUDE:SUMMARY Fuzzy node re-identification — weighted scoring over descriptive metadata when IDs go stale.
// Package locator re-finds elements that a QA report flagged earlier. The
// report stores attribute values, not a session node reference, so by the
// time the user asks to see the element its ID may no longer resolve. Locate
// trades precision for resilience: exact ID first, then a weighted score
// over descriptive metadata across the whole search subtree.
package locator

import (
	"sort"
	"strings"

	"github.com/hazyhaar/canvasqa/rules"

	"github.com/hazyhaar/canvasqa/canvas"
)

// Descriptor carries whatever is known about the element being re-found.
// Any subset of fields may be set.
type Descriptor struct {
	// NodeID is tried first as an exact lookup.
	NodeID string `json:"nodeId,omitempty"`
	// Name is the display name captured at validation time.
	Name string `json:"elementName,omitempty"`
	// RuleID selects which rule-specific fields are meaningful.
	RuleID string `json:"ruleId,omitempty"`
	// ExpectedRadius matches corner radii within RadiusTolerance.
	ExpectedRadius *float64 `json:"expectedRadius,omitempty"`
	// TextFragment matches by substring containment in text characters.
	TextFragment string `json:"textFragment,omitempty"`
}

// Weights are the scoring contributions. The values are empirically chosen
// in the source material and deliberately kept configurable rather than
// rationalized.
type Weights struct {
	NameExact int
	Radius    int
	Text      int
	UIKeyword int
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{NameExact: 50, Radius: 40, Text: 30, UIKeyword: 20}
}

// RadiusTolerance is how far a live radius may drift from ExpectedRadius and
// still count as a match. Note this is looser than the corner-radius rule,
// which requires exact equality: a 6.0000001 radius fails validation but
// still matches here.
const RadiusTolerance = 0.1

// Match is one scored candidate.
type Match struct {
	Node  *canvas.Node
	Score int
	// Exact is set when both the name and a rule-specific field matched.
	Exact bool
}

// Locator scores candidates under a search root.
type Locator struct {
	weights Weights
}

// New creates a Locator with the given weights.
func New(w Weights) *Locator {
	return &Locator{weights: w}
}

// Locate returns the best-matching live node for the descriptor, or nil if
// nothing scores. resolve looks up the descriptor ID against the current
// document load; a stale ID is expected and simply routes to the slow path.
func (l *Locator) Locate(doc *canvas.Document, root *canvas.Node, desc Descriptor) *Match {
	if desc.NodeID != "" {
		if n, ok := doc.Node(desc.NodeID); ok {
			return &Match{Node: n, Score: l.weights.NameExact, Exact: true}
		}
	}

	var candidates []Match
	for _, n := range canvas.Walk(root, nil) {
		m := l.score(n, desc)
		if m.Score > 0 {
			m.Node = n
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	best := candidates[0]
	return &best
}

func (l *Locator) score(n *canvas.Node, desc Descriptor) Match {
	var m Match
	nameMatched := false
	fieldMatched := false

	if desc.Name != "" && n.DisplayName() == desc.Name {
		m.Score += l.weights.NameExact
		nameMatched = true
	}

	if desc.ExpectedRadius != nil && n.Type.Has(canvas.CapCornerRadius) {
		r := n.CornerRadius
		if n.Radii != nil {
			r = n.Radii.TopLeft
		}
		if diff := r - *desc.ExpectedRadius; diff >= -RadiusTolerance && diff <= RadiusTolerance {
			m.Score += l.weights.Radius
			fieldMatched = true
		}
	}

	if desc.TextFragment != "" && n.Characters != "" &&
		strings.Contains(n.Characters, desc.TextFragment) {
		m.Score += l.weights.Text
		fieldMatched = true
	}

	if desc.RuleID == "contrast-ui" && rules.IsUIControl(n.Name) {
		m.Score += l.weights.UIKeyword
		fieldMatched = true
	}

	m.Exact = nameMatched && fieldMatched
	return m
}
