// CLAUDE:SUMMARY Rule, Result, and Violation types for the design-QA engine.
// Package rules implements the design-QA engine: a fixed catalog of rules,
// each an independent predicate over one frame's subtree, an engine that
// evaluates frames against the catalog, and a markdown report renderer.
package rules

import "github.com/hazyhaar/canvasqa/canvas"

// Rule is one design check. Rules are immutable, defined once in the
// catalog, and never tied to a document instance.
type Rule struct {
	ID          string
	Name        string
	Description string
	// Expected describes the passing condition for report rendering.
	Expected string
	// Validate evaluates the rule over one frame subtree. Implementations
	// must treat the tree as read-only.
	Validate func(frame *canvas.Node, opts Options) Result
}

// Options tunes rule evaluation for one engine run.
type Options struct {
	// IgnoreStatusBar raises the imagery edge-to-edge top threshold from 0
	// to the status-bar height (44).
	IgnoreStatusBar bool
	// RequiredTypeface is the only font family the typeface rule accepts.
	// Empty means DefaultTypeface.
	RequiredTypeface string
}

// DefaultTypeface is the family required by the typeface rule unless
// overridden in Options.
const DefaultTypeface = "Inter"

// Result is the outcome of one rule over one frame. A failed result carries
// a reason and usually structured violations; rule evaluation errors are
// folded into failed results, never propagated.
type Result struct {
	RuleID string `json:"ruleId"`
	// RuleName, Description and Expected are copied from the rule by the
	// engine so a report renders correctly for any rule set, not just the
	// default catalog.
	RuleName    string      `json:"ruleName,omitempty"`
	Description string      `json:"description,omitempty"`
	Expected    string      `json:"expected,omitempty"`
	Passed      bool        `json:"passed"`
	Reason      string      `json:"reason,omitempty"`
	Details     []Violation `json:"details,omitempty"`
	// Note carries unstructured evidence, e.g. the "not yet implemented"
	// marker on placeholder rules.
	Note string `json:"note,omitempty"`
	// NodeIDs maps element display names to IDs when names alone may be
	// ambiguous in Details.
	NodeIDs map[string]string `json:"nodeIds,omitempty"`
}

// Violation describes one rule failure for one element. The shape is
// rule-specific, but NodeID and Name are always present: together with the
// discriminator fields they are what the locator uses to re-find the element
// after the captured ID has gone stale.
type Violation struct {
	NodeID  string `json:"nodeId"`
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`

	// Margin rule.
	Side     string  `json:"side,omitempty"`
	Required float64 `json:"required,omitempty"`
	Actual   float64 `json:"actual,omitempty"`

	// Contrast rules.
	Ratio      float64 `json:"ratio,omitempty"`
	Foreground string  `json:"foreground,omitempty"`
	Background string  `json:"background,omitempty"`
	Excerpt    string  `json:"excerpt,omitempty"`

	// Corner-radius rule.
	Radius float64             `json:"radius,omitempty"`
	Radii  *canvas.CornerRadii `json:"radii,omitempty"`

	// Typeface rule.
	FontFamily string `json:"fontFamily,omitempty"`
}

func pass(ruleID string) Result {
	return Result{RuleID: ruleID, Passed: true}
}

func fail(ruleID, reason string, details []Violation) Result {
	return Result{RuleID: ruleID, Passed: false, Reason: reason, Details: details}
}

// notImplemented marks a placeholder rule: it always passes, explicitly, so
// the report shows the check exists but has no real predicate yet.
func notImplemented(ruleID string) Result {
	return Result{RuleID: ruleID, Passed: true, Note: "not yet implemented"}
}
