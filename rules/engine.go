// CLAUDE:SUMMARY QA engine — evaluates frames against the catalog, folds rule panics into failed results.
package rules

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/canvasqa/canvas"
)

// FrameReport holds one frame's results in catalog order.
type FrameReport struct {
	FrameID   string   `json:"frameId"`
	FrameName string   `json:"frameName"`
	Results   []Result `json:"results"`
	Passed    int      `json:"passed"`
	Total     int      `json:"total"`
}

// Report is the outcome of one engine run over a set of frames.
type Report struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Frames      []FrameReport `json:"frames"`
}

// Engine evaluates frames against a rule set. Create one per validation
// command: the result cache is instance state, so nothing leaks between
// commands and a stale cache entry cannot outlive the document load that
// produced it.
type Engine struct {
	rules  []Rule
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	// cache holds per-frame results for repeated validation of the same
	// frame within one command (e.g. validate_qa_rules over overlapping
	// selections). Keyed by frame node ID.
	cache map[string]FrameReport
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the report timestamp source (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithRules replaces the default catalog (tests and partial runs).
func WithRules(rules []Rule) EngineOption {
	return func(e *Engine) { e.rules = rules }
}

// NewEngine creates an engine over the full catalog.
func NewEngine(opts Options, eopts ...EngineOption) *Engine {
	e := &Engine{
		rules:  Catalog(),
		opts:   opts,
		logger: slog.Default(),
		now:    time.Now,
		cache:  make(map[string]FrameReport),
	}
	for _, o := range eopts {
		o(e)
	}
	return e
}

// Validate evaluates every frame against every rule. Rule panics and
// internal errors become failed results carrying the error text; validation
// failures are data, never exceptions.
func (e *Engine) Validate(frames []*canvas.Node) *Report {
	report := &Report{GeneratedAt: e.now()}
	for _, frame := range frames {
		if cached, ok := e.cache[frame.ID]; ok {
			report.Frames = append(report.Frames, cached)
			continue
		}

		fr := FrameReport{
			FrameID:   frame.ID,
			FrameName: frame.DisplayName(),
			Total:     len(e.rules),
		}
		for _, rule := range e.rules {
			res := e.evaluate(rule, frame)
			if res.Passed {
				fr.Passed++
			}
			fr.Results = append(fr.Results, res)
		}
		e.cache[frame.ID] = fr
		report.Frames = append(report.Frames, fr)
	}
	return report
}

// evaluate runs one rule over one frame, converting panics into failures.
func (e *Engine) evaluate(rule Rule, frame *canvas.Node) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("rule panicked",
				"rule", rule.ID, "frame", frame.ID, "panic", rec)
			res = Result{
				Passed: false,
				Reason: fmt.Sprintf("rule evaluation failed: %v", rec),
			}
			res = stamp(res, rule)
		}
	}()
	res = stamp(rule.Validate(frame, e.opts), rule)
	return res
}

// stamp copies the rule identity onto the result so the report is
// self-contained regardless of which rule set produced it.
func stamp(res Result, rule Rule) Result {
	res.RuleID = rule.ID
	res.RuleName = rule.Name
	res.Description = rule.Description
	res.Expected = rule.Expected
	return res
}
