// CLAUDE:SUMMARY Renders an engine Report as a human-readable markdown checklist.
package rules

import (
	"fmt"
	"strings"
)

// maxSampleViolations caps how many violations are rendered per failing rule.
const maxSampleViolations = 3

// Markdown renders the report as a markdown document: title, generation
// timestamp, one section per frame with a pass percentage and a checklist
// line per rule. Rendering is deterministic: the same report always yields
// the same text.
func Markdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# Design QA Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	for _, fr := range r.Frames {
		pct := 0
		if fr.Total > 0 {
			pct = fr.Passed * 100 / fr.Total
		}
		fmt.Fprintf(&b, "## %s\n\n", fr.FrameName)
		fmt.Fprintf(&b, "**%d/%d passed (%d%%)**\n\n", fr.Passed, fr.Total, pct)

		for _, res := range fr.Results {
			mark := "x"
			if !res.Passed {
				mark = " "
			}
			fmt.Fprintf(&b, "- [%s] **%s** — %s (expected: %s)\n",
				mark, res.RuleName, res.Description, res.Expected)
			if res.Note != "" {
				fmt.Fprintf(&b, "  - _%s_\n", res.Note)
			}
			if res.Passed {
				continue
			}
			if res.Reason != "" {
				fmt.Fprintf(&b, "  - %s\n", res.Reason)
			}
			for i, v := range res.Details {
				if i == maxSampleViolations {
					fmt.Fprintf(&b, "  - +%d more\n", len(res.Details)-maxSampleViolations)
					break
				}
				fmt.Fprintf(&b, "  - %s: %s\n", v.Name, v.Message)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
