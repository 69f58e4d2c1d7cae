// Package research runs the multi-turn deep research loop: iterative
// exchanges over one topic with heuristic completion detection and a
// forced conclusion when the iteration cap is reached.
package research

import (
	"regexp"
	"strings"
)

// completeTag is the explicit completion signal a response may carry.
const completeTag = "[RESEARCH_COMPLETE]"

var conclusionHeadingRe = regexp.MustCompile(`(?mi)^#{1,4}\s*(?:final\s+conclusion|conclusion)\b.*$`)

// IsComplete reports whether a response signals the research is
// finished. Checks run in fixed priority: a conclusion heading, then
// concluding phrases, then the explicit completion tag. Heuristic by
// necessity; models rarely emit the tag they are asked for.
func IsComplete(text string) bool {
	if conclusionHeadingRe.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "this concludes") || strings.Contains(lower, "in conclusion") {
		return true
	}
	return strings.Contains(text, completeTag)
}
