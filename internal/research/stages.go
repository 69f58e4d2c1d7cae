package research

import (
	"fmt"
	"strings"
)

// StageType classifies a research response.
type StageType string

// Stage types, in the order they occur during a run.
const (
	StagePlan       StageType = "plan"
	StageUpdate     StageType = "update"
	StageConclusion StageType = "conclusion"
)

// Stage is one completed research iteration.
type Stage struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Iteration int       `json:"iteration"`
	Type      StageType `json:"type"`
}

// stageMarker returns the heading each iteration's response is expected
// to open with.
func stageMarker(iteration, maxIterations int) (string, StageType) {
	switch {
	case iteration <= 1:
		return "## Research Plan", StagePlan
	case iteration >= maxIterations:
		return "## Final Conclusion", StageConclusion
	default:
		return fmt.Sprintf("## Research Update %d", iteration-1), StageUpdate
	}
}

// buildStage wraps a raw response into a Stage, prepending the expected
// marker when the model omitted it so every stage renders with a
// heading. A conclusion stage always carries a conclusion heading: a
// capped run whose final response opens with some other heading (the
// continue instruction asks for "## Research Update") still gets the
// synthetic "## Final Conclusion" injected above it.
func buildStage(text string, iteration, maxIterations int, concluded bool) Stage {
	marker, typ := stageMarker(iteration, maxIterations)
	if concluded {
		marker, typ = "## Final Conclusion", StageConclusion
	}

	content := strings.TrimSpace(text)
	needsMarker := !strings.HasPrefix(content, "#")
	if typ == StageConclusion && !conclusionHeadingRe.MatchString(content) {
		needsMarker = true
	}
	if needsMarker {
		content = marker + "\n\n" + content
	}
	return Stage{
		Title:     strings.TrimPrefix(marker, "## "),
		Content:   content,
		Iteration: iteration,
		Type:      typ,
	}
}
