// Package wiki implements the generation orchestrator: structure
// resolution, bounded-concurrency page generation, cache/freshness
// reconciliation, and wiki export.
package wiki

import (
	"encoding/json"
	"strings"
)

// Importance ranks how central a page is to the repository.
type Importance string

// Importance levels. Anything else normalizes to medium.
const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// NormalizeImportance maps unknown or absent values to medium.
func NormalizeImportance(s string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case ImportanceHigh:
		return ImportanceHigh
	case ImportanceLow:
		return ImportanceLow
	default:
		return ImportanceMedium
	}
}

// Page is one generated documentation unit.
//
// Content lifecycle: created empty by the resolver, set to
// ContentLoading when its generation task starts, then either the final
// markdown or an "Error generating content: ..." sentinel. Pages are
// never deleted within a session; a failed page is retried in place.
type Page struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Content      string          `json:"content"`
	FilePaths    []string        `json:"filePaths"`
	Importance   Importance      `json:"importance"`
	RelatedPages []string        `json:"relatedPages"`
	ParentID     string          `json:"parentId,omitempty"`
	DiagramData  json.RawMessage `json:"diagramData,omitempty"`
}

// ContentLoading marks a page whose generation task is in flight.
const ContentLoading = "Loading..."

// contentErrorPrefix marks a page whose generation failed.
const contentErrorPrefix = "Error generating content: "

// HasContent reports whether the page holds final, non-error markdown.
func (p *Page) HasContent() bool {
	return p.Content != "" && p.Content != ContentLoading && !p.IsError()
}

// IsError reports whether the page holds the generation-failure sentinel.
func (p *Page) IsError() bool {
	return strings.HasPrefix(p.Content, contentErrorPrefix)
}

// Section groups pages, optionally nesting subsections.
type Section struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Pages       []string `json:"pages"`
	Subsections []string `json:"subsections,omitempty"`
}

// Structure is the wiki plan produced by the structure resolver.
//
// Invariant: every page id referenced by a section or by relatedPages
// exists in Pages; RootSections is the subset of section ids not
// referenced as a subsection of another section.
type Structure struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Pages        []Page    `json:"pages"`
	Sections     []Section `json:"sections,omitempty"`
	RootSections []string  `json:"rootSections,omitempty"`
}

// PageByID returns the page with the given id, or nil.
func (s *Structure) PageByID(id string) *Page {
	for i := range s.Pages {
		if s.Pages[i].ID == id {
			return &s.Pages[i]
		}
	}
	return nil
}

// Phase tracks generation progress. Monotonically advances except on
// error, which halts it without rollback; informational only, never used
// for scheduling decisions.
type Phase int

// Generation phases.
const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhasePlanning
	PhaseGenerating
	PhaseDone
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhasePlanning:
		return "planning"
	case PhaseGenerating:
		return "generating"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Freshness classifies whether a cached wiki still matches the
// repository's latest commit. Advisory only; never auto-invalidates.
type Freshness int

// Freshness classifications.
const (
	FreshnessUnknown Freshness = iota
	FreshnessUpToDate
	FreshnessOutdated
)

// String implements fmt.Stringer.
func (f Freshness) String() string {
	switch f {
	case FreshnessUpToDate:
		return "up-to-date"
	case FreshnessOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}
