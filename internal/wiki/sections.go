package wiki

import (
	"fmt"
	"strings"
)

// sectionCategory pairs a synthesized section with the title keywords
// that route pages into it. Order matters: the first matching category
// wins, and sections appear in this order.
type sectionCategory struct {
	id       string
	title    string
	keywords []string
}

var sectionCategories = []sectionCategory{
	{"section-overview", "Overview", []string{"overview", "introduction", "getting started", "about"}},
	{"section-architecture", "Architecture", []string{"architecture", "design", "structure", "system"}},
	{"section-features", "Features", []string{"feature", "functionality", "capabilities"}},
	{"section-components", "Components", []string{"component", "module", "service"}},
	{"section-api", "API Reference", []string{"api", "endpoint", "interface", "rest"}},
	{"section-data", "Data", []string{"data", "database", "storage", "schema"}},
	{"section-models", "Models", []string{"model", "entity", "type"}},
	{"section-ui", "User Interface", []string{"ui", "frontend", "view", "page", "screen"}},
	{"section-setup", "Setup & Deployment", []string{"setup", "install", "deploy", "configuration", "build"}},
	{"section-other", "Other", nil},
}

// SynthesizeSections builds sections for a plan that came back without
// any, keyword-matching each page title against the fixed category list.
// When no category matches any page, it falls back to grouping pages by
// importance.
func SynthesizeSections(pages []Page) ([]Section, []string) {
	byCategory := make(map[string][]string)
	matchedAny := false

	for _, p := range pages {
		title := strings.ToLower(p.Title)
		assigned := false
		for _, cat := range sectionCategories {
			for _, kw := range cat.keywords {
				if strings.Contains(title, kw) {
					byCategory[cat.id] = append(byCategory[cat.id], p.ID)
					assigned = true
					matchedAny = true
					break
				}
			}
			if assigned {
				break
			}
		}
		if !assigned {
			byCategory["section-other"] = append(byCategory["section-other"], p.ID)
		}
	}

	if !matchedAny {
		return importanceSections(pages)
	}

	var sections []Section
	var roots []string
	for _, cat := range sectionCategories {
		ids := byCategory[cat.id]
		if len(ids) == 0 {
			continue
		}
		sections = append(sections, Section{ID: cat.id, Title: cat.title, Pages: ids})
		roots = append(roots, cat.id)
	}
	return sections, roots
}

// importanceSections groups pages into high/medium/low buckets, the last
// resort when no title matched any keyword category.
func importanceSections(pages []Page) ([]Section, []string) {
	buckets := []struct {
		importance Importance
		title      string
	}{
		{ImportanceHigh, "Core Topics"},
		{ImportanceMedium, "Supporting Topics"},
		{ImportanceLow, "Additional Topics"},
	}

	var sections []Section
	var roots []string
	for _, b := range buckets {
		var ids []string
		for _, p := range pages {
			if p.Importance == b.importance {
				ids = append(ids, p.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		id := fmt.Sprintf("section-%s", b.importance)
		sections = append(sections, Section{ID: id, Title: b.title, Pages: ids})
		roots = append(roots, id)
	}
	return sections, roots
}
