package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeSectionsByKeyword(t *testing.T) {
	pages := []Page{
		{ID: "page-1", Title: "Project Overview"},
		{ID: "page-2", Title: "System Architecture"},
		{ID: "page-3", Title: "REST API Endpoints"},
		{ID: "page-4", Title: "Database Schema"},
		{ID: "page-5", Title: "Deployment and Install"},
		{ID: "page-6", Title: "Miscellaneous Notes"},
	}

	sections, roots := SynthesizeSections(pages)
	require.NotEmpty(t, sections)

	byID := map[string]Section{}
	for _, s := range sections {
		byID[s.ID] = s
	}
	assert.Equal(t, []string{"page-1"}, byID["section-overview"].Pages)
	assert.Equal(t, []string{"page-2"}, byID["section-architecture"].Pages)
	assert.Equal(t, []string{"page-3"}, byID["section-api"].Pages)
	assert.Equal(t, []string{"page-4"}, byID["section-data"].Pages)
	assert.Equal(t, []string{"page-5"}, byID["section-setup"].Pages)
	assert.Equal(t, []string{"page-6"}, byID["section-other"].Pages)

	// Every synthesized section is a root, in category order.
	var ids []string
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, ids, roots)
	assert.Equal(t, "section-overview", ids[0])
}

func TestSynthesizeSectionsFirstCategoryWins(t *testing.T) {
	// "architecture" appears before "api" in the category order.
	sections, _ := SynthesizeSections([]Page{{ID: "page-1", Title: "API Architecture"}})
	require.Len(t, sections, 1)
	assert.Equal(t, "section-architecture", sections[0].ID)
}

func TestSynthesizeSectionsImportanceFallback(t *testing.T) {
	pages := []Page{
		{ID: "page-1", Title: "Alpha", Importance: ImportanceHigh},
		{ID: "page-2", Title: "Beta", Importance: ImportanceHigh},
		{ID: "page-3", Title: "Gamma", Importance: ImportanceLow},
	}

	sections, roots := SynthesizeSections(pages)
	require.Len(t, sections, 2)
	assert.Equal(t, "section-high", sections[0].ID)
	assert.Equal(t, "Core Topics", sections[0].Title)
	assert.Equal(t, []string{"page-1", "page-2"}, sections[0].Pages)
	assert.Equal(t, "section-low", sections[1].ID)
	assert.Equal(t, []string{"section-high", "section-low"}, roots)
}
