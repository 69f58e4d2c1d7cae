package wiki

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportStructure() *Structure {
	return &Structure{
		ID:    "wiki-1",
		Title: "Demo Wiki",
		Pages: []Page{
			{ID: "page-1", Title: "Overview", Content: "# Overview\n\nThe project.", RelatedPages: []string{"page-2"}},
			{ID: "page-2", Title: "Architecture", Content: "# Architecture\n\nLayers."},
			{ID: "page-3", Title: "Broken", Content: "Error generating content: backend unavailable"},
		},
	}
}

func TestExportMarkdown(t *testing.T) {
	generatedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	out := ExportMarkdown(testRef(), exportStructure(), generatedAt)

	assert.Contains(t, out, "# Wiki Documentation for octocat/hello-world")
	assert.Contains(t, out, "Generated on: 2026-08-01 12:00:00")

	// Table of contents links every page.
	assert.Contains(t, out, "- [Overview](#page-1)")
	assert.Contains(t, out, "- [Architecture](#page-2)")
	assert.Contains(t, out, "- [Broken](#page-3)")

	// Related pages cross-link by resolved title.
	assert.Contains(t, out, "Related topics: [Architecture](#page-2)")

	assert.Contains(t, out, "# Overview\n\nThe project.")
	// Error-sentinel pages export a placeholder, not the sentinel.
	assert.Contains(t, out, "*Content for this page has not been generated.*")
	assert.NotContains(t, out, "backend unavailable")

	assert.Contains(t, out, "\n---\n")
}

func TestExportJSON(t *testing.T) {
	generatedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	data, err := ExportJSON(testRef(), exportStructure(), generatedAt)
	require.NoError(t, err)

	var out struct {
		Metadata struct {
			Repository  string `json:"repository"`
			GeneratedAt string `json:"generated_at"`
			PageCount   int    `json:"page_count"`
		} `json:"metadata"`
		Pages []Page `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "octocat/hello-world", out.Metadata.Repository)
	assert.Equal(t, 3, out.Metadata.PageCount)
	require.Len(t, out.Pages, 3)
	assert.Equal(t, "Overview", out.Pages[0].Title)
}
