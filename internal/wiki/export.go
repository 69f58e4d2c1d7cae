package wiki

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianshen/repowiki/internal/repo"
)

// ExportMarkdown renders the full wiki as one markdown document: a
// metadata header, a table of contents, and every page in structure
// order separated by horizontal rules. Pages without content are
// emitted with a placeholder note rather than dropped, so the export
// always mirrors the structure.
func ExportMarkdown(ref repo.Ref, st *Structure, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Wiki Documentation for %s\n\n", ref.String())
	fmt.Fprintf(&b, "Generated on: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Table of Contents\n\n")
	for _, p := range st.Pages {
		fmt.Fprintf(&b, "- [%s](#%s)\n", p.Title, p.ID)
	}
	b.WriteString("\n")

	for _, p := range st.Pages {
		fmt.Fprintf(&b, "<a id='%s'></a>\n\n", p.ID)
		if len(p.RelatedPages) > 0 {
			b.WriteString("## Related Pages\n\n")
			var links []string
			for _, rel := range p.RelatedPages {
				title := rel
				if related := st.PageByID(rel); related != nil {
					title = related.Title
				}
				links = append(links, fmt.Sprintf("[%s](#%s)", title, rel))
			}
			fmt.Fprintf(&b, "Related topics: %s\n\n", strings.Join(links, ", "))
		}
		if p.HasContent() {
			b.WriteString(p.Content)
		} else {
			fmt.Fprintf(&b, "# %s\n\n*Content for this page has not been generated.*", p.Title)
		}
		b.WriteString("\n\n---\n\n")
	}

	return b.String()
}

// markdownExport is the JSON export shape.
type markdownExport struct {
	Metadata exportMetadata `json:"metadata"`
	Pages    []Page         `json:"pages"`
}

type exportMetadata struct {
	Repository  string `json:"repository"`
	GeneratedAt string `json:"generated_at"`
	PageCount   int    `json:"page_count"`
}

// ExportJSON renders the wiki's pages with export metadata as indented
// JSON.
func ExportJSON(ref repo.Ref, st *Structure, generatedAt time.Time) ([]byte, error) {
	out := markdownExport{
		Metadata: exportMetadata{
			Repository:  ref.String(),
			GeneratedAt: generatedAt.Format(time.RFC3339),
			PageCount:   len(st.Pages),
		},
		Pages: st.Pages,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding wiki export: %w", err)
	}
	return data, nil
}
