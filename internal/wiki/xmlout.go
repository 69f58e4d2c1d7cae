package wiki

import (
	"fmt"
	"strings"
)

// StructureToXML serializes a normalized structure back to the canonical
// <wiki_structure> XML form, the format the planning prompt requests.
func StructureToXML(st *Structure) string {
	var b strings.Builder
	b.WriteString("<wiki_structure>\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", xmlEscape(st.Title))
	fmt.Fprintf(&b, "  <description>%s</description>\n", xmlEscape(st.Description))

	if len(st.Sections) > 0 {
		b.WriteString("  <sections>\n")
		for _, s := range st.Sections {
			fmt.Fprintf(&b, "    <section id=%q>\n", xmlEscape(s.ID))
			fmt.Fprintf(&b, "      <title>%s</title>\n", xmlEscape(s.Title))
			if len(s.Pages) > 0 {
				b.WriteString("      <pages>\n")
				for _, ref := range s.Pages {
					fmt.Fprintf(&b, "        <page_ref>%s</page_ref>\n", xmlEscape(ref))
				}
				b.WriteString("      </pages>\n")
			}
			if len(s.Subsections) > 0 {
				b.WriteString("      <subsections>\n")
				for _, ref := range s.Subsections {
					fmt.Fprintf(&b, "        <section_ref>%s</section_ref>\n", xmlEscape(ref))
				}
				b.WriteString("      </subsections>\n")
			}
			b.WriteString("    </section>\n")
		}
		b.WriteString("  </sections>\n")
	}

	b.WriteString("  <pages>\n")
	for _, p := range st.Pages {
		fmt.Fprintf(&b, "    <page id=%q>\n", xmlEscape(p.ID))
		fmt.Fprintf(&b, "      <title>%s</title>\n", xmlEscape(p.Title))
		fmt.Fprintf(&b, "      <description>%s</description>\n", xmlEscape(p.Description))
		fmt.Fprintf(&b, "      <importance>%s</importance>\n", NormalizeImportance(string(p.Importance)))
		if len(p.FilePaths) > 0 {
			b.WriteString("      <relevant_files>\n")
			for _, fp := range p.FilePaths {
				fmt.Fprintf(&b, "        <file_path>%s</file_path>\n", xmlEscape(fp))
			}
			b.WriteString("      </relevant_files>\n")
		}
		if len(p.RelatedPages) > 0 {
			b.WriteString("      <related_pages>\n")
			for _, rp := range p.RelatedPages {
				fmt.Fprintf(&b, "        <related>%s</related>\n", xmlEscape(rp))
			}
			b.WriteString("      </related_pages>\n")
		}
		if p.ParentID != "" {
			fmt.Fprintf(&b, "      <parent_section>%s</parent_section>\n", xmlEscape(p.ParentID))
		}
		b.WriteString("    </page>\n")
	}
	b.WriteString("  </pages>\n")
	b.WriteString("</wiki_structure>")

	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
