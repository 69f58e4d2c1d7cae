package wiki

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

var (
	structureBlockRe = regexp.MustCompile(`(?s)<wiki_structure>.*?</wiki_structure>`)
	controlCharsRe   = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	bareAmpersandRe  = regexp.MustCompile(`&(?:amp;|lt;|gt;|apos;|quot;|#)?`)
)

// escapeBareAmpersands rewrites `&` that does not start a known entity to
// `&amp;`, a common LLM output mistake that breaks strict XML decoding.
func escapeBareAmpersands(s string) string {
	return bareAmpersandRe.ReplaceAllStringFunc(s, func(m string) string {
		if m == "&" {
			return "&amp;"
		}
		return m
	})
}

// xmlWikiStructure mirrors the <wiki_structure> wire format.
type xmlWikiStructure struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Sections    []xmlSection `xml:"sections>section"`
	Pages       []xmlPage    `xml:"pages>page"`
}

type xmlSection struct {
	ID          string   `xml:"id,attr"`
	Title       string   `xml:"title"`
	PageRefs    []string `xml:"pages>page_ref"`
	SectionRefs []string `xml:"subsections>section_ref"`
}

type xmlPage struct {
	ID            string   `xml:"id,attr"`
	Title         string   `xml:"title"`
	Description   string   `xml:"description"`
	Importance    string   `xml:"importance"`
	FilePaths     []string `xml:"relevant_files>file_path"`
	RelatedPages  []string `xml:"related_pages>related"`
	ParentSection string   `xml:"parent_section"`
}

// parseXMLStructure extracts the first well-formed <wiki_structure>
// block and decodes it. Sections are only honored in comprehensive view
// mode; concise wikis get a flat page list.
func parseXMLStructure(text string, comprehensive bool) (*Structure, error) {
	block := structureBlockRe.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("no <wiki_structure> XML block found in response")
	}

	block = controlCharsRe.ReplaceAllString(block, "")
	block = escapeBareAmpersands(block)

	var raw xmlWikiStructure
	if err := xml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("decoding wiki structure XML: %w", err)
	}

	st := &Structure{
		Title:       raw.Title,
		Description: raw.Description,
	}

	for i, xp := range raw.Pages {
		id := xp.ID
		if id == "" {
			id = fmt.Sprintf("page-%d", i+1)
		}
		st.Pages = append(st.Pages, Page{
			ID:           id,
			Title:        xp.Title,
			Description:  xp.Description,
			Content:      "",
			FilePaths:    trimAll(xp.FilePaths),
			Importance:   NormalizeImportance(xp.Importance),
			RelatedPages: trimAll(xp.RelatedPages),
			ParentID:     xp.ParentSection,
		})
	}

	if comprehensive {
		for i, xs := range raw.Sections {
			id := xs.ID
			if id == "" {
				id = fmt.Sprintf("section-%d", i+1)
			}
			st.Sections = append(st.Sections, Section{
				ID:          id,
				Title:       xs.Title,
				Pages:       trimAll(xs.PageRefs),
				Subsections: trimAll(xs.SectionRefs),
			})
		}
		st.RootSections = deriveRootSections(st.Sections)
	}

	return st, nil
}

// deriveRootSections returns the ids of sections never referenced as a
// subsection of another section.
func deriveRootSections(sections []Section) []string {
	referenced := make(map[string]bool)
	for _, s := range sections {
		for _, sub := range s.Subsections {
			referenced[sub] = true
		}
	}
	var roots []string
	for _, s := range sections {
		if !referenced[s.ID] {
			roots = append(roots, s.ID)
		}
	}
	return roots
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
