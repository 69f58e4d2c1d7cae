package wiki

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	openFenceRe  = regexp.MustCompile("^```[a-zA-Z]*\\s*\n?")
	closeFenceRe = regexp.MustCompile("\n?```\\s*$")
)

// stripCodeFences removes a markdown code-fence wrapper, if present.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = openFenceRe.ReplaceAllString(text, "")
	text = closeFenceRe.ReplaceAllString(text, "")
	return text
}

// fieldSynonyms maps each canonical page/section field to the key names
// models actually emit. Consulted in order during JSON normalization
// instead of ad hoc field probing.
var fieldSynonyms = map[string][]string{
	"filePaths":    {"filePaths", "file_paths", "relevant_files", "relevantFiles"},
	"relatedPages": {"relatedPages", "related_pages"},
	"pages":        {"pages", "page_refs"},
	"subsections":  {"subsections", "section_refs"},
	"rootSections": {"rootSections", "root_sections"},
	"parentId":     {"parent_section", "parentSection", "parentId"},
}

// parseJSONStructure attempts to interpret the response as JSON: first
// the whole (fence-stripped) text, then the first balanced {...} span
// that carries wiki-structure keys.
func parseJSONStructure(text string, comprehensive bool) (*Structure, error) {
	cleaned := stripCodeFences(text)

	obj := map[string]any{}
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil || !looksLikeStructure(obj) {
		var found bool
		obj, found = scanBalancedObject(cleaned)
		if !found {
			return nil, fmt.Errorf("no JSON object found in response")
		}
	}

	return normalizeStructure(obj, comprehensive), nil
}

// looksLikeStructure checks for wiki-structure top-level keys.
func looksLikeStructure(obj map[string]any) bool {
	if _, ok := obj["pages"]; ok {
		return true
	}
	if _, ok := obj["wiki_structure"]; ok {
		return true
	}
	_, hasTitle := obj["title"]
	_, hasSections := obj["sections"]
	return hasTitle && hasSections
}

// scanBalancedObject finds the first balanced {...} span that decodes to
// an object with wiki-structure keys.
func scanBalancedObject(text string) (map[string]any, bool) {
	depth := 0
	start := -1
	for i, ch := range text {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(text[start:i+1]), &obj); err == nil && looksLikeStructure(obj) {
					return obj, true
				}
				start = -1
			}
		}
	}
	return nil, false
}

// normalizeStructure converts a loosely typed JSON object into a
// Structure, resolving all field-name synonyms.
func normalizeStructure(obj map[string]any, comprehensive bool) *Structure {
	// Unwrap { "wiki_structure": { ... } }.
	if inner, ok := obj["wiki_structure"].(map[string]any); ok {
		obj = inner
	}

	st := &Structure{
		Title:       stringField(obj, "title"),
		Description: stringField(obj, "description"),
	}

	for i, raw := range listField(obj, "pages") {
		page, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id := stringField(page, "id")
		if id == "" {
			id = fmt.Sprintf("page-%d", i+1)
		}
		st.Pages = append(st.Pages, Page{
			ID:           id,
			Title:        stringField(page, "title"),
			Description:  stringField(page, "description"),
			Content:      "",
			FilePaths:    synonymStrings(page, "filePaths"),
			Importance:   NormalizeImportance(stringField(page, "importance")),
			RelatedPages: synonymStrings(page, "relatedPages"),
			ParentID:     synonymString(page, "parentId"),
		})
	}

	if comprehensive {
		for i, raw := range listField(obj, "sections") {
			section, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id := stringField(section, "id")
			if id == "" {
				id = fmt.Sprintf("section-%d", i+1)
			}
			st.Sections = append(st.Sections, Section{
				ID:          id,
				Title:       stringField(section, "title"),
				Pages:       synonymStrings(section, "pages"),
				Subsections: synonymStrings(section, "subsections"),
			})
		}

		st.RootSections = synonymStringsTop(obj, "rootSections")
		if len(st.RootSections) == 0 && len(st.Sections) > 0 {
			st.RootSections = deriveRootSections(st.Sections)
		}
	}

	return st
}

// synonymString returns the first non-empty string value among the
// canonical field's synonyms.
func synonymString(obj map[string]any, canonical string) string {
	for _, key := range fieldSynonyms[canonical] {
		if s := stringField(obj, key); s != "" {
			return s
		}
	}
	return ""
}

// synonymStrings returns the first non-empty string list among the
// canonical field's synonyms. A bare string becomes a one-element list.
func synonymStrings(obj map[string]any, canonical string) []string {
	for _, key := range fieldSynonyms[canonical] {
		val, ok := obj[key]
		if !ok {
			continue
		}
		if out := coerceStrings(val); len(out) > 0 {
			return out
		}
	}
	return nil
}

func synonymStringsTop(obj map[string]any, canonical string) []string {
	return synonymStrings(obj, canonical)
}

// coerceStrings flattens the shapes models emit for list fields:
// ["a"], "a", or {"file_path": ["a"]}.
func coerceStrings(val any) []string {
	switch v := val.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case map[string]any:
		for _, nested := range v {
			if out := coerceStrings(nested); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func listField(obj map[string]any, key string) []any {
	if l, ok := obj[key].([]any); ok {
		return l
	}
	return nil
}
