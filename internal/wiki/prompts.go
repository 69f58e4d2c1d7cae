package wiki

import (
	"bytes"
	"fmt"
	"text/template"
)

// ---------- prompt templates ----------

var structurePromptTmpl = template.Must(template.New("structure").Parse(
	`Analyze this GitHub repository {{.Owner}}/{{.Repo}} and create a wiki structure for it.

The complete file tree of the project:
<file_tree>
{{.FileTree}}
</file_tree>

The README file of the project:
<readme>
{{.Readme}}
</readme>

I want to create a wiki for this repository. Determine the most logical structure for a wiki based on the repository's content.

Create a structured wiki with the following main sections covering the key aspects of the repository. Create {{.PageBand}} pages.

Return your analysis in the following XML format:

<wiki_structure>
  <title>[Overall title for the wiki]</title>
  <description>[Brief description of the repository]</description>
{{- if .Comprehensive}}
  <sections>
    <section id="section-1">
      <title>[Section title]</title>
      <pages>
        <page_ref>[page id]</page_ref>
      </pages>
      <subsections>
        <section_ref>[subsection id]</section_ref>
      </subsections>
    </section>
  </sections>
{{- end}}
  <pages>
    <page id="page-1">
      <title>[Page title]</title>
      <description>[Brief description of what this page covers]</description>
      <importance>high|medium|low</importance>
      <relevant_files>
        <file_path>[path to a relevant file]</file_path>
      </relevant_files>
      <related_pages>
        <related>[related page id]</related>
      </related_pages>
    </page>
  </pages>
</wiki_structure>

IMPORTANT FORMATTING INSTRUCTIONS:
- Return ONLY the <wiki_structure> XML structure
- DO NOT wrap the XML in markdown code blocks
- Ensure the XML is properly formatted and valid`))

var pagePromptTmpl = template.Must(template.New("page").Parse(
	`You are an expert technical writer and software architect.
Your task is to generate a comprehensive and accurate technical wiki page in Markdown format about a specific feature, system, or module within a given software project.

You will be given:
1. The "[WIKI_PAGE_TOPIC]" for the page you need to create.
2. A list of "[RELEVANT_SOURCE_FILES]" from the project that you MUST use as the sole basis for the content.

CRITICAL STARTING INSTRUCTION:
The very first thing on the page MUST be a ` + "`<details>`" + ` block listing ALL the [RELEVANT_SOURCE_FILES] you used to generate the content.
Format it exactly like this:
<details>
<summary>Relevant source files</summary>

The following files were used as context for generating this wiki page:

{{.FileLinks}}
</details>

Immediately after the ` + "`<details>`" + ` block, the main title of the page should be a H1 Markdown heading: ` + "`# {{.Title}}`" + `.

Based ONLY on the content of the [RELEVANT_SOURCE_FILES]:

1.  **Introduction:** Start with a concise introduction explaining the purpose and overview of "{{.Title}}".
2.  **Detailed Sections:** Break down "{{.Title}}" into logical sections using H2 and H3 headings.
3.  **Mermaid Diagrams:** Use Mermaid diagrams to visually represent architectures and flows. Use "graph TD" directive.
4.  **Tables:** Use Markdown tables to summarize key information.
5.  **Source Citations:** Cite at least 5 source files using: ` + "`Sources: [filename.ext:start_line-end_line]()`" + `.
6.  **Technical Accuracy:** All information must be derived from the source files.

[WIKI_PAGE_TOPIC]: {{.Title}}

IMPORTANT: Generate the content in {{.Language}} language.`))

// pageBand returns the desired page-count instruction for the view mode.
func pageBand(comprehensive bool) string {
	if comprehensive {
		return "8-12"
	}
	return "4-6"
}

// buildStructurePrompt renders the planning prompt for one repository.
func buildStructurePrompt(owner, repo, fileTree, readme string, comprehensive bool) (string, error) {
	var buf bytes.Buffer
	err := structurePromptTmpl.Execute(&buf, struct {
		Owner, Repo, FileTree, Readme, PageBand string
		Comprehensive                           bool
	}{
		Owner:         owner,
		Repo:          repo,
		FileTree:      fileTree,
		Readme:        readme,
		PageBand:      pageBand(comprehensive),
		Comprehensive: comprehensive,
	})
	if err != nil {
		return "", fmt.Errorf("rendering structure prompt: %w", err)
	}
	return buf.String(), nil
}

// buildPagePrompt renders the generation prompt for a single page.
// fileLinks is a markdown list of paths resolved to browsable URLs.
func buildPagePrompt(title, fileLinks, language string) (string, error) {
	var buf bytes.Buffer
	err := pagePromptTmpl.Execute(&buf, struct {
		Title, FileLinks, Language string
	}{
		Title:     title,
		FileLinks: fileLinks,
		Language:  language,
	})
	if err != nil {
		return "", fmt.Errorf("rendering page prompt: %w", err)
	}
	return buf.String(), nil
}
