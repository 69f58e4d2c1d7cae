package wiki

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/transport"
)

func testListing() repo.Listing {
	return repo.Listing{
		FilePaths:     []string{"main.go", "internal/app/app.go", "README.md"},
		Readme:        "# Hello World\n\nA sample project.",
		DefaultBranch: "main",
	}
}

func TestResolverParsesPlanningResponse(t *testing.T) {
	var gotPrompt string
	exchanger := &stubExchanger{fn: func(_ context.Context, req transport.Request) (string, error) {
		require.Len(t, req.Messages, 1)
		gotPrompt = req.Messages[0].Content
		return minimalXML, nil
	}}

	r := NewResolver(exchanger, NewParseCascade(nil), ResolverOptions{Provider: "google", Model: "gemini-2.5-flash"})
	st, err := r.Resolve(context.Background(), testRef(), testListing())
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID, "structure gets a generated id")
	require.Len(t, st.Pages, 1)
	assert.Equal(t, "Intro", st.Pages[0].Title)

	assert.Contains(t, gotPrompt, "octocat/hello-world")
	assert.Contains(t, gotPrompt, "internal/app/app.go")
	assert.Contains(t, gotPrompt, "# Hello World")
	assert.Contains(t, gotPrompt, "Create 4-6 pages")
}

func TestResolverComprehensivePromptAndSections(t *testing.T) {
	var gotPrompt string
	exchanger := &stubExchanger{fn: func(_ context.Context, req transport.Request) (string, error) {
		gotPrompt = req.Messages[0].Content
		// Comprehensive plan that came back without sections.
		return `<wiki_structure><title>T</title><pages><page id="page-1"><title>Project Overview</title><importance>high</importance></page></pages></wiki_structure>`, nil
	}}

	r := NewResolver(exchanger, NewParseCascade(nil), ResolverOptions{Comprehensive: true})
	st, err := r.Resolve(context.Background(), testRef(), testListing())
	require.NoError(t, err)

	assert.Contains(t, gotPrompt, "Create 8-12 pages")
	assert.Contains(t, gotPrompt, "<section_ref>")

	require.Len(t, st.Sections, 1)
	assert.Equal(t, "section-overview", st.Sections[0].ID)
	assert.Equal(t, []string{"section-overview"}, st.RootSections)
}

func TestResolverKeepsParsedSections(t *testing.T) {
	exchanger := &stubExchanger{fn: func(_ context.Context, _ transport.Request) (string, error) {
		return `<wiki_structure><title>T</title>
<sections><section id="s1"><title>Core</title><pages><page_ref>page-1</page_ref></pages></section></sections>
<pages><page id="page-1"><title>A</title></page></pages>
</wiki_structure>`, nil
	}}

	r := NewResolver(exchanger, NewParseCascade(nil), ResolverOptions{Comprehensive: true})
	st, err := r.Resolve(context.Background(), testRef(), testListing())
	require.NoError(t, err)

	require.Len(t, st.Sections, 1)
	assert.Equal(t, "s1", st.Sections[0].ID, "parsed sections are not replaced by synthesis")
}

func TestResolverSurfacesCascadeFailure(t *testing.T) {
	exchanger := &stubExchanger{fn: func(_ context.Context, _ transport.Request) (string, error) {
		return "I could not produce a structure, sorry.", nil
	}}

	r := NewResolver(exchanger, NewParseCascade(nil), ResolverOptions{})
	_, err := r.Resolve(context.Background(), testRef(), testListing())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructureParse)
}
