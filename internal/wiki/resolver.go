package wiki

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/transport"
)

// ResolverOptions carries the provider selection forwarded to the
// backend with every exchange.
type ResolverOptions struct {
	Provider      string
	Model         string
	Language      string
	Comprehensive bool
}

// Resolver turns one planning exchange into a Structure via the parsing
// cascade.
type Resolver struct {
	exchanger transport.Exchanger
	cascade   *ParseCascade
	opts      ResolverOptions
}

// NewResolver creates a Resolver.
func NewResolver(exchanger transport.Exchanger, cascade *ParseCascade, opts ResolverOptions) *Resolver {
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Resolver{exchanger: exchanger, cascade: cascade, opts: opts}
}

// Resolve sends the planning request and parses the streamed response.
// A cascade failure is terminal for the whole generation; it is surfaced
// to the caller and never retried here.
func (r *Resolver) Resolve(ctx context.Context, ref repo.Ref, listing repo.Listing) (*Structure, error) {
	prompt, err := buildStructurePrompt(ref.Owner, ref.Repo, listing.FileTree(), listing.Readme, r.opts.Comprehensive)
	if err != nil {
		return nil, err
	}

	text, err := r.exchanger.Exchange(ctx, transport.Request{
		RepoURL:  ref.WebURL(),
		Type:     ref.Type,
		Messages: []transport.Message{transport.NewUserMessage(prompt)},
		Provider: r.opts.Provider,
		Model:    r.opts.Model,
		Language: r.opts.Language,
		Token:    ref.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("structure exchange: %w", err)
	}

	st, err := r.cascade.Parse(ctx, text, r.opts.Comprehensive)
	if err != nil {
		return nil, err
	}

	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if r.opts.Comprehensive && len(st.Sections) == 0 && len(st.Pages) > 0 {
		st.Sections, st.RootSections = SynthesizeSections(st.Pages)
	}
	return st, nil
}
