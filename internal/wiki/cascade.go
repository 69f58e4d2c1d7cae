package wiki

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrStructureParse is the terminal error when every parsing strategy
// yields zero pages. It fails the whole generation and is never retried
// automatically.
var ErrStructureParse = errors.New("failed to parse wiki structure")

// parseStrategy is one step of the parsing cascade. A strategy returning
// an error or a structure with zero pages passes control to the next.
type parseStrategy struct {
	name  string
	parse func(ctx context.Context, text string, comprehensive bool) (*Structure, error)
}

// ParseCascade holds the ordered parser strategies. The ordering is a
// robustness contract against non-deterministic model output: XML (the
// prompted format), then JSON, then the backend normalization endpoint.
type ParseCascade struct {
	strategies []parseStrategy
}

// NewParseCascade builds the standard XML -> JSON -> remote cascade.
// remote may be nil, in which case the cascade has two local strategies.
func NewParseCascade(remote *RemoteParser) *ParseCascade {
	c := &ParseCascade{
		strategies: []parseStrategy{
			{
				name: "xml",
				parse: func(_ context.Context, text string, comprehensive bool) (*Structure, error) {
					return parseXMLStructure(controlCharsRe.ReplaceAllString(text, ""), comprehensive)
				},
			},
			{
				name: "json",
				parse: func(_ context.Context, text string, comprehensive bool) (*Structure, error) {
					return parseJSONStructure(text, comprehensive)
				},
			},
		},
	}
	if remote != nil {
		c.strategies = append(c.strategies, parseStrategy{
			name:  "remote",
			parse: remote.Parse,
		})
	}
	return c
}

// Parse runs the cascade over the raw model response. Each strategy is
// tried only if the previous yielded zero pages.
func (c *ParseCascade) Parse(ctx context.Context, rawText string, comprehensive bool) (*Structure, error) {
	var attempts []string
	for _, s := range c.strategies {
		st, err := s.parse(ctx, rawText, comprehensive)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		if len(st.Pages) == 0 {
			attempts = append(attempts, fmt.Sprintf("%s: zero pages", s.name))
			continue
		}
		log.Printf("wiki structure parsed via %s strategy (%d pages)", s.name, len(st.Pages))
		return st, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrStructureParse, attempts)
}
