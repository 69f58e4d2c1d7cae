package research

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/transport"
)

// DefaultMaxIterations caps the research loop.
const DefaultMaxIterations = 5

// DefaultContinueDelay spaces consecutive iterations apart.
const DefaultContinueDelay = 2 * time.Second

const continuePrompt = `Continue the research. Build on the findings so far and investigate the next open question from your research plan. Start your response with the appropriate "## Research Update" heading. If the research is complete, start with "## Final Conclusion" instead.`

const concludePrompt = `This is the final iteration. Synthesize all findings into a final answer. Start your response with the heading "## Final Conclusion". Do not open new questions.`

// Options selects the provider forwarded with every research exchange.
type Options struct {
	Provider string
	Model    string
	Language string
}

// Result is a finished research run.
type Result struct {
	Topic      string  `json:"topic"`
	Stages     []Stage `json:"stages"`
	Iterations int     `json:"iterations"`
	Complete   bool    `json:"complete"`
}

// Conclusion returns the concluding stage, or nil when the run never
// reached one.
func (r *Result) Conclusion() *Stage {
	for i := len(r.Stages) - 1; i >= 0; i-- {
		if r.Stages[i].Type == StageConclusion {
			return &r.Stages[i]
		}
	}
	return nil
}

// Conductor runs research loops over one transport.
type Conductor struct {
	exchanger     transport.Exchanger
	opts          Options
	maxIterations int
	delay         time.Duration
}

// NewConductor creates a Conductor. Non-positive maxIterations or a
// negative delay fall back to the defaults.
func NewConductor(exchanger transport.Exchanger, opts Options, maxIterations int, delay time.Duration) *Conductor {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if delay < 0 {
		delay = DefaultContinueDelay
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Conductor{
		exchanger:     exchanger,
		opts:          opts,
		maxIterations: maxIterations,
		delay:         delay,
	}
}

// Run investigates topic against ref until a response signals
// completion or the iteration cap forces a conclusion. The conversation
// history grows across iterations; each continuation is a synthetic
// user turn appended to it.
func (c *Conductor) Run(ctx context.Context, ref repo.Ref, topic string) (*Result, error) {
	result := &Result{Topic: topic}

	opening := fmt.Sprintf(`[DEEP RESEARCH] %s

Conduct a multi-turn investigation of this topic against the repository. In this first response, lay out a research plan: the specific questions to answer and the files to examine. Start with the heading "## Research Plan".`, topic)
	messages := []transport.Message{transport.NewUserMessage(opening)}

	for iteration := 1; iteration <= c.maxIterations; iteration++ {
		text, err := c.exchanger.Exchange(ctx, transport.Request{
			RepoURL:  ref.WebURL(),
			Type:     ref.Type,
			Messages: messages,
			Provider: c.opts.Provider,
			Model:    c.opts.Model,
			Language: c.opts.Language,
			Token:    ref.Token,
		})
		if err != nil {
			return result, fmt.Errorf("research iteration %d: %w", iteration, err)
		}

		result.Iterations = iteration
		concluded := IsComplete(text)
		forced := iteration == c.maxIterations
		result.Stages = append(result.Stages, buildStage(text, iteration, c.maxIterations, concluded || forced))
		messages = append(messages, transport.NewAssistantMessage(text))

		if concluded {
			result.Complete = true
			return result, nil
		}
		if forced {
			// The cap was reached without a completion signal; the
			// final stage was already requested as a conclusion.
			log.Printf("WARNING: research on %q hit the iteration cap without concluding", topic)
			result.Complete = true
			return result, nil
		}

		next := continuePrompt
		if iteration == c.maxIterations-1 {
			next = concludePrompt
		}
		messages = append(messages, transport.NewUserMessage(next))

		if c.delay > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}
	return result, nil
}
