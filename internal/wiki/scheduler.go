package wiki

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/transport"
)

// MaxConcurrent caps simultaneous page-generation exchanges.
const MaxConcurrent = 3

// Scheduler runs bounded-concurrency page generation over a resolved
// structure. It is the explicit state machine replacing the source
// system's event-loop-implied scheduling: a FIFO queue, an in-flight
// set, and an active counter, all guarded by one mutex.
//
// The pull model is self-refilling: each completing task clears its
// in-flight mark, decrements the active count, and pulls the next
// queued page itself. No supervisor goroutine polls; exactly
// min(MaxConcurrent, remaining) tasks are in flight at all times.
type Scheduler struct {
	exchanger transport.Exchanger
	opts      ResolverOptions
	ref       repo.Ref
	branch    string

	mu        sync.Mutex
	structure *Structure
	queue     []string
	queued    map[string]struct{}
	inFlight  map[string]struct{}
	active    int
	limit     int
	phase     Phase
	pageErrs  map[string]error
	doneCh    chan struct{}
}

// NewScheduler creates a Scheduler over the resolved structure. Pages
// are mutated in place as their generations complete. A non-positive
// limit falls back to MaxConcurrent.
func NewScheduler(exchanger transport.Exchanger, st *Structure, ref repo.Ref, branch string, limit int, opts ResolverOptions) *Scheduler {
	if limit <= 0 {
		limit = MaxConcurrent
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Scheduler{
		exchanger: exchanger,
		opts:      opts,
		ref:       ref,
		branch:    branch,
		structure: st,
		queued:    make(map[string]struct{}),
		inFlight:  make(map[string]struct{}),
		limit:     limit,
		phase:     PhaseGenerating,
		pageErrs:  make(map[string]error),
		doneCh:    make(chan struct{}),
	}
}

// Run seeds the queue from the structure's pages and blocks until every
// task has completed or the context is cancelled. In-flight exchanges
// are not individually cancellable; on context error they run to
// completion or failure in the background.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	for i := range s.structure.Pages {
		s.enqueueLocked(s.structure.Pages[i].ID)
	}
	s.fillLocked(ctx)
	s.maybeFinishLocked()
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryPage re-enqueues a single page. Pages holding final non-error
// content are skipped (idempotence); error-sentinel pages qualify.
func (s *Scheduler) RetryPage(ctx context.Context, pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseDone {
		// Reopen for the retry round.
		s.phase = PhaseGenerating
		s.doneCh = make(chan struct{})
	}
	s.enqueueLocked(pageID)
	s.fillLocked(ctx)
	s.maybeFinishLocked()
}

// Wait blocks until the scheduler is idle again (queue drained, no
// active tasks) or the context is cancelled.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.doneCh
	s.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Phase returns the current generation phase.
func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Active returns the number of in-flight generation tasks.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// PageErrors returns a copy of per-page generation errors. Page-level
// failures are non-fatal; the wiki is still usable with a broken page.
func (s *Scheduler) PageErrors() map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]error, len(s.pageErrs))
	for k, v := range s.pageErrs {
		out[k] = v
	}
	return out
}

// enqueueLocked adds a page to the queue unless it is already queued,
// already in flight, or already holds final content. This enforces the
// process-wide invariant of at most one outstanding task per page id.
func (s *Scheduler) enqueueLocked(pageID string) {
	page := s.structure.PageByID(pageID)
	if page == nil || page.HasContent() {
		return
	}
	if _, ok := s.inFlight[pageID]; ok {
		return
	}
	if _, ok := s.queued[pageID]; ok {
		return
	}
	s.queue = append(s.queue, pageID)
	s.queued[pageID] = struct{}{}
}

// fillLocked launches tasks while capacity allows.
func (s *Scheduler) fillLocked(ctx context.Context) {
	for s.active < s.limit && len(s.queue) > 0 {
		pageID := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, pageID)

		page := s.structure.PageByID(pageID)
		if page == nil {
			continue
		}
		s.inFlight[pageID] = struct{}{}
		s.active++
		page.Content = ContentLoading
		delete(s.pageErrs, pageID)

		go s.runTask(ctx, pageID)
	}
}

// runTask generates one page, then completes: store the result, release
// the slot, and pull the next queued page.
func (s *Scheduler) runTask(ctx context.Context, pageID string) {
	content, err := s.generatePage(ctx, pageID)

	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.structure.PageByID(pageID)
	if page != nil {
		if err != nil {
			page.Content = contentErrorPrefix + err.Error()
			s.pageErrs[pageID] = err
			log.Printf("WARNING: generating page %q failed: %v", pageID, err)
		} else {
			page.Content = content
		}
	}

	delete(s.inFlight, pageID)
	s.active--

	s.fillLocked(ctx)
	s.maybeFinishLocked()
}

// maybeFinishLocked transitions to Done and releases waiters once the
// queue is drained and no task is active.
func (s *Scheduler) maybeFinishLocked() {
	if s.active == 0 && len(s.queue) == 0 && s.phase != PhaseDone {
		s.phase = PhaseDone
		close(s.doneCh)
	}
}

// generatePage runs one Transport exchange for a page and returns the
// cleaned markdown.
func (s *Scheduler) generatePage(ctx context.Context, pageID string) (string, error) {
	s.mu.Lock()
	page := s.structure.PageByID(pageID)
	if page == nil {
		s.mu.Unlock()
		return "", fmt.Errorf("unknown page %q", pageID)
	}
	title := page.Title
	filePaths := append([]string(nil), page.FilePaths...)
	s.mu.Unlock()

	var links strings.Builder
	for _, fp := range filePaths {
		fmt.Fprintf(&links, "- [%s](%s)\n", fp, repo.FileURL(s.ref, s.branch, fp))
	}

	prompt, err := buildPagePrompt(title, strings.TrimRight(links.String(), "\n"), s.opts.Language)
	if err != nil {
		return "", err
	}

	text, err := s.exchanger.Exchange(ctx, transport.Request{
		RepoURL:  s.ref.WebURL(),
		Type:     s.ref.Type,
		Messages: []transport.Message{transport.NewUserMessage(prompt)},
		Provider: s.opts.Provider,
		Model:    s.opts.Model,
		Language: s.opts.Language,
		Token:    s.ref.Token,
	})
	if err != nil {
		return "", err
	}

	text = stripCodeFences(text)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response for page %q", pageID)
	}
	return text, nil
}
