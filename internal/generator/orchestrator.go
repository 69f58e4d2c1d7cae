// Package generator ties the wiki pipeline together: cache lookup,
// repository listing, structure resolution, page generation, and the
// save back to the cache.
package generator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/julianshen/repowiki/internal/cache"
	"github.com/julianshen/repowiki/internal/config"
	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/transport"
	"github.com/julianshen/repowiki/internal/wiki"
)

// Options wires the collaborators for a generation session. Commits
// and Store may be nil; freshness then classifies as unknown and
// caching is skipped.
type Options struct {
	Exchanger transport.Exchanger
	Lister    repo.Lister
	Commits   repo.CommitLookup
	Store     cache.Store
	Remote    *wiki.RemoteParser
	Auth      config.AuthConfig
	Resolver  wiki.ResolverOptions
	Limit     int
}

// Orchestrator drives one repository's wiki from cache lookup through
// structure resolution and page generation to cache save. One
// orchestrator serves one repository reference.
type Orchestrator struct {
	opts Options
	ref  repo.Ref

	mu        sync.Mutex
	phase     wiki.Phase
	freshness wiki.Freshness
	structure *wiki.Structure
	scheduler *wiki.Scheduler
	headSHA   string
	saved     bool
	running   bool
}

// NewOrchestrator builds an orchestrator for ref.
func NewOrchestrator(ref repo.Ref, opts Options) *Orchestrator {
	if opts.Limit <= 0 {
		opts.Limit = wiki.MaxConcurrent
	}
	return &Orchestrator{
		opts:      opts,
		ref:       ref,
		phase:     wiki.PhaseIdle,
		freshness: wiki.FreshnessUnknown,
	}
}

// Open produces the wiki: a cached wiki with any generated pages is
// served as-is, otherwise the repository is listed, the structure
// resolved, and every page generated before the result is saved back
// to the cache. Open runs to completion and is not reentrant.
func (o *Orchestrator) Open(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("generation already in progress for %s", o.ref)
	}
	o.running = true
	o.phase = wiki.PhaseFetching
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	if hit, err := o.tryCache(ctx); err != nil {
		return err
	} else if hit {
		return nil
	}
	return o.generate(ctx)
}

// tryCache adopts a cached wiki when one exists with generated pages.
// A hit marks the session done: a CLI run ends once the wiki is served,
// so there is no earlier phase to preserve for a progress display.
func (o *Orchestrator) tryCache(ctx context.Context) (bool, error) {
	if o.opts.Store == nil {
		return false, nil
	}
	env, err := o.opts.Store.Get(ctx, o.cacheKey())
	if err != nil {
		log.Printf("WARNING: wiki cache lookup failed for %s: %v", o.ref, err)
		return false, nil
	}
	if env == nil || len(env.GeneratedPages) == 0 {
		return false, nil
	}

	st := env.WikiStructure
	for i := range st.Pages {
		if cached, ok := env.GeneratedPages[st.Pages[i].ID]; ok {
			st.Pages[i].Content = cached.Content
		}
	}
	freshness := wiki.ClassifyFreshness(ctx, o.opts.Commits, o.ref, env.CommitSHA)

	o.mu.Lock()
	o.structure = &st
	o.freshness = freshness
	o.phase = wiki.PhaseDone
	o.saved = true
	o.mu.Unlock()
	return true, nil
}

// generate runs the full pipeline on a cache miss. The repository
// listing and the head commit lookup run concurrently; the commit is
// best-effort and only tags the eventual cache save.
func (o *Orchestrator) generate(ctx context.Context) error {
	var (
		listing repo.Listing
		listErr error
		headSHA string
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		listing, listErr = o.opts.Lister.List(ctx, o.ref)
	})
	if o.opts.Commits != nil && !o.ref.IsLocal() {
		wg.Go(func() {
			sha, err := o.opts.Commits.LatestCommit(ctx, o.ref)
			if err != nil {
				log.Printf("WARNING: could not fetch head commit for %s: %v", o.ref, err)
				return
			}
			headSHA = sha
		})
	}
	wg.Wait()
	if listErr != nil {
		return fmt.Errorf("listing repository: %w", listErr)
	}
	if len(listing.FilePaths) == 0 {
		return fmt.Errorf("repository %s has no files to document", o.ref)
	}

	o.mu.Lock()
	o.phase = wiki.PhasePlanning
	o.headSHA = headSHA
	o.mu.Unlock()

	resolver := wiki.NewResolver(o.opts.Exchanger, wiki.NewParseCascade(o.opts.Remote), o.opts.Resolver)
	st, err := resolver.Resolve(ctx, o.ref, listing)
	if err != nil {
		return err
	}

	sched := wiki.NewScheduler(o.opts.Exchanger, st, o.ref, listing.DefaultBranch, o.opts.Limit, o.opts.Resolver)
	o.mu.Lock()
	o.structure = st
	o.scheduler = sched
	o.phase = wiki.PhaseGenerating
	o.mu.Unlock()

	if err := sched.Run(ctx); err != nil {
		return err
	}

	o.mu.Lock()
	o.phase = wiki.PhaseDone
	o.mu.Unlock()
	o.maybeSave(ctx)
	return nil
}

// maybeSave persists the wiki once every page reached a terminal
// state. A page that ended in an error sentinel still counts as
// settled, so a partially failed run is cached and can be refreshed
// later. The save happens at most once per session. Freshness is left
// alone: it describes a cache-loaded wiki, not one generated here.
func (o *Orchestrator) maybeSave(ctx context.Context) {
	o.mu.Lock()
	st := o.structure
	saved := o.saved
	headSHA := o.headSHA
	o.mu.Unlock()

	if o.opts.Store == nil || st == nil || saved {
		return
	}
	for i := range st.Pages {
		if st.Pages[i].Content == "" || st.Pages[i].Content == wiki.ContentLoading {
			return
		}
	}

	pages := make(map[string]wiki.Page, len(st.Pages))
	for _, p := range st.Pages {
		pages[p.ID] = p
	}
	env := &cache.Envelope{
		Repo: cache.RepoInfo{
			Owner:   o.ref.Owner,
			Repo:    o.ref.Repo,
			Type:    o.ref.Type,
			RepoURL: o.ref.URL,
		},
		Language:       o.opts.Resolver.Language,
		Comprehensive:  o.opts.Resolver.Comprehensive,
		WikiStructure:  *st,
		GeneratedPages: pages,
		Provider:       o.opts.Resolver.Provider,
		Model:          o.opts.Resolver.Model,
		GeneratedAt:    time.Now(),
	}
	if !o.ref.IsLocal() {
		env.CommitSHA = headSHA
	}

	if err := o.opts.Store.Put(ctx, env); err != nil {
		log.Printf("WARNING: saving wiki cache for %s: %v", o.ref, err)
		return
	}
	o.mu.Lock()
	o.saved = true
	o.mu.Unlock()
}

// Refresh discards the cached wiki and regenerates from scratch. The
// caller's authorization code is checked first when auth is required.
func (o *Orchestrator) Refresh(ctx context.Context, authCode string) error {
	if err := o.opts.Auth.CheckAuthCode(authCode); err != nil {
		return err
	}
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("generation already in progress for %s", o.ref)
	}
	o.structure = nil
	o.scheduler = nil
	o.saved = false
	o.freshness = wiki.FreshnessUnknown
	o.phase = wiki.PhaseIdle
	o.mu.Unlock()

	if o.opts.Store != nil {
		if err := o.opts.Store.Delete(ctx, o.cacheKey()); err != nil {
			log.Printf("WARNING: clearing wiki cache for %s: %v", o.ref, err)
		}
	}
	return o.Open(ctx)
}

// RetryPage re-queues a single failed page and waits for it to settle,
// then re-attempts the cache save if this retry completed the wiki.
func (o *Orchestrator) RetryPage(ctx context.Context, pageID string) error {
	o.mu.Lock()
	sched := o.scheduler
	o.mu.Unlock()
	if sched == nil {
		return fmt.Errorf("no generation session for %s", o.ref)
	}
	sched.RetryPage(ctx, pageID)
	if err := sched.Wait(ctx); err != nil {
		return err
	}
	o.maybeSave(ctx)
	return nil
}

// Structure returns the resolved structure, or nil before planning
// completes.
func (o *Orchestrator) Structure() *wiki.Structure {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.structure
}

// Phase reports the pipeline phase.
func (o *Orchestrator) Phase() wiki.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Freshness reports how the served wiki compares to the repository
// head. Only meaningful after Open.
func (o *Orchestrator) Freshness() wiki.Freshness {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.freshness
}

// PageErrors returns per-page generation failures from the last run.
func (o *Orchestrator) PageErrors() map[string]error {
	o.mu.Lock()
	sched := o.scheduler
	o.mu.Unlock()
	if sched == nil {
		return nil
	}
	return sched.PageErrors()
}

func (o *Orchestrator) cacheKey() cache.Key {
	return cache.Key{
		Owner:         o.ref.Owner,
		Repo:          o.ref.Repo,
		RepoType:      o.ref.Type,
		Language:      o.opts.Resolver.Language,
		Comprehensive: o.opts.Resolver.Comprehensive,
	}
}
