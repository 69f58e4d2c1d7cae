package wiki

import (
	"context"
	"log"

	"github.com/julianshen/repowiki/internal/repo"
)

// ClassifyFreshness compares a cached wiki's commit SHA against the
// repository's current head. The result is advisory: lookup failures
// and missing SHAs classify as unknown rather than erroring, so a
// flaky hosting API never blocks serving a cached wiki.
func ClassifyFreshness(ctx context.Context, lookup repo.CommitLookup, ref repo.Ref, cachedSHA string) Freshness {
	if cachedSHA == "" || lookup == nil || ref.IsLocal() {
		return FreshnessUnknown
	}
	latest, err := lookup.LatestCommit(ctx, ref)
	if err != nil {
		log.Printf("WARNING: could not determine latest commit for %s: %v", ref, err)
		return FreshnessUnknown
	}
	if latest == "" {
		return FreshnessUnknown
	}
	if latest == cachedSHA {
		return FreshnessUpToDate
	}
	return FreshnessOutdated
}
