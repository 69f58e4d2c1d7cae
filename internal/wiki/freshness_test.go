package wiki

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/julianshen/repowiki/internal/repo"
)

// stubCommits scripts the commit lookup for freshness tests.
type stubCommits struct {
	sha string
	err error
}

func (s *stubCommits) LatestCommit(_ context.Context, _ repo.Ref) (string, error) {
	return s.sha, s.err
}

func TestClassifyFreshness(t *testing.T) {
	ctx := context.Background()
	ref := testRef()

	t.Run("matching sha is up to date", func(t *testing.T) {
		got := ClassifyFreshness(ctx, &stubCommits{sha: "abc123"}, ref, "abc123")
		assert.Equal(t, FreshnessUpToDate, got)
	})

	t.Run("differing sha is outdated", func(t *testing.T) {
		got := ClassifyFreshness(ctx, &stubCommits{sha: "def456"}, ref, "abc123")
		assert.Equal(t, FreshnessOutdated, got)
	})

	t.Run("lookup failure is unknown", func(t *testing.T) {
		got := ClassifyFreshness(ctx, &stubCommits{err: fmt.Errorf("rate limited")}, ref, "abc123")
		assert.Equal(t, FreshnessUnknown, got)
	})

	t.Run("no cached sha is unknown", func(t *testing.T) {
		got := ClassifyFreshness(ctx, &stubCommits{sha: "abc123"}, ref, "")
		assert.Equal(t, FreshnessUnknown, got)
	})

	t.Run("nil lookup is unknown", func(t *testing.T) {
		got := ClassifyFreshness(ctx, nil, ref, "abc123")
		assert.Equal(t, FreshnessUnknown, got)
	})

	t.Run("local repo is unknown", func(t *testing.T) {
		local := repo.Ref{Type: repo.TypeLocal, LocalPath: "/tmp/project"}
		got := ClassifyFreshness(ctx, &stubCommits{sha: "abc123"}, local, "abc123")
		assert.Equal(t, FreshnessUnknown, got)
	})
}

func TestFreshnessString(t *testing.T) {
	assert.Equal(t, "up-to-date", FreshnessUpToDate.String())
	assert.Equal(t, "outdated", FreshnessOutdated.String())
	assert.Equal(t, "unknown", FreshnessUnknown.String())
}
