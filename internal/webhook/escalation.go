package webhook

import (
	"context"
	"fmt"
	"sync"

	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
)

// persistentFailureThreshold is N from SPEC_FULL's [SUPPLEMENT]
// persistent-failure escalation: a broken pipeline definition survives
// this many consecutive replication runs on the same branch before it is
// escalated from a PR comment to a tracking issue, matching the
// abort_build retry-count order of magnitude already established
// elsewhere in this system.
const persistentFailureThreshold = 3

// failureKey identifies one (repository, branch) pair being tracked for
// persistent pipeline-definition breakage.
type failureKey struct {
	owner, name, branch string
}

// FailureTracker counts consecutive broken-pipeline-definition detections
// per branch, grounded on github/compliance/issue.py's own per-subject
// streak counter.
type FailureTracker struct {
	mu     sync.Mutex
	counts map[failureKey]int
}

func NewFailureTracker() *FailureTracker {
	return &FailureTracker{counts: make(map[failureKey]int)}
}

// recordFailure increments and returns the new streak length for repo/branch.
func (t *FailureTracker) recordFailure(repo githubclient.Repository, branch string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := failureKey{repo.Owner, repo.Name, branch}
	t.counts[key]++
	return t.counts[key]
}

// reset clears the streak for repo/branch, called once the definition
// renders successfully again.
func (t *FailureTracker) reset(repo githubclient.Repository, branch string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counts, failureKey{repo.Owner, repo.Name, branch})
}

// reportPersistentFailure implements the [SUPPLEMENT] escalation: every
// failure gets its PR comment (handled by the caller); once the same
// branch has failed persistentFailureThreshold times in a row, this also
// opens (or updates) a tracking issue, since a PR comment alone is easy
// to miss once a PR goes stale.
func (t *FailureTracker) reportPersistentFailure(ctx context.Context, gh githubclient.Client, repo githubclient.Repository, branch, errorDetails string) error {
	streak := t.recordFailure(repo, branch)
	if streak < persistentFailureThreshold {
		return nil
	}

	titleMatch := fmt.Sprintf("Broken pipeline definition on %s", branch)
	existing, err := gh.FindOpenIssue(ctx, repo, titleMatch)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Pipeline definition on branch %q has failed to render for %d consecutive replication runs.\n\nLatest error:\n\n%s", branch, streak, errorDetails)

	if existing != nil {
		return gh.CommentOnIssue(ctx, repo, existing.Number, body)
	}

	_, err = gh.CreateIssue(ctx, repo, githubclient.Issue{
		Title:  titleMatch,
		Body:   body,
		Labels: []string{"ci/broken-pipeline-definition"},
		State:  "open",
	})
	return err
}
