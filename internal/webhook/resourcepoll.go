package webhook

import (
	"context"
	"strconv"
	"time"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
)

const (
	maxResourceUpdateRetries = 10
	resourceUpdateBaseDelay  = 3 * time.Second
	resourceUpdateBackoff    = 1.2
)

// ensurePRResourceUpdates polls until every resource in resources is
// up-to-date for prNumber or the retry budget is exhausted (spec §4.6
// "ensure_pr_resource_updates", P10). sleep is injectable so tests can run
// this without real delays.
func ensurePRResourceUpdates(ctx context.Context, client ciclient.Client, resources []ciclient.Resource, prNumber int, prLabels []string, sleep func(time.Duration)) {
	delay := resourceUpdateBaseDelay

	for i := 0; i < maxResourceUpdateRetries; i++ {
		outdated := outdatedResources(ctx, client, resources, prNumber, prLabels)
		if len(outdated) == 0 {
			return
		}

		for _, r := range outdated {
			_ = client.TriggerResourceCheck(ctx, r.Pipeline, r.Name)
		}

		if i < maxResourceUpdateRetries-1 {
			sleep(delay)
			delay = time.Duration(float64(delay) * resourceUpdateBackoff)
		}
	}
}

// outdatedResources applies the "up-to-date" rule: a resource is current
// iff its version history already lists prNumber, or it requires a label
// the PR doesn't (yet) carry — in the latter case there is nothing this
// resource could update to. A resource that is currently failing to check
// is never considered up-to-date, so it stays in the retry set.
func outdatedResources(ctx context.Context, client ciclient.Client, resources []ciclient.Resource, prNumber int, prLabels []string) []ciclient.Resource {
	var outdated []ciclient.Resource
	for _, r := range resources {
		if requiresAbsentLabel(r, prLabels) {
			continue
		}

		versions, err := client.ResourceVersions(ctx, r.Pipeline, r.Name)
		if err != nil {
			outdated = append(outdated, r)
			continue
		}

		if resourceVersionsContainPR(versions, prNumber) && !anyVersionFailingCheck(versions) {
			continue
		}
		outdated = append(outdated, r)
	}
	return outdated
}

func requiresAbsentLabel(r ciclient.Resource, prLabels []string) bool {
	if len(r.Labels) == 0 {
		return false
	}
	for _, required := range r.Labels {
		if !anyLabelMatches(prLabels, required) {
			return true
		}
	}
	return false
}

func resourceVersionsContainPR(versions []ciclient.ResourceVersion, prNumber int) bool {
	want := strconv.Itoa(prNumber)
	for _, v := range versions {
		if v.Version["pr"] == want {
			return true
		}
	}
	return false
}

func anyVersionFailingCheck(versions []ciclient.ResourceVersion) bool {
	for _, v := range versions {
		if v.Failing {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
