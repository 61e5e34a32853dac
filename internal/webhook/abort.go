package webhook

import (
	"context"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
)

// AbortObsoleteJobsPolicy is a job's effective-definition setting
// controlling whether its running builds are aborted on a push (spec
// §4.6 "Abort-obsolete-builds").
type AbortObsoleteJobsPolicy string

const (
	AbortObsoleteJobsNever           AbortObsoleteJobsPolicy = "never"
	AbortObsoleteJobsOnForcePushOnly AbortObsoleteJobsPolicy = "on_force_push_only"
	AbortObsoleteJobsAlways          AbortObsoleteJobsPolicy = "always"
)

func (p AbortObsoleteJobsPolicy) applies(forcedPush bool) bool {
	switch p {
	case AbortObsoleteJobsAlways:
		return true
	case AbortObsoleteJobsOnForcePushOnly:
		return forcedPush
	default:
		return false
	}
}

// JobAbortPolicy pairs one job with its effective abort policy, resolved
// by the caller from the pipeline's job mapping before calling
// abortObsoleteBuilds.
type JobAbortPolicy struct {
	Pipeline string
	Job      string
	Policy   AbortObsoleteJobsPolicy
}

// maxRecentBuildsInspected bounds how far back abortObsoleteBuilds looks
// per job (spec §8 P8: "never more than 5 per job").
const maxRecentBuildsInspected = 5

// abortObsoleteBuilds implements spec §4.6 "Abort-obsolete-builds" and P8:
// for each job whose policy applies to this push, list its most recent
// started (in-progress) builds (assumed most-recent-first, matching the CI
// backend's own listing order) and abort every one whose plan references
// previousRef.
func abortObsoleteBuilds(ctx context.Context, client ciclient.Client, jobs []JobAbortPolicy, forcedPush bool, previousRef string) {
	for _, j := range jobs {
		if !j.Policy.applies(forcedPush) {
			continue
		}

		builds, err := client.JobBuilds(ctx, j.Pipeline, j.Job)
		if err != nil {
			continue
		}

		inspected := 0
		for _, b := range builds {
			if b.Status != "started" {
				continue
			}
			inspected++
			if inspected > maxRecentBuildsInspected {
				break
			}
			if b.PlanRef == previousRef {
				_ = client.AbortBuild(ctx, b.ID)
			}
		}
	}
}
