package webhook

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// prSettleMinDelay and prSettleMaxDelay bound the "sleep uniformly in
// [5,10]s to let the backend settle" step (spec §4.6 point 3).
const (
	prSettleMinDelay = 5 * time.Second
	prSettleMaxDelay = 10 * time.Second
)

// pipelineDefinitionsPath is the path watched for pipeline-definition
// changes (spec §4.6 "push" / "process_pr_event").
const pipelineDefinitionsPath = ".ci/pipeline_definitions"

const brokenDefinitionLabel = "ci/broken-pipeline-definition"

// lgtmLabels are the privileged-ack labels spec §4.6 point 3 names.
var lgtmLabels = map[string]bool{"lgtm": true, "reviewed/lgtm": true}

// dispatchPushEvent implements spec §4.6 "push": re-replicate on a
// pipeline-definition change, then abort obsolete builds, then sweep
// every configured CI backend's git resources for a check.
func (d *Dispatcher) dispatchPushEvent(ctx context.Context, event model.PushEvent) {
	if event.ModifiesPath(pipelineDefinitionsPath) {
		d.replicateWithReload(ctx, event.Repository)
	}

	if d.jobPolicies != nil {
		jobs, err := d.jobPolicies.JobsForRepository(ctx, event.Repository)
		if err != nil {
			d.log.Error("resolving job abort policies failed", "repo", event.Repository.Name, "error", err)
		} else {
			mapping, ok := d.cfg.MappingForRepository(event.Repository.Owner, event.Repository.Name)
			if ok {
				if client, err := d.ciResolver.Resolve(mapping.CIConfigName, mapping.Team); err == nil {
					abortObsoleteBuilds(ctx, client, jobs, event.IsForcedPush(), event.PreviousRef)
				}
			}
		}
	}

	d.triggerGitResourceChecks(ctx)
}

// dispatchCreateEvent implements spec §4.6 "create": only branch
// creation re-replicates the repository.
func (d *Dispatcher) dispatchCreateEvent(ctx context.Context, event model.CreateEvent) {
	if event.RefType != model.CreateRefTypeBranch {
		return
	}
	d.replicateWithReload(ctx, event.Repository)
}

// replicateWithReload implements the retry rule spec §4.6 "push" names:
// on ErrJobMappingNotFound or ErrConfigElementNotFound, reload config and
// retry exactly once.
func (d *Dispatcher) replicateWithReload(ctx context.Context, repo model.Repository) {
	err := d.replicator.ReplicateRepository(ctx, repo)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrJobMappingNotFound) && !errors.Is(err, ErrConfigElementNotFound) {
		d.log.Error("re-replication failed", "repo", repo.Name, "error", err)
		return
	}

	if reloadErr := d.replicator.ReloadConfig(ctx); reloadErr != nil {
		d.log.Error("config reload before replication retry failed", "repo", repo.Name, "error", reloadErr)
		return
	}
	if err := d.replicator.ReplicateRepository(ctx, repo); err != nil {
		d.log.Error("re-replication failed after config reload", "repo", repo.Name, "error", err)
	}
}

// triggerGitResourceChecks sweeps every configured CI backend's git-type
// resources and triggers a check on each (spec §4.6 "push", final step).
func (d *Dispatcher) triggerGitResourceChecks(ctx context.Context) {
	for _, name := range d.cfg.CIBackendNames() {
		backend, ok := d.cfg.CIBackendByName(name)
		if !ok {
			continue
		}
		client, err := d.ciResolver.Resolve(backend.Name, backend.Team)
		if err != nil {
			continue
		}
		resources, err := client.PipelineResources(ctx, nil, "git")
		if err != nil {
			d.log.Error("listing git resources failed", "backend", backend.Name, "error", err)
			continue
		}
		for _, r := range resources {
			if err := client.TriggerResourceCheck(ctx, r.Pipeline, r.Name); err != nil {
				d.log.Error("triggering git resource check failed", "pipeline", r.Pipeline, "resource", r.Name, "error", err)
			}
		}
	}
}

// dispatchPullRequestEvent implements spec §4.6 "pull_request" / P7, the
// only acted actions being {OPENED, REOPENED, LABELED, SYNCHRONIZE},
// already filtered by the HTTP handler.
func (d *Dispatcher) dispatchPullRequestEvent(ctx context.Context, event model.PullRequestEvent) {
	repo := githubclient.Repository{Owner: event.Repository.Owner, Name: event.Repository.Name}

	pr, err := d.gh.PullRequest(ctx, repo, event.PRNumber)
	if err != nil {
		d.log.Error("resolving pull request failed", "repo", repo.Name, "pr", event.PRNumber, "error", err)
		return
	}

	mapping, hasMapping := d.cfg.MappingForRepository(repo.Owner, repo.Name)

	if event.Action == model.ActionOpened || event.Action == model.ActionSynchronize {
		d.validatePipelineDefinitions(ctx, repo, event, pr)
	}

	if !hasMapping {
		return
	}

	client, err := d.ciResolver.Resolve(mapping.CIConfigName, mapping.Team)
	if err != nil {
		d.log.Error("resolving CI backend for PR event failed", "repo", repo.Name, "error", err)
		return
	}

	resources, err := client.PipelineResources(ctx, nil, "pull_request")
	if err != nil {
		d.log.Error("listing pull-request resources failed", "repo", repo.Name, "error", err)
		return
	}
	if len(resources) == 0 {
		return
	}

	d.processPRResourceBatch(ctx, client, mapping, repo, event, pr.Labels, resources)
}

// requiredLabelsOf collects every label a batch of resources requires
// (source.label), deduplicated.
func requiredLabelsOf(resources []ciclient.Resource) []string {
	seen := make(map[string]bool)
	var required []string
	for _, r := range resources {
		for _, l := range r.Labels {
			if !seen[l] {
				seen[l] = true
				required = append(required, l)
			}
		}
	}
	return required
}

// validatePipelineDefinitions implements spec §4.6 point 2: comment and
// label a PR whose pipeline definitions are broken; clear the label and
// post a "fixed" comment once they render again.
func (d *Dispatcher) validatePipelineDefinitions(ctx context.Context, repo githubclient.Repository, event model.PullRequestEvent, pr *githubclient.PullRequest) {
	files, err := d.gh.PullRequestFiles(ctx, repo, event.PRNumber)
	if err != nil {
		d.log.Error("listing PR files failed", "repo", repo.Name, "pr", event.PRNumber, "error", err)
		return
	}
	touchesDefinitions := false
	for _, f := range files {
		if f == pipelineDefinitionsPath {
			touchesDefinitions = true
			break
		}
	}
	if !touchesDefinitions {
		return
	}

	validationErr := d.replicator.ReplicateRepository(ctx, model.Repository{Owner: repo.Owner, Name: repo.Name})
	hadLabel := containsString(pr.Labels, brokenDefinitionLabel)

	if validationErr != nil {
		_ = d.tracker.reportPersistentFailure(ctx, d.gh, repo, event.HeadRef, validationErr.Error())
		if !hadLabel {
			_ = d.gh.AddLabels(ctx, repo, event.PRNumber, []string{brokenDefinitionLabel})
		}
		_ = d.gh.CommentOnPullRequest(ctx, repo, event.PRNumber, "Pipeline definition validation failed:\n\n"+validationErr.Error())
		return
	}

	d.tracker.reset(repo, event.HeadRef)
	if hadLabel {
		_ = d.gh.RemoveLabel(ctx, repo, event.PRNumber, brokenDefinitionLabel)
		_ = d.gh.CommentOnPullRequest(ctx, repo, event.PRNumber, "Pipeline definitions now render successfully.")
	}
}

// processPRResourceBatch implements spec §4.6 point 3's per-batch logic:
// privileged lgtm acks, trusted/untrusted-sender label application, a
// resource check, the ensure_pr_resource_updates poll, and a final settle
// sleep followed by pinAndTriggerUntriggered.
func (d *Dispatcher) processPRResourceBatch(ctx context.Context, client ciclient.Client, mapping config.RepositoryMapping, repo githubclient.Repository, event model.PullRequestEvent, prLabels []string, resources []ciclient.Resource) {
	required := requiredLabelsOf(resources)

	switch {
	case event.Action == model.ActionLabeled && lgtmLabels[event.Label]:
		d.applyMissingLabels(ctx, repo, event.PRNumber, prLabels, required)

	case event.Action == model.ActionLabeled:
		if !labelMatchesAnyPattern(event.Label, required) {
			return // batch doesn't care about this label
		}

	case event.Action == model.ActionOpened || event.Action == model.ActionSynchronize:
		policy := LabelPolicy{TrustedTeams: mapping.TrustedTeams, EmptyTrustedTeamsFallsBackToOrgMembership: true}
		trusted, err := shouldLabel(ctx, d.gh, policy, event.Hostname, repo.Owner, event.SenderLogin)
		if err != nil {
			d.log.Error("label-policy check failed", "repo", repo.Name, "pr", event.PRNumber, "error", err)
		} else if trusted {
			d.applyMissingLabels(ctx, repo, event.PRNumber, prLabels, required)
		} else if event.Action == model.ActionOpened {
			_ = d.gh.CommentOnPullRequest(ctx, repo, event.PRNumber,
				"@"+event.SenderLogin+" is not authorised to trigger CI for this PR automatically. "+
					"A maintainer can apply one of the required labels to proceed: "+strings.Join(required, ", ")+".")
		}
	}

	for _, r := range resources {
		_ = client.TriggerResourceCheck(ctx, r.Pipeline, r.Name)
	}

	ensurePRResourceUpdates(ctx, client, resources, event.PRNumber, prLabels, d.sleep)

	d.sleep(prSettleMinDelay + time.Duration(rand.Int63n(int64(prSettleMaxDelay-prSettleMinDelay))))
	d.pinAndTriggerUntriggered(ctx, client, resources)
}

// applyMissingLabels adds every required literal label not already
// satisfied on the PR. A required pattern containing glob wildcards
// names a family of acceptable labels, not one to create — it can only
// be satisfied by a label that already exists, never applied directly.
func (d *Dispatcher) applyMissingLabels(ctx context.Context, repo githubclient.Repository, prNumber int, existing, required []string) {
	var missing []string
	for _, pattern := range required {
		if anyLabelMatches(existing, pattern) {
			continue
		}
		if isLiteralLabel(pattern) {
			missing = append(missing, pattern)
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := d.gh.AddLabels(ctx, repo, prNumber, missing); err != nil {
		d.log.Error("applying required labels failed", "repo", repo.Name, "pr", prNumber, "error", err)
	}
}

// pinAndTriggerUntriggered is the final step of spec §4.6 point 3: it
// triggers a resource check on each resource, with up to 3 attempts per
// resource (spec §5 "Retries are bounded ... pin-and-trigger: 3"). It
// does not pin a resource version and does not trigger jobs; the CI
// client offers neither operation.
const maxPinAndTriggerAttempts = 3

func (d *Dispatcher) pinAndTriggerUntriggered(ctx context.Context, client ciclient.Client, resources []ciclient.Resource) {
	for _, r := range resources {
		for attempt := 0; attempt < maxPinAndTriggerAttempts; attempt++ {
			if err := client.TriggerResourceCheck(ctx, r.Pipeline, r.Name); err == nil {
				break
			}
		}
	}
}
