package replication

import (
	"context"
	"fmt"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// Reloader is implemented by an Enumerator whose source (typically a
// cached repository listing or a parsed job-mapping file) needs to be
// re-read from disk. WebhookDispatcher calls ReloadConfig when
// ReplicateRepository comes up empty for a repository it expected to
// find a mapping for (spec §4.6's "reload config and retry once" rule).
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadConfig reloads every enumerator that supports it.
func (o *Orchestrator) ReloadConfig(ctx context.Context) error {
	for _, e := range o.enumerators {
		if r, ok := e.(Reloader); ok {
			if err := r.Reload(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReplicateRepository re-runs enumerate -> preprocess -> render ->
// duplicate-check -> deploy scoped to repo's own descriptors, used by
// WebhookDispatcher to react to one push/create event without
// re-enumerating every other configured repository. It returns the
// number of descriptors matched, so a caller can distinguish "nothing to
// do" (repo has no pipeline definitions) from "not configured for
// replication at all" (spec §4.6's job-mapping-not-found retry trigger).
// Unlike Replicate, cleanup/bootstrap/reorder never run here — those
// passes only make sense against a full enumeration's cross-repository
// view (P3's orphan accounting in particular would wrongly delete every
// pipeline outside this one repo).
func (o *Orchestrator) ReplicateRepository(ctx context.Context, repo model.Repository) (matched int, err error) {
	descriptors, err := o.enumerate(ctx)
	if err != nil {
		return 0, err
	}

	var scoped []model.DefinitionDescriptor
	for _, d := range descriptors {
		if d.MainRepo.Owner == repo.Owner && d.MainRepo.Name == repo.Name {
			scoped = append(scoped, d)
		}
	}
	if len(scoped) == 0 {
		return 0, nil
	}

	renders, deploys := o.processAll(ctx, scoped)

	for _, d := range deploys {
		if d.Status.Has(model.DeployFailed) {
			err = fmt.Errorf("replicating %s/%s: pipeline %q failed to deploy: %s",
				repo.Owner, repo.Name, d.Descriptor.EffectiveName(), d.ErrorDetails)
			break
		}
	}

	if !o.notifyFailures(ctx, renders) {
		o.log.Warn("notification incomplete for repository-scoped replication", "owner", repo.Owner, "repo", repo.Name)
	}

	return len(scoped), err
}
