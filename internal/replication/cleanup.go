package replication

import (
	"context"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// cleanup computes existing_on_backend - just_deployed and deletes each
// orphan, protecting names the Keep filter reports true for (spec §4.5
// point 5, §8 P3). Only called when the caller has already established
// there were no failures this run (§8 P2). Deploys are grouped by their
// descriptor's actual target team (spec §4.5 point 4) and cleaned up
// against their own resolved CI client, not a single fixed team.
func (o *Orchestrator) cleanup(ctx context.Context, deploys []model.DeployResult) error {
	var firstErr error
	for team, group := range o.groupDeploysByTeam(deploys) {
		if err := o.cleanupTeam(ctx, team, group); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (o *Orchestrator) cleanupTeam(ctx context.Context, team string, deploys []model.DeployResult) error {
	client, err := o.ciResolver.Resolve(o.opts.BackendConfigName, team)
	if err != nil {
		return err
	}

	existing, err := client.Pipelines(ctx)
	if err != nil {
		return err
	}

	// just_deployed per spec §4.5 point 5 means names actually present on
	// the backend as of this run, i.e. SUCCEEDED deploys. A SKIPPED result
	// from the duplicate-name check doesn't add anything here, but it also
	// doesn't need to — the winning deploy for the same name already does.
	deployed := make(map[string]bool, len(deploys))
	for _, d := range deploys {
		if d.Status.Has(model.DeploySucceeded) {
			deployed[d.Descriptor.EffectiveName()] = true
		}
	}

	for _, name := range existing {
		if deployed[name] {
			continue
		}
		if o.opts.Cleanup.Keep != nil && o.opts.Cleanup.Keep(name) {
			continue
		}
		if err := client.DeletePipeline(ctx, name); err != nil {
			o.log.Error("deleting orphaned pipeline failed", "pipeline", name, "team", team, "error", err)
		}
	}

	return nil
}

// bootstrap triggers an initial resource check on every resource of a
// newly-created pipeline (spec §4.5 point 6). Unpausing CREATED pipelines
// is the deployer's responsibility (spec §8 P4), not this pass's. Deploys
// are grouped by target team per spec §4.5 point 4, the same as cleanup.
func (o *Orchestrator) bootstrap(ctx context.Context, deploys []model.DeployResult) {
	for team, group := range o.groupDeploysByTeam(deploys) {
		o.bootstrapTeam(ctx, team, group)
	}
}

func (o *Orchestrator) bootstrapTeam(ctx context.Context, team string, deploys []model.DeployResult) {
	client, err := o.ciResolver.Resolve(o.opts.BackendConfigName, team)
	if err != nil {
		o.log.Error("resolving CI backend for bootstrap failed", "team", team, "error", err)
		return
	}

	for _, d := range deploys {
		if !d.Status.Has(model.DeployCreated) {
			continue
		}
		name := d.Descriptor.EffectiveName()
		resources, err := client.PipelineResources(ctx, []string{name}, "")
		if err != nil {
			o.log.Error("listing resources for bootstrap failed", "pipeline", name, "error", err)
			continue
		}
		for _, r := range resources {
			if err := client.TriggerResourceCheck(ctx, name, r.Name); err != nil {
				o.log.Error("triggering resource check failed", "pipeline", name, "resource", r.Name, "error", err)
			}
		}
	}
}
