package cmd

import (
	"context"

	"github.com/giantswarm/pipeline-replicator/internal/model"
	"github.com/giantswarm/pipeline-replicator/internal/replication"
	"github.com/giantswarm/pipeline-replicator/internal/webhook"
)

// orchestratorReplicator adapts *replication.Orchestrator to
// webhook.Replicator. It reports "matched zero descriptors" as
// webhook.ErrJobMappingNotFound so the dispatcher's reload-and-retry-once
// rule (spec §4.6) kicks in for a repository added to the config after
// the dispatcher's own enumerators were built.
type orchestratorReplicator struct {
	orch *replication.Orchestrator
}

func (r *orchestratorReplicator) ReplicateRepository(ctx context.Context, repo model.Repository) error {
	matched, err := r.orch.ReplicateRepository(ctx, repo)
	if err != nil {
		return err
	}
	if matched == 0 {
		return webhook.ErrJobMappingNotFound
	}
	return nil
}

func (r *orchestratorReplicator) ReloadConfig(ctx context.Context) error {
	return r.orch.ReloadConfig(ctx)
}
