package replication

import "github.com/giantswarm/pipeline-replicator/internal/model"

// groupDeploysByTeam partitions deploys by the team each descriptor
// actually targeted (spec §4.5 point 4: "group by (backend-config,
// team)"), mirroring original_source/concourse/replicator.py's
// process_results grouping by concourse_target_key(). The CI backend
// config name is fixed per Orchestrator (Options.BackendConfigName), so
// only the team half of that key varies per descriptor here. A
// descriptor with no TargetTeam of its own falls back to
// Options.TeamName, and that team is always present in the result even
// with zero deploys, so cleanup still runs against the orchestrator's
// default team when a run produces nothing to deploy.
func (o *Orchestrator) groupDeploysByTeam(deploys []model.DeployResult) map[string][]model.DeployResult {
	groups := map[string][]model.DeployResult{o.opts.TeamName: nil}
	for _, d := range deploys {
		team := d.Descriptor.TargetTeam
		if team == "" {
			team = o.opts.TeamName
		}
		groups[team] = append(groups[team], d)
	}
	return groups
}
