package replication

import (
	"context"
	"log/slog"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/mailer"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// multiTeamResolver hands out a distinct fakeCIClient per team so a test
// can tell which client a given call landed on.
type multiTeamResolver struct {
	clients map[string]*fakeCIClient
}

func (r *multiTeamResolver) Resolve(configName, teamName string) (ciclient.Client, error) {
	c, ok := r.clients[teamName]
	if !ok {
		c = &fakeCIClient{}
		r.clients[teamName] = c
	}
	return c, nil
}

func newMultiTeamOrchestrator(resolver *multiTeamResolver, opts Options) *Orchestrator {
	gh := &fakeGitHub{}
	mail := mailer.New(mailer.Config{Addr: "smtp.invalid:25", From: "ci@example.com"})
	return NewOrchestrator(nil, nil, nil, nil, resolver, gh, mail, opts, slog.Default())
}

func TestCleanup_GroupsDeploysByTargetTeamAndActsOnEachClientSeparately(t *testing.T) {
	resolver := &multiTeamResolver{clients: map[string]*fakeCIClient{
		"team-a": {pipelines: []string{"keep-a", "orphan-a"}},
		"team-b": {pipelines: []string{"keep-b", "orphan-b"}},
	}}
	o := newMultiTeamOrchestrator(resolver, Options{})

	deploys := []model.DeployResult{
		succeededDeployForTeam("keep-a", "team-a"),
		succeededDeployForTeam("keep-b", "team-b"),
	}
	if err := o.cleanup(context.Background(), deploys); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if got := resolver.clients["team-a"].deleted; len(got) != 1 || got[0] != "orphan-a" {
		t.Errorf("team-a deleted = %v, want [orphan-a]", got)
	}
	if got := resolver.clients["team-b"].deleted; len(got) != 1 || got[0] != "orphan-b" {
		t.Errorf("team-b deleted = %v, want [orphan-b]", got)
	}
}

func TestCleanup_DescriptorWithoutTargetTeamFallsBackToOptionsTeamName(t *testing.T) {
	resolver := &multiTeamResolver{clients: map[string]*fakeCIClient{
		"default-team": {pipelines: []string{"keep", "orphan"}},
	}}
	o := newMultiTeamOrchestrator(resolver, Options{TeamName: "default-team"})

	deploys := []model.DeployResult{succeededDeploy("keep")} // no TargetTeam set
	if err := o.cleanup(context.Background(), deploys); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if got := resolver.clients["default-team"].deleted; len(got) != 1 || got[0] != "orphan" {
		t.Errorf("deleted = %v, want [orphan] on the default team's client", got)
	}
}

func TestBootstrap_GroupsByTeamAndTriggersChecksOnTheMatchingClientOnly(t *testing.T) {
	resolver := &multiTeamResolver{clients: map[string]*fakeCIClient{
		"team-a": {resources: []ciclient.Resource{{Pipeline: "new-a", Name: "git-repo"}}},
		"team-b": {resources: []ciclient.Resource{{Pipeline: "new-b", Name: "git-repo"}}},
	}}
	o := newMultiTeamOrchestrator(resolver, Options{})

	deploys := []model.DeployResult{
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "new-a", TargetTeam: "team-a"}, Status: model.DeploySucceeded | model.DeployCreated},
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "new-b", TargetTeam: "team-b"}, Status: model.DeploySucceeded | model.DeployCreated},
	}
	o.bootstrap(context.Background(), deploys)

	if got := resolver.clients["team-a"].resourceChecks; len(got) != 1 || got[0] != "new-a/git-repo" {
		t.Errorf("team-a resourceChecks = %v, want [new-a/git-repo]", got)
	}
	if got := resolver.clients["team-b"].resourceChecks; len(got) != 1 || got[0] != "new-b/git-repo" {
		t.Errorf("team-b resourceChecks = %v, want [new-b/git-repo]", got)
	}
}

func TestReorder_OrdersEachTeamsPipelinesIndependently(t *testing.T) {
	resolver := &multiTeamResolver{clients: map[string]*fakeCIClient{
		"team-a": {},
		"team-b": {},
	}}
	o := newMultiTeamOrchestrator(resolver, Options{})

	deploys := []model.DeployResult{
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "b-job", TargetTeam: "team-a"}, Status: model.DeploySucceeded},
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "a-job", TargetTeam: "team-a"}, Status: model.DeploySucceeded},
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "z-job", TargetTeam: "team-b"}, Status: model.DeploySucceeded},
	}
	if err := o.reorder(context.Background(), deploys); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	if got := resolver.clients["team-a"].ordered; len(got) != 1 || len(got[0]) != 2 || got[0][0] != "a-job" || got[0][1] != "b-job" {
		t.Errorf("team-a ordered = %v, want one call with [a-job b-job]", got)
	}
	if got := resolver.clients["team-b"].ordered; len(got) != 1 || len(got[0]) != 1 || got[0][0] != "z-job" {
		t.Errorf("team-b ordered = %v, want one call with [z-job]", got)
	}
}

func succeededDeployForTeam(name, team string) model.DeployResult {
	return model.DeployResult{
		Descriptor: model.DefinitionDescriptor{EffectivePipelineName: name, TargetTeam: team},
		Status:     model.DeploySucceeded | model.DeployCreated,
	}
}
