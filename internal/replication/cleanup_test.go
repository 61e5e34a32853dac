package replication

import (
	"context"
	"log/slog"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/mailer"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

type fakeCIClient struct {
	ciclient.Client
	pipelines      []string
	deleted        []string
	resources      []ciclient.Resource
	resourceChecks []string // "pipeline/resource"
	ordered        [][]string
}

func (c *fakeCIClient) Pipelines(ctx context.Context) ([]string, error) {
	return c.pipelines, nil
}

func (c *fakeCIClient) DeletePipeline(ctx context.Context, name string) error {
	c.deleted = append(c.deleted, name)
	return nil
}

func (c *fakeCIClient) PipelineResources(ctx context.Context, pipelines []string, resourceType string) ([]ciclient.Resource, error) {
	return c.resources, nil
}

func (c *fakeCIClient) TriggerResourceCheck(ctx context.Context, pipeline, resource string) error {
	c.resourceChecks = append(c.resourceChecks, pipeline+"/"+resource)
	return nil
}

func (c *fakeCIClient) OrderPipelines(ctx context.Context, names []string) error {
	c.ordered = append(c.ordered, names)
	return nil
}

type fakeResolver struct {
	client ciclient.Client
}

func (r *fakeResolver) Resolve(configName, teamName string) (ciclient.Client, error) {
	return r.client, nil
}

func newTestOrchestrator(ci ciclient.Client, opts Options) *Orchestrator {
	gh := &fakeGitHub{}
	mail := mailer.New(mailer.Config{Addr: "smtp.invalid:25", From: "ci@example.com"})
	return NewOrchestrator(nil, nil, nil, nil, &fakeResolver{client: ci}, gh, mail, opts, slog.Default())
}

func succeededDeploy(name string) model.DeployResult {
	return model.DeployResult{
		Descriptor: model.DefinitionDescriptor{EffectivePipelineName: name},
		Status:     model.DeploySucceeded | model.DeployCreated,
	}
}

func TestCleanup_DeletesOrphansNotJustDeployed(t *testing.T) {
	ci := &fakeCIClient{pipelines: []string{"keep", "orphan"}}
	o := newTestOrchestrator(ci, Options{})

	deploys := []model.DeployResult{succeededDeploy("keep")}
	if err := o.cleanup(context.Background(), deploys); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if len(ci.deleted) != 1 || ci.deleted[0] != "orphan" {
		t.Errorf("deleted = %v, want [orphan]", ci.deleted)
	}
}

func TestCleanup_ProtectsNamesMatchedByKeepFilter(t *testing.T) {
	ci := &fakeCIClient{pipelines: []string{"protected", "orphan"}}
	o := newTestOrchestrator(ci, Options{
		Cleanup: CleanupPolicy{Keep: func(name string) bool { return name == "protected" }},
	})

	if err := o.cleanup(context.Background(), nil); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if len(ci.deleted) != 1 || ci.deleted[0] != "orphan" {
		t.Errorf("deleted = %v, want [orphan] (protected must survive)", ci.deleted)
	}
}

func TestBootstrap_TriggersResourceCheckOnlyForCreatedDeploys(t *testing.T) {
	ci := &fakeCIClient{resources: []ciclient.Resource{{Pipeline: "new", Name: "git-repo"}}}
	o := newTestOrchestrator(ci, Options{})

	deploys := []model.DeployResult{
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "new"}, Status: model.DeploySucceeded | model.DeployCreated},
		{Descriptor: model.DefinitionDescriptor{EffectivePipelineName: "existing"}, Status: model.DeploySucceeded},
	}
	o.bootstrap(context.Background(), deploys)

	if len(ci.resourceChecks) != 1 || ci.resourceChecks[0] != "new/git-repo" {
		t.Errorf("resourceChecks = %v, want exactly one check for the CREATED pipeline", ci.resourceChecks)
	}
}
