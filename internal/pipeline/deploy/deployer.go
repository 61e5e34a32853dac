// Package deploy implements PipelineDeployer (C4, spec §4.4): pushes
// rendered pipeline text to a CI backend, handles the unpause/expose
// policy, and retries the one known transient save race.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// Deployer mirrors PipelineRenderer's "never throws" discipline: every
// failure mode is captured in the returned DeployResult, matching spec §7
// point 3 ("Deploy errors ... -> FAILED").
type Deployer interface {
	Deploy(ctx context.Context, rendered model.RenderResult) model.DeployResult
}

// Options configures a CIBackendDeployer's unpause/expose policy (spec
// §4.4 point 4, §8 P4).
type Options struct {
	BackendConfigName   string
	UnpauseNewPipelines bool // unpause exactly pipelines that were just CREATED
	UnpausePipelines    bool // unpause unconditionally
	ExposePipelines     bool
}

// CIBackendDeployer deploys to a real CI backend resolved per (config
// name, team), per spec §4.4 point 1.
type CIBackendDeployer struct {
	resolver ciclient.Resolver
	opts     Options
	log      *slog.Logger
	sleep    func(time.Duration) // overridable in tests
}

func NewCIBackendDeployer(resolver ciclient.Resolver, opts Options, log *slog.Logger) *CIBackendDeployer {
	return &CIBackendDeployer{resolver: resolver, opts: opts, log: log, sleep: time.Sleep}
}

func (d *CIBackendDeployer) Deploy(ctx context.Context, rendered model.RenderResult) model.DeployResult {
	if !rendered.Succeeded() {
		return model.DeployResult{
			Descriptor:   rendered.Descriptor,
			Status:       model.DeployFailed,
			ErrorDetails: "cannot deploy a failed render: " + rendered.ErrorDetails,
		}
	}

	client, err := d.resolver.Resolve(d.opts.BackendConfigName, rendered.Descriptor.TargetTeam)
	if err != nil {
		return failedResult(rendered, fmt.Errorf("resolving CI backend client: %w", err))
	}

	name := rendered.Descriptor.EffectiveName()
	result, err := d.setPipelineWithRetry(ctx, client, name, []byte(rendered.PipelineText))
	if err != nil {
		return failedResult(rendered, err)
	}

	status := model.DeploySucceeded
	created := result == ciclient.PipelineCreated
	if created {
		status |= model.DeployCreated
	}

	if d.opts.UnpausePipelines || (d.opts.UnpauseNewPipelines && created) {
		if err := client.UnpausePipeline(ctx, name); err != nil {
			d.log.Warn("unpause pipeline failed", "pipeline", name, "error", err)
		}
	}
	if d.opts.ExposePipelines {
		if err := client.ExposePipeline(ctx, name); err != nil {
			d.log.Warn("expose pipeline failed", "pipeline", name, "error", err)
		}
	}

	return model.DeployResult{Descriptor: rendered.Descriptor, Status: status}
}

// setPipelineWithRetry implements spec §4.4 point 3: on the exact known
// save-race HTTP 500, sleep uniformly in [5,30]s and retry exactly once.
// Any other error propagates immediately.
func (d *CIBackendDeployer) setPipelineWithRetry(ctx context.Context, client ciclient.Client, name string, body []byte) (ciclient.SetPipelineResult, error) {
	result, err := client.SetPipeline(ctx, name, body)
	if err == nil {
		return result, nil
	}
	if !isSaveRace(err) {
		return 0, err
	}

	d.sleep(jitteredSaveRaceDelay())
	return client.SetPipeline(ctx, name, body)
}

func isSaveRace(err error) bool {
	var httpErr *ciclient.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 500 && httpErr.Body == ciclient.SaveRaceBody
}

func jitteredSaveRaceDelay() time.Duration {
	return (5 + time.Duration(rand.Intn(26))) * time.Second
}

func failedResult(rendered model.RenderResult, err error) model.DeployResult {
	return model.DeployResult{
		Descriptor:   rendered.Descriptor,
		Status:       model.DeployFailed,
		ErrorDetails: err.Error(),
	}
}
