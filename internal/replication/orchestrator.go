// Package replication implements ReplicationOrchestrator (C5, spec §4.5):
// a bounded-width worker pool running preprocess -> render -> duplicate
// check -> deploy over every definition yielded by a set of enumerators,
// followed by cleanup, bootstrap, reorder, and failure notification.
package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/mailer"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// DefaultWorkerPoolWidth is the deliberate default trade-off from spec §9
// "Bounded worker pool": parameterised, but 16 unless overridden.
const DefaultWorkerPoolWidth = 16

// Enumerator yields the definition descriptors for one source (typically
// one repository's .ci/pipeline_definitions).
type Enumerator interface {
	Enumerate(ctx context.Context) ([]model.DefinitionDescriptor, error)
}

// Renderer is the subset of render.Renderer the orchestrator depends on,
// kept as an interface so tests don't need a real template engine.
type Renderer interface {
	Render(descriptor model.DefinitionDescriptor) model.RenderResult
}

// Deployer is the subset of deploy.Deployer the orchestrator depends on.
type Deployer interface {
	Deploy(ctx context.Context, rendered model.RenderResult) model.DeployResult
}

// Preprocessor normalises a descriptor before rendering — e.g. assigning
// EffectivePipelineName — per spec §4.5 point 2. The identity preprocessor
// (no normalisation) is used when nil.
type Preprocessor func(model.DefinitionDescriptor) model.DefinitionDescriptor

// CleanupPolicy controls the cleanup pass (spec §4.5 point 5).
type CleanupPolicy struct {
	Enabled bool
	// Keep reports whether a pipeline name is protected from cleanup
	// (spec §8 P3 "remove_pipelines_filter": filter returning true means
	// keep).
	Keep func(name string) bool
}

// Options configures one Replicate run.
type Options struct {
	WorkerPoolWidth       int // defaults to DefaultWorkerPoolWidth when zero
	Cleanup               CleanupPolicy
	BootstrapNewPipelines bool
	Reorder               bool
	BackendConfigName     string
	TeamName              string
}

// Orchestrator runs one replication cycle.
type Orchestrator struct {
	enumerators  []Enumerator
	renderer     Renderer
	deployer     Deployer
	preprocessor Preprocessor
	ciResolver   ciclient.Resolver
	notifier     *Notifier
	opts         Options
	log          *slog.Logger
}

func NewOrchestrator(enumerators []Enumerator, renderer Renderer, deployer Deployer, preprocessor Preprocessor, ciResolver ciclient.Resolver, gh githubclient.Client, mail *mailer.Mailer, opts Options, log *slog.Logger) *Orchestrator {
	if opts.WorkerPoolWidth == 0 {
		opts.WorkerPoolWidth = DefaultWorkerPoolWidth
	}
	if preprocessor == nil {
		preprocessor = identityPreprocessor
	}
	return &Orchestrator{
		enumerators:  enumerators,
		renderer:     renderer,
		deployer:     deployer,
		preprocessor: preprocessor,
		ciResolver:   ciResolver,
		notifier:     NewNotifier(gh, mail, log),
		opts:         opts,
		log:          log,
	}
}

func identityPreprocessor(d model.DefinitionDescriptor) model.DefinitionDescriptor {
	if d.EffectivePipelineName == "" {
		d = d.WithReplacement()
		d.EffectivePipelineName = d.PipelineName
	}
	return d
}

// Replicate runs one full replication cycle (spec §4.5). It returns true
// iff every failed rendering was successfully notified — the only thing
// that can make this false, per spec §7 point 7.
func (o *Orchestrator) Replicate(ctx context.Context) (bool, error) {
	descriptors, err := o.enumerate(ctx)
	if err != nil {
		return false, fmt.Errorf("enumerating definitions: %w", err)
	}

	renders, deploys := o.processAll(ctx, descriptors)

	hasFailure := false
	for _, d := range deploys {
		if d.Status.Has(model.DeployFailed) {
			hasFailure = true
			break
		}
	}

	if !hasFailure && o.opts.Cleanup.Enabled {
		if err := o.cleanup(ctx, deploys); err != nil {
			o.log.Error("cleanup failed", "error", err)
		}
	}

	if o.opts.BootstrapNewPipelines {
		o.bootstrap(ctx, deploys)
	}

	if o.opts.Reorder {
		if err := o.reorder(ctx, deploys); err != nil {
			o.log.Error("reorder failed", "error", err)
		}
	}

	allNotified := o.notifyFailures(ctx, renders)

	return allNotified, nil
}

func (o *Orchestrator) enumerate(ctx context.Context) ([]model.DefinitionDescriptor, error) {
	var all []model.DefinitionDescriptor
	for _, e := range o.enumerators {
		ds, err := e.Enumerate(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, ds...)
	}
	return all, nil
}

// processAll runs preprocess -> render -> duplicate-check -> deploy over
// descriptors on a width-bounded worker pool, per spec §4.5 points 1-3.
func (o *Orchestrator) processAll(ctx context.Context, descriptors []model.DefinitionDescriptor) ([]model.RenderResult, []model.DeployResult) {
	renders := make([]model.RenderResult, len(descriptors))
	deploys := make([]model.DeployResult, len(descriptors))
	names := newNameSet()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.WorkerPoolWidth)

	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			renders[i], deploys[i] = o.processOne(gctx, d, names)
			return nil
		})
	}
	_ = g.Wait() // processOne never returns an error; failures are captured in results

	return renders, deploys
}

func (o *Orchestrator) processOne(ctx context.Context, d model.DefinitionDescriptor, names *nameSet) (model.RenderResult, model.DeployResult) {
	if d.EnumerationError != nil {
		render := model.RenderResult{Descriptor: d, Status: model.RenderFailed, ErrorDetails: d.EnumerationError.Error()}
		deploy := model.DeployResult{Descriptor: d, Status: model.DeploySkipped, ErrorDetails: d.EnumerationError.Error()}
		return render, deploy
	}

	d = o.preprocessor(d)
	render := o.renderer.Render(d)
	if !render.Succeeded() {
		return render, model.DeployResult{Descriptor: d, Status: model.DeploySkipped, ErrorDetails: render.ErrorDetails}
	}

	name := d.EffectiveName()
	if !names.add(name) {
		return render, model.DeployResult{
			Descriptor:   d,
			Status:       model.DeploySkipped,
			ErrorDetails: fmt.Sprintf("duplicate pipeline name: %s", name),
		}
	}

	return render, o.deployer.Deploy(ctx, render)
}

// reorder groups deploys by target team (spec §4.5 point 4) and
// alphabetically orders each group's pipelines against its own resolved
// CI client.
func (o *Orchestrator) reorder(ctx context.Context, deploys []model.DeployResult) error {
	var firstErr error
	for team, group := range o.groupDeploysByTeam(deploys) {
		if err := o.reorderTeam(ctx, team, group); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (o *Orchestrator) reorderTeam(ctx context.Context, team string, deploys []model.DeployResult) error {
	client, err := o.ciResolver.Resolve(o.opts.BackendConfigName, team)
	if err != nil {
		return err
	}

	var names []string
	for _, d := range deploys {
		if d.Status.Ok() {
			names = append(names, d.Descriptor.EffectiveName())
		}
	}
	sort.Strings(names)
	return client.OrderPipelines(ctx, names)
}
