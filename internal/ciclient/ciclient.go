// Package ciclient declares the CI backend's REST contract (spec §6). The
// backend itself (Concourse, in the system this was distilled from) is
// deliberately out of scope: PipelineDeployer, ReplicationOrchestrator, and
// WebhookDispatcher all depend on this interface, never on a concrete
// transport, so the core stays testable without a live backend.
package ciclient

import (
	"context"
	"fmt"
)

// HTTPError is returned by Client methods that fail with a non-2xx HTTP
// response, carrying enough detail for PipelineDeployer to recognise the
// known save-race body (spec §4.4 point 3) without depending on any
// specific HTTP client library.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ci backend returned HTTP %d: %s", e.StatusCode, e.Body)
}

// SaveRaceBody is the exact response body identifying a known transient
// save race from concurrent set_pipeline calls (spec §4.4 point 3) — an
// intentionally brittle string match, documented as a known upstream
// quirk rather than something to generalise.
const SaveRaceBody = "failed to save config: comparison with existing config failed during save"

// SetPipelineResult reports whether set_pipeline created a new pipeline or
// updated an existing one (spec §4.4 point 2).
type SetPipelineResult int

const (
	PipelineCreated SetPipelineResult = iota
	PipelineUpdated
)

// Resource describes one resource declared by a pipeline config, as
// returned by PipelineResources. Type distinguishes git-type resources
// (driving push-event resource checks) from pull-request-type resources
// (driving PR label/check handling).
type Resource struct {
	Pipeline string
	Name     string
	Type     string
	// Labels are the PR labels this resource requires to be "up to date"
	// (source.label in the job mapping), relevant only for pull-request
	// resources.
	Labels []string
}

// Build describes one job build, as returned by JobBuilds.
type Build struct {
	ID      string
	Name    string
	Status  string // e.g. "pending", "started", "succeeded", "failed", "aborted"
	PlanRef string // the git ref this build's plan was triggered from
}

// ResourceVersion is one entry of a resource's version history, as
// returned by ResourceVersions — used by ensure_pr_resource_updates to
// check whether a PR number already appears in a PR resource's versions.
type ResourceVersion struct {
	Version map[string]string
	Checked bool
	Failing bool
}

// Client is the abstract CI backend client every component that talks to a
// CI backend (PipelineDeployer, ReplicationOrchestrator, WebhookDispatcher)
// depends on (spec §6 "CI backend client").
type Client interface {
	SetPipeline(ctx context.Context, name string, body []byte) (SetPipelineResult, error)
	UnpausePipeline(ctx context.Context, name string) error
	ExposePipeline(ctx context.Context, name string) error
	Pipelines(ctx context.Context) ([]string, error)
	DeletePipeline(ctx context.Context, name string) error
	PipelineResources(ctx context.Context, pipelines []string, resourceType string) ([]Resource, error)
	TriggerResourceCheck(ctx context.Context, pipeline, resource string) error
	OrderPipelines(ctx context.Context, names []string) error
	PipelineConfig(ctx context.Context, name string) ([]byte, error)
	JobBuilds(ctx context.Context, pipeline, job string) ([]Build, error)
	AbortBuild(ctx context.Context, id string) error
	ResourceVersions(ctx context.Context, pipeline, resource string) ([]ResourceVersion, error)
}

// Resolver locates the Client for a (config-name, team-name) pair, per
// spec §4.4 point 1 ("resolve a CI-backend client for (config-name,
// team-name)").
type Resolver interface {
	Resolve(configName, teamName string) (Client, error)
}
