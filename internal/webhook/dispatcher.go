// Package webhook implements WebhookDispatcher (C6, spec §4.6): an HTTP
// endpoint that classifies inbound GitHub deliveries into a typed Event,
// schedules an off-thread handler, and returns synchronously once
// dispatch has been scheduled. Handler panics and errors are always
// caught on the detached goroutine; the HTTP layer never observes one
// (spec §7 point 6).
package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// ErrJobMappingNotFound and ErrConfigElementNotFound are the two
// replication errors spec §4.6 names as warranting exactly one retry
// after a full config reload (dispatch_push_event, dispatch_create_event).
var (
	ErrJobMappingNotFound    = errors.New("job mapping not found")
	ErrConfigElementNotFound = errors.New("config element not found")
)

// Replicator is the subset of replication behaviour the dispatcher needs:
// re-running replication scoped to one repository, and reloading
// configuration from disk when that replication fails with one of the
// two sentinel errors above.
type Replicator interface {
	ReplicateRepository(ctx context.Context, repo model.Repository) error
	ReloadConfig(ctx context.Context) error
}

// ConfigProvider is the narrow slice of *config.Config the dispatcher
// depends on, kept as an interface so tests don't need a real YAML file.
type ConfigProvider interface {
	MappingForRepository(owner, name string) (config.RepositoryMapping, bool)
	CIBackendByName(name string) (config.CIBackendConfig, bool)
	CIBackendNames() []string
}

// JobPolicyResolver resolves the per-job abort-obsolete-builds policy for
// a repository's deployed pipelines (spec §4.6 "Abort-obsolete-builds").
// Deriving this requires reading each job's effective, rendered
// definition — a concern that belongs to whatever owns the rendered
// pipeline store, not to the dispatcher itself, so it is taken as a
// collaborator rather than computed here.
type JobPolicyResolver interface {
	JobsForRepository(ctx context.Context, repo model.Repository) ([]JobAbortPolicy, error)
}

// Dispatcher is the http.Handler GitHub webhook deliveries are pointed at.
type Dispatcher struct {
	gh          githubclient.Client
	ciResolver  ciclient.Resolver
	cfg         ConfigProvider
	replicator  Replicator
	jobPolicies JobPolicyResolver // nil disables the abort-obsolete-builds step
	tracker     *FailureTracker
	log         *slog.Logger
	sleep       func(time.Duration)
	defaultHost string
}

// DispatcherOption configures optional Dispatcher behaviour.
type DispatcherOption func(*Dispatcher)

// WithJobPolicyResolver enables the abort-obsolete-builds step.
func WithJobPolicyResolver(r JobPolicyResolver) DispatcherOption {
	return func(d *Dispatcher) { d.jobPolicies = r }
}

func NewDispatcher(gh githubclient.Client, ciResolver ciclient.Resolver, cfg ConfigProvider, replicator Replicator, defaultHostname string, log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gh:          gh,
		ciResolver:  ciResolver,
		cfg:         cfg,
		replicator:  replicator,
		tracker:     NewFailureTracker(),
		log:         log,
		sleep:       time.Sleep,
		defaultHost: defaultHostname,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServeHTTP implements spec §6's "Webhook HTTP" contract: it parses the
// event, schedules the matching handler on a detached goroutine, and
// returns 200 immediately. Events outside {push, create, pull_request}
// and pull_request actions outside the acted set are acknowledged with
// "Event ignored" rather than rejected.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	githubEvent := r.Header.Get("X-GitHub-Event")
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	hostname := r.Header.Get("X-GitHub-Enterprise-Host")
	if hostname == "" {
		hostname = d.defaultHost
	}
	if githubEvent == "" || deliveryID == "" {
		http.Error(w, "missing required GitHub webhook headers", http.StatusBadRequest)
		return
	}

	event, err := parseEvent(githubEvent, hostname, r.Body)
	if err != nil {
		d.log.Error("decoding webhook payload failed", "event", githubEvent, "delivery", deliveryID, "error", err)
		http.Error(w, "malformed event payload", http.StatusBadRequest)
		return
	}

	if event.Kind() == "unknown" {
		d.log.Info("ignoring unrecognised webhook event", "event", githubEvent, "delivery", deliveryID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Event ignored"))
		return
	}

	if event.PullRequest != nil && !model.ActedPullRequestActions[event.PullRequest.Action] {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Event ignored"))
		return
	}

	go d.dispatch(event, deliveryID)

	w.WriteHeader(http.StatusOK)
}

// dispatch runs on its own detached goroutine per delivery (spec §5
// "Webhook dispatch: one thread per inbound event"). Any panic or error
// from a handler is caught here; it never propagates to the HTTP layer.
func (d *Dispatcher) dispatch(event model.Event, deliveryID string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("webhook handler panicked", "delivery", deliveryID, "panic", r)
		}
	}()

	ctx := context.Background()

	switch {
	case event.Push != nil:
		d.dispatchPushEvent(ctx, *event.Push)
	case event.Create != nil:
		d.dispatchCreateEvent(ctx, *event.Create)
	case event.PullRequest != nil:
		d.dispatchPullRequestEvent(ctx, *event.PullRequest)
	}
}
