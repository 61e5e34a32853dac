package webhook

import (
	"context"
	"io"
	"log/slog"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dummyRepo() githubclient.Repository {
	return githubclient.Repository{Owner: "acme", Name: "app"}
}

// recordingGitHub records label/comment/issue mutations for assertions,
// embedding the interface so every unused method panics loudly if a test
// accidentally exercises it.
type recordingGitHub struct {
	githubclient.Client
	addedLabels    []string
	removedLabels  []string
	comments       []string
	issues         []githubclient.Issue
	issueComments  []string
	openIssue      *githubclient.Issue
	pullRequest    *githubclient.PullRequest
	pullRequestErr error
	prFiles        []string
	prFilesErr     error
}

func (f *recordingGitHub) AddLabels(ctx context.Context, repo githubclient.Repository, prNumber int, labels []string) error {
	f.addedLabels = append(f.addedLabels, labels...)
	return nil
}

func (f *recordingGitHub) RemoveLabel(ctx context.Context, repo githubclient.Repository, prNumber int, label string) error {
	f.removedLabels = append(f.removedLabels, label)
	return nil
}

func (f *recordingGitHub) CommentOnPullRequest(ctx context.Context, repo githubclient.Repository, prNumber int, body string) error {
	f.comments = append(f.comments, body)
	return nil
}

func (f *recordingGitHub) FindOpenIssue(ctx context.Context, repo githubclient.Repository, titleMatch string) (*githubclient.Issue, error) {
	return f.openIssue, nil
}

func (f *recordingGitHub) CreateIssue(ctx context.Context, repo githubclient.Repository, issue githubclient.Issue) (*githubclient.Issue, error) {
	f.issues = append(f.issues, issue)
	issue.Number = len(f.issues)
	return &issue, nil
}

func (f *recordingGitHub) CommentOnIssue(ctx context.Context, repo githubclient.Repository, number int, body string) error {
	f.issueComments = append(f.issueComments, body)
	return nil
}

func (f *recordingGitHub) PullRequest(ctx context.Context, repo githubclient.Repository, number int) (*githubclient.PullRequest, error) {
	return f.pullRequest, f.pullRequestErr
}

func (f *recordingGitHub) PullRequestFiles(ctx context.Context, repo githubclient.Repository, number int) ([]string, error) {
	return f.prFiles, f.prFilesErr
}

// fakeCIClient is a minimal in-memory ciclient.Client for dispatcher tests.
type fakeCIClient struct {
	ciclient.Client
	resources       []ciclient.Resource
	versions        map[string][]ciclient.ResourceVersion // "pipeline/resource"
	checks          []string                              // "pipeline/resource"
	builds          map[string][]ciclient.Build            // "pipeline/job"
	aborted         []string
}

func (c *fakeCIClient) PipelineResources(ctx context.Context, pipelines []string, resourceType string) ([]ciclient.Resource, error) {
	return c.resources, nil
}

func (c *fakeCIClient) TriggerResourceCheck(ctx context.Context, pipeline, resource string) error {
	c.checks = append(c.checks, pipeline+"/"+resource)
	return nil
}

func (c *fakeCIClient) ResourceVersions(ctx context.Context, pipeline, resource string) ([]ciclient.ResourceVersion, error) {
	return c.versions[pipeline+"/"+resource], nil
}

func (c *fakeCIClient) JobBuilds(ctx context.Context, pipeline, job string) ([]ciclient.Build, error) {
	return c.builds[pipeline+"/"+job], nil
}

func (c *fakeCIClient) AbortBuild(ctx context.Context, id string) error {
	c.aborted = append(c.aborted, id)
	return nil
}

type fakeResolver struct {
	client ciclient.Client
	err    error
}

func (r *fakeResolver) Resolve(configName, teamName string) (ciclient.Client, error) {
	return r.client, r.err
}

type fakeConfigProvider struct {
	mapping     config.RepositoryMapping
	hasMapping  bool
	backends    map[string]config.CIBackendConfig
	backendNames []string
}

func (c *fakeConfigProvider) MappingForRepository(owner, name string) (config.RepositoryMapping, bool) {
	return c.mapping, c.hasMapping
}

func (c *fakeConfigProvider) CIBackendByName(name string) (config.CIBackendConfig, bool) {
	b, ok := c.backends[name]
	return b, ok
}

func (c *fakeConfigProvider) CIBackendNames() []string {
	return c.backendNames
}

type fakeReplicator struct {
	replicateErr   error
	replicateCalls int
	replicatedRepos []model.Repository
	reloadErr      error
	reloadCalls    int
}

func (r *fakeReplicator) ReplicateRepository(ctx context.Context, repo model.Repository) error {
	r.replicateCalls++
	r.replicatedRepos = append(r.replicatedRepos, repo)
	return r.replicateErr
}

func (r *fakeReplicator) ReloadConfig(ctx context.Context) error {
	r.reloadCalls++
	return r.reloadErr
}
