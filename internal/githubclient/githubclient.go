// Package githubclient declares the GitHub REST contract (spec §6). The
// concrete GitHub API transport is deliberately out of scope; C5's
// notification path and C6's label/comment/issue management both depend
// only on this interface.
package githubclient

import "context"

// Repository identifies a repository this client operates against.
type Repository struct {
	Owner string
	Name  string
}

// Issue is a GitHub issue, used both for the abstract contract and for the
// [SUPPLEMENT] persistent-failure escalation (original_source/
// github/compliance/issue.py): a tracking issue opened once a broken
// pipeline definition survives multiple replication runs on the same
// branch, rather than only ever commenting on a PR.
type Issue struct {
	Number    int
	Title     string
	Body      string
	Labels    []string
	Assignees []string
	Milestone string
	State     string // "open" or "closed"
}

// PullRequest is the subset of a GitHub pull request this system inspects
// or mutates.
type PullRequest struct {
	Number int
	Labels []string
	Head   Repository
	HeadRef string
}

// Client is the abstract GitHub client (spec §6 "GitHub client").
type Client interface {
	Repository(ctx context.Context, owner, name string) (*Repository, error)

	CreateIssue(ctx context.Context, repo Repository, issue Issue) (*Issue, error)
	UpdateIssue(ctx context.Context, repo Repository, number int, issue Issue) (*Issue, error)
	CloseIssue(ctx context.Context, repo Repository, number int) error
	FindOpenIssue(ctx context.Context, repo Repository, titleMatch string) (*Issue, error)
	CommentOnIssue(ctx context.Context, repo Repository, number int, body string) error

	PullRequest(ctx context.Context, repo Repository, number int) (*PullRequest, error)
	// PullRequestFiles returns the paths changed by a pull request, used
	// by WebhookDispatcher to decide whether a PR touched
	// .ci/pipeline_definitions.
	PullRequestFiles(ctx context.Context, repo Repository, number int) ([]string, error)
	AddLabels(ctx context.Context, repo Repository, prNumber int, labels []string) error
	RemoveLabel(ctx context.Context, repo Repository, prNumber int, label string) error
	CommentOnPullRequest(ctx context.Context, repo Repository, prNumber int, body string) error

	IsTeamMember(ctx context.Context, hostname, org, team, login string) (bool, error)
	IsOrgMember(ctx context.Context, hostname, org, login string) (bool, error)

	// Codeowners returns the parsed CODEOWNERS entries (path glob ->
	// owner logins/teams) for repo at committish, or an empty slice if
	// the file does not exist.
	Codeowners(ctx context.Context, repo Repository, committish string) ([]CodeownersEntry, error)

	ReadFile(ctx context.Context, repo Repository, path, committish string) ([]byte, error)
	WriteFile(ctx context.Context, repo Repository, path, committish string, content []byte, message string) error

	Branches(ctx context.Context, repo Repository) ([]string, error)
	CreateTag(ctx context.Context, repo Repository, tag, committish string) error

	CreateRelease(ctx context.Context, repo Repository, tag, name, body string) error
	Releases(ctx context.Context, repo Repository) ([]string, error)

	// HeadCommit returns the author and committer login/email of the
	// given ref's head commit, used as the mailer's fallback recipient
	// source when CODEOWNERS yields nothing (spec §4.5, original_source/
	// mailutil.py recipient resolution order).
	HeadCommit(ctx context.Context, repo Repository, ref string) (author, committer CommitIdentity, err error)
}

// CodeownersEntry is one line of a parsed CODEOWNERS file.
type CodeownersEntry struct {
	PathPattern string
	Owners      []string // "@user" or "@org/team" logins, as written in the file
}

// CommitIdentity is a commit's author or committer identity.
type CommitIdentity struct {
	Login string
	Email string
}
