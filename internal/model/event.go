package model

// Repository identifies the GitHub repository an event concerns.
type Repository struct {
	Owner   string
	Name    string
	FullURL string
}

// EventCommon carries the fields every webhook event type shares.
type EventCommon struct {
	DeliveryID string
	Hostname   string // X-GitHub-Enterprise-Host, or "github.com"
	Repository Repository
}

// PullRequestAction enumerates the GitHub pull_request actions this system
// reacts to. A PullRequestEvent is parsed for any action; the dispatcher
// drops actions outside this set before scheduling a handler.
type PullRequestAction string

const (
	ActionOpened      PullRequestAction = "opened"
	ActionReopened    PullRequestAction = "reopened"
	ActionLabeled     PullRequestAction = "labeled"
	ActionSynchronize PullRequestAction = "synchronize"
)

// ActedPullRequestActions is the set of actions process_pr_event handles;
// any other action is acknowledged with "Event ignored" and dropped.
var ActedPullRequestActions = map[PullRequestAction]bool{
	ActionOpened:      true,
	ActionReopened:    true,
	ActionLabeled:     true,
	ActionSynchronize: true,
}

// PushEvent models a GitHub "push" webhook payload.
type PushEvent struct {
	EventCommon
	Ref           string
	PreviousRef   string
	ModifiedPaths []string
	ForcedPush    bool
	CommitMessage string
}

// IsForcedPush reports whether this push was forced, per spec scenario 2.
func (e PushEvent) IsForcedPush() bool { return e.ForcedPush }

// ModifiesPath reports whether path appears in ModifiedPaths.
func (e PushEvent) ModifiesPath(path string) bool {
	for _, p := range e.ModifiedPaths {
		if p == path {
			return true
		}
	}
	return false
}

// CreateEvent models a GitHub "create" webhook payload (branch or tag
// creation). Only RefType == "branch" is acted on.
type CreateEvent struct {
	EventCommon
	Ref     string
	RefType string // "branch" or "tag"
}

const CreateRefTypeBranch = "branch"

// PullRequestEvent models a GitHub "pull_request" webhook payload.
type PullRequestEvent struct {
	EventCommon
	Action      PullRequestAction
	PRNumber    int
	SenderLogin string
	Label       string   // the label this action concerns, if Action == labeled
	LabelNames  []string // all labels currently on the PR
	HeadRepo    Repository
	HeadRef     string
	ModifiedPaths []string
}

// Event is the tagged union of the three webhook event kinds the
// dispatcher classifies incoming deliveries into (spec §3 "Event").
// Exactly one field is non-nil.
type Event struct {
	Push        *PushEvent
	Create      *CreateEvent
	PullRequest *PullRequestEvent
}

// Kind returns a short label for logging, matching the GitHub
// X-GitHub-Event header value that produced this event.
func (e Event) Kind() string {
	switch {
	case e.Push != nil:
		return "push"
	case e.Create != nil:
		return "create"
	case e.PullRequest != nil:
		return "pull_request"
	default:
		return "unknown"
	}
}
