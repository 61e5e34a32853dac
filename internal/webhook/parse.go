package webhook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// rawRepository mirrors the subset of GitHub's repository JSON object this
// dispatcher needs.
type rawRepository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	HTMLURL string `json:"html_url"`
}

func (r rawRepository) toModel() model.Repository {
	return model.Repository{Owner: r.Owner.Login, Name: r.Name, FullURL: r.HTMLURL}
}

type rawCommit struct {
	Message  string   `json:"message"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}

type rawPushPayload struct {
	Ref        string        `json:"ref"`
	Before     string        `json:"before"`
	Forced     bool          `json:"forced"`
	Repository rawRepository `json:"repository"`
	Commits    []rawCommit   `json:"commits"`
	HeadCommit struct {
		Message string `json:"message"`
	} `json:"head_commit"`
}

type rawCreatePayload struct {
	Ref        string        `json:"ref"`
	RefType    string        `json:"ref_type"`
	Repository rawRepository `json:"repository"`
}

type rawPullRequestPayload struct {
	Action     string        `json:"action"`
	Repository rawRepository `json:"repository"`
	Sender     struct {
		Login string `json:"login"`
	} `json:"sender"`
	Label struct {
		Name string `json:"name"`
	} `json:"label"`
	PullRequest struct {
		Number int `json:"number"`
		Head   struct {
			Ref        string        `json:"ref"`
			Repository rawRepository `json:"repo"`
		} `json:"head"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	} `json:"pull_request"`
}

// parseEvent decodes body per the X-GitHub-Event header into a typed
// model.Event, per spec §6's "Webhook HTTP" contract. An unrecognised
// event kind yields a zero Event and a nil error — the caller logs and
// ignores it rather than treating it as a parse failure.
func parseEvent(githubEvent, hostname string, body io.Reader) (model.Event, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return model.Event{}, fmt.Errorf("reading webhook body: %w", err)
	}

	switch githubEvent {
	case "push":
		var p rawPushPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return model.Event{}, fmt.Errorf("decoding push event: %w", err)
		}
		return model.Event{Push: &model.PushEvent{
			EventCommon:   model.EventCommon{Hostname: hostname, Repository: p.Repository.toModel()},
			Ref:           p.Ref,
			PreviousRef:   p.Before,
			ModifiedPaths: pushModifiedPaths(p.Commits),
			ForcedPush:    p.Forced,
			CommitMessage: p.HeadCommit.Message,
		}}, nil

	case "create":
		var p rawCreatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return model.Event{}, fmt.Errorf("decoding create event: %w", err)
		}
		return model.Event{Create: &model.CreateEvent{
			EventCommon: model.EventCommon{Hostname: hostname, Repository: p.Repository.toModel()},
			Ref:         p.Ref,
			RefType:     p.RefType,
		}}, nil

	case "pull_request":
		var p rawPullRequestPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return model.Event{}, fmt.Errorf("decoding pull_request event: %w", err)
		}
		labels := make([]string, 0, len(p.PullRequest.Labels))
		for _, l := range p.PullRequest.Labels {
			labels = append(labels, l.Name)
		}
		return model.Event{PullRequest: &model.PullRequestEvent{
			EventCommon: model.EventCommon{Hostname: hostname, Repository: p.Repository.toModel()},
			Action:      model.PullRequestAction(p.Action),
			PRNumber:    p.PullRequest.Number,
			SenderLogin: p.Sender.Login,
			Label:       p.Label.Name,
			LabelNames:  labels,
			HeadRepo:    p.PullRequest.Head.Repository.toModel(),
			HeadRef:     p.PullRequest.Head.Ref,
		}}, nil

	default:
		return model.Event{}, nil
	}
}

func pushModifiedPaths(commits []rawCommit) []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(ps []string) {
		for _, p := range ps {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	for _, c := range commits {
		add(c.Added)
		add(c.Removed)
		add(c.Modified)
	}
	return paths
}
