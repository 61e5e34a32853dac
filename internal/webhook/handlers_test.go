package webhook

import (
	"context"
	"strings"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// untrustedSenderGitHub combines recordingGitHub's comment/label recording
// with membership checks that always deny, modelling a PR opened by
// someone in neither a trusted team nor the org.
type untrustedSenderGitHub struct {
	recordingGitHub
}

func (f *untrustedSenderGitHub) IsTeamMember(ctx context.Context, hostname, org, team, login string) (bool, error) {
	return false, nil
}

func (f *untrustedSenderGitHub) IsOrgMember(ctx context.Context, hostname, org, login string) (bool, error) {
	return false, nil
}

func TestDispatchPullRequestEvent_UntrustedSenderCommentNamesRequiredLabels(t *testing.T) {
	gh := &untrustedSenderGitHub{recordingGitHub: recordingGitHub{
		pullRequest: &githubclient.PullRequest{Labels: nil},
	}}
	ci := &fakeCIClient{resources: []ciclient.Resource{
		{Pipeline: "p", Name: "pull-request", Labels: []string{"approved", "ready-to-test"}},
	}}
	cfg := &fakeConfigProvider{
		mapping:    config.RepositoryMapping{CIConfigName: "default", Team: "platform"},
		hasMapping: true,
	}
	d := NewDispatcher(gh, &fakeResolver{client: ci}, cfg, &fakeReplicator{}, "github.com", discardLogger())
	d.sleep = noopSleep

	d.dispatchPullRequestEvent(context.Background(), model.PullRequestEvent{
		EventCommon: model.EventCommon{Hostname: "github.com", Repository: model.Repository{Owner: "acme", Name: "app"}},
		Action:      model.ActionOpened,
		PRNumber:    7,
		SenderLogin: "outsider",
	})

	if len(gh.comments) != 1 {
		t.Fatalf("comments = %v, want exactly one", gh.comments)
	}
	comment := gh.comments[0]
	if !strings.Contains(comment, "@outsider") {
		t.Errorf("comment %q does not mention the sender login", comment)
	}
	for _, label := range []string{"approved", "ready-to-test"} {
		if !strings.Contains(comment, label) {
			t.Errorf("comment %q does not mention required label %q", comment, label)
		}
	}
	if len(gh.addedLabels) != 0 {
		t.Errorf("expected no labels applied for an untrusted sender, got %v", gh.addedLabels)
	}
}
