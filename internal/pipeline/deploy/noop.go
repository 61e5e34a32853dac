package deploy

import (
	"context"
	"errors"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// NoopDeployer returns SUCCEEDED without any side effects, used for dry
// runs (spec §4.4 "the no-op deployer").
type NoopDeployer struct{}

func (NoopDeployer) Deploy(ctx context.Context, rendered model.RenderResult) model.DeployResult {
	if !rendered.Succeeded() {
		return failedResult(rendered, errors.New("cannot deploy a failed render"))
	}
	return model.DeployResult{Descriptor: rendered.Descriptor, Status: model.DeploySucceeded}
}
