package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// FilesystemDeployer writes rendered pipeline text to
// <baseDir>/<pipeline_name> instead of a live CI backend, used for local
// inspection and testing (spec §4.4 "the filesystem deployer").
type FilesystemDeployer struct {
	baseDir string
}

func NewFilesystemDeployer(baseDir string) *FilesystemDeployer {
	return &FilesystemDeployer{baseDir: baseDir}
}

func (d *FilesystemDeployer) Deploy(ctx context.Context, rendered model.RenderResult) model.DeployResult {
	if !rendered.Succeeded() {
		return failedResult(rendered, errors.New("cannot deploy a failed render"))
	}

	name := rendered.Descriptor.EffectiveName()
	path := filepath.Join(d.baseDir, name)

	created := true
	if _, err := os.Stat(path); err == nil {
		created = false
	}

	if err := os.WriteFile(path, []byte(rendered.PipelineText), 0o644); err != nil {
		return failedResult(rendered, fmt.Errorf("writing pipeline file: %w", err))
	}

	status := model.DeploySucceeded
	if created {
		status |= model.DeployCreated
	}
	return model.DeployResult{Descriptor: rendered.Descriptor, Status: status}
}
