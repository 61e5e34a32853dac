package deploy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

func TestFilesystemDeployer_WritesFileAndReportsCreated(t *testing.T) {
	dir := t.TempDir()
	d := NewFilesystemDeployer(dir)

	result := d.Deploy(context.Background(), renderedFixture())
	if !result.Status.Has(model.DeployCreated) {
		t.Fatalf("expected CREATED on first write, got %v", result.Status)
	}

	data, err := os.ReadFile(filepath.Join(dir, "build"))
	if err != nil {
		t.Fatalf("reading deployed file: %v", err)
	}
	if string(data) != "jobs: []" {
		t.Errorf("file content = %q", data)
	}
}

func TestFilesystemDeployer_SecondWriteIsUpdate(t *testing.T) {
	dir := t.TempDir()
	d := NewFilesystemDeployer(dir)

	d.Deploy(context.Background(), renderedFixture())
	result := d.Deploy(context.Background(), renderedFixture())

	if result.Status.Has(model.DeployCreated) {
		t.Error("expected no CREATED bit on second write to the same path")
	}
}
