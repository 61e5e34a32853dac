package componentdescriptor

import (
	"context"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

func TestFSLayer_RoundTrip(t *testing.T) {
	layer := NewFSLayer(t.TempDir())
	repoCtx := &model.RepositoryContext{Type: "OCIRegistry", BaseURL: "ghcr.io/acme"}
	id := model.ComponentIdentity{Name: "github.com/acme/app", Version: "1.0.0"}

	_, wb, err := layer.Get(context.Background(), id, repoCtx)
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := wb(id, model.ComponentDescriptor{Identity: id}); err != nil {
		t.Fatalf("write-back: %v", err)
	}

	d, _, err := layer.Get(context.Background(), id, repoCtx)
	if err != nil {
		t.Fatalf("Get after write-back: %v", err)
	}
	if d.Identity != id {
		t.Errorf("Identity = %v", d.Identity)
	}
}

func TestFSLayer_NoRepositoryContextIsMiss(t *testing.T) {
	layer := NewFSLayer(t.TempDir())
	_, _, err := layer.Get(context.Background(), model.ComponentIdentity{Name: "app", Version: "1.0.0"}, nil)
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
