package componentdescriptor

import (
	"context"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

func TestMemoryLayer_MissThenWriteBack(t *testing.T) {
	layer, err := NewMemoryLayer(8)
	if err != nil {
		t.Fatalf("NewMemoryLayer: %v", err)
	}
	id := model.ComponentIdentity{Name: "app", Version: "1.0.0"}

	_, wb, err := layer.Get(context.Background(), id, nil)
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if wb == nil {
		t.Fatal("expected a write-back on miss")
	}

	descriptor := model.ComponentDescriptor{Identity: id}
	if err := wb(id, descriptor); err != nil {
		t.Fatalf("write-back: %v", err)
	}

	d, _, err := layer.Get(context.Background(), id, nil)
	if err != nil {
		t.Fatalf("Get after write-back: %v", err)
	}
	if d.Identity != id {
		t.Errorf("Identity = %v", d.Identity)
	}
}
