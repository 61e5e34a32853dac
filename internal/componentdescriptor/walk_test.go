package componentdescriptor

import (
	"context"
	"testing"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

func TestWalk_VisitsAllAndPrunesCycles(t *testing.T) {
	idA := model.ComponentIdentity{Name: "a", Version: "1.0.0"}
	idB := model.ComponentIdentity{Name: "b", Version: "1.0.0"}

	layer := &stubLayer{name: "l1", descriptors: map[model.ComponentIdentity]model.ComponentDescriptor{
		idA: {
			Identity: idA,
			ComponentReferences: []model.ComponentReference{
				{Name: "b", Identity: idB},
			},
		},
		idB: {
			Identity: idB,
			ComponentReferences: []model.ComponentReference{
				{Name: "a", Identity: idA}, // cycle back to a
			},
		},
	}}
	l := New(layer)

	var visited []model.ComponentIdentity
	err := Walk(context.Background(), l, idA, nil, func(d *model.ComponentDescriptor) error {
		visited = append(visited, d.Identity)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(visited) != 2 {
		t.Fatalf("visited %d components, want 2: %v", len(visited), visited)
	}
}
