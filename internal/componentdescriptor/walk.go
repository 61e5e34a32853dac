package componentdescriptor

import (
	"context"
	"fmt"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// VisitFunc is called once for every component descriptor reached by Walk,
// including the starting identity. Returning an error aborts the walk.
type VisitFunc func(d *model.ComponentDescriptor) error

// Walk traverses a component descriptor's componentReferences recursively,
// resolving each referenced (name, version) pair through lookup, with a
// cycle guard keyed on ComponentIdentity (spec [SUPPLEMENT] "Cyclic
// component graphs", grounded on cnudie/iter.py's visited-set approach).
func Walk(ctx context.Context, lookup *Lookup, start model.ComponentIdentity, repoCtx *model.RepositoryContext, visit VisitFunc) error {
	visited := make(map[model.ComponentIdentity]bool)
	return walk(ctx, lookup, start, repoCtx, visit, visited)
}

func walk(ctx context.Context, lookup *Lookup, identity model.ComponentIdentity, repoCtx *model.RepositoryContext, visit VisitFunc, visited map[model.ComponentIdentity]bool) error {
	if visited[identity] {
		return nil
	}
	visited[identity] = true

	d, err := lookup.Get(ctx, identity, repoCtx)
	if err != nil {
		return fmt.Errorf("walking %s: %w", identity, err)
	}

	if err := visit(d); err != nil {
		return err
	}

	current := d.CurrentRepositoryContext()
	for _, ref := range d.ComponentReferences {
		childCtx := &current
		if ref.Context != nil {
			childCtx = ref.Context
		}
		if err := walk(ctx, lookup, ref.Identity, childCtx, visit, visited); err != nil {
			return err
		}
	}

	return nil
}
