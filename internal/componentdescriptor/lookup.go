// Package componentdescriptor implements the layered ComponentDescriptor
// lookup composite: in-memory LRU -> filesystem -> remote delivery service
// -> OCI registry, with write-back into every layer that missed once a
// lower layer produces a hit (spec §4.1).
package componentdescriptor

import (
	"context"
	"errors"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// ErrNotFound is returned by a Layer, and by Lookup.Get, when no layer
// holds a descriptor for the requested identity.
var ErrNotFound = errors.New("component descriptor not found")

// Layer is one tier of the lookup composite. Get returns
// (descriptor, nil, nil) on a hit, (nil, writeBack, ErrNotFound) on a
// clean miss, or (nil, nil, err) on any other failure. The writeBack of a
// miss (nil when the layer cannot be populated) stores a descriptor found
// by a later layer. repoCtx names the RepositoryContext to look in.
type Layer interface {
	Get(ctx context.Context, identity model.ComponentIdentity, repoCtx *model.RepositoryContext) (*model.ComponentDescriptor, model.WriteBack, error)
	Name() string
}

// Lookup is the composite of Layers, walked in order on every Get.
type Lookup struct {
	layers []Layer
}

// New builds a composite lookup over layers, in priority order (fastest
// first). Typical construction is NewMemoryLayer, NewFSLayer,
// NewRemoteServiceLayer (optional), NewRegistryLayer.
func New(layers ...Layer) *Lookup {
	return &Lookup{layers: layers}
}

// Get walks the layers in order. On the first hit, every WriteBack
// collected from earlier-missed layers is invoked so lower-priority
// layers get populated (spec §4.1, property P9). Per spec §4.1 "Failure
// modes", a non-ErrNotFound failure from a layer does not abort the walk:
// it is retained and, if no later layer produces a hit, returned instead
// of a bare ErrNotFound so callers see the original cause.
func (l *Lookup) Get(ctx context.Context, identity model.ComponentIdentity, repoCtx *model.RepositoryContext) (*model.ComponentDescriptor, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	var pendingWriteBacks []model.WriteBack
	var retainedErr error

	for _, layer := range l.layers {
		descriptor, writeBack, err := layer.Get(ctx, identity, repoCtx)
		switch {
		case err == nil && descriptor != nil:
			for _, wb := range pendingWriteBacks {
				_ = wb(identity, *descriptor) // write-back failures are not fatal to the lookup itself
			}
			return descriptor, nil

		case errors.Is(err, ErrNotFound):
			if writeBack != nil {
				pendingWriteBacks = append(pendingWriteBacks, writeBack)
			}
			continue

		case err != nil:
			if retainedErr == nil {
				retainedErr = err
			}
			continue

		default:
			// descriptor == nil, err == nil: treat as a clean miss.
			if writeBack != nil {
				pendingWriteBacks = append(pendingWriteBacks, writeBack)
			}
			continue
		}
	}

	if retainedErr != nil {
		return nil, retainedErr
	}
	return nil, ErrNotFound
}

// GetOrAbsent behaves like Get but returns (nil, nil) instead of
// (nil, ErrNotFound) when absentOK is true, matching spec §4.1's
// "on total miss it either returns null (if absent_ok) or signals a
// not-found error".
func (l *Lookup) GetOrAbsent(ctx context.Context, identity model.ComponentIdentity, repoCtx *model.RepositoryContext, absentOK bool) (*model.ComponentDescriptor, error) {
	d, err := l.Get(ctx, identity, repoCtx)
	if errors.Is(err, ErrNotFound) && absentOK {
		return nil, nil
	}
	return d, err
}
