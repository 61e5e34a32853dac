package componentdescriptor

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// MemoryLayer is the in-memory LRU layer of the lookup composite, bounded
// to size entries (default 2048, per spec §3 "Lifecycles").
type MemoryLayer struct {
	cache *lru.Cache[model.ComponentIdentity, model.ComponentDescriptor]
}

// NewMemoryLayer builds a MemoryLayer holding at most size descriptors.
func NewMemoryLayer(size int) (*MemoryLayer, error) {
	if size <= 0 {
		size = 2048
	}
	cache, err := lru.New[model.ComponentIdentity, model.ComponentDescriptor](size)
	if err != nil {
		return nil, err
	}
	return &MemoryLayer{cache: cache}, nil
}

func (m *MemoryLayer) Name() string { return "memory" }

// Get returns a WriteBack on a miss, so a hit in a later layer adds the
// descriptor to the LRU; a hit returns no WriteBack.
func (m *MemoryLayer) Get(_ context.Context, identity model.ComponentIdentity, _ *model.RepositoryContext) (*model.ComponentDescriptor, model.WriteBack, error) {
	d, ok := m.cache.Get(identity)
	if !ok {
		return nil, m.writeBack(), ErrNotFound
	}
	return &d, nil, nil
}

func (m *MemoryLayer) writeBack() model.WriteBack {
	return func(identity model.ComponentIdentity, descriptor model.ComponentDescriptor) error {
		m.cache.Add(identity, descriptor)
		return nil
	}
}
