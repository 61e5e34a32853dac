package componentdescriptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// RemoteServiceClient is the narrow external contract for the "remote
// delivery service" layer (spec §4.1): a service that may already have a
// descriptor cached centrally, sitting between the filesystem cache and
// the OCI registry of record. Out of scope per spec §1; implementations
// live outside this module (e.g. an HTTP client against a delivery-dashboard
// deployment).
type RemoteServiceClient interface {
	ComponentDescriptor(ctx context.Context, identity model.ComponentIdentity) (*model.ComponentDescriptor, error)
}

// ErrRemoteServiceMiss is returned by a RemoteServiceClient to indicate a
// clean "not found" from the remote service, as distinct from a transport
// failure.
var ErrRemoteServiceMiss = errors.New("remote delivery service: not found")

// RemoteServiceLayer adapts a RemoteServiceClient into a lookup Layer.
type RemoteServiceLayer struct {
	client RemoteServiceClient
}

// NewRemoteServiceLayer builds a RemoteServiceLayer over client. A nil
// client turns this layer into a permanent no-op miss, so it can be
// omitted from a Lookup's layer list entirely when unconfigured, or left
// in place and simply never configured.
func NewRemoteServiceLayer(client RemoteServiceClient) *RemoteServiceLayer {
	return &RemoteServiceLayer{client: client}
}

func (r *RemoteServiceLayer) Name() string { return "remote-service" }

func (r *RemoteServiceLayer) Get(ctx context.Context, identity model.ComponentIdentity, _ *model.RepositoryContext) (*model.ComponentDescriptor, model.WriteBack, error) {
	if r.client == nil {
		return nil, nil, ErrNotFound
	}

	d, err := r.client.ComponentDescriptor(ctx, identity)
	switch {
	case err == nil:
		return d, nil, nil
	case errors.Is(err, ErrRemoteServiceMiss):
		return nil, nil, ErrNotFound
	default:
		return nil, nil, fmt.Errorf("remote delivery service: %w", err)
	}
}
