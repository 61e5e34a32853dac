package componentdescriptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// ResolveWithMapping looks up identity across a list of candidate
// repository contexts in order, returning the first hit (spec §4.1
// "Resolution rules"). candidates and defaultContext are mutually
// exclusive per spec; passing both is a programmer error.
func (l *Lookup) ResolveWithMapping(ctx context.Context, identity model.ComponentIdentity, candidates []model.RepositoryContext, defaultContext *model.RepositoryContext) (*model.ComponentDescriptor, error) {
	if len(candidates) > 0 && defaultContext != nil {
		return nil, fmt.Errorf("repository mapping candidates and a default context are mutually exclusive")
	}

	if len(candidates) == 0 {
		return l.Get(ctx, identity, defaultContext)
	}

	var retainedErr error
	for _, rc := range candidates {
		rc := rc
		d, err := l.Get(ctx, identity, &rc)
		if err == nil {
			return d, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if retainedErr == nil {
			retainedErr = err
		}
	}

	if retainedErr != nil {
		return nil, retainedErr
	}
	return nil, ErrNotFound
}
