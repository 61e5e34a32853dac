package componentdescriptor

import (
	"context"
	"sync"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/pipeline-replicator/internal/model"
	"github.com/giantswarm/pipeline-replicator/internal/ociclient"
)

// DetectUpgrades compares each of a descriptor's componentReferences
// against the highest semver version published for that component in
// registryBase, producing an UpgradeVector wherever a newer version
// exists ([SUPPLEMENT] "dependency upgrade vectors", grounded on
// concourse/model/traits/update_component_deps.py's comparison and
// giantswarm-klaus-oci/resolve.go's "list tags, pick latest semver"
// primitive). References that fail to resolve (e.g. the component has no
// published versions yet) are skipped rather than treated as an error,
// since a missing upstream component is not this descriptor's problem.
func DetectUpgrades(ctx context.Context, client *ociclient.Client, registryBase string, d *model.ComponentDescriptor, concurrency int) ([]model.UpgradeVector, error) {
	if concurrency <= 0 {
		concurrency = 10
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var vectors []model.UpgradeVector

	for _, ref := range d.ComponentReferences {
		ref := ref
		g.Go(func() error {
			latestRef, err := client.ResolveLatestVersion(ctx, registryBase, ref.Name)
			if err != nil {
				return nil
			}

			latest := model.ParseOciImageReference(latestRef).Tag()
			if latest == "" || latest == ref.Identity.Version {
				return nil
			}

			current, err := semver.NewVersion(ref.Identity.Version)
			if err != nil {
				return nil
			}
			candidate, err := semver.NewVersion(latest)
			if err != nil {
				return nil
			}
			if !candidate.GreaterThan(current) {
				return nil
			}

			mu.Lock()
			vectors = append(vectors, model.UpgradeVector{
				Whence: ref.Identity,
				Whither: model.ComponentIdentity{Name: ref.Identity.Name, Version: latest},
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}
