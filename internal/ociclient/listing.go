package ociclient

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ListComponentVersions discovers every version tag published for a
// component under registryBase, sorted from newest to oldest semver.
// ListAllComponentVersions calls it once per component.
func (c *Client) ListComponentVersions(ctx context.Context, registryBase, componentName string) ([]ListEntry, error) {
	repo := ComponentRepositoryPath(registryBase, componentName)

	tags, err := c.List(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("listing versions for %s: %w", componentName, err)
	}

	sorted := SortSemverTagsDescending(tags)
	entries := make([]ListEntry, 0, len(sorted))
	for _, tag := range sorted {
		entries = append(entries, ListEntry{
			Name:       componentName,
			Version:    tag,
			Repository: repo,
			Reference:  repo + ":" + tag,
		})
	}

	return entries, nil
}

// ResolveLatestVersion returns the fully-qualified reference for the
// highest semver-tagged version of a component.
func (c *Client) ResolveLatestVersion(ctx context.Context, registryBase, componentName string) (string, error) {
	tags, err := c.List(ctx, ComponentRepositoryPath(registryBase, componentName))
	if err != nil {
		return "", fmt.Errorf("listing tags for %s: %w", componentName, err)
	}

	latest := LatestSemverTag(tags)
	if latest == "" {
		return "", fmt.Errorf("no semver-tagged versions found for %s", componentName)
	}

	return ComponentReference(registryBase, componentName, latest), nil
}

// ListAllComponentVersions discovers every component under registryBase and
// lists its versions concurrently, bounded by the client's concurrency
// limit, giving a full picture of what is available in a registry
// without issuing one request at a time.
func (c *Client) ListAllComponentVersions(ctx context.Context, registryBase string) (map[string][]ListEntry, error) {
	repos, err := c.ListRepositories(ctx, registryBase+"/"+componentDescriptorPrefix)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]ListEntry, len(repos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	type kv struct {
		name    string
		entries []ListEntry
	}
	out := make(chan kv, len(repos))

	for _, repoPath := range repos {
		name := componentNameFromRepositoryPath(registryBase, repoPath)
		g.Go(func() error {
			entries, err := c.ListComponentVersions(ctx, registryBase, name)
			if err != nil {
				return nil // skip unreadable repositories, same tolerance as the original listing helper
			}
			out <- kv{name: name, entries: entries}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(out)

	for item := range out {
		results[item.name] = item.entries
	}
	return results, nil
}

func componentNameFromRepositoryPath(registryBase, repoPath string) string {
	prefix := registryBase + "/" + componentDescriptorPrefix + "/"
	if len(repoPath) > len(prefix) && repoPath[:len(prefix)] == prefix {
		return repoPath[len(prefix):]
	}
	return repoPath
}
