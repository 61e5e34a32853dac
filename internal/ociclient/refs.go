package ociclient

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// componentDescriptorPrefix is the path segment OCM uses to separate
// component-descriptor repositories from other artifacts hosted in the
// same OCI registry (e.g. the images the descriptors reference).
const componentDescriptorPrefix = "component-descriptors"

// SplitRegistryBase splits a registry base path ("registry.example.com/org/prefix")
// into the registry host and the repository-name prefix to search under.
// The returned prefix always ends in "/" so that it can be used directly with
// strings.HasPrefix against full repository names.
func SplitRegistryBase(base string) (host, prefix string) {
	idx := strings.Index(base, "/")
	if idx < 0 {
		return base, ""
	}
	host = base[:idx]
	prefix = strings.TrimSuffix(base[idx+1:], "/") + "/"
	return host, prefix
}

// ComponentRepositoryPath builds the OCI repository path under which a
// component's versions are stored, following the OCM convention of nesting
// descriptors under "component-descriptors/<component-name>".
func ComponentRepositoryPath(registryBase, componentName string) string {
	return strings.TrimSuffix(registryBase, "/") + "/" + componentDescriptorPrefix + "/" + componentName
}

// ComponentReference builds a fully-qualified OCI reference for a specific
// component version.
func ComponentReference(registryBase, componentName, version string) string {
	return ComponentRepositoryPath(registryBase, componentName) + ":" + NormalizeTag(version)
}

// NormalizeTag rewrites a semver version string into a valid OCI tag.
// OCI tags cannot contain "+", which is common in semver build metadata, so
// it is replaced with the conventional "-" separator used across the OCM
// ecosystem (e.g. "1.0.0+build.5" becomes "1.0.0-build.5").
func NormalizeTag(version string) string {
	return strings.ReplaceAll(version, "+", "-")
}

// LatestSemverTag returns the highest valid semver tag from the given list,
// ignoring any tag that does not parse as semver. Returns "" if none parse.
func LatestSemverTag(tags []string) string {
	var best *semver.Version
	var bestTag string

	for _, t := range tags {
		v, err := semver.NewVersion(t)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestTag = t
		}
	}

	return bestTag
}

// SortSemverTagsDescending returns a copy of tags, sorted from highest to
// lowest semver version. Tags that do not parse as semver are sorted last,
// in their original relative order.
func SortSemverTagsDescending(tags []string) []string {
	sorted := make([]string, len(tags))
	copy(sorted, tags)

	sort.SliceStable(sorted, func(i, j int) bool {
		vi, erri := semver.NewVersion(sorted[i])
		vj, errj := semver.NewVersion(sorted[j])
		if erri != nil || errj != nil {
			return erri == nil // parseable tags sort before unparseable ones
		}
		return vi.GreaterThan(vj)
	})

	return sorted
}
