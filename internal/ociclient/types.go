// Package ociclient is a thin ORAS-based client for talking to OCI
// registries that host component-descriptor artifacts. It provides the
// registry transport (auth, manifest/blob fetch and push, tag listing)
// that both the component-descriptor lookup composite (internal/componentdescriptor)
// and the OCI replication engine (internal/ocireplicator) build on.
package ociclient

import "time"

// ManifestInfo holds OCI-level metadata returned by operations that
// resolve a reference against the registry (Resolve, FetchManifest).
type ManifestInfo struct {
	Ref       string // fully-qualified OCI reference (includes tag or digest)
	Tag       string // resolved OCI tag, empty if the reference used a digest
	Digest    string // manifest digest
	MediaType string // manifest media type, as reported by the registry
}

// FetchedManifest is the result of fetching and parsing a manifest blob.
type FetchedManifest struct {
	ManifestInfo
	Raw []byte // raw manifest bytes, exactly as received (used to preserve byte-for-byte verbatim replication)
}

// ListEntry holds metadata for a component version discovered by
// ListComponentVersions: the repository catalog entry plus its resolved
// semver tag, without any blob fetch.
type ListEntry struct {
	Name       string // component name
	Version    string // semver tag
	Repository string // full OCI repository path
	Reference  string // full OCI reference with tag
}

// PushResult holds the outcome of a manifest push.
type PushResult struct {
	Digest string
	Ref    string
}

// BlobCacheEntry records metadata about a blob or manifest persisted to the
// on-disk cache, so that subsequent lookups can validate a hit without
// re-fetching from the registry.
type BlobCacheEntry struct {
	Digest     string    `json:"digest"`
	Ref        string    `json:"ref"`
	FetchedAt  time.Time `json:"fetchedAt"`
	MediaType  string    `json:"mediaType,omitempty"`
	SourceRepo string    `json:"sourceRepo,omitempty"`
}
