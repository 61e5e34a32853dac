package ocireplicator

import ocispec "github.com/opencontainers/image-spec/specs-go/v1"

// Options configures a single Replicate call.
type Options struct {
	Mode Mode

	// PlatformFilter, if non-nil, restricts replication of a multi-arch
	// index/manifest-list to the sub-manifests whose index entry matches
	// it: the target stays a list, holding only the matching entries.
	PlatformFilter *ocispec.Platform

	// Annotations are merged per the absent-or-differing rule (spec §4.2
	// "Annotations") onto every single-image manifest replicated: the
	// top-level manifest, or each sub-manifest of an index. An index
	// itself gets no merged annotations.
	Annotations map[string]string
}

// Result reports the outcome of a Replicate call.
type Result struct {
	// StatusCode is http.StatusCreated whenever the final manifest push
	// succeeds; the target registry's own response status is not passed
	// through.
	StatusCode int

	// FinalTargetRef is the fully-qualified reference the manifest ended
	// up tagged/pushed under in the target registry.
	FinalTargetRef string

	// ManifestBytes is the exact byte content pushed to the target.
	ManifestBytes []byte

	// ManifestDirty is true when the pushed bytes differ from the source
	// manifest's bytes — due to schema conversion, platform filtering,
	// sub-manifest digest changes, or annotation patching.
	ManifestDirty bool
}
