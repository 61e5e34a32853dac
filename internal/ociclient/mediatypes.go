package ociclient

import ocispec "github.com/opencontainers/image-spec/specs-go/v1"

// Media types used for component-descriptor OCI artifacts, following the
// OCM convention of a single config blob plus a single descriptor layer.
const (
	// MediaTypeComponentDescriptorConfig is the media type of the OCI
	// config blob for a component-descriptor artifact. It carries no
	// content of its own (empty JSON object), matching the OCI image-spec
	// convention for artifacts that store their payload entirely in layers.
	MediaTypeComponentDescriptorConfig = "application/vnd.ocm.software.component-descriptor.config.v1+json"

	// MediaTypeComponentDescriptorV2 is the media type of the layer
	// holding the YAML-encoded component descriptor, schema version 2.
	MediaTypeComponentDescriptorV2 = "application/vnd.ocm.software.component-descriptor.v2+yaml"
)

// Media types for plain OCI image manifests, used by the replication engine
// when copying arbitrary image artifacts between registries.
const (
	MediaTypeImageManifestV1 = "application/vnd.docker.distribution.manifest.v1+json"
	MediaTypeImageManifestV2 = ocispec.MediaTypeImageManifest
	MediaTypeImageIndex      = ocispec.MediaTypeImageIndex
	MediaTypeManifestListV2  = "application/vnd.docker.distribution.manifest.list.v2+json"
)

// IsIndexMediaType reports whether mediaType identifies a multi-architecture
// index/manifest-list, as opposed to a single-platform manifest.
func IsIndexMediaType(mediaType string) bool {
	return mediaType == MediaTypeImageIndex || mediaType == MediaTypeManifestListV2
}

// IsSchemaV1MediaType reports whether mediaType identifies a legacy Docker
// schema-1 manifest, which the replication engine must convert to schema 2
// before pushing to registries that reject schema 1 (spec §4.1).
func IsSchemaV1MediaType(mediaType string) bool {
	return mediaType == MediaTypeImageManifestV1
}
