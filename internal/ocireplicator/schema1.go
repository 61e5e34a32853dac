package ocireplicator

import (
	"encoding/json"
	"fmt"

	godigest "github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// schema1Manifest is the legacy Docker "signed manifest" format. fsLayers is
// ordered top-layer-first, the opposite of schema-2's base-first ordering.
type schema1Manifest struct {
	SchemaVersion int              `json:"schemaVersion"`
	Name          string           `json:"name"`
	Tag           string           `json:"tag"`
	Architecture  string           `json:"architecture"`
	FSLayers      []schema1FSLayer `json:"fsLayers"`
	History       []schema1History `json:"history"`
}

type schema1FSLayer struct {
	BlobSum string `json:"blobSum"`
}

type schema1History struct {
	V1Compatibility string `json:"v1Compatibility"`
}

// convertedV1 carries the outcome of converting a schema-1 manifest to a
// schema-2 shape: the manifest itself (with a placeholder config descriptor)
// plus the inputs needed to later synthesise and patch in the real config
// blob once layer diff_ids are known.
type convertedV1 struct {
	manifest         ocispec.Manifest
	v1CompatibilityJSON string
}

// convertSchema1ToV2 builds an in-memory schema-2 manifest from a schema-1
// source. The config descriptor is a placeholder: the source has no config
// blob at all, so one must be fabricated from history[0].v1Compatibility
// once the uncompressed layer digests (diff_ids) are known (spec §4.2 point 2).
func convertSchema1ToV2(raw []byte) (*convertedV1, error) {
	var v1 schema1Manifest
	if err := json.Unmarshal(raw, &v1); err != nil {
		return nil, fmt.Errorf("parsing schema-1 manifest: %w", err)
	}
	if len(v1.History) == 0 {
		return nil, fmt.Errorf("schema-1 manifest has no history entries to synthesise a config from")
	}

	layers := make([]ocispec.Descriptor, len(v1.FSLayers))
	for i, fs := range v1.FSLayers {
		d, err := godigest.Parse(fs.BlobSum)
		if err != nil {
			return nil, fmt.Errorf("parsing fsLayer digest %q: %w", fs.BlobSum, err)
		}
		// fsLayers is ordered top-first; schema-2 layers are base-first.
		layers[len(v1.FSLayers)-1-i] = ocispec.Descriptor{
			MediaType: "application/vnd.docker.image.rootfs.diff.tar.gzip",
			Digest:    d,
		}
	}

	return &convertedV1{
		manifest: ocispec.Manifest{
			Versioned: specs.Versioned{SchemaVersion: 2},
			MediaType: ocispec.MediaTypeImageManifest,
			Config: ocispec.Descriptor{
				MediaType: "application/vnd.docker.container.image.v1+json",
			},
			Layers: layers,
		},
		v1CompatibilityJSON: v1.History[0].V1Compatibility,
	}, nil
}
