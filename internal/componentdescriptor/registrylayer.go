package componentdescriptor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/giantswarm/pipeline-replicator/internal/model"
	"github.com/giantswarm/pipeline-replicator/internal/ociclient"
)

// registryConfigLayout is the config blob's expected shape in two-layer
// mode: it names which layer in the manifest carries the component
// descriptor (spec §4.1 "prefers a two-layer config+layer layout").
type registryConfigLayout struct {
	ComponentDescriptorLayerMediaType string `json:"componentDescriptorLayerMediaType"`
}

// RegistryLayer is the OCI-registry tier of the lookup composite: the
// layer of last resort, since it always holds the authoritative published
// descriptor.
type RegistryLayer struct {
	client       *ociclient.Client
	registryBase string
	log          *slog.Logger
}

// NewRegistryLayer builds a RegistryLayer querying registryBase
// ("host/org") for component-descriptor artifacts.
func NewRegistryLayer(client *ociclient.Client, registryBase string, log *slog.Logger) *RegistryLayer {
	if log == nil {
		log = slog.Default()
	}
	return &RegistryLayer{client: client, registryBase: registryBase, log: log}
}

func (r *RegistryLayer) Name() string { return "registry" }

func (r *RegistryLayer) Get(ctx context.Context, identity model.ComponentIdentity, repoCtx *model.RepositoryContext) (*model.ComponentDescriptor, model.WriteBack, error) {
	base := r.registryBase
	if repoCtx != nil && repoCtx.BaseURL != "" {
		base = repoCtx.BaseURL
	}

	repo := ociclient.ComponentRepositoryPath(base, identity.Name)
	ref := ociclient.ComponentReference(base, identity.Name, identity.Version)

	fm, err := r.client.FetchManifest(ctx, ref)
	if err != nil {
		// No way to distinguish "repository doesn't exist" from a
		// transient registry error without inspecting the ORAS error
		// further; treat any fetch failure here as a miss so other
		// registries in a repository-mapping list still get a chance.
		return nil, nil, ErrNotFound
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(fm.Raw, &manifest); err != nil {
		return nil, nil, fmt.Errorf("parsing manifest for %s: %w", ref, err)
	}

	layerDesc, err := r.selectDescriptorLayer(ctx, repo, manifest)
	if err != nil {
		return nil, nil, err
	}

	rc, err := r.client.FetchBlob(ctx, repo, layerDesc)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching descriptor layer for %s: %w", ref, err)
	}
	defer rc.Close()

	raw, err := readAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("reading descriptor layer for %s: %w", ref, err)
	}

	d, err := decodeWireDescriptor(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing component descriptor for %s: %w", ref, err)
	}
	d.RepositoryContexts = append(d.RepositoryContexts, model.RepositoryContext{Type: "OCIRegistry", BaseURL: base})

	return d, nil, nil
}

// selectDescriptorLayer implements spec §4.1's two-layer-with-fallback
// rule: read the config blob to learn which layer carries the descriptor;
// if the config cannot be parsed, fall back to "single layer" mode using
// the manifest's sole layer.
func (r *RegistryLayer) selectDescriptorLayer(ctx context.Context, repo string, manifest ocispec.Manifest) (ocispec.Descriptor, error) {
	configRC, err := r.client.FetchBlob(ctx, repo, manifest.Config)
	if err == nil {
		defer configRC.Close()
		configRaw, readErr := readAll(configRC)
		if readErr == nil {
			var layout registryConfigLayout
			if json.Unmarshal(configRaw, &layout) == nil && layout.ComponentDescriptorLayerMediaType != "" {
				for _, l := range manifest.Layers {
					if l.MediaType == layout.ComponentDescriptorLayerMediaType {
						return l, nil
					}
				}
			}
		}
	}

	if len(manifest.Layers) == 0 {
		return ocispec.Descriptor{}, fmt.Errorf("manifest has no layers")
	}
	if len(manifest.Layers) > 1 {
		r.log.Warn("component descriptor manifest has multiple layers but no usable config layout; using first layer",
			"mediaType", manifest.Layers[0].MediaType)
	} else if manifest.Layers[0].MediaType != ociclient.MediaTypeComponentDescriptorV2 {
		r.log.Warn("component descriptor layer has unexpected media type",
			"mediaType", manifest.Layers[0].MediaType, "expected", ociclient.MediaTypeComponentDescriptorV2)
	}

	return manifest.Layers[0], nil
}
