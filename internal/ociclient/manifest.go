package ociclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/registry/remote"
)

// FetchManifest resolves ref, fetches its manifest, and returns the parsed
// manifest together with the raw bytes exactly as received. If the
// top-level object is a multi-architecture index/manifest-list, a
// platform-specific manifest for the client's configured OS/architecture
// is selected and fetched instead (spec §4.1 "multi-arch handling").
func (c *Client) FetchManifest(ctx context.Context, ref string) (*FetchedManifest, error) {
	repo, tag, err := c.newRepository(ref)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, fmt.Errorf("reference %q must include a tag or digest", ref)
	}

	desc, err := repo.Resolve(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}

	raw, mediaType, err := fetchAndResolveIndex(ctx, repo, desc, c.platformOS, c.platformArch)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest for %s: %w", ref, err)
	}

	return &FetchedManifest{
		ManifestInfo: ManifestInfo{
			Ref:       ref,
			Tag:       tag,
			Digest:    desc.Digest.String(),
			MediaType: mediaType,
		},
		Raw: raw,
	}, nil
}

// FetchManifestRaw resolves ref and returns the manifest or index exactly as
// served, performing no platform selection. The replication engine uses this
// instead of FetchManifest because it needs to see and recurse into indexes
// itself rather than have a single platform picked on its behalf.
func (c *Client) FetchManifestRaw(ctx context.Context, ref string) (*FetchedManifest, error) {
	repo, tag, err := c.newRepository(ref)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, fmt.Errorf("reference %q must include a tag or digest", ref)
	}

	desc, err := repo.Resolve(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}

	rc, err := repo.Fetch(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest for %s: %w", ref, err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("reading manifest for %s: %w", ref, err)
	}

	return &FetchedManifest{
		ManifestInfo: ManifestInfo{
			Ref:       ref,
			Tag:       tag,
			Digest:    desc.Digest.String(),
			MediaType: desc.MediaType,
		},
		Raw: raw,
	}, nil
}

// fetchAndResolveIndex fetches desc's content and, if it is a multi-arch
// index, resolves and fetches the platform-specific child manifest instead.
// It returns the raw bytes of whichever manifest was ultimately selected.
func fetchAndResolveIndex(ctx context.Context, repo *remote.Repository, desc ocispec.Descriptor, wantOS, wantArch string) ([]byte, string, error) {
	rc, err := repo.Fetch(ctx, desc)
	if err != nil {
		return nil, "", err
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, "", err
	}

	if !IsIndexMediaType(desc.MediaType) {
		return raw, desc.MediaType, nil
	}

	var index ocispec.Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, "", fmt.Errorf("parsing index: %w", err)
	}

	platformDesc, err := SelectPlatform(index.Manifests, wantOS, wantArch)
	if err != nil {
		return nil, "", err
	}

	platformRC, err := repo.Fetch(ctx, platformDesc)
	if err != nil {
		return nil, "", fmt.Errorf("fetching platform manifest: %w", err)
	}
	defer platformRC.Close()

	platformRaw, err := io.ReadAll(platformRC)
	if err != nil {
		return nil, "", err
	}

	return platformRaw, platformDesc.MediaType, nil
}

// SelectPlatform picks the descriptor matching wantOS/wantArch from a list
// of index entries, falling back to the first non-attestation manifest and
// finally to the first entry at all, so replication never fails outright on
// an index whose platform list omits the caller's runtime.
func SelectPlatform(manifests []ocispec.Descriptor, wantOS, wantArch string) (ocispec.Descriptor, error) {
	for _, m := range manifests {
		if m.Platform != nil && m.Platform.OS == wantOS && m.Platform.Architecture == wantArch {
			return m, nil
		}
	}

	for _, m := range manifests {
		if m.MediaType == ocispec.MediaTypeImageManifest || m.MediaType == "application/vnd.docker.distribution.manifest.v2+json" {
			return m, nil
		}
	}

	if len(manifests) > 0 {
		return manifests[0], nil
	}

	return ocispec.Descriptor{}, fmt.Errorf("no manifests in index")
}
