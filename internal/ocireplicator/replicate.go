package ocireplicator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	godigest "github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/giantswarm/pipeline-replicator/internal/model"
	"github.com/giantswarm/pipeline-replicator/internal/ociclient"
)

// contentOutcome is the internal result of replicating one manifest or
// index, before the caller decides what tag (if any) to publish it under.
type contentOutcome struct {
	raw       []byte
	mediaType string
	digest    godigest.Digest
	dirty     bool
	platform  *ocispec.Platform // only populated for single-image manifests
}

// Replicate copies the OCI artifact at src to tgt, performing schema
// conversion, multi-arch recursion, and blob transfer as needed (spec §4.2).
// It never mutates data beyond what mode/platformFilter/annotations require.
func Replicate(ctx context.Context, client *ociclient.Client, src, tgt string, opts Options) (*Result, error) {
	srcImg := model.ParseOciImageReference(src)
	tgtImg := model.ParseOciImageReference(tgt)
	srcRepo := srcImg.RefWithoutTag()
	tgtRepo := tgtImg.RefWithoutTag()

	fm, err := client.FetchManifestRaw(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetching source manifest %s: %w", src, err)
	}

	outcome, err := replicateContent(ctx, client, srcRepo, tgtRepo, fm.Raw, fm.MediaType, opts, true)
	if err != nil {
		return nil, fmt.Errorf("replicating %s: %w", src, err)
	}

	if opts.Mode == NormaliseToMultiarch && !ociclient.IsIndexMediaType(outcome.mediaType) {
		outcome, err = wrapSingleImageAsIndex(ctx, client, tgtRepo, outcome)
		if err != nil {
			return nil, fmt.Errorf("normalising %s to multiarch: %w", src, err)
		}
	}

	finalTag := tgtImg.Tag()
	if finalTag == "" {
		// Untagged target: the rewritten reference is pinned to the
		// content digest instead (spec §4.2 tag-rewrite rule).
		finalTag = digestTag(outcome.digest)
	}

	pushed, err := client.PushManifest(ctx, tgtRepo, finalTag, outcome.mediaType, outcome.raw)
	if err != nil {
		return nil, fmt.Errorf("pushing final manifest for %s: %w", tgt, err)
	}

	finalRef := pushed.Ref
	if tgtImg.Tag() == "" {
		finalRef = tgtRepo + "@" + outcome.digest.String()
	}

	return &Result{
		StatusCode:     http.StatusCreated,
		FinalTargetRef: finalRef,
		ManifestBytes:  outcome.raw,
		ManifestDirty:  outcome.dirty,
	}, nil
}

// replicateContent dispatches on schema version and media type: schema-1
// manifests are converted in memory, indexes/manifest-lists recurse per
// sub-manifest, and everything else is replicated as a single image
// manifest. derivePlatform requests that the returned outcome's Platform be
// populated from the image config, needed only by the top-level call when
// NORMALISE_TO_MULTIARCH may have to wrap the result.
func replicateContent(ctx context.Context, client *ociclient.Client, srcRepo, tgtRepo string, raw []byte, mediaType string, opts Options, derivePlatform bool) (*contentOutcome, error) {
	schemaVersion, err := detectSchemaVersion(raw)
	if err != nil {
		return nil, err
	}

	switch {
	case schemaVersion == 1:
		converted, err := convertSchema1ToV2(raw)
		if err != nil {
			return nil, err
		}
		return replicateSingle(ctx, client, srcRepo, tgtRepo, converted, opts, derivePlatform)

	case ociclient.IsIndexMediaType(mediaType):
		return replicateIndex(ctx, client, srcRepo, tgtRepo, raw, mediaType, opts)

	default:
		var manifest ocispec.Manifest
		if err := json.Unmarshal(raw, &manifest); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
		if manifest.MediaType == "" {
			manifest.MediaType = mediaType
		}
		return replicateSingle(ctx, client, srcRepo, tgtRepo, &convertedV1{manifest: manifest}, opts, derivePlatform)
	}
}

// replicateSingle copies a single-platform image manifest: its config blob
// (or a synthesised one, when src carries none) and every layer, then
// patches annotations and pushes the result under a content-addressed tag
// so it is immediately resolvable as a sub-manifest reference.
func replicateSingle(ctx context.Context, client *ociclient.Client, srcRepo, tgtRepo string, converted *convertedV1, opts Options, derivePlatform bool) (*contentOutcome, error) {
	manifest := converted.manifest
	needSynth := converted.v1CompatibilityJSON != ""

	origRaw, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshalling source manifest: %w", err)
	}
	origDigest := godigest.FromBytes(origRaw)

	var configContent []byte
	var configDesc ocispec.Descriptor

	if needSynth {
		var diffIDs []godigest.Digest
		for i, layer := range manifest.Layers {
			result, err := copyBlob(ctx, client, srcRepo, tgtRepo, layer, true, false)
			if err != nil {
				return nil, err
			}
			manifest.Layers[i] = result.descriptor
			diffIDs = append(diffIDs, result.diffID)
		}

		configContent, err = synthesizeConfigBlob(converted.v1CompatibilityJSON, diffIDs)
		if err != nil {
			return nil, err
		}
		configDesc = ocispec.Descriptor{
			MediaType: "application/vnd.docker.container.image.v1+json",
			Digest:    godigest.FromBytes(configContent),
			Size:      int64(len(configContent)),
		}
		if err := client.PushBlob(ctx, tgtRepo, configDesc, configContent); err != nil {
			return nil, fmt.Errorf("pushing synthesised config blob: %w", err)
		}
	} else {
		for i, layer := range manifest.Layers {
			result, err := copyBlob(ctx, client, srcRepo, tgtRepo, layer, false, false)
			if err != nil {
				return nil, err
			}
			manifest.Layers[i] = result.descriptor
		}

		configResult, err := copyBlob(ctx, client, srcRepo, tgtRepo, manifest.Config, false, derivePlatform)
		if err != nil {
			return nil, err
		}
		configDesc = configResult.descriptor
		configContent = configResult.content
	}

	manifest.Config = configDesc
	manifest.Annotations = ociclient.MergeAnnotations(manifest.Annotations, opts.Annotations)

	newRaw, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshalling replicated manifest: %w", err)
	}
	newDigest := godigest.FromBytes(newRaw)

	if _, err := client.PushManifest(ctx, tgtRepo, digestTag(newDigest), manifest.MediaType, newRaw); err != nil {
		return nil, fmt.Errorf("pushing replicated manifest: %w", err)
	}

	outcome := &contentOutcome{
		raw:       newRaw,
		mediaType: manifest.MediaType,
		digest:    newDigest,
		dirty:     needSynth || newDigest != origDigest,
	}

	if derivePlatform && configContent != nil {
		platform, err := platformFromConfig(configContent)
		if err != nil {
			return nil, err
		}
		outcome.platform = platform
	}

	return outcome, nil
}

// replicateIndex recurses into a multi-arch index/manifest-list, replicating
// every sub-manifest that survives opts.PlatformFilter and rebuilding the
// index around the (possibly changed) results (spec §4.2 point 3).
func replicateIndex(ctx context.Context, client *ociclient.Client, srcRepo, tgtRepo string, raw []byte, mediaType string, opts Options) (*contentOutcome, error) {
	var index ocispec.Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}

	dirty := false
	newManifests := make([]ocispec.Descriptor, 0, len(index.Manifests))

	for _, sub := range index.Manifests {
		if !platformMatches(opts.PlatformFilter, sub.Platform) {
			dirty = true
			continue
		}

		subRef := fmt.Sprintf("%s@%s", srcRepo, sub.Digest.String())
		subFM, err := client.FetchManifestRaw(ctx, subRef)
		if err != nil {
			return nil, fmt.Errorf("fetching sub-manifest %s: %w", sub.Digest, err)
		}

		subOutcome, err := replicateContent(ctx, client, srcRepo, tgtRepo, subFM.Raw, subFM.MediaType, Options{Mode: opts.Mode, Annotations: opts.Annotations}, false)
		if err != nil {
			return nil, fmt.Errorf("replicating sub-manifest %s: %w", sub.Digest, err)
		}

		newDesc := sub
		newDesc.MediaType = subOutcome.mediaType
		newDesc.Digest = subOutcome.digest
		newDesc.Size = int64(len(subOutcome.raw))
		if newDesc.Digest != sub.Digest || newDesc.MediaType != sub.MediaType {
			dirty = true
		}

		newManifests = append(newManifests, newDesc)
	}

	index.Manifests = newManifests
	if index.MediaType == "" {
		index.MediaType = mediaType
	}
	if index.SchemaVersion == 0 {
		index.Versioned = specs.Versioned{SchemaVersion: 2}
	}

	newRaw, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("marshalling index: %w", err)
	}
	newDigest := godigest.FromBytes(newRaw)
	if !dirty && newDigest != godigest.FromBytes(raw) {
		dirty = true
	}

	if _, err := client.PushManifest(ctx, tgtRepo, digestTag(newDigest), index.MediaType, newRaw); err != nil {
		return nil, fmt.Errorf("pushing replicated index: %w", err)
	}

	return &contentOutcome{
		raw:       newRaw,
		mediaType: index.MediaType,
		digest:    newDigest,
		dirty:     dirty,
	}, nil
}

// wrapSingleImageAsIndex builds a one-entry manifest list around an already
// replicated single-image manifest, deriving the entry's platform from the
// image config (spec §4.2 NORMALISE_TO_MULTIARCH).
func wrapSingleImageAsIndex(ctx context.Context, client *ociclient.Client, tgtRepo string, outcome *contentOutcome) (*contentOutcome, error) {
	if outcome.platform == nil {
		return nil, fmt.Errorf("cannot normalise to multiarch: no platform available for the source image")
	}

	index := ocispec.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageIndex,
		Manifests: []ocispec.Descriptor{
			{
				MediaType: outcome.mediaType,
				Digest:    outcome.digest,
				Size:      int64(len(outcome.raw)),
				Platform:  outcome.platform,
			},
		},
	}

	raw, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("marshalling synthesised index: %w", err)
	}
	digest := godigest.FromBytes(raw)

	if _, err := client.PushManifest(ctx, tgtRepo, digestTag(digest), index.MediaType, raw); err != nil {
		return nil, fmt.Errorf("pushing synthesised index: %w", err)
	}

	return &contentOutcome{
		raw:       raw,
		mediaType: index.MediaType,
		digest:    digest,
		dirty:     true,
		platform:  outcome.platform,
	}, nil
}

// detectSchemaVersion reads just the schemaVersion field, defaulting to 2
// when absent (legacy schema-1 manifests sometimes omit it, but our source
// registries always set it; the default favours the common case).
func detectSchemaVersion(raw []byte) (int, error) {
	var v struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("parsing schemaVersion: %w", err)
	}
	if v.SchemaVersion == 0 {
		return 2, nil
	}
	return v.SchemaVersion, nil
}

// digestTag turns a content digest into a valid OCI tag, since tags cannot
// contain the ':' a digest string uses to separate algorithm from hex.
func digestTag(d godigest.Digest) string {
	return strings.ReplaceAll(d.String(), ":", "-")
}
