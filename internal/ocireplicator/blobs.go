package ocireplicator

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"

	godigest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/giantswarm/pipeline-replicator/internal/ociclient"
)

// blobResult reports what actually ended up at the target for one blob: the
// descriptor as pushed (size filled in when the source never supplied one,
// as with schema-1 layers) and, when requested, the uncompressed diff_id.
type blobResult struct {
	descriptor ocispec.Descriptor
	diffID     godigest.Digest
	content    []byte // only populated when keepContent was requested
}

// copyBlob streams one blob from src to tgt, skipping the transfer when the
// target already has it and the caller has no further use for its content
// (spec §4.2 "Blob loop"). needDiffID forces a fetch-and-decompress even on
// a cache hit, since the uncompressed hash can only be computed by reading
// the content; keepContent additionally retains the fetched bytes in the
// result, for callers that need to inspect the blob (e.g. deriving a
// platform from an image config).
func copyBlob(ctx context.Context, client *ociclient.Client, srcRepo, tgtRepo string, desc ocispec.Descriptor, needDiffID, keepContent bool) (*blobResult, error) {
	exists, err := client.BlobExists(ctx, tgtRepo, desc)
	if err != nil {
		return nil, fmt.Errorf("checking blob %s at target: %w", desc.Digest, err)
	}
	if exists && !needDiffID && !keepContent {
		return &blobResult{descriptor: desc}, nil
	}

	rc, err := client.FetchBlob(ctx, srcRepo, desc)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s from source: %w", desc.Digest, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", desc.Digest, err)
	}

	actual := desc
	actual.Size = int64(len(data))
	if actual.Digest == "" {
		actual.Digest = godigest.FromBytes(data)
	}

	result := &blobResult{descriptor: actual}
	if keepContent {
		result.content = data
	}

	if needDiffID {
		diffID, err := diffIDFromGzip(data)
		if err != nil {
			return nil, fmt.Errorf("computing diff_id for blob %s: %w", desc.Digest, err)
		}
		result.diffID = diffID
	}

	if !exists {
		if err := client.PushBlob(ctx, tgtRepo, actual, data); err != nil {
			return nil, fmt.Errorf("pushing blob %s to target: %w", desc.Digest, err)
		}
	}

	return result, nil
}

// diffIDFromGzip decompresses a gzip-compressed layer and hashes the
// uncompressed byte stream, producing the diff_id schema-1 sources never
// recorded directly (spec §4.2 "Blob loop").
func diffIDFromGzip(compressed []byte) (godigest.Digest, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	digester := godigest.Canonical.Digester()
	if _, err := io.Copy(digester.Hash(), gz); err != nil {
		return "", fmt.Errorf("decompressing layer: %w", err)
	}

	return digester.Digest(), nil
}
