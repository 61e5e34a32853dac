package ociclient

import (
	"bytes"
	"context"
	"fmt"
	"io"

	godigest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// FetchBlob streams the blob identified by desc out of the named
// repository. Callers must Close the returned reader.
func (c *Client) FetchBlob(ctx context.Context, repository string, desc ocispec.Descriptor) (io.ReadCloser, error) {
	repo, err := c.newRepositoryFromName(repository)
	if err != nil {
		return nil, err
	}

	rc, err := repo.Fetch(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s from %s: %w", desc.Digest, repository, err)
	}
	return rc, nil
}

// BlobExists reports whether a blob with the given descriptor already
// exists in the destination repository, so the replication engine can skip
// re-pushing content that is already present (spec §4.1 "skip unchanged
// blobs").
func (c *Client) BlobExists(ctx context.Context, repository string, desc ocispec.Descriptor) (bool, error) {
	repo, err := c.newRepositoryFromName(repository)
	if err != nil {
		return false, err
	}

	_, err = repo.Blobs().Resolve(ctx, desc.Digest.String())
	if err != nil {
		return false, nil
	}
	return true, nil
}

// PushBlob uploads data to repository, verifying it against desc.Digest
// before performing the upload so a programming error never pushes
// mismatched content under the wrong digest.
func (c *Client) PushBlob(ctx context.Context, repository string, desc ocispec.Descriptor, data []byte) error {
	if computed := godigest.FromBytes(data); computed != desc.Digest {
		return fmt.Errorf("content digest %s does not match descriptor digest %s", computed, desc.Digest)
	}

	repo, err := c.newRepositoryFromName(repository)
	if err != nil {
		return err
	}

	exists, err := c.BlobExists(ctx, repository, desc)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := repo.Push(ctx, desc, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("pushing blob %s to %s: %w", desc.Digest, repository, err)
	}
	return nil
}

// PushManifest uploads manifest bytes to repository and tags it, returning
// the resulting manifest digest.
func (c *Client) PushManifest(ctx context.Context, repository, tag string, mediaType string, manifest []byte) (*PushResult, error) {
	repo, err := c.newRepositoryFromName(repository)
	if err != nil {
		return nil, err
	}

	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    godigest.FromBytes(manifest),
		Size:      int64(len(manifest)),
	}

	if err := repo.Push(ctx, desc, bytes.NewReader(manifest)); err != nil {
		return nil, fmt.Errorf("pushing manifest to %s: %w", repository, err)
	}

	if err := repo.Tag(ctx, desc, tag); err != nil {
		return nil, fmt.Errorf("tagging manifest as %s/%s: %w", repository, tag, err)
	}

	return &PushResult{Digest: desc.Digest.String(), Ref: repository + ":" + tag}, nil
}
