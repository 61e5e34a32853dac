package ociclient

import (
	"context"
	"testing"

	godigest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestPushBlob_RejectsDigestMismatch(t *testing.T) {
	c := NewClient()
	data := []byte("hello")
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    godigest.FromBytes([]byte("different content")),
		Size:      int64(len(data)),
	}

	err := c.PushBlob(context.Background(), "registry.example.com/repo", desc, data)
	if err == nil {
		t.Fatal("expected digest mismatch error")
	}
}
