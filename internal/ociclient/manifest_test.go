package ociclient

import (
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestSelectPlatform_ExactMatch(t *testing.T) {
	manifests := []ocispec.Descriptor{
		{Digest: "sha256:1111111111111111111111111111111111111111111111111111111111111111", Platform: &ocispec.Platform{OS: "linux", Architecture: "arm64"}},
		{Digest: "sha256:2222222222222222222222222222222222222222222222222222222222222222", Platform: &ocispec.Platform{OS: "linux", Architecture: "amd64"}},
	}

	got, err := SelectPlatform(manifests, "linux", "amd64")
	if err != nil {
		t.Fatalf("SelectPlatform: %v", err)
	}
	if got.Digest.String() != manifests[1].Digest.String() {
		t.Errorf("selected %s, want %s", got.Digest, manifests[1].Digest)
	}
}

func TestSelectPlatform_FallsBackToFirstManifest(t *testing.T) {
	manifests := []ocispec.Descriptor{
		{Digest: "sha256:3333333333333333333333333333333333333333333333333333333333333333", MediaType: "application/vnd.in-toto+json"},
		{Digest: "sha256:4444444444444444444444444444444444444444444444444444444444444444", MediaType: ocispec.MediaTypeImageManifest},
	}

	got, err := SelectPlatform(manifests, "windows", "386")
	if err != nil {
		t.Fatalf("SelectPlatform: %v", err)
	}
	if got.Digest.String() != manifests[1].Digest.String() {
		t.Errorf("selected %s, want fallback manifest %s", got.Digest, manifests[1].Digest)
	}
}

func TestSelectPlatform_EmptyList(t *testing.T) {
	if _, err := SelectPlatform(nil, "linux", "amd64"); err == nil {
		t.Error("expected error for empty manifest list")
	}
}
