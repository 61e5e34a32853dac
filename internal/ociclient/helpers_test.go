package ociclient

import "testing"

func TestShortName(t *testing.T) {
	got := ShortName("ghcr.io/acme/component-descriptors/github.com/acme/app")
	if got != "app" {
		t.Errorf("ShortName = %q, want %q", got, "app")
	}
}

func TestTruncateDigest(t *testing.T) {
	got := TruncateDigest("sha256:abcdef0123456789abcdef0123456789")
	if got != "sha256:abcdef012345" {
		t.Errorf("TruncateDigest = %q", got)
	}

	short := TruncateDigest("sha256:abc")
	if short != "sha256:abc" {
		t.Errorf("TruncateDigest(short) = %q, want unchanged", short)
	}
}
