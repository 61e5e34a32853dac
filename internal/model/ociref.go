package model

import "strings"

// OciImageReference is a parsed OCI reference, split into its repository
// and tag/digest portions. Invariant: a reference has at most one of a
// symbolic tag or a digest tag; when both forms are available the digest
// is canonical.
type OciImageReference struct {
	raw string
}

// ParseOciImageReference parses a raw OCI reference string such as
// "ghcr.io/acme/app:v1.0.0" or "ghcr.io/acme/app@sha256:abcd...".
func ParseOciImageReference(raw string) OciImageReference {
	return OciImageReference{raw: raw}
}

func (r OciImageReference) String() string { return r.raw }

// RefWithoutTag returns the repository portion, with any tag or digest
// suffix stripped.
func (r OciImageReference) RefWithoutTag() string {
	if idx := strings.LastIndex(r.raw, "@"); idx >= 0 {
		return r.raw[:idx]
	}
	if idx := strings.LastIndex(r.raw, ":"); idx >= 0 {
		// Guard against a port number in the host, e.g. "host:5000/repo".
		if strings.Contains(r.raw[idx:], "/") {
			return r.raw
		}
		return r.raw[:idx]
	}
	return r.raw
}

// HasDigest reports whether the reference is pinned to a content digest.
func (r OciImageReference) HasDigest() bool {
	return strings.Contains(r.raw, "@sha256:") || strings.Contains(r.raw, "@sha512:")
}

// HasTag reports whether the reference carries a symbolic tag (and no
// digest; per the invariant at most one form is present).
func (r OciImageReference) HasTag() bool {
	if r.HasDigest() {
		return false
	}
	return r.RefWithoutTag() != r.raw
}

// Tag returns the symbolic tag, or "" if the reference has none (e.g. it
// is digest-pinned or untagged).
func (r OciImageReference) Tag() string {
	if !r.HasTag() {
		return ""
	}
	return r.raw[len(r.RefWithoutTag())+1:]
}

// Digest returns the digest portion (including algorithm prefix), or ""
// if the reference is not digest-pinned.
func (r OciImageReference) Digest() string {
	idx := strings.LastIndex(r.raw, "@")
	if idx < 0 {
		return ""
	}
	return r.raw[idx+1:]
}
