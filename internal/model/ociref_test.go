package model

import "testing"

func TestOciImageReference_Tagged(t *testing.T) {
	r := ParseOciImageReference("ghcr.io/acme/app:v1.0.0")
	if !r.HasTag() {
		t.Error("expected HasTag")
	}
	if r.HasDigest() {
		t.Error("expected no digest")
	}
	if r.Tag() != "v1.0.0" {
		t.Errorf("Tag() = %q", r.Tag())
	}
	if r.RefWithoutTag() != "ghcr.io/acme/app" {
		t.Errorf("RefWithoutTag() = %q", r.RefWithoutTag())
	}
}

func TestOciImageReference_Digest(t *testing.T) {
	r := ParseOciImageReference("ghcr.io/acme/app@sha256:abcdef0123456789")
	if r.HasTag() {
		t.Error("expected no tag")
	}
	if !r.HasDigest() {
		t.Error("expected HasDigest")
	}
	if r.Digest() != "sha256:abcdef0123456789" {
		t.Errorf("Digest() = %q", r.Digest())
	}
	if r.RefWithoutTag() != "ghcr.io/acme/app" {
		t.Errorf("RefWithoutTag() = %q", r.RefWithoutTag())
	}
}

func TestOciImageReference_PortInHostNotMistakenForTag(t *testing.T) {
	r := ParseOciImageReference("localhost:5000/acme/app")
	if r.HasTag() {
		t.Error("expected no tag when colon belongs to host port")
	}
	if r.RefWithoutTag() != "localhost:5000/acme/app" {
		t.Errorf("RefWithoutTag() = %q", r.RefWithoutTag())
	}
}

func TestOciImageReference_Untagged(t *testing.T) {
	r := ParseOciImageReference("ghcr.io/acme/app")
	if r.HasTag() || r.HasDigest() {
		t.Error("expected neither tag nor digest")
	}
}
