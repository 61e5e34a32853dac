package ociclient

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileCache_PutGet(t *testing.T) {
	fc := NewFileCache(t.TempDir())

	digest := "sha256:" + "a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1"
	data := []byte(`{"schemaVersion":2}`)

	if err := fc.Put(digest, data, BlobCacheEntry{Ref: "registry.example.com/repo:v1.0.0"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, entry, err := fc.Get(digest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("blob = %q, want %q", got, data)
	}
	if entry.Digest != digest {
		t.Errorf("entry.Digest = %q, want %q", entry.Digest, digest)
	}
	if entry.Ref != "registry.example.com/repo:v1.0.0" {
		t.Errorf("entry.Ref = %q", entry.Ref)
	}
	if entry.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestFileCache_Miss(t *testing.T) {
	fc := NewFileCache(t.TempDir())

	_, _, err := fc.Get("sha256:0000000000000000000000000000000000000000000000000000000000000000")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestFileCache_InvalidDigest(t *testing.T) {
	fc := NewFileCache(t.TempDir())

	if err := fc.Put("not-a-digest", nil, BlobCacheEntry{}); err == nil {
		t.Error("expected error for invalid digest")
	}
}

func TestFileCache_NoLeftoverTempFilesAfterPut(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache(dir)

	digest := "sha256:ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	if err := fc.Put(digest, []byte("data"), BlobCacheEntry{}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	blobPath, _, err := fc.pathForDigest(digest)
	if err != nil {
		t.Fatalf("pathForDigest: %v", err)
	}
	if _, err := os.Stat(blobPath); err != nil {
		t.Fatalf("expected blob file to exist: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(blobPath), "*.tmp-*"))
	if len(matches) != 0 {
		t.Errorf("expected no leftover temp files, found %v", matches)
	}
}
