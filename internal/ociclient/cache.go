package ociclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache is a content-addressed, on-disk cache for manifest and blob
// bytes, keyed by their OCI digest. It is separate from the filesystem
// layer of the component-descriptor lookup composite
// (internal/componentdescriptor.FSLayer), which keeps its own files.
type FileCache struct {
	dir string
}

// NewFileCache returns a FileCache rooted at dir. The directory is created
// on first write, not at construction time.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// pathForDigest maps a digest ("sha256:abcd...") to its on-disk blob and
// metadata paths, sharding by the first two hex characters to keep any
// single directory from accumulating too many entries.
func (fc *FileCache) pathForDigest(digest string) (blobPath, metaPath string, err error) {
	alg, hex, ok := strings.Cut(digest, ":")
	if !ok || hex == "" {
		return "", "", fmt.Errorf("invalid digest %q", digest)
	}
	if len(hex) < 2 {
		return "", "", fmt.Errorf("invalid digest %q", digest)
	}

	base := filepath.Join(fc.dir, alg, hex[:2], hex)
	return base + ".blob", base + ".json", nil
}

// Get returns the cached blob bytes and metadata for digest, or
// (nil, nil, os.ErrNotExist) on a cache miss.
func (fc *FileCache) Get(digest string) ([]byte, *BlobCacheEntry, error) {
	blobPath, metaPath, err := fc.pathForDigest(digest)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(blobPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, os.ErrNotExist
		}
		return nil, nil, fmt.Errorf("reading cached blob %s: %w", digest, err)
	}

	metaRaw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading cache metadata for %s: %w", digest, err)
	}

	var entry BlobCacheEntry
	if err := json.Unmarshal(metaRaw, &entry); err != nil {
		return nil, nil, fmt.Errorf("parsing cache metadata for %s: %w", digest, err)
	}

	return data, &entry, nil
}

// Put writes data and its metadata to the cache under digest, atomically:
// each file is written to a temp path in the same directory and renamed
// into place, so a crash mid-write never leaves a corrupt cache entry
// visible to a concurrent reader.
func (fc *FileCache) Put(digest string, data []byte, entry BlobCacheEntry) error {
	blobPath, metaPath, err := fc.pathForDigest(digest)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(blobPath), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	entry.Digest = digest
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	metaRaw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache metadata: %w", err)
	}

	if err := writeFileAtomic(blobPath, data); err != nil {
		return fmt.Errorf("writing cached blob %s: %w", digest, err)
	}
	if err := writeFileAtomic(metaPath, metaRaw); err != nil {
		return fmt.Errorf("writing cache metadata for %s: %w", digest, err)
	}

	return nil
}

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by a rename, so concurrent readers never observe a
// partially written file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
