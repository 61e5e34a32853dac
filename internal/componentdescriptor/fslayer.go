package componentdescriptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// FSLayer is the filesystem tier of the lookup composite. Its path layout
// follows spec §4.1 verbatim:
//
//	<cache_dir>/<slash-to-dash(oci_ref)>/<name>-<version>
//
// Writes go to a temp file in the cache dir, then are atomically renamed
// into place.
type FSLayer struct {
	cacheDir string
}

// NewFSLayer builds an FSLayer rooted at cacheDir.
func NewFSLayer(cacheDir string) *FSLayer {
	return &FSLayer{cacheDir: cacheDir}
}

func (f *FSLayer) Name() string { return "filesystem" }

// slashToDash mirrors spec §4.1's path construction rule.
func slashToDash(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}

func (f *FSLayer) pathFor(repoCtx *model.RepositoryContext, identity model.ComponentIdentity) (string, error) {
	if repoCtx == nil {
		return "", fmt.Errorf("filesystem layer requires a repository context to build a cache path")
	}
	dir := filepath.Join(f.cacheDir, slashToDash(repoCtx.BaseURL))
	return filepath.Join(dir, fmt.Sprintf("%s-%s", identity.Name, identity.Version)), nil
}

func (f *FSLayer) Get(_ context.Context, identity model.ComponentIdentity, repoCtx *model.RepositoryContext) (*model.ComponentDescriptor, model.WriteBack, error) {
	path, err := f.pathFor(repoCtx, identity)
	if err != nil {
		// No usable cache key: treat as a miss rather than a hard
		// failure so the composite proceeds to the next layer.
		return nil, nil, ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, f.writeBack(repoCtx), ErrNotFound
		}
		return nil, nil, fmt.Errorf("reading filesystem cache entry %s: %w", path, err)
	}

	var d model.ComponentDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, nil, fmt.Errorf("parsing filesystem cache entry %s: %w", path, err)
	}

	return &d, nil, nil
}

func (f *FSLayer) writeBack(repoCtx *model.RepositoryContext) model.WriteBack {
	return func(identity model.ComponentIdentity, descriptor model.ComponentDescriptor) error {
		path, err := f.pathFor(repoCtx, identity)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}

		data, err := json.Marshal(descriptor)
		if err != nil {
			return fmt.Errorf("marshaling cache entry: %w", err)
		}

		tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
		if err != nil {
			return err
		}
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		return os.Rename(tmp.Name(), path)
	}
}
