package ocireplicator

import (
	"encoding/json"
	"fmt"

	godigest "github.com/opencontainers/go-digest"
)

// synthRootFS is the portion of an image config that schema-1 sources never
// had, and that must be fabricated once the layers' uncompressed digests
// (diff_ids) are known.
type synthRootFS struct {
	Type    string   `json:"type"`
	DiffIDs []string `json:"diff_ids"`
}

// synthesizeConfigBlob rebuilds an image config blob from a schema-1
// manifest's history[0].v1Compatibility JSON, replacing (or adding) its
// rootfs field with the computed diff_ids (spec §4.2 "If the config blob
// must be synthesised").
func synthesizeConfigBlob(v1CompatibilityJSON string, diffIDs []godigest.Digest) ([]byte, error) {
	var cfg map[string]json.RawMessage
	if err := json.Unmarshal([]byte(v1CompatibilityJSON), &cfg); err != nil {
		return nil, fmt.Errorf("parsing v1Compatibility: %w", err)
	}

	ids := make([]string, len(diffIDs))
	for i, d := range diffIDs {
		ids[i] = d.String()
	}

	rootfs, err := json.Marshal(synthRootFS{Type: "layers", DiffIDs: ids})
	if err != nil {
		return nil, err
	}
	cfg["rootfs"] = rootfs

	// container_config and throwaway ids from the intermediate history
	// entry are not part of a real image config; drop them rather than
	// carry them into the fabricated blob.
	delete(cfg, "container_config")
	delete(cfg, "id")
	delete(cfg, "parent")

	return json.Marshal(cfg)
}
