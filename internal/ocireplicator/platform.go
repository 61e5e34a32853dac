package ocireplicator

import (
	"encoding/json"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// platformFromConfig reads the os/architecture/variant fields every OCI and
// Docker image config carries at its top level, used to derive the platform
// descriptor for a synthesised manifest-list entry (spec §4.2
// NORMALISE_TO_MULTIARCH). Sub-manifests of an index are filtered by the
// platform recorded in their index entry, not by their config.
func platformFromConfig(configBytes []byte) (*ocispec.Platform, error) {
	var cfg struct {
		OS           string `json:"os"`
		Architecture string `json:"architecture"`
		Variant      string `json:"variant,omitempty"`
	}
	if err := json.Unmarshal(configBytes, &cfg); err != nil {
		return nil, fmt.Errorf("parsing image config for platform: %w", err)
	}
	if cfg.OS == "" || cfg.Architecture == "" {
		return nil, fmt.Errorf("image config is missing os/architecture")
	}

	return &ocispec.Platform{
		OS:           cfg.OS,
		Architecture: cfg.Architecture,
		Variant:      cfg.Variant,
	}, nil
}

// platformMatches reports whether a platform satisfies a filter, ignoring
// Variant when the filter leaves it blank so a filter of "linux/arm64" also
// matches "linux/arm64/v8".
func platformMatches(filter *ocispec.Platform, candidate *ocispec.Platform) bool {
	if filter == nil {
		return true
	}
	if candidate == nil {
		return false
	}
	if filter.OS != candidate.OS || filter.Architecture != candidate.Architecture {
		return false
	}
	if filter.Variant != "" && filter.Variant != candidate.Variant {
		return false
	}
	return true
}
