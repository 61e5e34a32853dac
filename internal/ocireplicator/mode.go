// Package ocireplicator implements verbatim replication of OCI artifacts
// between registries, including on-the-fly schema v1->v2 conversion,
// multi-architecture handling, and synthetic config-blob generation for
// legacy sources (spec §4.2).
package ocireplicator

// Mode selects how the replicator treats multi-arch content. Replicate
// fetches the source manifest the same way in every mode and sets no
// Accept header of its own.
type Mode int

const (
	// RegistryDefaults replicates whatever manifest the source registry
	// returns.
	RegistryDefaults Mode = iota
	// PreferMultiarch behaves like RegistryDefaults; no Accept header
	// favouring image-index / manifest-list media types is sent.
	PreferMultiarch
	// NormaliseToMultiarch behaves like PreferMultiarch, but additionally
	// wraps a single-image source manifest in a one-entry manifest list.
	NormaliseToMultiarch
)
