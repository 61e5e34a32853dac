// Package model holds the data types shared across the replication and
// webhook-dispatch engine: component identities and descriptors, pipeline
// definitions, webhook events, and the result types each pipeline stage
// produces.
package model

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ComponentIdentity uniquely identifies a released component by name and
// semver version. Both fields are required; a zero-value ComponentIdentity
// is never meaningful on its own.
type ComponentIdentity struct {
	Name    string
	Version string
}

// Validate reports whether both Name and Version are populated.
func (id ComponentIdentity) Validate() error {
	if id.Name == "" {
		return fmt.Errorf("component identity: name is required")
	}
	if id.Version == "" {
		return fmt.Errorf("component identity: version is required")
	}
	return nil
}

func (id ComponentIdentity) String() string {
	return id.Name + ":" + id.Version
}

// SemverVersion parses Version as a semantic version. Used when comparing
// two identities of the same component to detect upgrades.
func (id ComponentIdentity) SemverVersion() (*semver.Version, error) {
	return semver.NewVersion(id.Version)
}

// RepositoryContext is a typed reference to an OCI-based component
// repository. An identity plus a context uniquely locates a
// ComponentDescriptor blob in a registry.
type RepositoryContext struct {
	Type    string // e.g. "OCIRegistry"
	BaseURL string
}

func (rc RepositoryContext) String() string {
	return rc.BaseURL
}
