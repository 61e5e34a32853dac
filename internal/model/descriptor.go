package model

// ComponentDescriptor is a manifest listing a component, its declared
// resources (artifacts), sources (git refs), and outbound component
// references to other components it depends on.
type ComponentDescriptor struct {
	Identity ComponentIdentity

	// RepositoryContexts records every repository context this descriptor
	// has been fetched from or copied into, oldest first, so that
	// replication can tell a freshly-minted descriptor from one that has
	// already been seen in a given registry.
	RepositoryContexts []RepositoryContext

	Resources           []Resource
	Sources             []Source
	ComponentReferences []ComponentReference
}

// CurrentRepositoryContext returns the most recently appended repository
// context, or the zero value if none has been recorded.
func (cd ComponentDescriptor) CurrentRepositoryContext() RepositoryContext {
	if len(cd.RepositoryContexts) == 0 {
		return RepositoryContext{}
	}
	return cd.RepositoryContexts[len(cd.RepositoryContexts)-1]
}

// Resource is an artifact declared by a component: a container image, a
// local blob, a helm chart, etc. Access is an OCI image reference when
// Type == "ociImage".
type Resource struct {
	Name    string
	Version string
	Type    string
	Access  OciImageReference
}

// Source is a git reference a component was built from.
type Source struct {
	Name      string
	Type      string
	RepoURL   string
	Committish string
}

// ComponentReference is an outbound edge to another component's identity,
// optionally pinned to a specific repository context. Traversing these
// edges recursively (with a cycle guard) is how the [SUPPLEMENT] Walk
// operation builds a full dependency graph.
type ComponentReference struct {
	Name     string
	Identity ComponentIdentity
	Context  *RepositoryContext // nil means: use the referencing descriptor's current context
}
