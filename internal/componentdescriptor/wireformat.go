package componentdescriptor

import (
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// wireDescriptor is the YAML-on-the-wire shape of a component descriptor
// layer, following OCM's componentDescriptor.component schema. It exists
// separately from model.ComponentDescriptor so the in-process model stays
// free of yaml struct tags and wire-only fields (e.g. the nested
// "component" envelope OCM uses).
type wireDescriptor struct {
	Component struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`

		RepositoryContexts []struct {
			Type    string `yaml:"type"`
			BaseURL string `yaml:"baseUrl"`
		} `yaml:"repositoryContexts"`

		Resources []struct {
			Name    string `yaml:"name"`
			Version string `yaml:"version"`
			Type    string `yaml:"type"`
			Access  struct {
				Type           string `yaml:"type"`
				ImageReference string `yaml:"imageReference"`
			} `yaml:"access"`
		} `yaml:"resources"`

		Sources []struct {
			Name       string `yaml:"name"`
			Type       string `yaml:"type"`
			RepoURL    string `yaml:"repoUrl"`
			Committish string `yaml:"committish"`
		} `yaml:"sources"`

		ComponentReferences []struct {
			Name    string `yaml:"name"`
			Name2   string `yaml:"componentName"`
			Version string `yaml:"version"`
		} `yaml:"componentReferences"`
	} `yaml:"component"`
}

// decodeWireDescriptor parses a YAML component-descriptor layer into the
// in-process model type.
func decodeWireDescriptor(raw []byte) (*model.ComponentDescriptor, error) {
	var w wireDescriptor
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	d := &model.ComponentDescriptor{
		Identity: model.ComponentIdentity{Name: w.Component.Name, Version: w.Component.Version},
	}

	for _, rc := range w.Component.RepositoryContexts {
		d.RepositoryContexts = append(d.RepositoryContexts, model.RepositoryContext{Type: rc.Type, BaseURL: rc.BaseURL})
	}

	for _, r := range w.Component.Resources {
		d.Resources = append(d.Resources, model.Resource{
			Name:    r.Name,
			Version: r.Version,
			Type:    r.Type,
			Access:  model.ParseOciImageReference(r.Access.ImageReference),
		})
	}

	for _, s := range w.Component.Sources {
		d.Sources = append(d.Sources, model.Source{
			Name:       s.Name,
			Type:       s.Type,
			RepoURL:    s.RepoURL,
			Committish: s.Committish,
		})
	}

	for _, cr := range w.Component.ComponentReferences {
		name := cr.Name2
		if name == "" {
			name = cr.Name
		}
		d.ComponentReferences = append(d.ComponentReferences, model.ComponentReference{
			Name:     cr.Name,
			Identity: model.ComponentIdentity{Name: name, Version: cr.Version},
		})
	}

	return d, nil
}

// encodeWireDescriptor is the inverse of decodeWireDescriptor, used when
// writing a descriptor back out (e.g. from a remote-service response that
// needs re-caching, or when a test fixture builds its own layer bytes).
func encodeWireDescriptor(d model.ComponentDescriptor) ([]byte, error) {
	var w wireDescriptor
	w.Component.Name = d.Identity.Name
	w.Component.Version = d.Identity.Version

	for _, rc := range d.RepositoryContexts {
		w.Component.RepositoryContexts = append(w.Component.RepositoryContexts, struct {
			Type    string `yaml:"type"`
			BaseURL string `yaml:"baseUrl"`
		}{Type: rc.Type, BaseURL: rc.BaseURL})
	}

	for _, r := range d.Resources {
		entry := struct {
			Name    string `yaml:"name"`
			Version string `yaml:"version"`
			Type    string `yaml:"type"`
			Access  struct {
				Type           string `yaml:"type"`
				ImageReference string `yaml:"imageReference"`
			} `yaml:"access"`
		}{Name: r.Name, Version: r.Version, Type: r.Type}
		entry.Access.Type = "ociArtifact"
		entry.Access.ImageReference = r.Access.String()
		w.Component.Resources = append(w.Component.Resources, entry)
	}

	for _, s := range d.Sources {
		w.Component.Sources = append(w.Component.Sources, struct {
			Name       string `yaml:"name"`
			Type       string `yaml:"type"`
			RepoURL    string `yaml:"repoUrl"`
			Committish string `yaml:"committish"`
		}{Name: s.Name, Type: s.Type, RepoURL: s.RepoURL, Committish: s.Committish})
	}

	for _, cr := range d.ComponentReferences {
		w.Component.ComponentReferences = append(w.Component.ComponentReferences, struct {
			Name    string `yaml:"name"`
			Name2   string `yaml:"componentName"`
			Version string `yaml:"version"`
		}{Name: cr.Name, Name2: cr.Identity.Name, Version: cr.Identity.Version})
	}

	return yaml.Marshal(w)
}
