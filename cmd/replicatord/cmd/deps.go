package cmd

import (
	"errors"

	"github.com/giantswarm/pipeline-replicator/internal/ciclient"
	"github.com/giantswarm/pipeline-replicator/internal/componentdescriptor"
	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/replication"
	"github.com/giantswarm/pipeline-replicator/internal/templateengine"
)

// Dependencies collects the three transports this module deliberately
// keeps as narrow contracts (spec's Non-goals: "YAML template engine,
// GitHub REST client, CI backend REST client... remain narrow external
// contracts, not full implementations") plus the definition enumerators
// that walk configured repositories for .ci/pipeline_definitions.
// RemoteServiceClient is similarly out of scope per spec §1 ("remote
// delivery service" layer) and may be left nil: the component-descriptor
// lookup composite then simply skips that layer.
type Dependencies struct {
	CIResolver          ciclient.Resolver
	GitHub              githubclient.Client
	TemplateEngine      templateengine.Engine
	Enumerators         []replication.Enumerator
	RemoteServiceClient componentdescriptor.RemoteServiceClient
}

// NewDependencies builds the transports a running replicatord needs from
// cfg. The default implementation always fails: this repo ships the
// orchestration, rendering, deployment, and webhook logic against these
// interfaces, but never a concrete REST client for either backend, by
// design. A real deployment links in its own CI backend and GitHub
// transport packages and reassigns this variable from its own main,
// before calling cmd.Execute — the same "bring your own driver" shape as
// database/sql.Register, applied to HTTP transports instead of drivers.
var NewDependencies = func(cfg *config.Config) (*Dependencies, error) {
	return nil, errors.New("replicatord: no CI backend / GitHub / template-engine transport linked in; " +
		"set cmd.NewDependencies before calling Execute")
}
