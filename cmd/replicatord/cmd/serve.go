package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/mailer"
	"github.com/giantswarm/pipeline-replicator/internal/pipeline/deploy"
	"github.com/giantswarm/pipeline-replicator/internal/pipeline/render"
	"github.com/giantswarm/pipeline-replicator/internal/replication"
	"github.com/giantswarm/pipeline-replicator/internal/webhook"
)

func newServeCommand() *cobra.Command {
	var webhookAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GitHub webhook listener that drives incremental replication",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(webhookAddr)
		},
	}

	cmd.Flags().StringVar(&webhookAddr, "listen-addr", "", "override the config file's webhookListenAddr")

	return cmd
}

func runServe(webhookAddrOverride string) error {
	log := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	listenAddr := cfg.WebhookListenAddr
	if webhookAddrOverride != "" {
		listenAddr = webhookAddrOverride
	}
	if listenAddr == "" {
		return fmt.Errorf("no webhook listen address configured: set webhookListenAddr or pass --listen-addr")
	}

	deps, err := NewDependencies(cfg)
	if err != nil {
		return fmt.Errorf("building transports: %w", err)
	}

	orch, err := buildOrchestrator(cfg, deps, log, false, false)
	if err != nil {
		return fmt.Errorf("building orchestrator: %w", err)
	}

	dispatcher := webhook.NewDispatcher(
		deps.GitHub,
		deps.CIResolver,
		cfg,
		&orchestratorReplicator{orch: orch},
		cfg.DefaultHostname,
		log,
	)

	mux := http.NewServeMux()
	mux.Handle("/webhook", dispatcher)

	log.Info("replicatord webhook listener starting", "addr", listenAddr)
	return http.ListenAndServe(listenAddr, mux)
}

// buildOrchestrator wires one Orchestrator covering every configured
// repository mapping. Per-team CI backend sharding (each RepositoryMapping
// names its own team and CI config) is left to the concrete Dependencies
// implementation: it can supply team-scoped Enumerators and, if it needs
// independently-reorderable pipeline groups, construct and route between
// several Orchestrators itself rather than relying on this default.
func buildOrchestrator(cfg *config.Config, deps *Dependencies, log *slog.Logger, cleanup, bootstrap bool) (*replication.Orchestrator, error) {
	renderer := render.NewRenderer(deps.TemplateEngine, cfg.TemplateIncludeDir, cfg.ToolingVersion)

	backendConfigName := ""
	teamName := ""
	unpauseNew, unpause, expose := false, false, false
	if len(cfg.CIBackends) > 0 {
		b := cfg.CIBackends[0]
		backendConfigName = b.Name
		teamName = b.Team
		unpauseNew = b.UnpauseNewPipelines
		unpause = b.UnpausePipelines
		expose = b.ExposePipelines
	}

	deployer := deploy.NewCIBackendDeployer(deps.CIResolver, deploy.Options{
		BackendConfigName:   backendConfigName,
		UnpauseNewPipelines: unpauseNew,
		UnpausePipelines:    unpause,
		ExposePipelines:     expose,
	}, log)

	var mail *mailer.Mailer
	if cfg.MailSMTPAddr != "" {
		mail = mailer.New(mailer.Config{Addr: cfg.MailSMTPAddr, From: cfg.MailFrom})
	}

	opts := replication.Options{
		WorkerPoolWidth:       cfg.WorkerPoolWidth,
		BackendConfigName:     backendConfigName,
		TeamName:              teamName,
		Cleanup:               replication.CleanupPolicy{Enabled: cleanup},
		BootstrapNewPipelines: bootstrap,
	}
	if len(cfg.CIBackends) > 0 && cfg.CIBackends[0].ReorderPipelines {
		opts.Reorder = true
	}

	return replication.NewOrchestrator(deps.Enumerators, renderer, deployer, nil, deps.CIResolver, deps.GitHub, mail, opts, log), nil
}
