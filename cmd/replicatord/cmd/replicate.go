package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newReplicateCommand() *cobra.Command {
	var (
		cleanup   bool
		bootstrap bool
	)

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Run one full replication cycle over every configured repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplicate(cleanup, bootstrap)
		},
	}

	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "remove pipelines no longer produced by any definition")
	cmd.Flags().BoolVar(&bootstrap, "bootstrap", false, "trigger an initial resource check on pipelines newly created this run")

	return cmd
}

func runReplicate(cleanup, bootstrap bool) error {
	log := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	deps, err := NewDependencies(cfg)
	if err != nil {
		return fmt.Errorf("building transports: %w", err)
	}

	orch, err := buildOrchestrator(cfg, deps, log, cleanup, bootstrap)
	if err != nil {
		return fmt.Errorf("building orchestrator: %w", err)
	}

	ctx := context.Background()
	allNotified, err := orch.Replicate(ctx)
	if err != nil {
		return fmt.Errorf("replication failed: %w", err)
	}
	if !allNotified {
		return fmt.Errorf("replication completed but one or more failure notifications could not be delivered")
	}

	log.Info("replication cycle complete")
	return nil
}
