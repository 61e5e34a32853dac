package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/pipeline-replicator/internal/componentdescriptor"
	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/model"
	"github.com/giantswarm/pipeline-replicator/internal/ociclient"
	"github.com/giantswarm/pipeline-replicator/internal/ocireplicator"
)

func newSyncImagesCommand() *cobra.Command {
	var componentName, componentVersion string

	cmd := &cobra.Command{
		Use:   "sync-images",
		Short: "Walk a component descriptor's dependency graph and mirror every referenced OCI image",
		Long: `sync-images resolves the component descriptor named by --component/--version
through the lookup composite (memory -> filesystem -> remote service ->
OCI registry), walks its componentReferences, and replicates every
ociImage resource it finds from the first configured ociRegistries entry
to the second.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncImages(componentName, componentVersion)
		},
	}

	cmd.Flags().StringVar(&componentName, "component", "", "component name to start the walk from (required)")
	cmd.Flags().StringVar(&componentVersion, "version", "", "component version to start the walk from (required)")
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func runSyncImages(componentName, componentVersion string) error {
	log := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.OCIRegistries) < 2 {
		return fmt.Errorf("sync-images needs a source and a target entry in ociRegistries, got %d", len(cfg.OCIRegistries))
	}
	source, target := cfg.OCIRegistries[0], cfg.OCIRegistries[1]

	deps, err := NewDependencies(cfg)
	if err != nil {
		return fmt.Errorf("building transports: %w", err)
	}

	lookup, err := buildComponentLookup(cfg, deps, source, log)
	if err != nil {
		return fmt.Errorf("building component descriptor lookup: %w", err)
	}

	sourceClient := ociclient.NewClient(
		ociclient.WithPlainHTTP(source.PlainHTTP),
		ociclient.WithRegistryAuthEnv(source.CredentialsEnv),
	)

	ctx := context.Background()
	start := model.ComponentIdentity{Name: componentName, Version: componentVersion}

	replicated := 0
	err = componentdescriptor.Walk(ctx, lookup, start, nil, func(d *model.ComponentDescriptor) error {
		for _, res := range d.Resources {
			if res.Type != "ociImage" {
				continue
			}

			src := res.Access.String()
			tgt := retargetRef(src, source.BaseURL, target.BaseURL)

			if _, err := ocireplicator.Replicate(ctx, sourceClient, src, tgt, ocireplicator.Options{Mode: ocireplicator.PreferMultiarch}); err != nil {
				return fmt.Errorf("replicating resource %s of %s: %w", res.Name, d.Identity, err)
			}
			replicated++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking component graph: %w", err)
	}

	log.Info("image sync complete", "component", componentName, "version", componentVersion, "imagesReplicated", replicated)
	return nil
}

// buildComponentLookup assembles the layered lookup composite spec §4.1
// describes: memory -> filesystem -> remote service (when configured) ->
// OCI registry of record.
func buildComponentLookup(cfg *config.Config, deps *Dependencies, source config.OCIRegistryConfig, log *slog.Logger) (*componentdescriptor.Lookup, error) {
	memLayer, err := componentdescriptor.NewMemoryLayer(cfg.InMemoryCacheSize)
	if err != nil {
		return nil, err
	}

	layers := []componentdescriptor.Layer{memLayer, componentdescriptor.NewFSLayer(cfg.CacheDir)}

	if cfg.RemoteLookupService != nil {
		layers = append(layers, componentdescriptor.NewRemoteServiceLayer(deps.RemoteServiceClient))
	}

	registryClient := ociclient.NewClient(
		ociclient.WithPlainHTTP(source.PlainHTTP),
		ociclient.WithRegistryAuthEnv(source.CredentialsEnv),
	)
	layers = append(layers, componentdescriptor.NewRegistryLayer(registryClient, source.BaseURL, log))

	return componentdescriptor.New(layers...), nil
}

// retargetRef rewrites the registry/repository prefix of an OCI reference
// from fromBase to toBase, leaving the tag or digest suffix untouched. A
// reference that doesn't carry fromBase's prefix is left as-is.
func retargetRef(ref, fromBase, toBase string) string {
	if !strings.HasPrefix(ref, fromBase) {
		return ref
	}
	return toBase + strings.TrimPrefix(ref, fromBase)
}
