package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/pipeline-replicator/internal/config"
	"github.com/giantswarm/pipeline-replicator/internal/logging"
)

var (
	configPath string
	logFormat  string
	logLevel   string
)

// New builds the root replicatord command and registers its subcommands,
// grounded on open-component-model's cli/cmd package: one cobra.Command
// tree, persistent flags for cross-cutting concerns, and a package-level
// New()/Execute() split so tests can build a command tree without
// exiting the process.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:   "replicatord",
		Short: "Replicates pipeline definitions from git repositories to CI backends",
		Long: `replicatord turns .ci/pipeline_definitions files committed across a set of
repositories into pipelines on one or more CI backends, and reacts to
GitHub webhook deliveries that should trigger re-replication.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: setupLogging,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "/etc/replicatord/config.yaml", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "json", `log output format: "json" or "text"`)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, or error")

	root.AddCommand(newServeCommand())
	root.AddCommand(newReplicateCommand())
	root.AddCommand(newSyncImagesCommand())

	return root
}

// Execute runs the root command and exits the process on error, called by
// main.main().
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return err
	}

	format := logging.FormatJSON
	if logFormat == "text" {
		format = logging.FormatText
	}

	slog.SetDefault(logging.New(format, level))
	return nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
