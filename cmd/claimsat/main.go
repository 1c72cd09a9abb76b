package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimsat/internal/config"
	"github.com/claimsat/internal/debug"
	"github.com/claimsat/internal/disaster"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configPath    string
	disastersPath string
	logLevel      string
	debug         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "claimsat",
		Short: "Disaster claim scoring and family reunification",
		Long: `Scores post-disaster damage claims against the disasters that caused them and
suggests matches between missing person reports and registered survivors.
Every score is advisory; reviewers and authorities make the final decision.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			level := opts.logLevel
			if opts.debug {
				level = "debug"
			}
			return debug.Init(level)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.GetEnv("CLAIMSAT_ENGINE_CONFIG", ""), "engine weights and thresholds (YAML)")
	flags.StringVar(&opts.disastersPath, "disasters", config.GetEnv("CLAIMSAT_DISASTERS", ""), "disaster registry (GeoJSON FeatureCollection); built-in samples when empty")
	flags.StringVar(&opts.logLevel, "log-level", config.GetEnv("LOG_LEVEL", "info"), "log level")
	flags.BoolVar(&opts.debug, "debug", false, "verbose engine tracing")

	rootCmd.AddCommand(createScoreCmd(opts))
	rootCmd.AddCommand(createMatchCmd(opts))
	rootCmd.AddCommand(createIngestCmd())
	rootCmd.AddCommand(createDisastersCmd(opts))
	rootCmd.AddCommand(createServeCmd(opts))

	return rootCmd
}

// loadEngineConfig reads the engine config and applies the --debug flag
func loadEngineConfig(opts *rootOptions) (*config.EngineConfig, error) {
	cfg, err := config.LoadEngineConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// loadRegistry reads the GeoJSON registry, or falls back to the sample disasters
func loadRegistry(path string) (*disaster.MemRegistry, error) {
	if path == "" {
		return disaster.NewMemRegistry(disaster.Samples()...), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open disasters file: %w", err)
	}
	defer f.Close()

	disasters, err := disaster.LoadGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return disaster.NewMemRegistry(disasters...), nil
}
