// Package cli holds the sitepipe commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sitepipe/sitepipe/internal/pipeline"
	"github.com/sitepipe/sitepipe/internal/subproc"
)

// Version is set by ldflags during build
var Version = "dev"

type options struct {
	root        string
	config      string
	production  bool
	verbose     bool
	concurrency int
}

// NewRootCmd wires every subcommand to one set of persistent flags.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "sitepipe",
		Short:         "Asset pipeline for a statically generated blog",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.Long = divider() + "\n" + banner() + " " + Version + "\n" + divider() +
		"\n\n  Compiles, bundles, purges and revisions the assets of a generated blog"

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", ".", "site root directory")
	flags.StringVar(&opts.config, "config", "", "config file (default <root>/"+pipeline.ConfigFileName+")")
	flags.BoolVar(&opts.production, "production", false, "production build (also SITEPIPE_ENV=production)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output and stream subprocess output")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "max tasks running at once within a stage (0 = GOMAXPROCS)")

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newWatchCmd(opts),
		newRunCmd(opts),
		newPlanCmd(opts),
		newInitCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and exits with the status of the last failing task.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		printError(os.Stderr, "%v", err)
		os.Exit(pipeline.ExitCode(err))
	}
}

// loadConfig resolves the pipeline config: defaults, then the production
// switch, then the config file, then flags that override the file.
func loadConfig(opts *options, stderr io.Writer) (*pipeline.Config, error) {
	cfg := pipeline.DefaultConfig(opts.root)
	cfg.Production = opts.production || pipeline.GetIsProductionEnv()
	cfg.Logger = pipeline.NewLoggerTo(stderr, "sitepipe", opts.verbose)
	if opts.verbose {
		cfg.Runner = subproc.Exec{Stream: stderr}
	}

	path := opts.config
	if path == "" {
		path = filepath.Join(opts.root, pipeline.ConfigFileName)
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := pipeline.LoadConfigFile(path, cfg); err != nil {
		return nil, err
	}

	if opts.concurrency < 0 {
		return nil, fmt.Errorf("--concurrency must not be negative")
	}
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitepipe %s\n", Version)
		},
	}
}
