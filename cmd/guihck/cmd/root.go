// Package cmd implements the guihck CLI commands.
//
// The root command loads guihck.yaml, configures logging, and dispatches to
// subcommands (run, dump, types, config, version).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-guihck/guihck/cmd/guihck/internal/config"
	"github.com/go-guihck/guihck/pkg/guihck"
)

// BuildTime is set at build time.
var BuildTime = "unknown"

// RootOptions holds global flags and the loaded configuration.
type RootOptions struct {
	ConfigFile string
	Verbose    int

	// Config is loaded by the root command before any subcommand runs.
	Config *config.Config
}

// NewRootCommand creates the root command for the guihck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "guihck",
		Short: "guihck - reactive element trees driven by scripts",
		Long: `guihck runs scripts that build a tree of typed elements whose
properties are literals, bindings, aliases, or methods, then drives
the update and render cycle until the tree settles.

Use "guihck <command> --help" for more information about a command.`,
		Version:      fmt.Sprintf("%s (api %s, built %s)", guihck.Version, guihck.APIVersion, BuildTime),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(opts.ConfigFile, dir)
			if err != nil {
				return err
			}
			opts.Config = cfg
			configureLogging(cfg.Log.Verbosity+opts.Verbose, cfg.Log.File)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./guihck.yaml)")
	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "increase log verbosity (repeatable)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// newApp builds an App from the loaded configuration.
func newApp(opts *RootOptions) (*guihck.App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return guihck.New(cfg.Options())
}

// framesFlag returns the --frames value when set, else the configured count.
func framesFlag(cmd *cobra.Command, opts *RootOptions, value int) int {
	if cmd.Flags().Changed("frames") || opts.Config == nil {
		return value
	}
	return opts.Config.Runtime.Frames
}
