package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-guihck/guihck/pkg/snapshot"
)

type dumpOptions struct {
	frames   int
	format   string
	output   string
	session  bool
	noValues bool
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <script>...",
		Short: "Evaluate scripts and print the element tree",
		Long: `Evaluate script files, run frames, then write a snapshot of the tree.

Each property is listed with its kind (literal, binding, alias, method),
its binding dependencies or alias target, and its resolved value.

Formats:
  yaml   Human-readable (default)
  cbor   Canonical CBOR, suitable for byte comparison`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.frames, "frames", 1, "maximum frames to run before dumping (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "yaml", "output format (yaml|cbor)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.session, "session", false, "include the session id")
	cmd.Flags().BoolVar(&opts.noValues, "no-values", false, "omit resolved values")

	return cmd
}

func runDump(rootOpts *RootOptions, opts *dumpOptions, cmd *cobra.Command, scripts []string) error {
	if opts.format != "yaml" && opts.format != "cbor" {
		return fmt.Errorf("invalid format %q: must be yaml or cbor", opts.format)
	}

	app, err := newApp(rootOpts)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := loadScripts(app, scripts); err != nil {
		return err
	}
	app.RunFrames(framesFlag(cmd, rootOpts, opts.frames))

	tree := app.Snapshot(snapshot.Options{Session: opts.session, Values: !opts.noValues})
	var data []byte
	switch opts.format {
	case "cbor":
		data, err = tree.CBOR()
	default:
		data, err = tree.YAML()
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		return os.WriteFile(opts.output, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
