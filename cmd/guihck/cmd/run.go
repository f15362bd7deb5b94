package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/guihck"
)

type runOptions struct {
	frames int
	quiet  bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <script>...",
		Short: "Evaluate scripts and run frames",
		Long: `Evaluate one or more script files in order against a fresh tree,
then run frames until the tree stops requesting them or the frame
limit is reached.

The value of the last script is printed unless --quiet is set.

Examples:
  guihck run app.scm
  guihck run --frames 60 lib.scm app.scm`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.frames, "frames", 1, "maximum frames to run after evaluation (default from config)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the script result")

	return cmd
}

func runRun(rootOpts *RootOptions, opts *runOptions, cmd *cobra.Command, scripts []string) error {
	app, err := newApp(rootOpts)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := loadScripts(app, scripts)
	if err != nil {
		return err
	}
	frames := app.RunFrames(framesFlag(cmd, rootOpts, opts.frames))

	out := cmd.OutOrStdout()
	if !opts.quiet {
		printResult(out, result)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "ran %d frame(s), %d element(s), settled=%t\n",
		frames, countElements(app.Context, app.Context.Root()), !app.Context.NeedsFrame())
	return nil
}

// loadScripts evaluates each file in order and returns the last value.
func loadScripts(app *guihck.App, scripts []string) (any, error) {
	var result any
	for _, path := range scripts {
		v, err := app.LoadFile(path)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func printResult(w io.Writer, v any) {
	if v == nil || core.IsUnset(v) {
		return
	}
	fmt.Fprintln(w, v)
}

func countElements(ctx *core.Context, id core.ElementID) int {
	n := 1
	for _, child := range ctx.Children(id) {
		n += countElements(ctx, child)
	}
	return n
}
