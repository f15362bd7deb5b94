package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types [script]...",
		Short: "List registered element types",
		Long: `List the element types available to scripts, after evaluating the
configured prelude and any given scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := loadScripts(app, args); err != nil {
				return err
			}
			for _, name := range app.Context.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
