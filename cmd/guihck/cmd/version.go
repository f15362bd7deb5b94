package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-guihck/guihck/pkg/guihck"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "guihck %s (script api %s, built %s)\n",
				guihck.Version, guihck.APIVersion, BuildTime)
		},
	}
}
