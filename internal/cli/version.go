package cmd

import (
	"fmt"

	"github.com/rohmanhakim/coffee-indicators/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version.",
	Args:  cobra.NoArgs,
	// version needs no env file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		info := build.Current()
		fmt.Fprintf(cmd.OutOrStdout(), "coffee-indicators %s\n", build.FullVersion())
		fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", info.BuildTime)
	},
}
