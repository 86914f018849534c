package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/pkg/core/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, version.Tool)
			return
		}
		fmt.Fprintln(out, version.String())
		for _, c := range []string{"language", "server", "store"} {
			fmt.Fprintf(out, "  %-9s %s\n", c+":", version.ComponentVersion(c))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "print only the tool version")
}
