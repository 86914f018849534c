package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/internal/tui/astview"
	"github.com/msto63/cdlc/pkg/core/logging"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Browse the Ast interactively",
	Long: `Opens a terminal viewer listing the Ast as an indented tree, with the
diagnostics in a panel below.

Keys:
  j / k       scroll down / up
  g / G       jump to top / bottom
  PgUp/PgDn   scroll a page
  d           toggle the diagnostics panel
  r           reload the file and compile again
  q, Ctrl+C   quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	name, src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	// Files are read again on reload, stdin only once
	load := func() (string, error) { return src, nil }
	if name != stdinName {
		load = func() (string, error) {
			data, err := os.ReadFile(name)
			return string(data), err
		}
	}

	// Log lines would tear the alternate screen
	opts := compileOptions(name)
	opts.Logger = logging.Discard()

	return astview.Run(astview.Config{
		Name:    name,
		Load:    load,
		Options: opts,
	})
}
