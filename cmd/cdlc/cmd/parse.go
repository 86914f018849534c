package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/ast"
)

var (
	parseFormat      string
	parseSkipResolve bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Print the Ast of a CDL script",
	Long: `Compiles a CDL script and prints its Ast.

Formats:
  json  - nested export with spans and resolved targets
  yaml  - the same export as YAML
  tree  - one node per line, indented, with line:column

Examples:
  cdlc parse report.cdl
  cdlc parse --format tree report.cdl
  cat report.cdl | cdlc parse --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "output format (json, yaml, tree)")
	parseCmd.Flags().BoolVar(&parseSkipResolve, "skip-resolve", false, "parse only, leave references unresolved")
}

func runParse(cmd *cobra.Command, args []string) error {
	name, res, err := compileSource(cmd, args, func(o *cdl.Options) {
		o.SkipResolve = parseSkipResolve
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "json":
		err = writeJSON(out, res.Ast.Export())
	case "yaml":
		err = writeYAML(out, res.Ast.Export())
	case "tree":
		writeTree(out, res, res.Ast.Root())
	default:
		return fmt.Errorf("unknown format %q", parseFormat)
	}
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		printDiagnostic(cmd.ErrOrStderr(), name, d)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeTree prints the subtree at h, one node per line
func writeTree(w io.Writer, res *cdl.Result, h ast.Handle) {
	res.Ast.WalkFrom(h, func(n ast.Handle, depth int) bool {
		p := res.Lines.Position(res.Ast.LocationOf(n).Start)
		fmt.Fprintf(w, "%4d:%-3d %*s%s\n", p.Line, p.Column, depth*2, "", res.Ast.Summary(n))
		return true
	})
}
