package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/ast"
)

var statsFormat string

// statsReport is the machine readable form of "cdlc stats"
type statsReport struct {
	Name        string      `json:"name" yaml:"name"`
	Lines       int         `json:"lines" yaml:"lines"`
	Tokens      int         `json:"tokens" yaml:"tokens"`
	Ast         ast.Stats   `json:"ast" yaml:"ast"`
	Diagnostics int         `json:"diagnostics" yaml:"diagnostics"`
	Timings     cdl.Timings `json:"timings_ns" yaml:"timings_ns"`
}

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Show node counts and phase timings",
	Long: `Compiles a script and reports its size, node counts per kind, the
tree depth, how many references resolved and how long each phase took.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "output format (text, json, yaml)")
}

func runStats(cmd *cobra.Command, args []string) error {
	name, res, err := compileSource(cmd, args, nil)
	if err != nil {
		return err
	}

	report := statsReport{
		Name:        name,
		Lines:       res.Lines.Lines(),
		Tokens:      res.Tokens,
		Ast:         res.Ast.Stats(),
		Diagnostics: len(res.Diagnostics),
		Timings:     res.Timings,
	}

	out := cmd.OutOrStdout()
	switch statsFormat {
	case "json":
		return writeJSON(out, report)
	case "yaml":
		return writeYAML(out, report)
	case "text":
	default:
		return fmt.Errorf("unknown format %q", statsFormat)
	}

	fmt.Fprintf(out, "%s\n", name)
	fmt.Fprintf(out, "  Lines:       %d\n", report.Lines)
	fmt.Fprintf(out, "  Tokens:      %d\n", report.Tokens)
	fmt.Fprintf(out, "  Nodes:       %d (depth %d)\n", report.Ast.Nodes, report.Ast.MaxDepth)
	fmt.Fprintf(out, "  References:  %d (%d resolved)\n", report.Ast.References, report.Ast.Resolved)
	fmt.Fprintf(out, "  Diagnostics: %d\n", report.Diagnostics)

	kinds := make([]string, 0, len(report.Ast.ByKind))
	for k := range report.Ast.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Fprintln(out, "  By kind:")
	for _, k := range kinds {
		fmt.Fprintf(out, "    %-12s %d\n", k, report.Ast.ByKind[k])
	}

	fmt.Fprintln(out, "  Timings:")
	for _, t := range []struct {
		phase string
		d     time.Duration
	}{
		{"tokenize", res.Timings.Tokenize},
		{"parse", res.Timings.Parse},
		{"resolve", res.Timings.Resolve},
		{"total", res.Timings.Total},
	} {
		fmt.Fprintf(out, "    %-12s %s\n", t.phase, t.d)
	}
	return nil
}
