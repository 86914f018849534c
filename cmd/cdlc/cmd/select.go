package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/foundation/cdl/ast"
)

var (
	selectProperty string
	selectValue    string
	selectEntities string
	selectFormat   string
)

var selectCmd = &cobra.Command{
	Use:   "select [file]",
	Short: "Query properties and entities",
	Long: `Selects nodes from a compiled script. Exactly one of --property,
--value or --entity is required.

Examples:
  cdlc select --property color report.cdl      # every color: property
  cdlc select --value source report.cdl        # first value of each source:
  cdlc select --entity rev,cost report.cdl     # entities #rev and #cost
  cdlc select --entity "" -f json report.cdl   # every entity as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVarP(&selectProperty, "property", "p", "", "select properties by name")
	selectCmd.Flags().StringVar(&selectValue, "value", "", "select the first value of properties by name")
	selectCmd.Flags().StringVarP(&selectEntities, "entity", "e", "", "select entities by comma separated ids, empty for all")
	selectCmd.Flags().StringVarP(&selectFormat, "format", "f", "tree", "output format (tree, json, yaml)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	modes := 0
	for _, name := range []string{"property", "value", "entity"} {
		if cmd.Flags().Changed(name) {
			modes++
		}
	}
	if modes != 1 {
		return fmt.Errorf("exactly one of --property, --value or --entity is required")
	}

	_, res, err := compileSource(cmd, args, nil)
	if err != nil {
		return err
	}

	var handles []ast.Handle
	switch {
	case cmd.Flags().Changed("property"):
		handles = res.Ast.SelectProperty(selectProperty)
	case cmd.Flags().Changed("value"):
		handles = res.Ast.SelectPropertyValue(selectValue)
	default:
		handles = res.Ast.FindEntities(splitIDs(selectEntities)...)
	}

	out := cmd.OutOrStdout()
	switch selectFormat {
	case "json", "yaml":
		exports := make([]*ast.ExportNode, 0, len(handles))
		for _, h := range handles {
			exports = append(exports, res.Ast.ExportFrom(h))
		}
		if selectFormat == "json" {
			return writeJSON(out, exports)
		}
		return writeYAML(out, exports)
	case "tree":
		for _, h := range handles {
			writeTree(out, res, h)
		}
		fmt.Fprintf(out, "%d match(es)\n", len(handles))
		return nil
	default:
		return fmt.Errorf("unknown format %q", selectFormat)
	}
}

// splitIDs splits a comma separated id list, accepting a leading # per id
func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		id = strings.TrimPrefix(strings.TrimSpace(id), "#")
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
