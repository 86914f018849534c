package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/diag"
)

const stdinName = "<stdin>"

// readSource reads the file named by the first argument, or stdin when
// there is no argument or it is "-"
func readSource(cmd *cobra.Command, args []string) (name, src string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return stdinName, string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

// compileOptions applies the compiler section of the configuration
func compileOptions(name string) cdl.Options {
	return cdl.Options{
		Name:          name,
		MaxInputBytes: appConfig.Compiler.MaxInputBytes,
		Logger:        logger,
	}
}

// compileSource reads and compiles the input named by args. Syntax errors
// are printed to stderr before being returned.
func compileSource(cmd *cobra.Command, args []string, opts func(*cdl.Options)) (string, *cdl.Result, error) {
	name, src, err := readSource(cmd, args)
	if err != nil {
		return "", nil, err
	}

	o := compileOptions(name)
	if opts != nil {
		opts(&o)
	}
	res, err := cdl.Compile(src, o)
	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			printDiagnostic(cmd.ErrOrStderr(), name, d)
		}
		return name, nil, err
	}
	return name, res, nil
}

// printDiagnostic writes d in the usual file:line:column form
func printDiagnostic(w io.Writer, name string, d *diag.Diagnostic) {
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", name, d.Position.Line, d.Position.Column, d.Kind, d.Describe())
}
