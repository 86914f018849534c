// File: doc.go
// Title: Package documentation for the CDL front-end
// Description: Overview of the compilation pipeline and its packages
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial documentation

/*
Package cdl compiles CDL sources into reference-resolved syntax trees.

CDL describes report and dashboard layouts as nested entities with
properties:

	title "Monthly sales"

	report #sales {
	  table s = sales_2024
	  kpi "Revenue" #rev {
	    value: s:total * 1.19
	    color: #2e7d32
	  }
	  chart { source: @rev }
	}

The pipeline has three phases, each in its own package:

	token     source text to tokens
	parser    tokens to an ast.Ast
	resolver  @references to node handles

Compile runs all of them:

	result, err := cdl.Compile(src, cdl.Options{Name: "sales.cdl"})
	if err != nil {
		// syntax error: *diag.Diagnostic with line and column
	}
	for _, d := range result.Diagnostics {
		// dangling references and duplicate ids
	}

Syntax errors stop the compilation. Resolution problems are collected and
returned next to the complete Ast.
*/
package cdl
