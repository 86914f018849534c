// File: doc.go
// Title: Package documentation for the CDL parser
// Description: Grammar overview and dispatch tables
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial documentation

/*
Package parser builds an ast.Ast from CDL tokens.

Each syntactic construct is a Unit: a side-effect free CanStart predicate
over the token lookahead and a Parse method that consumes the construct and
allocates one top-level node. Recursion points try the units of one table
in order:

	declarations  Title, Entity
	entity body   Property, TableAlias, Entity
	factor        VPath, Function, Identifier, String, Number, Reference,
	              Color, Boolean, Formula, anonymous Entity, ( expression )

The predicates of a table are disjoint, so the order only matters for
reading.

Grammar

	script     = { title | entity }
	title      = "title" string EOL
	entity     = ident { ident } [ string ] { @ref } [ "#" id | color ] [ number ] body
	body       = "{" { property | alias | entity } "}"
	property   = ident ":" expression { "," expression }
	alias      = "table" ident "=" ident [ ":" ]
	expression = term [ ( "*" | "/" | "=" | "!=" | "<" | "<=" | ">" | ">=" | "and" | "or" ) expression ]
	term       = factor [ ( "+" | "-" ) expression ]

Operators on both levels take a full expression on the right, so every
chain is right-associative: a - b - c parses as a - (b - c) and 1 + 2 * 3
as 1 + (2 * 3), but 1 * 2 + 3 also parses as 1 * (2 + 3).

Errors

Parsing stops at the first error. Errors are *diag.Diagnostic values with
line and column when a source.LineIndex is available.
*/
package parser
