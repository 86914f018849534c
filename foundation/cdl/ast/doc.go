// File: doc.go
// Title: Package documentation for the CDL AST
// Description: Overview of the arena, handles and the allocate-then-attach
//              protocol
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial documentation

/*
Package ast stores a parsed CDL document as an arena of nodes.

Nodes live in a slice and are addressed by Handle. A parallel slice holds
each node's source range and another its parent. Nothing is ever removed or
reordered, so a Handle stays valid for the lifetime of the Ast and means the
same node in every Clone.

Construction follows an allocate-then-attach protocol. A parser allocates a
container first, passes its handle down to the units that parse its
children, attaches every child as it completes and finally widens the
container's location to cover its last child:

	a := ast.New()
	root := a.Allocate(&ast.Script{}, source.Span{}, ast.NoHandle)
	title := a.Allocate(&ast.Title{Text: "Sales"}, source.Span{Start: 0, End: 13}, root)
	a.AttachChild(root, title)
	a.WidenLocation(root, 0, 13)

Reference.Target is a cross-link filled in by the resolver. It is never a
parent/child edge and Walk does not follow it.
*/
package ast
