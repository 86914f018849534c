// File: ast.go
// Title: CDL AST Arena
// Description: Append-only node store with a parallel location store. Nodes
//              are addressed by Handle; handles are never reused and stay
//              valid for the lifetime of the Ast and of its clones.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial arena implementation

package ast

import (
	"fmt"

	"github.com/msto63/cdlc/foundation/cdl/source"
)

// Handle identifies a node in an Ast. Handles are ordered by allocation.
// The zero value is NoHandle.
type Handle uint32

// NoHandle marks a missing parent or an unresolved reference target
const NoHandle Handle = 0

// Valid reports whether h refers to a node
func (h Handle) Valid() bool {
	return h != NoHandle
}

func (h Handle) String() string {
	if !h.Valid() {
		return "none"
	}
	return fmt.Sprintf("#%d", uint32(h))
}

func (h Handle) index() int {
	return int(h) - 1
}

func handleAt(i int) Handle {
	return Handle(i + 1)
}

// Ast owns the nodes, their locations and their parents
type Ast struct {
	nodes     []Node
	locations []source.Span
	parents   []Handle
	root      Handle
}

// New creates an empty Ast
func New() *Ast {
	return &Ast{}
}

// Root returns the handle of the Script node
func (a *Ast) Root() Handle {
	return a.root
}

// Len returns the number of allocated nodes
func (a *Ast) Len() int {
	return len(a.nodes)
}

// Allocate appends a node and returns its handle. The first Script
// allocated without a parent becomes the root. An Operator becomes the
// parent of its left operand.
func (a *Ast) Allocate(node Node, loc source.Span, parent Handle) Handle {
	if parent.Valid() {
		a.mustExist(parent)
	}

	a.nodes = append(a.nodes, node)
	a.locations = append(a.locations, loc)
	a.parents = append(a.parents, parent)
	h := handleAt(len(a.nodes) - 1)

	if op, ok := node.(*Operator); ok && op.Left.Valid() {
		a.mustExist(op.Left)
		a.parents[op.Left.index()] = h
	}

	if !a.root.Valid() && !parent.Valid() && node.Kind() == KindScript {
		a.root = h
	}
	return h
}

// AttachChild links child below parent. Containers append it to their child
// list; an Operator takes it as its right operand. Any other parent variant
// is a programming error and panics.
func (a *Ast) AttachChild(parent, child Handle) {
	a.mustExist(child)

	switch n := a.Node(parent).(type) {
	case container:
		n.appendChild(child)
	case *Operator:
		n.Right = child
	default:
		panic(fmt.Sprintf("ast: cannot attach child to %s node %s", n.Kind(), parent))
	}
	a.parents[child.index()] = parent
}

// Node returns the node for h. It panics if h was not issued by this Ast.
func (a *Ast) Node(h Handle) Node {
	a.mustExist(h)
	return a.nodes[h.index()]
}

// Parent returns the parent of h, or NoHandle for the root
func (a *Ast) Parent(h Handle) Handle {
	a.mustExist(h)
	return a.parents[h.index()]
}

// LocationOf returns the source range of h
func (a *Ast) LocationOf(h Handle) source.Span {
	a.mustExist(h)
	return a.locations[h.index()]
}

// WidenLocation overwrites the source range of h
func (a *Ast) WidenLocation(h Handle, start, end int) {
	a.mustExist(h)
	a.locations[h.index()] = source.Span{Start: start, End: end}
}

// Children returns the child handles of h in source order. For an Operator
// these are its operands.
func (a *Ast) Children(h Handle) []Handle {
	switch n := a.Node(h).(type) {
	case container:
		return cloneHandles(n.childList())
	case *Operator:
		children := make([]Handle, 0, 2)
		if n.Left.Valid() {
			children = append(children, n.Left)
		}
		if n.Right.Valid() {
			children = append(children, n.Right)
		}
		return children
	default:
		return nil
	}
}

// Handles returns every handle in allocation order
func (a *Ast) Handles() []Handle {
	handles := make([]Handle, len(a.nodes))
	for i := range a.nodes {
		handles[i] = handleAt(i)
	}
	return handles
}

// Walk visits the tree below the root in pre-order. Returning false from fn
// skips the children of the visited node. Reference targets are not
// followed.
func (a *Ast) Walk(fn func(h Handle, depth int) bool) {
	if !a.root.Valid() {
		return
	}
	a.walk(a.root, 0, fn)
}

// WalkFrom visits the subtree rooted at h in pre-order
func (a *Ast) WalkFrom(h Handle, fn func(h Handle, depth int) bool) {
	a.walk(h, 0, fn)
}

func (a *Ast) walk(h Handle, depth int, fn func(Handle, int) bool) {
	if !fn(h, depth) {
		return
	}
	for _, child := range a.Children(h) {
		a.walk(child, depth+1, fn)
	}
}

// Clone returns a deep copy. Handles keep their meaning in the copy.
func (a *Ast) Clone() *Ast {
	c := &Ast{
		nodes:     make([]Node, len(a.nodes)),
		locations: make([]source.Span, len(a.locations)),
		parents:   make([]Handle, len(a.parents)),
		root:      a.root,
	}
	for i, n := range a.nodes {
		c.nodes[i] = n.clone()
	}
	copy(c.locations, a.locations)
	copy(c.parents, a.parents)
	return c
}

func (a *Ast) mustExist(h Handle) {
	if !h.Valid() || h.index() >= len(a.nodes) {
		panic(fmt.Sprintf("ast: invalid handle %s (arena has %d nodes)", h, len(a.nodes)))
	}
}
