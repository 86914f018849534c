// File: resolver.go
// Title: CDL Reference Resolver
// Description: Post-parse pass that collects entity ids into a symbol table
//              and links every Reference node to its target. Problems are
//              accumulated; the pass never aborts early.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial resolver with dotted references

package resolver

import (
	"io"
	"sort"
	"strings"

	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

// Context carries the state of one resolution run. It is owned by the
// caller and must not be shared between concurrent runs.
type Context struct {
	lines  *source.LineIndex
	logger *mdwlog.Logger

	symbols     map[string]ast.Handle
	diagnostics diag.List
}

// Option configures a Context
type Option func(*Context)

// WithLines locates diagnostics with line and column
func WithLines(lines *source.LineIndex) Option {
	return func(c *Context) {
		c.lines = lines
	}
}

// WithLogger sets the logger for debug output
func WithLogger(logger *mdwlog.Logger) Option {
	return func(c *Context) {
		c.logger = logger.WithName("resolver")
	}
}

// NewContext creates an empty resolution context
func NewContext(opts ...Option) *Context {
	c := &Context{
		logger:  mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelFatal, Output: io.Discard}),
		symbols: make(map[string]ast.Handle),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the entity declaring id
func (c *Context) Lookup(id string) (ast.Handle, bool) {
	h, ok := c.symbols[id]
	return h, ok
}

// IDs returns the declared entity ids in sorted order
func (c *Context) IDs() []string {
	ids := make([]string, 0, len(c.symbols))
	for id := range c.symbols {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Diagnostics returns the problems found by the last run
func (c *Context) Diagnostics() diag.List {
	return c.diagnostics
}

// Resolve links the references of a. Each call rebuilds the symbol table,
// so running it again on the same Ast yields the same targets. The returned
// list holds DuplicateIdentifier and DanglingReference diagnostics.
func Resolve(a *ast.Ast, c *Context) diag.List {
	c.symbols = make(map[string]ast.Handle)
	c.diagnostics = nil

	c.collect(a)
	resolved := c.link(a)

	c.logger.Debug("resolved references", mdwlog.Fields{
		"entities":    len(c.symbols),
		"resolved":    resolved,
		"diagnostics": len(c.diagnostics),
	})
	return c.diagnostics
}

// collect fills the symbol table. The last declaration of an id wins and
// every redeclaration is reported against the first one.
func (c *Context) collect(a *ast.Ast) {
	first := make(map[string]ast.Handle)

	a.Walk(func(h ast.Handle, _ int) bool {
		entity, ok := a.Node(h).(*ast.Entity)
		if !ok || entity.ID == "" {
			return true
		}

		if prev, seen := first[entity.ID]; seen {
			c.report(diag.Duplicate(entity.ID, a.LocationOf(prev), a.LocationOf(h)))
		} else {
			first[entity.ID] = h
		}
		c.symbols[entity.ID] = h
		return true
	})
}

// link sets the target of every Reference and returns how many resolved
func (c *Context) link(a *ast.Ast) int {
	resolved := 0

	a.Walk(func(h ast.Handle, _ int) bool {
		ref, ok := a.Node(h).(*ast.Reference)
		if !ok {
			return true
		}

		target, found := c.find(a, ref.Name)
		if !found {
			ref.Target = ast.NoHandle
			c.report(diag.Dangling(ref.Name, a.LocationOf(h)))
			return true
		}
		ref.Target = target
		resolved++
		return true
	})
	return resolved
}

// find resolves name. An exact id match wins; otherwise the first dotted
// segment names an entity and each further segment selects a direct child
// property by name or child entity by id.
func (c *Context) find(a *ast.Ast, name string) (ast.Handle, bool) {
	if h, ok := c.symbols[name]; ok {
		return h, true
	}

	segments := strings.Split(name, ".")
	if len(segments) < 2 {
		return ast.NoHandle, false
	}

	current, ok := c.symbols[segments[0]]
	if !ok {
		return ast.NoHandle, false
	}
	for _, seg := range segments[1:] {
		if _, isEntity := a.Node(current).(*ast.Entity); !isEntity {
			return ast.NoHandle, false
		}
		if next, ok := a.ChildProperty(current, seg); ok {
			current = next
			continue
		}
		if next, ok := a.ChildEntity(current, seg); ok {
			current = next
			continue
		}
		return ast.NoHandle, false
	}
	return current, true
}

func (c *Context) report(d *diag.Diagnostic) {
	c.diagnostics = append(c.diagnostics, d.Locate(c.lines))
}
