// File: query.go
// Title: CDL AST Queries
// Description: Lookups over a finished Ast: properties by name, entities by
//              id, direct children by name and node statistics.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial query helpers

package ast

// SelectProperty returns every Property named name in allocation order
func (a *Ast) SelectProperty(name string) []Handle {
	var result []Handle
	for i, n := range a.nodes {
		if p, ok := n.(*Property); ok && p.Name == name {
			result = append(result, handleAt(i))
		}
	}
	return result
}

// SelectPropertyValue returns the first value of every Property named name.
// Properties without a value are skipped.
func (a *Ast) SelectPropertyValue(name string) []Handle {
	var result []Handle
	for _, h := range a.SelectProperty(name) {
		p := a.nodes[h.index()].(*Property)
		if len(p.Children) > 0 {
			result = append(result, p.Children[0])
		}
	}
	return result
}

// FindEntities returns the entities whose id is one of ids, in allocation
// order. Without ids every entity is returned.
func (a *Ast) FindEntities(ids ...string) []Handle {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var result []Handle
	for i, n := range a.nodes {
		e, ok := n.(*Entity)
		if !ok {
			continue
		}
		if len(ids) == 0 || (e.ID != "" && wanted[e.ID]) {
			result = append(result, handleAt(i))
		}
	}
	return result
}

// ChildProperty returns the direct Property child of h named name
func (a *Ast) ChildProperty(h Handle, name string) (Handle, bool) {
	for _, child := range a.Children(h) {
		if p, ok := a.nodes[child.index()].(*Property); ok && p.Name == name {
			return child, true
		}
	}
	return NoHandle, false
}

// ChildEntity returns the direct Entity child of h with the given id
func (a *Ast) ChildEntity(h Handle, id string) (Handle, bool) {
	for _, child := range a.Children(h) {
		if e, ok := a.nodes[child.index()].(*Entity); ok && e.ID == id {
			return child, true
		}
	}
	return NoHandle, false
}

// Stats summarizes an Ast
type Stats struct {
	Nodes      int            `json:"nodes" yaml:"nodes"`
	ByKind     map[string]int `json:"by_kind" yaml:"by_kind"`
	MaxDepth   int            `json:"max_depth" yaml:"max_depth"`
	References int            `json:"references" yaml:"references"`
	Resolved   int            `json:"resolved" yaml:"resolved"`
}

// Stats counts nodes per kind and measures the tree depth
func (a *Ast) Stats() Stats {
	s := Stats{Nodes: len(a.nodes), ByKind: make(map[string]int)}
	for _, n := range a.nodes {
		s.ByKind[n.Kind().String()]++
		if r, ok := n.(*Reference); ok {
			s.References++
			if r.Target.Valid() {
				s.Resolved++
			}
		}
	}

	a.Walk(func(_ Handle, depth int) bool {
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return true
	})
	return s
}
