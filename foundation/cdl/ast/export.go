// File: export.go
// Title: CDL AST Export
// Description: Converts the arena into a nested tree of plain structs for
//              JSON and YAML encoding, and renders one-line node summaries
//              for terminal output.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial export

package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msto63/cdlc/foundation/cdl/source"
)

// ExportNode is the serializable form of a node. ID is the numeric handle;
// Target is the id of a resolved reference.
type ExportNode struct {
	ID        uint32        `json:"id" yaml:"id"`
	Kind      string        `json:"kind" yaml:"kind"`
	Span      source.Span   `json:"span" yaml:"span"`
	Name      string        `json:"name,omitempty" yaml:"name,omitempty"`
	Terms     []string      `json:"terms,omitempty" yaml:"terms,omitempty"`
	Label     string        `json:"label,omitempty" yaml:"label,omitempty"`
	Refs      []string      `json:"refs,omitempty" yaml:"refs,omitempty"`
	EntityID  string        `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	Value     interface{}   `json:"value,omitempty" yaml:"value,omitempty"`
	Quote     string        `json:"quote,omitempty" yaml:"quote,omitempty"`
	Percent   bool          `json:"percent,omitempty" yaml:"percent,omitempty"`
	Op        string        `json:"op,omitempty" yaml:"op,omitempty"`
	Target    *uint32       `json:"target,omitempty" yaml:"target,omitempty"`
	Table     string        `json:"table,omitempty" yaml:"table,omitempty"`
	Variable  string        `json:"variable,omitempty" yaml:"variable,omitempty"`
	Function  string        `json:"function,omitempty" yaml:"function,omitempty"`
	Bracket   bool          `json:"bracket,omitempty" yaml:"bracket,omitempty"`
	Hierarchy bool          `json:"hierarchy,omitempty" yaml:"hierarchy,omitempty"`
	Children  []*ExportNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Export returns the tree below the root, or nil for an empty Ast
func (a *Ast) Export() *ExportNode {
	if !a.root.Valid() {
		return nil
	}
	return a.ExportFrom(a.root)
}

// ExportFrom returns the subtree rooted at h
func (a *Ast) ExportFrom(h Handle) *ExportNode {
	n := a.Node(h)
	out := &ExportNode{
		ID:   uint32(h),
		Kind: n.Kind().String(),
		Span: a.LocationOf(h),
	}

	switch v := n.(type) {
	case *Title:
		out.Value = v.Text
	case *Entity:
		out.Terms = v.Terms
		out.Label = v.Label
		out.Refs = v.Refs
		out.EntityID = v.ID
		if v.Number != nil {
			out.Value = *v.Number
		}
	case *Property:
		out.Name = v.Name
	case *Identifier:
		out.Name = v.Name
	case *String:
		out.Value = v.Value
		out.Quote = v.Quote.String()
	case *Number:
		out.Value = v.Value
		out.Percent = v.Percent
	case *Boolean:
		out.Value = v.Value
	case *Color:
		out.Value = v.Hex
	case *Reference:
		out.Name = v.Name
		if v.Target.Valid() {
			target := uint32(v.Target)
			out.Target = &target
		}
	case *Function:
		out.Name = v.Name
		out.Bracket = v.Bracket
		if v.Bracket {
			out.Value = v.Raw
		}
	case *Operator:
		out.Op = v.Op.String()
	case *TableAlias:
		out.Name = v.Alias
		out.Value = v.Path
	case *Formula:
		out.Value = v.Text
	case *VPath:
		out.Table = v.Table
		out.Variable = v.Variable
		out.Function = v.Function
		out.Hierarchy = v.Hierarchy
	}

	for _, child := range a.Children(h) {
		out.Children = append(out.Children, a.ExportFrom(child))
	}
	return out
}

// Summary renders a node on one line, close to its source form
func (a *Ast) Summary(h Handle) string {
	switch v := a.Node(h).(type) {
	case *Script:
		return fmt.Sprintf("Script (%d declarations)", len(v.Children))
	case *Title:
		return fmt.Sprintf("Title %q", v.Text)
	case *Entity:
		var b strings.Builder
		b.WriteString("Entity")
		if v.Anonymous() {
			b.WriteString(" {}")
		}
		for _, term := range v.Terms {
			b.WriteString(" " + term)
		}
		if v.Label != "" {
			fmt.Fprintf(&b, " %q", v.Label)
		}
		for _, ref := range v.Refs {
			b.WriteString(" @" + ref)
		}
		if v.ID != "" {
			b.WriteString(" #" + v.ID)
		}
		if v.Number != nil {
			b.WriteString(" " + strconv.FormatFloat(*v.Number, 'g', -1, 64))
		}
		return b.String()
	case *Property:
		return "Property " + v.Name + ":"
	case *Identifier:
		return "Identifier " + v.Name
	case *String:
		if v.Quote == QuoteSingle {
			return "String '" + v.Value + "'"
		}
		return fmt.Sprintf("String %q", v.Value)
	case *Number:
		if v.Percent {
			return "Number " + v.Raw + "%"
		}
		return "Number " + v.Raw
	case *Boolean:
		return "Boolean " + strconv.FormatBool(v.Value)
	case *Color:
		return "Color #" + v.Hex
	case *Reference:
		if v.Target.Valid() {
			return fmt.Sprintf("Reference @%s -> %s", v.Name, v.Target)
		}
		return "Reference @" + v.Name
	case *Function:
		if v.Bracket {
			return "Function " + v.Name + "[" + v.Raw + "]"
		}
		return "Function " + v.Name + "()"
	case *Operator:
		return "Operator " + v.Op.String()
	case *TableAlias:
		return "TableAlias " + v.Alias + " = " + v.Path
	case *Formula:
		return "Formula [" + v.Text + "]"
	case *VPath:
		var b strings.Builder
		b.WriteString("VPath " + v.Table + ":")
		if v.Hierarchy {
			b.WriteString("^")
		}
		b.WriteString(v.Variable)
		if v.Function != "" {
			b.WriteString(v.Function + "()")
		}
		return b.String()
	default:
		return v.Kind().String()
	}
}
