// File: node.go
// Title: CDL AST Node Variants
// Description: The closed set of node variants stored in the arena. Container
//              variants hold child handles in source order, Operator holds a
//              left and a right handle and Reference holds its resolved
//              target.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial node set

package ast

// Kind identifies a node variant
type Kind int

const (
	KindScript Kind = iota + 1
	KindTitle
	KindEntity
	KindProperty
	KindIdentifier
	KindString
	KindNumber
	KindBoolean
	KindColor
	KindReference
	KindFunction
	KindOperator
	KindTableAlias
	KindFormula
	KindVPath
)

var kindNames = map[Kind]string{
	KindScript:     "Script",
	KindTitle:      "Title",
	KindEntity:     "Entity",
	KindProperty:   "Property",
	KindIdentifier: "Identifier",
	KindString:     "String",
	KindNumber:     "Number",
	KindBoolean:    "Boolean",
	KindColor:      "Color",
	KindReference:  "Reference",
	KindFunction:   "Function",
	KindOperator:   "Operator",
	KindTableAlias: "TableAlias",
	KindFormula:    "Formula",
	KindVPath:      "VPath",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Kinds returns all node kinds in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindScript; k <= KindVPath; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Node is implemented by every variant
type Node interface {
	Kind() Kind
	clone() Node
}

// container is implemented by variants that own an ordered child list
type container interface {
	Node
	childList() []Handle
	appendChild(h Handle)
}

// Script is the root node
type Script struct {
	Children []Handle
}

// Title is a `title "text"` declaration
type Title struct {
	Text string
}

// Entity is a named block. Anonymous entities have no terms.
type Entity struct {
	Terms    []string
	Label    string
	Refs     []string
	ID       string
	Number   *float64
	Children []Handle
}

// Anonymous reports whether the entity was written as a bare `{ ... }`
func (e *Entity) Anonymous() bool {
	return len(e.Terms) == 0
}

// Property is `name: expr, expr`
type Property struct {
	Name     string
	Children []Handle
}

// Identifier is a bare name used as a value
type Identifier struct {
	Name string
}

// QuoteStyle records how a string literal was quoted
type QuoteStyle int

const (
	QuoteDouble QuoteStyle = iota
	QuoteSingle
)

func (q QuoteStyle) String() string {
	if q == QuoteSingle {
		return "single"
	}
	return "double"
}

// String is a quoted literal; Value has the quotes removed
type String struct {
	Value string
	Quote QuoteStyle
}

// Number is a numeric literal. A trailing % divides Value by 100.
type Number struct {
	Value   float64
	Raw     string
	Percent bool
}

// Boolean is true or false
type Boolean struct {
	Value bool
}

// Color is a #rrggbb literal without the hash
type Color struct {
	Hex string
}

// Reference is @name. Target is NoHandle until resolution succeeds.
type Reference struct {
	Name   string
	Target Handle
}

// Function is name(args) or name[raw]. The bracket form keeps its arguments
// as raw text and has no children.
type Function struct {
	Name     string
	Bracket  bool
	Raw      string
	Children []Handle
}

// Op is a binary operator
type Op int

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var opSymbols = map[Op]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpEq:  "=",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "and",
	OpOr:  "or",
}

func (o Op) String() string {
	if sym, ok := opSymbols[o]; ok {
		return sym
	}
	return "?"
}

// Operator combines two operands. Right is attached after the right-hand
// side has been parsed.
type Operator struct {
	Op    Op
	Left  Handle
	Right Handle
}

// TableAlias is `table alias = path`
type TableAlias struct {
	Alias string
	Path  string
}

// Formula is an opaque `[ ... ]` run. Text is the source between the
// brackets.
type Formula struct {
	Text     string
	Children []Handle
}

// VPath addresses a data source: table:variable, table:fn(), :variable,
// table:^variable and the bare forms
type VPath struct {
	Table     string
	Variable  string
	Function  string
	Hierarchy bool
}

func (*Script) Kind() Kind     { return KindScript }
func (*Title) Kind() Kind      { return KindTitle }
func (*Entity) Kind() Kind     { return KindEntity }
func (*Property) Kind() Kind   { return KindProperty }
func (*Identifier) Kind() Kind { return KindIdentifier }
func (*String) Kind() Kind     { return KindString }
func (*Number) Kind() Kind     { return KindNumber }
func (*Boolean) Kind() Kind    { return KindBoolean }
func (*Color) Kind() Kind      { return KindColor }
func (*Reference) Kind() Kind  { return KindReference }
func (*Function) Kind() Kind   { return KindFunction }
func (*Operator) Kind() Kind   { return KindOperator }
func (*TableAlias) Kind() Kind { return KindTableAlias }
func (*Formula) Kind() Kind    { return KindFormula }
func (*VPath) Kind() Kind      { return KindVPath }

func (n *Script) childList() []Handle   { return n.Children }
func (n *Entity) childList() []Handle   { return n.Children }
func (n *Property) childList() []Handle { return n.Children }
func (n *Function) childList() []Handle { return n.Children }
func (n *Formula) childList() []Handle  { return n.Children }

func (n *Script) appendChild(h Handle)   { n.Children = append(n.Children, h) }
func (n *Entity) appendChild(h Handle)   { n.Children = append(n.Children, h) }
func (n *Property) appendChild(h Handle) { n.Children = append(n.Children, h) }
func (n *Function) appendChild(h Handle) { n.Children = append(n.Children, h) }
func (n *Formula) appendChild(h Handle)  { n.Children = append(n.Children, h) }

func (n *Script) clone() Node {
	return &Script{Children: cloneHandles(n.Children)}
}

func (n *Title) clone() Node {
	c := *n
	return &c
}

func (n *Entity) clone() Node {
	c := *n
	c.Terms = cloneStrings(n.Terms)
	c.Refs = cloneStrings(n.Refs)
	c.Children = cloneHandles(n.Children)
	if n.Number != nil {
		v := *n.Number
		c.Number = &v
	}
	return &c
}

func (n *Property) clone() Node {
	return &Property{Name: n.Name, Children: cloneHandles(n.Children)}
}

func (n *Identifier) clone() Node {
	c := *n
	return &c
}

func (n *String) clone() Node {
	c := *n
	return &c
}

func (n *Number) clone() Node {
	c := *n
	return &c
}

func (n *Boolean) clone() Node {
	c := *n
	return &c
}

func (n *Color) clone() Node {
	c := *n
	return &c
}

func (n *Reference) clone() Node {
	c := *n
	return &c
}

func (n *Function) clone() Node {
	c := *n
	c.Children = cloneHandles(n.Children)
	return &c
}

func (n *Operator) clone() Node {
	c := *n
	return &c
}

func (n *TableAlias) clone() Node {
	c := *n
	return &c
}

func (n *Formula) clone() Node {
	return &Formula{Text: n.Text, Children: cloneHandles(n.Children)}
}

func (n *VPath) clone() Node {
	c := *n
	return &c
}

func cloneHandles(in []Handle) []Handle {
	if in == nil {
		return nil
	}
	out := make([]Handle, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
