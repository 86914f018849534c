package ast

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/msto63/cdlc/foundation/cdl/source"
)

func span(start, end int) source.Span {
	return source.Span{Start: start, End: end}
}

// buildSample creates the tree for `page #p { v: 1 + @p }`
func buildSample() (*Ast, map[string]Handle) {
	a := New()
	h := make(map[string]Handle)

	h["root"] = a.Allocate(&Script{}, span(0, 21), NoHandle)
	h["page"] = a.Allocate(&Entity{Terms: []string{"page"}, ID: "p"}, span(0, 21), h["root"])
	a.AttachChild(h["root"], h["page"])
	h["v"] = a.Allocate(&Property{Name: "v"}, span(10, 19), h["page"])
	a.AttachChild(h["page"], h["v"])
	h["one"] = a.Allocate(&Number{Value: 1, Raw: "1"}, span(13, 14), h["v"])
	h["plus"] = a.Allocate(&Operator{Op: OpAdd, Left: h["one"]}, span(15, 16), h["v"])
	h["ref"] = a.Allocate(&Reference{Name: "p"}, span(17, 19), h["plus"])
	a.AttachChild(h["plus"], h["ref"])
	a.WidenLocation(h["plus"], 13, 19)
	a.AttachChild(h["v"], h["plus"])

	return a, h
}

func TestAllocateAndAttach(t *testing.T) {
	a, h := buildSample()

	if a.Root() != h["root"] {
		t.Errorf("Root() = %v, want %v", a.Root(), h["root"])
	}
	if a.Len() != 6 {
		t.Errorf("Len() = %d, want 6", a.Len())
	}

	tests := []struct {
		name   string
		handle Handle
		parent Handle
	}{
		{"root", h["root"], NoHandle},
		{"page", h["page"], h["root"]},
		{"left operand adopted by operator", h["one"], h["plus"]},
		{"right operand", h["ref"], h["plus"]},
		{"operator", h["plus"], h["v"]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Parent(tt.handle); got != tt.parent {
				t.Errorf("Parent() = %v, want %v", got, tt.parent)
			}
		})
	}

	op := a.Node(h["plus"]).(*Operator)
	if op.Right != h["ref"] {
		t.Errorf("Operator.Right = %v, want %v", op.Right, h["ref"])
	}
	children := a.Children(h["plus"])
	if len(children) != 2 || children[0] != h["one"] || children[1] != h["ref"] {
		t.Errorf("Children(operator) = %v, want [%v %v]", children, h["one"], h["ref"])
	}
}

func TestHandlesAreOrdered(t *testing.T) {
	a, _ := buildSample()
	handles := a.Handles()
	for i := 1; i < len(handles); i++ {
		if handles[i-1] >= handles[i] {
			t.Errorf("Handles()[%d] = %v not after %v", i, handles[i], handles[i-1])
		}
	}
	if NoHandle.Valid() {
		t.Error("NoHandle.Valid() = true, want false")
	}
}

func TestAttachChildToLeafPanics(t *testing.T) {
	a, h := buildSample()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("AttachChild() on Number did not panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "Number") {
			t.Errorf("panic = %v, want message naming Number", r)
		}
	}()
	a.AttachChild(h["one"], h["ref"])
}

func TestInvalidHandlePanics(t *testing.T) {
	a, _ := buildSample()

	defer func() {
		if recover() == nil {
			t.Error("LocationOf(NoHandle) did not panic")
		}
	}()
	a.LocationOf(NoHandle)
}

func TestLocations(t *testing.T) {
	a, h := buildSample()

	if got := a.LocationOf(h["plus"]); got != span(13, 19) {
		t.Errorf("LocationOf(operator) = %v, want 13..19", got)
	}

	a.Walk(func(node Handle, _ int) bool {
		loc := a.LocationOf(node)
		for _, child := range a.Children(node) {
			if !loc.Covers(a.LocationOf(child)) {
				t.Errorf("%s %v does not cover child %s %v", a.Summary(node), loc, a.Summary(child), a.LocationOf(child))
			}
		}
		return true
	})
}

func TestWalk(t *testing.T) {
	a, h := buildSample()

	var order []Handle
	var depths []int
	a.Walk(func(node Handle, depth int) bool {
		order = append(order, node)
		depths = append(depths, depth)
		return true
	})

	want := []Handle{h["root"], h["page"], h["v"], h["plus"], h["one"], h["ref"]}
	wantDepths := []int{0, 1, 2, 3, 4, 4}
	if len(order) != len(want) {
		t.Fatalf("Walk() visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] || depths[i] != wantDepths[i] {
			t.Errorf("Walk()[%d] = %v at depth %d, want %v at depth %d", i, order[i], depths[i], want[i], wantDepths[i])
		}
	}

	visited := 0
	a.Walk(func(node Handle, _ int) bool {
		visited++
		return node != h["page"]
	})
	if visited != 2 {
		t.Errorf("Walk() with pruning visited %d nodes, want 2", visited)
	}
}

func TestWalkDoesNotFollowTargets(t *testing.T) {
	a, h := buildSample()
	a.Node(h["ref"]).(*Reference).Target = h["page"]

	count := 0
	a.Walk(func(Handle, int) bool {
		count++
		return true
	})
	if count != a.Len() {
		t.Errorf("Walk() visited %d nodes, want %d", count, a.Len())
	}
}

func TestClone(t *testing.T) {
	a, h := buildSample()
	a.Node(h["ref"]).(*Reference).Target = h["page"]

	c := a.Clone()
	if c.Len() != a.Len() || c.Root() != a.Root() {
		t.Fatalf("Clone() has %d nodes root %v, want %d root %v", c.Len(), c.Root(), a.Len(), a.Root())
	}

	ref := c.Node(h["ref"]).(*Reference)
	if ref.Target != h["page"] {
		t.Errorf("cloned Reference.Target = %v, want %v", ref.Target, h["page"])
	}
	if c.Parent(h["one"]) != h["plus"] {
		t.Errorf("cloned Parent() = %v, want %v", c.Parent(h["one"]), h["plus"])
	}

	c.Node(h["page"]).(*Entity).Terms[0] = "changed"
	c.AttachChild(h["page"], c.Allocate(&Property{Name: "w"}, span(0, 0), h["page"]))
	c.WidenLocation(h["root"], 0, 99)

	page := a.Node(h["page"]).(*Entity)
	if page.Terms[0] != "page" || len(page.Children) != 1 {
		t.Errorf("original entity changed by clone: %+v", page)
	}
	if a.LocationOf(h["root"]) != span(0, 21) {
		t.Errorf("original location changed by clone: %v", a.LocationOf(h["root"]))
	}
}

func TestQueries(t *testing.T) {
	a, h := buildSample()

	if got := a.SelectProperty("v"); len(got) != 1 || got[0] != h["v"] {
		t.Errorf("SelectProperty(v) = %v, want [%v]", got, h["v"])
	}
	if got := a.SelectPropertyValue("v"); len(got) != 1 || got[0] != h["plus"] {
		t.Errorf("SelectPropertyValue(v) = %v, want [%v]", got, h["plus"])
	}
	if got := a.SelectProperty("missing"); len(got) != 0 {
		t.Errorf("SelectProperty(missing) = %v, want empty", got)
	}
	if got := a.FindEntities("p", "q"); len(got) != 1 || got[0] != h["page"] {
		t.Errorf("FindEntities(p, q) = %v, want [%v]", got, h["page"])
	}
	if got := a.FindEntities(); len(got) != 1 {
		t.Errorf("FindEntities() = %v, want one entity", got)
	}
	if got, ok := a.ChildProperty(h["page"], "v"); !ok || got != h["v"] {
		t.Errorf("ChildProperty(page, v) = %v, %v", got, ok)
	}
	if _, ok := a.ChildEntity(h["page"], "x"); ok {
		t.Error("ChildEntity(page, x) found a node, want none")
	}
}

func TestStats(t *testing.T) {
	a, h := buildSample()
	a.Node(h["ref"]).(*Reference).Target = h["page"]

	s := a.Stats()
	if s.Nodes != 6 || s.MaxDepth != 4 {
		t.Errorf("Stats() = %+v, want 6 nodes depth 4", s)
	}
	if s.ByKind["Entity"] != 1 || s.ByKind["Operator"] != 1 {
		t.Errorf("Stats().ByKind = %v", s.ByKind)
	}
	if s.References != 1 || s.Resolved != 1 {
		t.Errorf("Stats() references = %d resolved = %d, want 1 and 1", s.References, s.Resolved)
	}
}

func TestExportJSON(t *testing.T) {
	a, h := buildSample()
	a.Node(h["ref"]).(*Reference).Target = h["page"]

	data, err := json.Marshal(a.Export())
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var tree struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind     string   `json:"kind"`
			Terms    []string `json:"terms"`
			EntityID string   `json:"entity_id"`
			Children []struct {
				Name     string `json:"name"`
				Children []struct {
					Op       string `json:"op"`
					Children []struct {
						Kind   string      `json:"kind"`
						Value  interface{} `json:"value"`
						Target *uint32     `json:"target"`
					} `json:"children"`
				} `json:"children"`
			} `json:"children"`
		} `json:"children"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	page := tree.Children[0]
	if page.EntityID != "p" || page.Terms[0] != "page" {
		t.Errorf("exported entity = %+v", page)
	}
	op := page.Children[0].Children[0]
	if op.Op != "+" || len(op.Children) != 2 {
		t.Fatalf("exported operator = %+v", op)
	}
	if op.Children[0].Value != 1.0 {
		t.Errorf("exported left value = %v, want 1", op.Children[0].Value)
	}
	if op.Children[1].Target == nil || *op.Children[1].Target != uint32(h["page"]) {
		t.Errorf("exported target = %v, want %d", op.Children[1].Target, h["page"])
	}
}

func TestSummary(t *testing.T) {
	a, h := buildSample()
	n := 2.0

	tests := []struct {
		node Node
		want string
	}{
		{&Entity{Terms: []string{"widget", "kpi"}, Label: "Sales", Refs: []string{"x"}, ID: "a", Number: &n}, `Entity widget kpi "Sales" @x #a 2`},
		{&String{Value: "it", Quote: QuoteSingle}, "String 'it'"},
		{&Number{Value: 0.5, Raw: "50", Percent: true}, "Number 50%"},
		{&VPath{Table: "sales", Variable: "total", Hierarchy: true}, "VPath sales:^total"},
		{&VPath{Function: "count"}, "VPath :count()"},
		{&Function{Name: "score", Bracket: true, Raw: "a = b"}, "Function score[a = b]"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			hn := a.Allocate(tt.node, span(0, 0), h["root"])
			if got := a.Summary(hn); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
