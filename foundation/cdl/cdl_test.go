package cdl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

const salesReport = `title "Monthly sales"

report #sales {
  table s = sales_2024
  kpi "Revenue" #rev {
    value: s:total * 1.19
    color: #2e7d32
  }
  chart { source: @rev }
}
`

func TestCompile(t *testing.T) {
	result, err := Compile(salesReport, Options{Name: "sales.cdl"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !result.OK() {
		t.Errorf("Compile() diagnostics = %v, want none", result.Diagnostics)
	}
	if got := len(result.Ast.Children(result.Ast.Root())); got != 2 {
		t.Errorf("declarations = %d, want 2", got)
	}

	rev, ok := result.Symbols.Lookup("rev")
	if !ok {
		t.Fatal("Lookup(rev) not found")
	}
	for _, h := range result.Ast.Handles() {
		if r, ok := result.Ast.Node(h).(*ast.Reference); ok && r.Target != rev {
			t.Errorf("@%s target = %v, want %v", r.Name, r.Target, rev)
		}
	}

	if result.Tokens == 0 {
		t.Error("Tokens = 0")
	}
	if result.Timings.Total < result.Timings.Parse {
		t.Errorf("Timings = %+v, total below parse", result.Timings)
	}
}

func TestCompileDiagnostics(t *testing.T) {
	result, err := Compile("page {\n  v: @missing\n}\n", Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if result.OK() || result.Diagnostics.Count(diag.DanglingReference) != 1 {
		t.Fatalf("Diagnostics = %v, want one dangling reference", result.Diagnostics)
	}
	if got := result.Diagnostics[0].Error(); got != "line 2, column 6: reference @missing does not match any entity id" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCompileSkipResolve(t *testing.T) {
	result, err := Compile("a #x { v: @x }", Options{SkipResolve: true})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if result.Symbols != nil || len(result.Diagnostics) != 0 {
		t.Errorf("Compile() resolved with SkipResolve")
	}
	if s := result.Ast.Stats(); s.Resolved != 0 {
		t.Errorf("Stats().Resolved = %d, want 0", s.Resolved)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
		line int
	}{
		{"lexer", "a {\n  b: ?\n}", diag.UnknownToken, 2},
		{"parser", "a {\n  b: 1\n", diag.UnexpectedEndOfInput, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compile(tt.src, Options{})
			if result != nil {
				t.Error("Compile() returned a result on error")
			}
			var d *diag.Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("Compile() error = %v, want *diag.Diagnostic", err)
			}
			if d.Kind != tt.kind || d.Position.Line != tt.line {
				t.Errorf("Compile() error = %v (%v), want %v on line %d", err, d.Kind, tt.kind, tt.line)
			}
			if !IsSyntaxError(err) {
				t.Errorf("IsSyntaxError(%v) = false, want true", err)
			}
		})
	}
}

func TestCompileInputLimit(t *testing.T) {
	_, err := Compile(strings.Repeat("a {}\n", 10), Options{MaxInputBytes: 20})
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidLength) {
		t.Errorf("Compile() error = %v, want %s", err, mdwerror.CodeInvalidLength)
	}
	if IsSyntaxError(err) {
		t.Errorf("IsSyntaxError(%v) = true, want false", err)
	}
}

func TestCompileLogsPhases(t *testing.T) {
	var buf bytes.Buffer
	logger := mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelDebug, Format: mdwlog.FormatLogfmt, Output: &buf})

	if _, err := Compile(salesReport, Options{Name: "sales.cdl", Logger: logger}); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"compile tokenize", "compile parse", "compile resolve", "compile completed", "source=\"sales.cdl\""} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
