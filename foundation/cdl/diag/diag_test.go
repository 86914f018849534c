package diag

import (
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	"github.com/msto63/cdlc/foundation/cdl/source"
)

func TestDiagnosticError(t *testing.T) {
	lines := source.NewLineIndex("page {\n  v 1\n}\n")

	tests := []struct {
		name string
		diag *Diagnostic
		want string
	}{
		{
			name: "unexpected token with position",
			diag: Unexpected("COLON", "NUMBER", source.Span{Start: 11, End: 12}).Locate(lines),
			want: "line 2, column 5: expected COLON, found NUMBER",
		},
		{
			name: "end of input without position",
			diag: EndOfInput("RIGHT_BRACE", 16),
			want: "offset 16: expected RIGHT_BRACE, found end of input",
		},
		{
			name: "unknown token",
			diag: Unknown("NUMBER", "entity body", source.Span{Start: 11, End: 12}).Locate(lines),
			want: "line 2, column 5: unknown token NUMBER while parsing entity body",
		},
		{
			name: "dangling reference",
			diag: Dangling("missing", source.Span{Start: 0, End: 8}).Locate(lines),
			want: "line 1, column 1: reference @missing does not match any entity id",
		},
		{
			name: "duplicate identifier names the first declaration",
			diag: Duplicate("w", source.Span{Start: 0, End: 4}, source.Span{Start: 9, End: 10}).Locate(lines),
			want: "line 2, column 3: entity id #w already declared at 1:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diag.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindFatalAndCode(t *testing.T) {
	tests := []struct {
		kind  Kind
		fatal bool
		code  mdwerror.Code
	}{
		{UnexpectedEndOfInput, true, mdwerror.CodeCDLUnexpectedEOF},
		{UnexpectedToken, true, mdwerror.CodeCDLUnexpectedToken},
		{UnknownToken, true, mdwerror.CodeCDLUnknownToken},
		{InvalidLiteral, true, mdwerror.CodeCDLInvalidLiteral},
		{DanglingReference, false, mdwerror.CodeCDLDanglingReference},
		{DuplicateIdentifier, false, mdwerror.CodeCDLDuplicateIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Fatal(); got != tt.fatal {
				t.Errorf("Fatal() = %v, want %v", got, tt.fatal)
			}
			if got := tt.kind.Code(); got != tt.code {
				t.Errorf("Code() = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestToError(t *testing.T) {
	lines := source.NewLineIndex("a: @x\n")
	d := Dangling("x", source.Span{Start: 3, End: 5}).Locate(lines)

	err := d.ToError()
	if !mdwerror.HasCode(err, mdwerror.CodeCDLDanglingReference) {
		t.Errorf("code = %v", err.Code())
	}
	details := err.Details()
	if details["line"] != 1 || details["column"] != 4 || details["identifier"] != "x" {
		t.Errorf("details = %v", details)
	}
}

func TestList(t *testing.T) {
	var empty List
	if empty.Err() != nil {
		t.Error("Err() on empty list should be nil")
	}

	l := List{
		Dangling("a", source.Span{Start: 0, End: 1}),
		Dangling("b", source.Span{Start: 2, End: 3}),
		Duplicate("c", source.Span{Start: 0, End: 1}, source.Span{Start: 4, End: 5}),
	}

	if l.Count(DanglingReference) != 2 || l.Count(DuplicateIdentifier) != 1 {
		t.Errorf("Count() mismatch for %v", l)
	}

	err := l.Err()
	var list List
	if !errors.As(err, &list) || len(list) != 3 {
		t.Fatalf("errors.As() did not recover the list: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "3 errors:") {
		t.Errorf("Error() = %q", err.Error())
	}

	l.Locate(source.NewLineIndex("abcdef"))
	if !l[2].Located() || l[2].RelatedPosition == nil {
		t.Error("Locate() should set positions on every entry")
	}
}
