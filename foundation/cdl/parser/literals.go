// File: literals.go
// Title: CDL Literal Units
// Description: Single-token grammar units: identifier, string, number,
//              boolean, color and reference.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial literal units

package parser

import (
	"strconv"
	"strings"

	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
	"github.com/msto63/cdlc/foundation/cdl/token"
)

// identifierUnit parses a bare name. Names followed by ':', '(' or '[' belong
// to vpaths and functions.
type identifierUnit struct{}

func (identifierUnit) Name() string { return "identifier" }

func (identifierUnit) CanStart(s *token.Stream) bool {
	if s.KindAt(0) != token.Identifier {
		return false
	}
	switch s.KindAt(1) {
	case token.Colon, token.LeftParen, token.LeftBracket:
		return false
	}
	return true
}

func (identifierUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	tok, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}
	return a.Allocate(&ast.Identifier{Name: tok.Text}, tok.Span, parent), nil
}

type stringUnit struct{}

func (stringUnit) Name() string { return "string" }

func (stringUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.String
}

func (stringUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	tok, err := s.Expect(token.String)
	if err != nil {
		return ast.NoHandle, err
	}
	value, quote := unquote(tok.Text)
	return a.Allocate(&ast.String{Value: value, Quote: quote}, tok.Span, parent), nil
}

// numberUnit parses a number with an optional trailing '%'
type numberUnit struct{}

func (numberUnit) Name() string { return "number" }

func (numberUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.Number
}

func (numberUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	tok, err := s.Expect(token.Number)
	if err != nil {
		return ast.NoHandle, err
	}
	value, err := parseNumber(tok)
	if err != nil {
		return ast.NoHandle, err
	}

	node := &ast.Number{Value: value, Raw: tok.Text}
	loc := tok.Span
	if s.KindAt(0) == token.Percent {
		span, _ := s.Consume()
		node.Value /= 100
		node.Percent = true
		loc.End = span.End
	}
	return a.Allocate(node, loc, parent), nil
}

type booleanUnit struct{}

func (booleanUnit) Name() string { return "boolean" }

func (booleanUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.Boolean
}

func (booleanUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	tok, err := s.Expect(token.Boolean)
	if err != nil {
		return ast.NoHandle, err
	}
	return a.Allocate(&ast.Boolean{Value: tok.Text == "true"}, tok.Span, parent), nil
}

type colorUnit struct{}

func (colorUnit) Name() string { return "color" }

func (colorUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.Color
}

func (colorUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	tok, err := s.Expect(token.Color)
	if err != nil {
		return ast.NoHandle, err
	}
	return a.Allocate(&ast.Color{Hex: tok.Text}, tok.Span, parent), nil
}

// referenceUnit parses @name. The target stays unset until resolution.
type referenceUnit struct{}

func (referenceUnit) Name() string { return "reference" }

func (referenceUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.Reference
}

func (referenceUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	tok, err := s.Expect(token.Reference)
	if err != nil {
		return ast.NoHandle, err
	}
	return a.Allocate(&ast.Reference{Name: tok.Text, Target: ast.NoHandle}, tok.Span, parent), nil
}

func parseNumber(tok token.Token) (float64, error) {
	value, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return 0, &diag.Diagnostic{
			Kind:   diag.InvalidLiteral,
			Actual: tok.Text,
			Span:   tok.Span,
		}
	}
	return value, nil
}

// unquote strips the quotes of a string token and resolves backslash
// escapes
func unquote(text string) (string, ast.QuoteStyle) {
	quote := ast.QuoteDouble
	if strings.HasPrefix(text, "'") {
		quote = ast.QuoteSingle
	}
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	if !strings.Contains(text, `\`) {
		return text, quote
	}

	var b strings.Builder
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\\' && i+1 < len(text) {
			i++
			switch text[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(text[i])
			}
			continue
		}
		b.WriteByte(ch)
	}
	return b.String(), quote
}

// spanOf returns the range from the start of first to the end of last
func spanOf(first, last source.Span) source.Span {
	return source.Span{Start: first.Start, End: last.End}
}
