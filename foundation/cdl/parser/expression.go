// File: expression.go
// Title: CDL Expression Parser
// Description: expression/term/factor recursion and the compound factor
//              units: vpath, function call, formula and parenthesized
//              expression.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial expression parser

package parser

import (
	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
	"github.com/msto63/cdlc/foundation/cdl/token"
)

// Operators that follow a term
var termOps = map[token.Kind]ast.Op{
	token.Star:         ast.OpMul,
	token.Slash:        ast.OpDiv,
	token.Equal:        ast.OpEq,
	token.NotEqual:     ast.OpNe,
	token.Less:         ast.OpLt,
	token.LessEqual:    ast.OpLe,
	token.Greater:      ast.OpGt,
	token.GreaterEqual: ast.OpGe,
	token.And:          ast.OpAnd,
	token.Or:           ast.OpOr,
}

// Operators that follow a factor
var factorOps = map[token.Kind]ast.Op{
	token.Plus:  ast.OpAdd,
	token.Minus: ast.OpSub,
}

// parseExpression parses `term [termOp expression]`.
//
// Both operator levels recurse into a full expression for their right-hand
// side, so chains associate to the right and there is no precedence
// climbing: 1 + 2 * 3 is 1 + (2 * 3) and 1 * 2 + 3 is 1 * (2 + 3).
func parseExpression(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	left, err := parseTerm(s, a, parent)
	if err != nil {
		return ast.NoHandle, err
	}
	if op, ok := termOps[s.KindAt(0)]; ok {
		return parseOperator(s, a, parent, left, op)
	}
	return left, nil
}

// parseTerm parses `factor [(+|-) expression]`
func parseTerm(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	left, err := parseFactor(s, a, parent)
	if err != nil {
		return ast.NoHandle, err
	}
	if op, ok := factorOps[s.KindAt(0)]; ok {
		return parseOperator(s, a, parent, left, op)
	}
	return left, nil
}

// parseOperator allocates the Operator at the operator token with left
// already set, then attaches the right-hand expression and widens the node
// over both operands
func parseOperator(s *token.Stream, a *ast.Ast, parent, left ast.Handle, op ast.Op) (ast.Handle, error) {
	at, err := s.Consume()
	if err != nil {
		return ast.NoHandle, err
	}

	h := a.Allocate(&ast.Operator{Op: op, Left: left}, at, parent)
	right, err := parseExpression(s, a, h)
	if err != nil {
		return ast.NoHandle, err
	}
	a.AttachChild(h, right)

	loc := spanOf(a.LocationOf(left), a.LocationOf(right))
	a.WidenLocation(h, loc.Start, loc.End)
	return h, nil
}

func parseFactor(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	s.SkipComments()

	unit := dispatch(factorUnits, s)
	if unit == nil {
		tok, err := s.Current()
		if err != nil {
			return ast.NoHandle, diag.EndOfInput("expression", s.Position())
		}
		return ast.NoHandle, diag.Unexpected("expression", tok.String(), tok.Span)
	}
	return unit.Parse(s, a, parent)
}

// vpathUnit parses the data path forms
//
//	table:variable  table:fn()  table:^variable  table:
//	:variable       :fn()       :^variable       :
type vpathUnit struct{}

func (vpathUnit) Name() string { return "vpath" }

func (vpathUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.Colon || s.Match(token.Identifier, token.Colon)
}

func (vpathUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	first, err := s.Current()
	if err != nil {
		return ast.NoHandle, err
	}

	node := &ast.VPath{}
	if first.Kind == token.Identifier {
		node.Table = first.Text
		s.Consume()
	}
	colon, err := s.Expect(token.Colon)
	if err != nil {
		return ast.NoHandle, err
	}
	loc := spanOf(first.Span, colon.Span)

	switch {
	case s.Match(token.Identifier, token.LeftParen):
		name, _ := s.Expect(token.Identifier)
		s.Consume()
		closing, err := s.Expect(token.RightParen)
		if err != nil {
			return ast.NoHandle, err
		}
		node.Function = name.Text
		loc.End = closing.Span.End
	case s.KindAt(0) == token.Identifier:
		name, _ := s.Expect(token.Identifier)
		node.Variable = name.Text
		loc.End = name.Span.End
	case s.KindAt(0) == token.HierarchyReference:
		name, _ := s.Expect(token.HierarchyReference)
		node.Variable = name.Text
		node.Hierarchy = true
		loc.End = name.Span.End
	}

	return a.Allocate(node, loc, parent), nil
}

// functionUnit parses name(expr, ...) and name[raw]
type functionUnit struct{}

func (functionUnit) Name() string { return "function" }

func (functionUnit) CanStart(s *token.Stream) bool {
	return s.Match(token.Identifier, token.LeftParen) || s.Match(token.Identifier, token.LeftBracket)
}

func (functionUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	name, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}

	if s.KindAt(0) == token.LeftBracket {
		inner, end, err := consumeBracketed(s)
		if err != nil {
			return ast.NoHandle, err
		}
		node := &ast.Function{Name: name.Text, Bracket: true, Raw: s.Text(inner)}
		return a.Allocate(node, source.Span{Start: name.Span.Start, End: end}, parent), nil
	}

	h := a.Allocate(&ast.Function{Name: name.Text}, name.Span, parent)
	if _, err := s.Expect(token.LeftParen); err != nil {
		return ast.NoHandle, err
	}

	for {
		s.SkipTrivia()
		switch s.KindAt(0) {
		case token.None:
			return ast.NoHandle, diag.EndOfInput(token.RightParen.String(), s.Position())
		case token.RightParen:
			closing, _ := s.Expect(token.RightParen)
			a.WidenLocation(h, name.Span.Start, closing.Span.End)
			return h, nil
		case token.Comma:
			s.Consume()
		default:
			arg, err := parseExpression(s, a, h)
			if err != nil {
				return ast.NoHandle, err
			}
			a.AttachChild(h, arg)
		}
	}
}

// formulaUnit parses an opaque `[ ... ]` run
type formulaUnit struct{}

func (formulaUnit) Name() string { return "formula" }

func (formulaUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.LeftBracket
}

func (formulaUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	start := s.Position()
	inner, end, err := consumeBracketed(s)
	if err != nil {
		return ast.NoHandle, err
	}
	return a.Allocate(&ast.Formula{Text: s.Text(inner)}, source.Span{Start: start, End: end}, parent), nil
}

// consumeBracketed consumes a balanced `[ ... ]` run and returns the span
// between the brackets and the end of the closing bracket
func consumeBracketed(s *token.Stream) (source.Span, int, error) {
	open, err := s.Expect(token.LeftBracket)
	if err != nil {
		return source.Span{}, 0, err
	}

	depth := 1
	for {
		tok, err := s.Current()
		if err != nil {
			return source.Span{}, 0, diag.EndOfInput(token.RightBracket.String(), s.Position())
		}
		s.Consume()

		switch tok.Kind {
		case token.LeftBracket:
			depth++
		case token.RightBracket:
			depth--
			if depth == 0 {
				return source.Span{Start: open.Span.End, End: tok.Span.Start}, tok.Span.End, nil
			}
		}
	}
}

// parenUnit parses `( expression )`. It returns the inner expression with
// its location widened over the parentheses.
type parenUnit struct{}

func (parenUnit) Name() string { return "parenthesized expression" }

func (parenUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.LeftParen
}

func (parenUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	open, err := s.Expect(token.LeftParen)
	if err != nil {
		return ast.NoHandle, err
	}
	s.SkipTrivia()

	inner, err := parseExpression(s, a, parent)
	if err != nil {
		return ast.NoHandle, err
	}

	s.SkipTrivia()
	closing, err := s.Expect(token.RightParen)
	if err != nil {
		return ast.NoHandle, err
	}
	a.WidenLocation(inner, open.Span.Start, closing.Span.End)
	return inner, nil
}
