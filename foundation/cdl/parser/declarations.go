// File: declarations.go
// Title: CDL Declaration Units
// Description: Grammar units for titles, entities, properties and table
//              aliases, plus the shared entity body loop.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial declaration units

package parser

import (
	"strings"

	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
	"github.com/msto63/cdlc/foundation/cdl/token"
)

// titleUnit parses `title "text"`. The string must end the line.
type titleUnit struct{}

func (titleUnit) Name() string { return "title" }

func (titleUnit) CanStart(s *token.Stream) bool {
	tok, err := s.Current()
	if err != nil || !tok.Is(token.Identifier, "title") || s.KindAt(1) != token.String {
		return false
	}
	switch s.KindAt(2) {
	case token.EOL, token.None, token.LineComment, token.BlockComment:
		return true
	}
	return false
}

func (titleUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	keyword, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}
	text, err := s.Expect(token.String)
	if err != nil {
		return ast.NoHandle, err
	}

	value, _ := unquote(text.Text)
	loc := source.Span{Start: keyword.Span.Start, End: text.Span.End}
	return a.Allocate(&ast.Title{Text: value}, loc, parent), nil
}

// entityUnit parses `term+ "label"? @ref* #id? number? { body }`
type entityUnit struct{}

func (entityUnit) Name() string { return "entity" }

// CanStart walks the header shape without consuming and requires the
// opening brace, so a bare identifier run is never taken for an entity
func (entityUnit) CanStart(s *token.Stream) bool {
	i := len(s.Run(token.Identifier))
	if i == 0 {
		return false
	}
	if s.KindAt(i) == token.String {
		i++
	}
	for s.KindAt(i) == token.Reference {
		i++
	}
	switch s.KindAt(i) {
	case token.Hash:
		if k := s.KindAt(i + 1); k != token.Identifier && k != token.Number {
			return false
		}
		i += 2
	case token.Color:
		i++
	}
	if s.KindAt(i) == token.Number {
		i++
	}
	return s.KindAt(i) == token.LeftBrace
}

func (entityUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	entity := &ast.Entity{}

	terms := s.Run(token.Identifier)
	for _, t := range terms {
		entity.Terms = append(entity.Terms, t.Text)
	}
	header, err := s.ConsumeN(len(terms))
	if err != nil {
		return ast.NoHandle, err
	}
	start, end := header.Start, header.End

	if s.KindAt(0) == token.String {
		tok, _ := s.Expect(token.String)
		entity.Label, _ = unquote(tok.Text)
		end = tok.Span.End
	}

	for s.KindAt(0) == token.Reference {
		tok, _ := s.Expect(token.Reference)
		entity.Refs = append(entity.Refs, tok.Text)
		end = tok.Span.End
	}

	switch s.KindAt(0) {
	case token.Hash:
		id, err := s.Peek(1)
		if err != nil {
			return ast.NoHandle, err
		}
		if id.Kind != token.Identifier && id.Kind != token.Number {
			return ast.NoHandle, diag.Unexpected("entity id", id.String(), id.Span)
		}
		s.ConsumeN(2)
		entity.ID = id.Text
		end = id.Span.End
	case token.Color:
		tok, _ := s.Expect(token.Color)
		entity.ID = tok.Text
		end = tok.Span.End
	}

	if s.KindAt(0) == token.Number {
		tok, _ := s.Expect(token.Number)
		value, err := parseNumber(tok)
		if err != nil {
			return ast.NoHandle, err
		}
		entity.Number = &value
		end = tok.Span.End
	}

	h := a.Allocate(entity, source.Span{Start: start, End: end}, parent)
	if err := parseBody(s, a, h, start); err != nil {
		return ast.NoHandle, err
	}
	return h, nil
}

// anonymousEntityUnit parses a bare `{ body }` used as a value
type anonymousEntityUnit struct{}

func (anonymousEntityUnit) Name() string { return "anonymous entity" }

func (anonymousEntityUnit) CanStart(s *token.Stream) bool {
	return s.KindAt(0) == token.LeftBrace
}

func (anonymousEntityUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	start := s.Position()
	h := a.Allocate(&ast.Entity{}, source.Span{Start: start, End: start + 1}, parent)
	if err := parseBody(s, a, h, start); err != nil {
		return ast.NoHandle, err
	}
	return h, nil
}

// parseBody consumes `{ (Property | TableAlias | Entity)* }` into entity and
// widens the entity to end at the closing brace
func parseBody(s *token.Stream, a *ast.Ast, entity ast.Handle, start int) error {
	if _, err := s.Expect(token.LeftBrace); err != nil {
		return err
	}

	for {
		s.SkipTrivia()

		tok, err := s.Current()
		if err != nil {
			return diag.EndOfInput(token.RightBrace.String(), s.Position())
		}
		if tok.Kind == token.RightBrace {
			s.Consume()
			a.WidenLocation(entity, start, tok.Span.End)
			return nil
		}

		unit := dispatch(bodyUnits, s)
		if unit == nil {
			return diag.Unknown(tok.String(), "entity body", tok.Span)
		}
		child, err := unit.Parse(s, a, entity)
		if err != nil {
			return err
		}
		a.AttachChild(entity, child)
	}
}

// propertyUnit parses `name: expr (, expr)*` up to the end of the line or
// the closing brace of the enclosing entity, which is left unconsumed
type propertyUnit struct{}

func (propertyUnit) Name() string { return "property" }

func (propertyUnit) CanStart(s *token.Stream) bool {
	return s.Match(token.Identifier, token.Colon)
}

func (propertyUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	name, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}
	colon, err := s.Expect(token.Colon)
	if err != nil {
		return ast.NoHandle, err
	}

	h := a.Allocate(&ast.Property{Name: name.Text}, source.Span{Start: name.Span.Start, End: colon.Span.End}, parent)
	if err := parseList(s, a, h); err != nil {
		return ast.NoHandle, err
	}

	if children := a.Children(h); len(children) > 0 {
		last := a.LocationOf(children[len(children)-1])
		a.WidenLocation(h, name.Span.Start, last.End)
	}
	return h, nil
}

// parseList parses the comma separated values of a property. A trailing
// comma continues the list on the next line.
func parseList(s *token.Stream, a *ast.Ast, property ast.Handle) error {
	for {
		switch s.KindAt(0) {
		case token.None, token.EOL, token.RightBrace:
			return nil
		case token.LineComment, token.BlockComment:
			s.Consume()
		case token.Comma:
			s.Consume()
			s.SkipTrivia()
		default:
			value, err := parseExpression(s, a, property)
			if err != nil {
				return err
			}
			a.AttachChild(property, value)
		}
	}
}

// tableAliasUnit parses `table alias = path` with an optional trailing colon
type tableAliasUnit struct{}

func (tableAliasUnit) Name() string { return "table alias" }

func (tableAliasUnit) CanStart(s *token.Stream) bool {
	tok, err := s.Current()
	if err != nil || !strings.EqualFold(tok.Text, "table") {
		return false
	}
	return s.Match(token.Identifier, token.Identifier, token.Equal, token.Identifier)
}

func (tableAliasUnit) Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error) {
	keyword, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}
	alias, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}
	if _, err := s.Expect(token.Equal); err != nil {
		return ast.NoHandle, err
	}
	path, err := s.Expect(token.Identifier)
	if err != nil {
		return ast.NoHandle, err
	}

	end := path.Span.End
	if s.KindAt(0) == token.Colon {
		span, _ := s.Consume()
		end = span.End
	}

	node := &ast.TableAlias{Alias: alias.Text, Path: path.Text}
	return a.Allocate(node, source.Span{Start: keyword.Span.Start, End: end}, parent), nil
}
