// File: parser.go
// Title: CDL Parser
// Description: Recursive-descent parser from a token stream into an Ast.
//              Grammar units are tried from ordered dispatch tables; the
//              first unit whose CanStart accepts the lookahead parses it.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial parser

package parser

import (
	"errors"
	"io"

	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
	"github.com/msto63/cdlc/foundation/cdl/token"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

// Unit parses one syntactic construct
type Unit interface {
	// Name is used in traces and error context
	Name() string

	// CanStart inspects the lookahead without consuming
	CanStart(s *token.Stream) bool

	// Parse consumes the construct and allocates exactly one top-level node
	// below parent. The caller attaches the returned handle.
	Parse(s *token.Stream, a *ast.Ast, parent ast.Handle) (ast.Handle, error)
}

// Dispatch tables. Order is significant only for readability: the
// predicates within each table are disjoint.
var (
	declarationUnits = []Unit{titleUnit{}, entityUnit{}}
	bodyUnits        = []Unit{propertyUnit{}, tableAliasUnit{}, entityUnit{}}
	factorUnits      = []Unit{
		vpathUnit{},
		functionUnit{},
		identifierUnit{},
		stringUnit{},
		numberUnit{},
		referenceUnit{},
		colorUnit{},
		booleanUnit{},
		formulaUnit{},
		anonymousEntityUnit{},
		parenUnit{},
	}
)

// dispatch returns the first unit accepting the lookahead, or nil
func dispatch(units []Unit, s *token.Stream) Unit {
	for _, u := range units {
		if u.CanStart(s) {
			return u
		}
	}
	return nil
}

// Options configures a parse
type Options struct {
	// Logger receives trace and debug output. Nil disables logging.
	Logger *mdwlog.Logger

	// Lines locates diagnostics. Without it errors carry offsets only.
	Lines *source.LineIndex

	// Source enables raw text for bracket functions and formulas
	Source string
}

// Parser holds the state of a single parse
type Parser struct {
	stream *token.Stream
	ast    *ast.Ast
	logger *mdwlog.Logger
	lines  *source.LineIndex
}

// New creates a parser over tokens
func New(tokens []token.Token, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelFatal, Output: io.Discard})
	}

	return &Parser{
		stream: token.NewStream(tokens).WithSource(opts.Source),
		ast:    ast.New(),
		logger: logger.WithName("parser"),
		lines:  opts.Lines,
	}
}

// Parse parses tokens into an Ast. Any error aborts the parse; no partial
// Ast is returned. Errors are *diag.Diagnostic values.
func Parse(tokens []token.Token, opts Options) (*ast.Ast, error) {
	return New(tokens, opts).Parse()
}

// ParseSource tokenizes and parses src. Diagnostics carry line and column.
func ParseSource(src string, opts Options) (*ast.Ast, error) {
	if opts.Lines == nil {
		opts.Lines = source.NewLineIndex(src)
	}
	opts.Source = src

	tokens, err := token.Tokenize(src)
	if err != nil {
		return nil, locate(err, opts.Lines)
	}
	return Parse(tokens, opts)
}

// Parse runs the parser. It must be called at most once.
func (p *Parser) Parse() (*ast.Ast, error) {
	if err := p.parseScript(); err != nil {
		err = locate(err, p.lines)
		p.logger.Debug("parse failed", mdwlog.Err(err), mdwlog.Field("cursor", p.stream.Cursor()))
		return nil, err
	}

	p.logger.Debug("parsed script", mdwlog.Fields{
		"tokens": p.stream.Len(),
		"nodes":  p.ast.Len(),
	})
	return p.ast, nil
}

// parseScript is the root unit: declarations until the input is exhausted
func (p *Parser) parseScript() error {
	s := p.stream
	root := p.ast.Allocate(&ast.Script{}, source.Span{}, ast.NoHandle)

	for {
		s.SkipTrivia()
		if s.AtEnd() {
			break
		}

		unit := dispatch(declarationUnits, s)
		if unit == nil {
			tok, _ := s.Current()
			return diag.Unknown(tok.String(), "script", tok.Span)
		}

		p.logger.Trace("declaration", mdwlog.Fields{"unit": unit.Name(), "offset": s.Position()})
		child, err := unit.Parse(s, p.ast, root)
		if err != nil {
			return err
		}
		p.ast.AttachChild(root, child)
	}

	p.ast.WidenLocation(root, 0, s.Position())
	return nil
}

func locate(err error, lines *source.LineIndex) error {
	var d *diag.Diagnostic
	if lines != nil && errors.As(err, &d) {
		d.Locate(lines)
	}
	return err
}
