// File: diag.go
// Title: CDL Diagnostics
// Description: Error kinds reported by the CDL front-end. Parse-phase kinds
//              abort a compilation; resolution-phase kinds are collected and
//              returned next to a complete AST.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial implementation

package diag

import (
	"fmt"
	"strings"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	"github.com/msto63/cdlc/foundation/cdl/source"
)

// Kind identifies a diagnostic
type Kind int

const (
	// UnexpectedEndOfInput means the parser needed a token after the last one
	UnexpectedEndOfInput Kind = iota + 1

	// UnexpectedToken means a specific token kind was required and not found
	UnexpectedToken

	// UnknownToken means no grammar unit accepts the token at a declaration point
	UnknownToken

	// InvalidLiteral means a literal token could not be converted to its value
	InvalidLiteral

	// DanglingReference means no entity declares the referenced id
	DanglingReference

	// DuplicateIdentifier means two entities declare the same id
	DuplicateIdentifier
)

func (k Kind) String() string {
	switch k {
	case UnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnknownToken:
		return "UnknownToken"
	case InvalidLiteral:
		return "InvalidLiteral"
	case DanglingReference:
		return "DanglingReference"
	case DuplicateIdentifier:
		return "DuplicateIdentifier"
	default:
		return "Unknown"
	}
}

// Fatal reports whether the kind aborts a parse
func (k Kind) Fatal() bool {
	switch k {
	case UnexpectedEndOfInput, UnexpectedToken, UnknownToken, InvalidLiteral:
		return true
	default:
		return false
	}
}

// Code maps the kind to its structured error code
func (k Kind) Code() mdwerror.Code {
	switch k {
	case UnexpectedEndOfInput:
		return mdwerror.CodeCDLUnexpectedEOF
	case UnexpectedToken:
		return mdwerror.CodeCDLUnexpectedToken
	case UnknownToken:
		return mdwerror.CodeCDLUnknownToken
	case InvalidLiteral:
		return mdwerror.CodeCDLInvalidLiteral
	case DanglingReference:
		return mdwerror.CodeCDLDanglingReference
	case DuplicateIdentifier:
		return mdwerror.CodeCDLDuplicateIdentifier
	default:
		return mdwerror.CodeUnknown
	}
}

// Diagnostic is a single front-end error. It implements error.
//
// Span is the primary location: the offending token for parse errors, the
// reference for DanglingReference and the second declaration for
// DuplicateIdentifier. Related holds the first declaration of a duplicate.
type Diagnostic struct {
	Kind       Kind
	Message    string
	Expected   string
	Actual     string
	Identifier string
	Span       source.Span
	Related    *source.Span
	Context    string

	// Filled in by Locate
	Position        source.Position
	RelatedPosition *source.Position
}

// EndOfInput reports that the cursor ran past the last token. offset is the
// end of the last token, which is where the missing token was expected.
func EndOfInput(expected string, offset int) *Diagnostic {
	return &Diagnostic{
		Kind:     UnexpectedEndOfInput,
		Expected: expected,
		Span:     source.Span{Start: offset, End: offset},
	}
}

// Unexpected reports a token of the wrong kind
func Unexpected(expected, actual string, span source.Span) *Diagnostic {
	return &Diagnostic{
		Kind:     UnexpectedToken,
		Expected: expected,
		Actual:   actual,
		Span:     span,
	}
}

// Unknown reports a token no grammar unit accepts while parsing context
func Unknown(actual, context string, span source.Span) *Diagnostic {
	return &Diagnostic{
		Kind:    UnknownToken,
		Actual:  actual,
		Context: context,
		Span:    span,
	}
}

// Dangling reports a reference without a matching declaration
func Dangling(identifier string, span source.Span) *Diagnostic {
	return &Diagnostic{
		Kind:       DanglingReference,
		Identifier: identifier,
		Span:       span,
	}
}

// Duplicate reports a second declaration of identifier
func Duplicate(identifier string, first, second source.Span) *Diagnostic {
	return &Diagnostic{
		Kind:       DuplicateIdentifier,
		Identifier: identifier,
		Span:       second,
		Related:    &first,
	}
}

// Locate fills in line and column information from lines
func (d *Diagnostic) Locate(lines *source.LineIndex) *Diagnostic {
	if lines == nil {
		return d
	}
	d.Position = lines.Position(d.Span.Start)
	if d.Related != nil {
		p := lines.Position(d.Related.Start)
		d.RelatedPosition = &p
	}
	return d
}

// Located reports whether Locate has run
func (d *Diagnostic) Located() bool {
	return d.Position.Line > 0
}

// Describe returns the message without position information
func (d *Diagnostic) Describe() string {
	if d.Message != "" {
		return d.Message
	}

	switch d.Kind {
	case UnexpectedEndOfInput:
		if d.Expected != "" {
			return fmt.Sprintf("expected %s, found end of input", d.Expected)
		}
		return "unexpected end of input"
	case UnexpectedToken:
		return fmt.Sprintf("expected %s, found %s", d.Expected, d.Actual)
	case UnknownToken:
		if d.Context != "" {
			return fmt.Sprintf("unknown token %s while parsing %s", d.Actual, d.Context)
		}
		return fmt.Sprintf("unknown token %s", d.Actual)
	case InvalidLiteral:
		return fmt.Sprintf("invalid literal %s", d.Actual)
	case DanglingReference:
		return fmt.Sprintf("reference @%s does not match any entity id", d.Identifier)
	case DuplicateIdentifier:
		if d.RelatedPosition != nil {
			return fmt.Sprintf("entity id #%s already declared at %s", d.Identifier, d.RelatedPosition)
		}
		return fmt.Sprintf("entity id #%s already declared", d.Identifier)
	default:
		return d.Kind.String()
	}
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Located() {
		return fmt.Sprintf("line %d, column %d: %s", d.Position.Line, d.Position.Column, d.Describe())
	}
	return fmt.Sprintf("offset %d: %s", d.Span.Start, d.Describe())
}

// ToError converts the diagnostic to a structured error for logging and
// API responses
func (d *Diagnostic) ToError() *mdwerror.Error {
	err := mdwerror.New(d.Describe()).
		WithCode(d.Kind.Code()).
		WithDetail("kind", d.Kind.String()).
		WithDetail("offset", d.Span.Start)

	if d.Located() {
		err = err.WithDetail("line", d.Position.Line).WithDetail("column", d.Position.Column)
	}
	if d.Identifier != "" {
		err = err.WithDetail("identifier", d.Identifier)
	}
	if d.Expected != "" {
		err = err.WithDetail("expected", d.Expected)
	}
	if d.Actual != "" {
		err = err.WithDetail("actual", d.Actual)
	}
	return err
}

// List is an ordered batch of diagnostics. It implements error when non-empty.
type List []*Diagnostic

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}

	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = d.Error()
	}
	return fmt.Sprintf("%d errors:\n  %s", len(l), strings.Join(parts, "\n  "))
}

// Err returns nil for an empty list and the list otherwise
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Count returns how many diagnostics of kind the list holds
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Locate fills in positions for every diagnostic
func (l List) Locate(lines *source.LineIndex) List {
	for _, d := range l {
		d.Locate(lines)
	}
	return l
}
