// File: token.go
// Title: CDL Token Definitions
// Description: Token kinds produced by the CDL lexer and consumed by the
//              parser through a Stream.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial token set

package token

import (
	"fmt"

	"github.com/msto63/cdlc/foundation/cdl/source"
)

// Kind represents the type of a lexical token
type Kind int

const (
	// None is returned by lookahead past the end of the stream
	None Kind = iota

	// Trivia
	EOL          // \n, \r\n
	LineComment  // // ...
	BlockComment // /* ... */

	// Literals
	Identifier         // widget, kpi, value-1, a.b
	String             // "text" or 'text', quotes included in Text
	Number             // 1, -2.5, 1e3
	Boolean            // true, false
	Color              // #a1b2c3, Text without '#'
	Reference          // @name, Text without '@'
	HierarchyReference // ^name, Text without '^'

	// Delimiters
	LeftBrace    // {
	RightBrace   // }
	LeftBracket  // [
	RightBracket // ]
	LeftParen    // (
	RightParen   // )
	Colon        // :
	Comma        // ,
	Hash         // #

	// Operators
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Percent      // %
	Equal        // =
	NotEqual     // != or <>
	Less         // <
	LessEqual    // <=
	Greater      // >
	GreaterEqual // >=
	And          // and (any case)
	Or           // or (any case)
)

var kindNames = map[Kind]string{
	None:               "NONE",
	EOL:                "EOL",
	LineComment:        "LINE_COMMENT",
	BlockComment:       "BLOCK_COMMENT",
	Identifier:         "IDENTIFIER",
	String:             "STRING",
	Number:             "NUMBER",
	Boolean:            "BOOLEAN",
	Color:              "COLOR",
	Reference:          "REFERENCE",
	HierarchyReference: "HIERARCHY_REFERENCE",
	LeftBrace:          "LEFT_BRACE",
	RightBrace:         "RIGHT_BRACE",
	LeftBracket:        "LEFT_BRACKET",
	RightBracket:       "RIGHT_BRACKET",
	LeftParen:          "LEFT_PAREN",
	RightParen:         "RIGHT_PAREN",
	Colon:              "COLON",
	Comma:              "COMMA",
	Hash:               "HASH",
	Plus:               "PLUS",
	Minus:              "MINUS",
	Star:               "STAR",
	Slash:              "SLASH",
	Percent:            "PERCENT",
	Equal:              "EQUAL",
	NotEqual:           "NOT_EQUAL",
	Less:               "LESS",
	LessEqual:          "LESS_EQUAL",
	Greater:            "GREATER",
	GreaterEqual:       "GREATER_EQUAL",
	And:                "AND",
	Or:                 "OR",
}

// String returns a string representation of the token kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTrivia reports whether the kind is skipped between declarations
func (k Kind) IsTrivia() bool {
	return k == EOL || k == LineComment || k == BlockComment
}

// Token represents a lexical token with its byte span in the source
type Token struct {
	Kind Kind
	Text string
	Span source.Span
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Is reports whether the token has the given kind and text
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}
