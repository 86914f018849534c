// File: lexer.go
// Title: CDL Lexical Analyzer
// Description: Converts CDL source text into tokens with byte spans. Comments
//              and line breaks are kept as trivia tokens because line breaks
//              terminate titles and property lists.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial lexer implementation

package token

import (
	"strings"

	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
)

// Lexer performs lexical analysis of CDL input
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns all tokens of input. On failure the returned error is a
// *diag.Diagnostic without line information.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	tokens := make([]Token, 0, len(input)/4)

	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == None {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token, or a token of kind None at the end of input
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if start >= len(l.input) {
		return Token{Kind: None, Span: source.Span{Start: start, End: start}}, nil
	}

	ch := l.input[start]
	switch ch {
	case '\n':
		return l.emit(EOL, start+1), nil
	case '\r':
		// skipWhitespace only stops on '\r' when '\n' follows
		return l.emit(EOL, start+2), nil
	case '{':
		return l.emit(LeftBrace, start+1), nil
	case '}':
		return l.emit(RightBrace, start+1), nil
	case '[':
		return l.emit(LeftBracket, start+1), nil
	case ']':
		return l.emit(RightBracket, start+1), nil
	case '(':
		return l.emit(LeftParen, start+1), nil
	case ')':
		return l.emit(RightParen, start+1), nil
	case ':':
		return l.emit(Colon, start+1), nil
	case ',':
		return l.emit(Comma, start+1), nil
	case '+':
		return l.emit(Plus, start+1), nil
	case '*':
		return l.emit(Star, start+1), nil
	case '%':
		return l.emit(Percent, start+1), nil
	case '=':
		return l.emit(Equal, start+1), nil
	case '!':
		if l.peek(1) == '=' {
			return l.emit(NotEqual, start+2), nil
		}
	case '<':
		switch l.peek(1) {
		case '=':
			return l.emit(LessEqual, start+2), nil
		case '>':
			return l.emit(NotEqual, start+2), nil
		}
		return l.emit(Less, start+1), nil
	case '>':
		if l.peek(1) == '=' {
			return l.emit(GreaterEqual, start+2), nil
		}
		return l.emit(Greater, start+1), nil
	case '/':
		switch l.peek(1) {
		case '/':
			end := strings.IndexByte(l.input[start:], '\n')
			if end < 0 {
				end = len(l.input)
			} else {
				end += start
			}
			if end > start && l.input[end-1] == '\r' {
				end--
			}
			return l.emitText(LineComment, end, l.input[start:end]), nil
		case '*':
			end := strings.Index(l.input[start+2:], "*/")
			if end < 0 {
				return Token{}, diag.EndOfInput("*/", len(l.input))
			}
			end += start + 4
			return l.emitText(BlockComment, end, l.input[start:end]), nil
		}
		return l.emit(Slash, start+1), nil
	case '"', '\'':
		return l.readString(ch)
	case '@':
		end := l.scanName(start + 1)
		return l.emitText(Reference, end, l.input[start+1:end]), nil
	case '^':
		end := l.scanName(start + 1)
		return l.emitText(HierarchyReference, end, l.input[start+1:end]), nil
	case '#':
		if end, ok := l.scanColor(start + 1); ok {
			return l.emitText(Color, end, l.input[start+1:end]), nil
		}
		return l.emit(Hash, start+1), nil
	case '-':
		if isDigit(l.peek(1)) {
			return l.readNumber(), nil
		}
		return l.emit(Minus, start+1), nil
	default:
		if isDigit(ch) {
			return l.readNumber(), nil
		}
		if isIdentStart(ch) {
			return l.readIdentifier(), nil
		}
	}

	span := source.Span{Start: start, End: start + 1}
	return Token{}, diag.Unknown(quoteByte(ch), "", span)
}

func (l *Lexer) emit(kind Kind, end int) Token {
	return l.emitText(kind, end, "")
}

func (l *Lexer) emitText(kind Kind, end int, text string) Token {
	tok := Token{Kind: kind, Text: text, Span: source.Span{Start: l.pos, End: end}}
	l.pos = end
	return tok
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// skipWhitespace skips blanks, tabs, form feeds and carriage returns that
// are not part of a \r\n line break
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\f':
			l.pos++
		case '\r':
			if l.peek(1) == '\n' {
				return
			}
			l.pos++
		default:
			return
		}
	}
}

// readString reads a quoted string. The token text keeps the quotes, a
// backslash escapes the following byte and strings may span lines.
func (l *Lexer) readString(quote byte) (Token, error) {
	i := l.pos + 1
	for i < len(l.input) {
		switch l.input[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return l.emitText(String, i+1, l.input[l.pos:i+1]), nil
		}
		i++
	}
	return Token{}, diag.EndOfInput("closing "+quoteByte(quote), len(l.input))
}

// readNumber reads -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) readNumber() Token {
	i := l.pos
	if l.input[i] == '-' {
		i++
	}

	if l.input[i] == '0' {
		i++
	} else {
		for i < len(l.input) && isDigit(l.input[i]) {
			i++
		}
	}

	if i+1 < len(l.input) && l.input[i] == '.' && isDigit(l.input[i+1]) {
		i += 2
		for i < len(l.input) && isDigit(l.input[i]) {
			i++
		}
	}

	if i < len(l.input) && (l.input[i] == 'e' || l.input[i] == 'E') {
		j := i + 1
		if j < len(l.input) && (l.input[j] == '+' || l.input[j] == '-') {
			j++
		}
		if j < len(l.input) && isDigit(l.input[j]) {
			for j < len(l.input) && isDigit(l.input[j]) {
				j++
			}
			i = j
		}
	}

	return l.emitText(Number, i, l.input[l.pos:i])
}

func (l *Lexer) readIdentifier() Token {
	end := l.scanName(l.pos)
	text := l.input[l.pos:end]
	return l.emitText(lookupIdent(text), end, text)
}

// scanName returns the end of a run of name characters starting at i
func (l *Lexer) scanName(i int) int {
	for i < len(l.input) && isIdentPart(l.input[i]) {
		i++
	}
	return i
}

// scanColor accepts exactly six hex digits not followed by another name
// character, so #a1b2c3 is a color while #abcdef12 stays an id
func (l *Lexer) scanColor(i int) (int, bool) {
	end := i + 6
	if end > len(l.input) {
		return 0, false
	}
	for j := i; j < end; j++ {
		if !isHex(l.input[j]) {
			return 0, false
		}
	}
	if end < len(l.input) && isIdentPart(l.input[end]) {
		return 0, false
	}
	return end, true
}

var keywords = map[string]Kind{
	"and":   And,
	"or":    Or,
	"true":  Boolean,
	"false": Boolean,
}

// lookupIdent maps keywords to their kind. and/or are case-insensitive,
// boolean literals are lowercase only.
func lookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	switch strings.ToLower(ident) {
	case "and":
		return And
	case "or":
		return Or
	}
	return Identifier
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHex(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

// isIdentStart accepts letters, '_', '$', '.' and any byte of a multi-byte
// UTF-8 sequence
func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' || ch == '.' || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '-'
}

func quoteByte(ch byte) string {
	switch ch {
	case '\'':
		return `"'"`
	case '"':
		return `'"'`
	}
	return "'" + string(rune(ch)) + "'"
}
