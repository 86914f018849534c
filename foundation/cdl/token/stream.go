// File: stream.go
// Title: CDL Token Stream
// Description: Forward-only cursor over a materialized token slice with
//              bounded lookahead. Grammar predicates only use the lookahead
//              methods; parse methods consume.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial implementation

package token

import (
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/source"
)

// Stream is a cursor over a token sequence. The cursor never moves backward.
type Stream struct {
	tokens []Token
	cursor int
	source string
}

// NewStream wraps tokens. The slice must not be modified afterwards.
func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

// WithSource attaches the text the tokens were produced from so that Text
// can return raw source ranges
func (s *Stream) WithSource(src string) *Stream {
	s.source = src
	return s
}

// Text returns the source covered by span, or "" when no source is attached
// or the span lies outside it
func (s *Stream) Text(span source.Span) string {
	if span.Start < 0 || span.End > len(s.source) || span.Start > span.End {
		return ""
	}
	return s.source[span.Start:span.End]
}

// Len returns the total number of tokens
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Cursor returns the index of the current token
func (s *Stream) Cursor() int {
	return s.cursor
}

// AtEnd reports whether all tokens have been consumed
func (s *Stream) AtEnd() bool {
	return s.cursor >= len(s.tokens)
}

// Current returns the token under the cursor
func (s *Stream) Current() (Token, error) {
	return s.Peek(0)
}

// Peek returns the token n positions after the cursor
func (s *Stream) Peek(n int) (Token, error) {
	i := s.cursor + n
	if n < 0 || i >= len(s.tokens) {
		return Token{}, diag.EndOfInput("token", s.endOffset())
	}
	return s.tokens[i], nil
}

// KindAt returns the kind of the token n positions after the cursor, or None
func (s *Stream) KindAt(n int) Kind {
	i := s.cursor + n
	if n < 0 || i >= len(s.tokens) {
		return None
	}
	return s.tokens[i].Kind
}

// Match reports whether the tokens following the cursor have exactly the
// given kinds
func (s *Stream) Match(kinds ...Kind) bool {
	for i, kind := range kinds {
		if s.KindAt(i) != kind {
			return false
		}
	}
	return true
}

// Consume advances past the current token and returns its span
func (s *Stream) Consume() (source.Span, error) {
	return s.ConsumeN(1)
}

// ConsumeN advances past n tokens and returns the span covering them. The
// cursor does not move if fewer than n tokens remain.
func (s *Stream) ConsumeN(n int) (source.Span, error) {
	if n <= 0 {
		at := s.Position()
		return source.Span{Start: at, End: at}, nil
	}
	if s.cursor+n > len(s.tokens) {
		return source.Span{}, diag.EndOfInput("token", s.endOffset())
	}

	span := source.Span{
		Start: s.tokens[s.cursor].Span.Start,
		End:   s.tokens[s.cursor+n-1].Span.End,
	}
	s.cursor += n
	return span, nil
}

// Expect consumes the current token if it has the given kind
func (s *Stream) Expect(kind Kind) (Token, error) {
	tok, err := s.Current()
	if err != nil {
		return Token{}, diag.EndOfInput(kind.String(), s.endOffset())
	}
	if tok.Kind != kind {
		return Token{}, diag.Unexpected(kind.String(), tok.String(), tok.Span)
	}
	s.cursor++
	return tok, nil
}

// SkipTrivia consumes consecutive line breaks and comments
func (s *Stream) SkipTrivia() {
	for s.cursor < len(s.tokens) && s.tokens[s.cursor].Kind.IsTrivia() {
		s.cursor++
	}
}

// SkipComments consumes consecutive comments but stops at a line break
func (s *Stream) SkipComments() {
	for s.cursor < len(s.tokens) {
		kind := s.tokens[s.cursor].Kind
		if kind != LineComment && kind != BlockComment {
			return
		}
		s.cursor++
	}
}

// Run returns the consecutive tokens of the given kind starting at the
// cursor without consuming them
func (s *Stream) Run(kind Kind) []Token {
	end := s.cursor
	for end < len(s.tokens) && s.tokens[end].Kind == kind {
		end++
	}
	return s.tokens[s.cursor:end]
}

// Position returns the start offset of the current token, or the end of the
// last token when the stream is exhausted
func (s *Stream) Position() int {
	if s.cursor < len(s.tokens) {
		return s.tokens[s.cursor].Span.Start
	}
	return s.endOffset()
}

func (s *Stream) endOffset() int {
	if len(s.tokens) == 0 {
		return 0
	}
	return s.tokens[len(s.tokens)-1].Span.End
}
