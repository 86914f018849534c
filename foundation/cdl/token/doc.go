// File: doc.go
// Title: Package documentation for CDL tokens
// Description: Overview of the CDL lexer and token stream
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial documentation

/*
Package token turns CDL source text into tokens and exposes them to the
parser through a forward-only Stream.

Every token carries its kind, the byte span it covers and, for literals,
its text. Sigil literals drop the sigil: @total has Kind Reference and Text
"total", #ff8800 has Kind Color and Text "ff8800". String tokens keep their
quotes so the quote style survives into the Ast.

Line breaks and comments are emitted as trivia. Titles and property lists
end at a line break, so the parser decides where trivia is skipped.

Basic usage:

	tokens, err := token.Tokenize(src)
	if err != nil {
		return err // *diag.Diagnostic
	}
	s := token.NewStream(tokens)
	for !s.AtEnd() {
		tok, _ := s.Current()
		fmt.Println(tok)
		s.Consume()
	}

The Stream never moves backward. Predicates inspect tokens with Peek,
KindAt and Match; only parse methods call Consume and Expect.
*/
package token
